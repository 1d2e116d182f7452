package domain

import "time"

// Key é a API key opaca entregue ao cliente após autenticação no backend.
type Key string

// Session são os metadados associados a uma Key viva.
//
// Role vazio significa "sem papel": o backend não informou o atributo ou o
// gateway não foi configurado com um nome de atributo.
type Session struct {
	Key       Key
	ExpiresAt time.Time
	Role      string
}

// Valid reporta se a sessão ainda vale em now (now < ExpiresAt).
func (s Session) Valid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}

// SessionStore é dono exclusivo das sessões.
//
// Validate nunca altera a expiração de uma sessão válida; uma sessão expirada
// encontrada durante Validate é removida antes do retorno.
type SessionStore interface {
	Issue(role string) (Key, error)
	Validate(key Key) (Session, bool)
	Sweep() int
}
