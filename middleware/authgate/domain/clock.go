package domain

import "time"

// Clock fornece o instante atual.
//
// Toda regra baseada em tempo (expiração de sessão, janela de abuso, bloqueio)
// consulta um Clock em vez de chamar time.Now diretamente, para que os testes
// possam avançar o tempo sem sleeps.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapta uma função comum para Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
