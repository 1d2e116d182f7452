package domain

import "time"

// AbuseTracker registra requisições inválidas por IP e decide bloqueios.
//
// A contagem é feita somente na escrita (RecordFailure); não há timer de fundo
// envolvido na decisão. Chamadas de RecordFailure para o mesmo IP são
// linearizadas pela implementação.
type AbuseTracker interface {
	IsBlocked(ip string) bool
	BlockedUntil(ip string) (time.Time, bool)
	// RecordFailure retorna true quando esta falha instalou um novo bloqueio.
	RecordFailure(ip string) bool
}
