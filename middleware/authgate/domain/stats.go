package domain

import (
	"context"
	"time"
)

// Outcome é o desfecho terminal de uma requisição no gateway.
type Outcome string

const (
	OutcomeBlocked            Outcome = "blocked"
	OutcomeMissingKey         Outcome = "missing_key"
	OutcomeInvalidKey         Outcome = "invalid_key"
	OutcomeNotAllowed         Outcome = "not_allowed"
	OutcomeInvalidCredentials Outcome = "invalid_credentials"
	OutcomeBackendUnavailable Outcome = "backend_unavailable"
	OutcomeOverloaded         Outcome = "overloaded"
	OutcomeIssued             Outcome = "issued"
	OutcomeRegistered         Outcome = "registered"
	OutcomeForwarded          Outcome = "forwarded"
)

// Allowed reporta se o desfecho deixou a requisição chegar ao backend com sucesso.
func (o Outcome) Allowed() bool {
	switch o {
	case OutcomeIssued, OutcomeRegistered, OutcomeForwarded:
		return true
	}
	return false
}

// StatsEvent representa um evento de decisão do gateway.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Endpoint são strings genéricas.
//
// Observação: cuidado com cardinalidade (ex.: salvar IP/Endpoint sem controle pode
// explodir o número de séries/chaves em uma base como Redis/Prometheus).
type StatsEvent struct {
	IP      string
	Outcome Outcome

	Method   string
	Endpoint string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas do gateway.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O chamador deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
