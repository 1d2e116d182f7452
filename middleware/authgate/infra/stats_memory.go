package infra

import (
	"context"
	"sync"

	"auth-gateway/middleware/authgate/domain"
)

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// MemoryStatsStore acumula os desfechos desde o início do processo; é o que o
// /stats do listener admin expõe.
//
// Não faz expiração: com trackIPs ligado, o mapa por IP só cresce.
type MemoryStatsStore struct {
	mu        sync.Mutex
	total     Counters
	byOutcome map[domain.Outcome]int64
	byRoute   map[string]Counters
	byIP      map[string]Counters

	trackIPs bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackIPs(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackIPs = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byOutcome: make(map[domain.Outcome]int64),
		byRoute:   make(map[string]Counters),
		byIP:      make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Endpoint

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byOutcome[ev.Outcome]++
	s.byRoute[route] = bump(s.byRoute[route], ev.Outcome)
	s.total = bump(s.total, ev.Outcome)
	if s.trackIPs {
		s.byIP[ev.IP] = bump(s.byIP[ev.IP], ev.Outcome)
	}
	return nil
}

func bump(c Counters, o domain.Outcome) Counters {
	if o.Allowed() {
		c.Allowed++
	} else {
		c.Denied++
	}
	return c
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Outcome(o domain.Outcome) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byOutcome[o]
}

func (s *MemoryStatsStore) Outcomes() map[domain.Outcome]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[domain.Outcome]int64, len(s.byOutcome))
	for k, v := range s.byOutcome {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByRoute() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byRoute))
	for k, v := range s.byRoute {
		out[k] = v
	}
	return out
}

func (s *MemoryStatsStore) ByIP() map[string]Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Counters, len(s.byIP))
	for k, v := range s.byIP {
		out[k] = v
	}
	return out
}
