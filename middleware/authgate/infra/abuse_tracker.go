package infra

import (
	"sync"
	"time"

	"auth-gateway/middleware/authgate/domain"
)

// AbuseTracker conta falhas recentes por IP numa janela deslizante e bloqueia
// o IP quando a contagem passa de maxFailures.
//
// Falhas e bloqueios ficam em mapas separados, cada um com seu lock. A ordem de
// aquisição é sempre failMu -> blockMu.
type AbuseTracker struct {
	failMu   sync.Mutex
	failures map[string][]time.Time

	blockMu sync.RWMutex
	blocks  map[string]time.Time

	window      time.Duration
	maxFailures int
	blockFor    time.Duration
	clock       domain.Clock
}

type AbuseOption func(*AbuseTracker)

func WithAbuseWindow(d time.Duration) AbuseOption {
	return func(t *AbuseTracker) { t.window = d }
}

func WithMaxFailures(n int) AbuseOption {
	return func(t *AbuseTracker) { t.maxFailures = n }
}

func WithBlockDuration(d time.Duration) AbuseOption {
	return func(t *AbuseTracker) { t.blockFor = d }
}

func WithAbuseClock(c domain.Clock) AbuseOption {
	return func(t *AbuseTracker) { t.clock = c }
}

func NewAbuseTracker(opts ...AbuseOption) *AbuseTracker {
	t := &AbuseTracker{
		failures:    make(map[string][]time.Time),
		blocks:      make(map[string]time.Time),
		window:      5 * time.Second,
		maxFailures: 5,
		blockFor:    24 * time.Hour,
		clock:       SystemClock,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *AbuseTracker) IsBlocked(ip string) bool {
	_, ok := t.BlockedUntil(ip)
	return ok
}

// BlockedUntil retorna o fim do bloqueio ativo do IP.
// Um bloqueio vencido é tratado como inexistente e removido.
func (t *AbuseTracker) BlockedUntil(ip string) (time.Time, bool) {
	t.blockMu.RLock()
	until, ok := t.blocks[ip]
	t.blockMu.RUnlock()
	if !ok {
		return time.Time{}, false
	}

	now := t.clock.Now()
	if now.Before(until) {
		return until, true
	}

	t.blockMu.Lock()
	if cur, ok := t.blocks[ip]; ok && !now.Before(cur) {
		delete(t.blocks, ip)
	}
	t.blockMu.Unlock()
	return time.Time{}, false
}

// RecordFailure registra uma falha do IP agora, poda a janela e, se a contagem
// passar do limite, instala o bloqueio e zera a sequência do IP.
func (t *AbuseTracker) RecordFailure(ip string) bool {
	t.failMu.Lock()
	defer t.failMu.Unlock()

	now := t.clock.Now()
	seq := pruneWindow(append(t.failures[ip], now), now, t.window)
	if len(seq) <= t.maxFailures {
		t.failures[ip] = seq
		return false
	}

	delete(t.failures, ip)
	t.blockMu.Lock()
	t.blocks[ip] = now.Add(t.blockFor)
	t.blockMu.Unlock()
	return true
}

// Failures retorna quantas falhas do IP estavam na janela na última escrita.
func (t *AbuseTracker) Failures(ip string) int {
	t.failMu.Lock()
	defer t.failMu.Unlock()
	return len(t.failures[ip])
}

// Sweep descarta bloqueios vencidos e sequências cuja falha mais recente já
// saiu da janela. Só libera memória; não muda nenhuma decisão.
func (t *AbuseTracker) Sweep() int {
	now := t.clock.Now()
	removed := 0

	t.failMu.Lock()
	for ip, seq := range t.failures {
		if len(seq) == 0 || now.Sub(seq[len(seq)-1]) > t.window {
			delete(t.failures, ip)
			removed++
		}
	}
	t.failMu.Unlock()

	t.blockMu.Lock()
	for ip, until := range t.blocks {
		if !now.Before(until) {
			delete(t.blocks, ip)
			removed++
		}
	}
	t.blockMu.Unlock()

	return removed
}

// pruneWindow mantém os instantes com now-t <= window (borda inclusiva).
func pruneWindow(seq []time.Time, now time.Time, window time.Duration) []time.Time {
	kept := seq[:0]
	for _, at := range seq {
		if now.Sub(at) <= window {
			kept = append(kept, at)
		}
	}
	return kept
}
