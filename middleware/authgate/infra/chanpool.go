package infra

import (
	"context"
	"sync/atomic"
)

// SlotPool é um semáforo sobre channel com capacidade fixa que também expõe
// quantas vagas estão ocupadas (gauge de requisições em voo).
type SlotPool struct {
	sem      chan struct{}
	inFlight atomic.Int64
}

// NewSlotPool cria um pool com capacidade size (mínimo 1).
func NewSlotPool(size int) *SlotPool {
	return &SlotPool{sem: make(chan struct{}, max(size, 1))}
}

func (p *SlotPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, false
	}
	p.inFlight.Add(1)

	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			p.inFlight.Add(-1)
			<-p.sem
		}
	}, true
}

func (p *SlotPool) InFlight() int { return int(p.inFlight.Load()) }

func (p *SlotPool) Cap() int { return cap(p.sem) }
