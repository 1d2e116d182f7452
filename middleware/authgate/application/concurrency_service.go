package application

import (
	"context"
	"time"

	"auth-gateway/middleware/authgate/domain"
)

// SlotPool é um recurso de capacidade finita: Acquire bloqueia até ter vaga
// ou até o ctx encerrar, e o release devolvido deve ser chamado uma única vez.
type SlotPool interface {
	Acquire(ctx context.Context) (release func(), ok bool)
}

// ConcurrencyService limita quantas requisições atravessam o gateway ao mesmo
// tempo, sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - Sem Pool, sempre admite.
//   - AcquireTimeout <= 0 espera enquanto o ctx da requisição viver.
//   - Esgotado o prazo, devolve domain.ErrOverloaded; se foi o próprio ctx que
//     terminou (cliente desistiu), devolve o erro do ctx.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), error) {
	if s.Pool == nil {
		return func() {}, nil
	}

	acqCtx := ctx
	if s.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		acqCtx, cancel = context.WithTimeout(ctx, s.AcquireTimeout)
		defer cancel()
	}

	release, ok := s.Pool.Acquire(acqCtx)
	if ok {
		return release, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, domain.ErrOverloaded
}
