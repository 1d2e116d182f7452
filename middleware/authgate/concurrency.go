package authgate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"auth-gateway/middleware/authgate/application"
	"auth-gateway/middleware/authgate/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration

	// Pool permite compartilhar o semáforo (ex.: para expor o gauge de
	// requisições em voo). Nil: um pool de Max vagas é criado aqui.
	Pool application.SlotPool
	// OnReject é chamado para cada requisição recusada por falta de vaga.
	OnReject func(r *http.Request)
}

// ConcurrencyMiddleware limita requisições em voo; Max <= 0 desliga o limite.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}
	if opts.Pool == nil {
		opts.Pool = infra.NewSlotPool(opts.Max)
	}

	svc := application.ConcurrencyService{
		Pool:           opts.Pool,
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, err := svc.Acquire(r.Context())
			if err != nil {
				// cliente já foi embora: não há a quem responder
				if errors.Is(err, context.Canceled) {
					return
				}
				if opts.OnReject != nil {
					opts.OnReject(r)
				}
				writeDetail(w, opts.RejectStatus, http.StatusText(opts.RejectStatus))
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
