package authgate

import (
	"net/http"

	"auth-gateway/middleware/authgate/infra"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type AdminOptions struct {
	// Metrics é servido em GET /metrics quando não nil.
	Metrics http.Handler
	// Stats é resumido em GET /stats quando não nil.
	Stats *infra.MemoryStatsStore
}

// NewAdminRouter serve /healthz e, conforme as opções, /metrics e /stats.
//
// Fica numa porta separada: no router público qualquer /{endpoint} é do backend.
func NewAdminRouter(opts AdminOptions) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}
	if opts.Stats != nil {
		r.Get("/stats", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{
				"total":    opts.Stats.Total(),
				"outcomes": opts.Stats.Outcomes(),
				"routes":   opts.Stats.ByRoute(),
				"ips":      opts.Stats.ByIP(),
			})
		})
	}
	return r
}
