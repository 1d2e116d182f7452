package infra

import (
	"context"

	"auth-gateway/middleware/authgate/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStats expõe os desfechos do gateway como métricas Prometheus.
//
// Os rótulos são só outcome e method; endpoint e IP ficam de fora para manter
// a cardinalidade limitada.
type PrometheusStats struct {
	decisions *prometheus.CounterVec
}

type PrometheusOption func(*prometheusConfig)

type prometheusConfig struct {
	namespace string
	sessions  func() float64
	inFlight  func() float64
}

func WithMetricsNamespace(ns string) PrometheusOption {
	return func(c *prometheusConfig) {
		if ns != "" {
			c.namespace = ns
		}
	}
}

// WithSessionGauge publica um gauge com o número de sessões em memória.
func WithSessionGauge(fn func() float64) PrometheusOption {
	return func(c *prometheusConfig) { c.sessions = fn }
}

// WithInFlightGauge publica um gauge com as requisições ocupando vaga no pool.
func WithInFlightGauge(fn func() float64) PrometheusOption {
	return func(c *prometheusConfig) { c.inFlight = fn }
}

func NewPrometheusStats(reg prometheus.Registerer, opts ...PrometheusOption) (*PrometheusStats, error) {
	cfg := prometheusConfig{namespace: "authgate"}
	for _, opt := range opts {
		opt(&cfg)
	}

	p := &PrometheusStats{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Name:      "decisions_total",
			Help:      "Terminal gateway decisions by outcome and HTTP method.",
		}, []string{"outcome", "method"}),
	}
	if err := reg.Register(p.decisions); err != nil {
		return nil, err
	}

	gauges := []struct {
		name, help string
		fn         func() float64
	}{
		{"sessions", "Sessions currently held in memory, including expired ones not yet swept.", cfg.sessions},
		{"inflight_requests", "Requests currently holding a concurrency slot.", cfg.inFlight},
	}
	for _, g := range gauges {
		if g.fn == nil {
			continue
		}
		gf := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: cfg.namespace,
			Name:      g.name,
			Help:      g.help,
		}, g.fn)
		if err := reg.Register(gf); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *PrometheusStats) Record(_ context.Context, ev domain.StatsEvent) error {
	p.decisions.WithLabelValues(string(ev.Outcome), ev.Method).Inc()
	return nil
}
