package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"auth-gateway/config"
	"auth-gateway/middleware/authgate"
	"auth-gateway/middleware/authgate/application"
	"auth-gateway/middleware/authgate/domain"
	"auth-gateway/middleware/authgate/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// gateway reúne os componentes montados a partir da configuração.
type gateway struct {
	engine   *application.Engine
	sessions *infra.SessionStore
	abuse    *infra.AbuseTracker
	authz    *infra.PermissionTable
	slots    *infra.SlotPool
	backend  *infra.HTTPBackend
	memStats *infra.MemoryStatsStore
	handler  http.Handler
	closers  []func() error
}

func newGateway(ctx context.Context, cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*gateway, error) {
	backend, err := infra.NewHTTPBackend(cfg.Backend.URL, infra.WithBackendTimeout(cfg.Backend.Timeout))
	if err != nil {
		return nil, err
	}

	g := &gateway{
		backend:  backend,
		memStats: infra.NewMemoryStatsStore(),
		sessions: infra.NewSessionStore(
			infra.WithSessionTTL(cfg.Session.TTL),
			infra.WithKeyGenerator(infra.HexKeys(cfg.Session.KeyBytes)),
		),
		abuse: infra.NewAbuseTracker(
			infra.WithAbuseWindow(cfg.Abuse.Window),
			infra.WithMaxFailures(cfg.Abuse.MaxFailures),
			infra.WithBlockDuration(cfg.Abuse.BlockDuration),
		),
	}

	var authz domain.Authorizer
	if cfg.RoleAuthorization() {
		g.authz = infra.NewPermissionTable(cfg.Permissions.Table())
		authz = g.authz
		logger.Info("role authorization enabled",
			"attribute", cfg.UserRole.AttributeName, "entries", g.authz.Len())
	} else if len(cfg.Permissions) > 0 {
		logger.Warn("permissions configured but user_role.attribute_name is empty; ignoring them")
	}

	promOpts := []infra.PrometheusOption{
		infra.WithMetricsNamespace(cfg.Admin.MetricsNamespace),
		infra.WithSessionGauge(func() float64 { return float64(g.sessions.Len()) }),
	}
	if cfg.Concurrency.Max > 0 {
		g.slots = infra.NewSlotPool(cfg.Concurrency.Max)
		promOpts = append(promOpts, infra.WithInFlightGauge(func() float64 { return float64(g.slots.InFlight()) }))
	}
	promStats, err := infra.NewPrometheusStats(reg, promOpts...)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}
	stats := infra.MultiStats{promStats, g.memStats}

	if rc := cfg.Stats.Redis; rc.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     rc.Addr,
			Password: rc.Password,
			DB:       rc.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis stats ping error: %w", err)
		}
		g.closers = append(g.closers, rdb.Close)
		stats = append(stats, infra.NewRedisStatsStore(rdb,
			infra.WithStatsPrefix(rc.Prefix),
			infra.WithStatsTTL(rc.TTL),
			infra.WithStatsBucket(rc.Bucket),
			infra.WithStatsTrackIPs(rc.TrackIPs),
		))
	}

	g.engine = &application.Engine{
		Sessions:      g.sessions,
		Abuse:         g.abuse,
		Authz:         authz,
		Backend:       backend,
		Stats:         stats,
		Clock:         infra.SystemClock,
		Logger:        logger.With("component", "engine"),
		RoleAttribute: cfg.UserRole.AttributeName,
		AuthPath:      cfg.Backend.AuthPath,
		RegisterPath:  cfg.Backend.RegisterPath,
		KeyParam:      cfg.Session.KeyParam,
	}

	g.handler = authgate.NewRouter(authgate.Options{
		Engine:             g.engine,
		TrustXForwardedFor: cfg.TrustXForwardedFor,
		MaxBodyBytes:       cfg.MaxBodyBytes,
		Concurrency: authgate.ConcurrencyOptions{
			Max:            cfg.Concurrency.Max,
			RejectStatus:   http.StatusServiceUnavailable,
			AcquireTimeout: cfg.Concurrency.AcquireTimeout,
			Pool:           slotPool(g.slots),
		},
		Logger: logger.With("component", "http"),
	})
	return g, nil
}

// schedule registra as varreduras periódicas no janitor.
func (g *gateway) schedule(j *infra.Janitor, cfg *config.Config) error {
	if err := j.Every("sessions", cfg.Session.SweepInterval, g.sessions.Sweep); err != nil {
		return err
	}
	return j.Every("abuse", cfg.Abuse.SweepInterval, g.abuse.Sweep)
}

// slotPool evita guardar um *infra.SlotPool nil dentro da interface.
func slotPool(p *infra.SlotPool) application.SlotPool {
	if p == nil {
		return nil
	}
	return p
}

// logStartup resume a configuração efetiva lida dos componentes já montados.
func (g *gateway) logStartup(logger *slog.Logger, cfg *config.Config) {
	logger.Info("gateway listening",
		"addr", cfg.ListenAddr,
		"backend", g.backend.URL(),
		"backend_timeout", cfg.Backend.Timeout,
		"session_ttl", g.sessions.TTL(),
		"role_attribute", cfg.UserRole.AttributeName,
		"trust_xff", cfg.TrustXForwardedFor)
	logger.Info("abuse tracking",
		"window", cfg.Abuse.Window,
		"max_failures", cfg.Abuse.MaxFailures,
		"block_duration", cfg.Abuse.BlockDuration)
	logger.Info("concurrency", "max", cfg.Concurrency.Max, "acquire_timeout", cfg.Concurrency.AcquireTimeout)
}

func (g *gateway) Close() {
	for _, c := range g.closers {
		_ = c()
	}
}
