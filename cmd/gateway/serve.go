package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"auth-gateway/config"
	"auth-gateway/middleware/authgate"
	"auth-gateway/middleware/authgate/infra"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		logger := newLogger(cfg.Log, os.Stderr)

		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		gw, err := newGateway(ctx, cfg, logger, reg)
		if err != nil {
			return err
		}
		defer gw.Close()

		janitor := infra.NewJanitor(logger.With("component", "janitor"))
		if err := gw.schedule(janitor, cfg); err != nil {
			return err
		}
		janitor.Start(ctx)
		defer janitor.Stop()

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           gw.handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			// o backend tem seu próprio timeout; a escrita precisa caber depois dele
			WriteTimeout: max(30*time.Second, cfg.Backend.Timeout+5*time.Second),
			IdleTimeout:  90 * time.Second,
		}
		servers := []*http.Server{srv}

		if cfg.Admin.ListenAddr != "" {
			admin := &http.Server{
				Addr:              cfg.Admin.ListenAddr,
				Handler:           authgate.NewAdminRouter(authgate.AdminOptions{
					Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
					Stats:   gw.memStats,
				}),
				ReadHeaderTimeout: 5 * time.Second,
			}
			servers = append(servers, admin)
			go func() {
				if err := admin.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("admin server error", "error", err)
				}
			}()
			logger.Info("admin listening", "addr", cfg.Admin.ListenAddr)
		}

		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			for _, s := range servers {
				_ = s.Shutdown(shutdownCtx)
			}
		}()

		gw.logStartup(logger, cfg)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("gateway stopped")
		return nil
	},
}
