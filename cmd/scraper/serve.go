package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/user/site-scraper/internal/api"
	"github.com/user/site-scraper/internal/config"
	"github.com/user/site-scraper/internal/monitoring"
	"github.com/user/site-scraper/internal/storage"
	"go.uber.org/zap"
)

// NewServeCmd creates the serve command, which accepts scrape jobs over HTTP.
func NewServeCmd(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scrape API",
		Long: `serve exposes POST /api/scrape, GET /api/health and GET /metrics.

When a Redis address is configured, a site scraped within the dedup window
is refused unless the request sets force.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, *configFile)
		},
	}

	cmd.Flags().String("server-port", "8080", "port the API listens on")
	cmd.Flags().String("redis-addr", "", "Redis address for the recently-scraped guard; empty disables it")
	cmd.Flags().Duration("dedup-window", 48*time.Hour, "how long a scraped site is refused without force")
	cmd.Flags().Duration("api-timeout", 10*time.Minute, "upper bound on one scrape request")

	return cmd
}

func runServe(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(cmd.Flags(), configFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := monitoring.NewMetrics(reg)

	controller, err := buildController(cfg, logger, metrics)
	if err != nil {
		return err
	}

	var recent api.RecentScrapes
	if cfg.RedisAddr != "" {
		redisStore := storage.NewRedisStore(cfg.RedisAddr)
		defer redisStore.Close()
		recent = redisStore
	}

	server := api.NewServer(cfg, controller, recent, metrics, reg, logger)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("server started", zap.String("port", cfg.ServerPort), zap.Bool("redis_guard", recent != nil))

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("could not start server", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("server exiting")
	return nil
}
