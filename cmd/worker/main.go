package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/app"
	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/metrics"
	"ncaam/ingestion/internal/repository"
	"ncaam/ingestion/internal/scheduler"
)

func main() {
	cfg := config.MustLoad()
	app.SetupLogger(cfg)

	log.Info().
		Str("env", cfg.AppEnv).
		Str("log_level", cfg.LogLevel).
		Msg("Starting NCAAM ingestion worker")

	// Create context that listens for cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info().Msg("Received shutdown signal, gracefully shutting down...")
		cancel()
	}()

	if err := repository.Migrate(cfg.DatabaseDSN()); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply migrations")
	}

	a, err := app.New(ctx, cfg, true)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer a.Close()

	var srv *http.Server
	if cfg.EnableMetrics {
		srv = startMetricsServer(cfg.MetricsPort, a)
	}

	// Update uptime and pool metrics
	startTime := time.Now()
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				metrics.SystemUptime.Set(time.Since(startTime).Seconds())
				a.DB.UpdatePoolMetrics()
			case <-ctx.Done():
				return
			}
		}
	}()

	sched := scheduler.New(cfg, a.Runner, a.Catalog)

	if cfg.EnableScheduler {
		if err := sched.Start(ctx); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	if cfg.InitialSyncEnabled {
		log.Info().Msg("Running initial daily update...")
		if _, err := sched.RunDaily(ctx); err != nil {
			log.Error().Err(err).Msg("Initial daily update failed, continuing anyway...")
		}
	}

	// Keep running until context is cancelled
	<-ctx.Done()

	if cfg.EnableScheduler {
		sched.Stop()
	}
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Metrics server shutdown failed")
		}
	}

	log.Info().Msg("Worker shutdown complete")
}

// startMetricsServer serves /metrics and /health until shut down
func startMetricsServer(port int, a *app.App) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler(a))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info().Int("port", port).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return srv
}

// healthHandler reports the database and, when configured, the cache.
func healthHandler(a *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]any{"status": "healthy", "database": a.DB.PoolStats()}
		code := http.StatusOK
		if err := a.DB.Health(ctx); err != nil {
			status["status"] = "unhealthy"
			status["database_error"] = err.Error()
			code = http.StatusServiceUnavailable
		}
		if a.Cache != nil {
			if err := a.Cache.HealthCheck(ctx); err != nil {
				status["cache_error"] = err.Error()
			}
		}

		body, err := sonic.Marshal(status)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		w.Write(body)
	}
}
