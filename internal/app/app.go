// Package app assembles the service from configuration: logger, database,
// response cache, client pool, error sink, runner and job catalog.
package app

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ncaam/ingestion/internal/cache"
	"ncaam/ingestion/internal/client"
	"ncaam/ingestion/internal/config"
	"ncaam/ingestion/internal/errlog"
	"ncaam/ingestion/internal/jobs"
	"ncaam/ingestion/internal/pipeline"
	"ncaam/ingestion/internal/repository"
)

// App holds the wired components. Close releases them.
type App struct {
	Config  *config.Config
	DB      *repository.Database
	Cache   *cache.RedisCache
	Pool    *client.Pool
	Errors  *errlog.Sink
	Runner  *pipeline.Runner
	Catalog *jobs.Catalog
}

// SetupLogger configures the global zerolog logger
func SetupLogger(cfg *config.Config) {
	// Pretty console logging in development
	if cfg.IsDevelopment() {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		level = parsed
	}
	zerolog.SetGlobalLevel(level)

	log.Info().
		Str("level", level.String()).
		Msg("Logger initialized")
}

// New connects to the database and, when enabled, to Redis, then builds the
// runner and catalog. A Redis failure only disables caching.
func New(ctx context.Context, cfg *config.Config, quiet bool) (*App, error) {
	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, DB: db}

	opts := client.NewOptions(cfg)
	if cfg.EnableCache {
		redisCache, err := cache.NewRedisCache(cache.Config{
			Host:     cfg.RedisHost,
			Port:     strconv.Itoa(cfg.RedisPort),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			log.Warn().Err(err).Msg("Failed to connect to Redis - continuing without cache")
		} else {
			a.Cache = redisCache
			opts.Cache = redisCache
			log.Info().Msg("Redis cache connected")
		}
	}

	sink, err := errlog.New(cfg.ErrorLogDir)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Errors = sink

	a.Pool = client.NewPool(cfg.FetchWorkers, opts)
	a.Runner = &pipeline.Runner{
		Pool:    a.Pool,
		Store:   db,
		Errors:  sink,
		Workers: cfg.FetchWorkers,
		Quiet:   quiet,
	}
	a.Catalog = jobs.NewCatalog(db, jobs.SettingsFromConfig(cfg))
	return a, nil
}

// Close releases every component that was opened
func (a *App) Close() {
	if a.Errors != nil {
		if err := a.Errors.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close error logs")
		}
	}
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis connection")
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
