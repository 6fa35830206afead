package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ErrInvalidConfig marks configuration problems detected before any network activity.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds all application configuration
type Config struct {
	// ESPN API
	ESPNCoreBaseURL string        `envconfig:"ESPN_CORE_BASE_URL" default:"https://sports.core.api.espn.com/v2/sports/basketball/leagues/mens-college-basketball"`
	ESPNSiteBaseURL string        `envconfig:"ESPN_SITE_BASE_URL" default:"https://site.api.espn.com/apis/site/v2/sports/basketball/mens-college-basketball"`
	ESPNTimeout     time.Duration `envconfig:"ESPN_TIMEOUT" default:"30s"`
	ESPNMaxRetries  int           `envconfig:"ESPN_MAX_RETRIES" default:"3"`
	ESPNRetryDelay  time.Duration `envconfig:"ESPN_RETRY_DELAY" default:"1s"`

	// API Rate Limiting (requests per second, 0 disables)
	APIRateLimit  float64 `envconfig:"API_RATE_LIMIT" default:"0"`
	APIBurstLimit int     `envconfig:"API_BURST_LIMIT" default:"20"`

	// Fetch fan-out
	FetchWorkers int `envconfig:"FETCH_WORKERS" default:"10"`

	// Event discovery. The groups filter has moved between 50 and 52 upstream;
	// verify against the live API before changing it.
	EventsGroup     int `envconfig:"EVENTS_GROUP" default:"50"`
	EventsPageLimit int `envconfig:"EVENTS_PAGE_LIMIT" default:"1000"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"ncaam"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"ncaam_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`

	// Caching of low-churn reference endpoints
	EnableCache       bool          `envconfig:"ENABLE_CACHE" default:"true"`
	CacheTTLReference time.Duration `envconfig:"CACHE_TTL_REFERENCE" default:"24h"`

	// Application
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ErrorLogDir string `envconfig:"ERROR_LOG_DIR" default:"data"`

	// Eligibility windows (days)
	DailyLookbackDays      int `envconfig:"DAILY_LOOKBACK_DAYS" default:"2"`
	OddsWindowDays         int `envconfig:"ODDS_WINDOW_DAYS" default:"7"`
	PredictionLookbackDays int `envconfig:"PREDICTION_LOOKBACK_DAYS" default:"2"`
	PredictionWindowDays   int `envconfig:"PREDICTION_WINDOW_DAYS" default:"7"`

	// Scheduler
	EnableScheduler      bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	InitialSyncEnabled   bool   `envconfig:"INITIAL_SYNC_ENABLED" default:"false"`
	DailyUpdateCron      string `envconfig:"DAILY_UPDATE_CRON" default:"0 6 * * *"`
	ReferenceRefreshCron string `envconfig:"REFERENCE_REFRESH_CRON" default:"0 4 * * 1"`

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if in development mode
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return errors.Wrap(ErrInvalidConfig, "DATABASE_PASSWORD is required")
	}
	if c.ESPNCoreBaseURL == "" || c.ESPNSiteBaseURL == "" {
		return errors.Wrap(ErrInvalidConfig, "ESPN base URLs must be set")
	}
	if c.FetchWorkers < 1 {
		return errors.Wrapf(ErrInvalidConfig, "FETCH_WORKERS must be positive, got %d", c.FetchWorkers)
	}
	if c.EventsPageLimit < 1 {
		return errors.Wrapf(ErrInvalidConfig, "EVENTS_PAGE_LIMIT must be positive, got %d", c.EventsPageLimit)
	}
	if c.ESPNMaxRetries < 0 {
		return errors.Wrapf(ErrInvalidConfig, "ESPN_MAX_RETRIES cannot be negative, got %d", c.ESPNMaxRetries)
	}
	if c.DailyLookbackDays < 0 || c.OddsWindowDays < 0 || c.PredictionLookbackDays < 0 || c.PredictionWindowDays < 0 {
		return errors.Wrap(ErrInvalidConfig, "window sizes cannot be negative")
	}
	return nil
}

// DatabaseDSN returns the PostgreSQL connection string
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DatabaseUser,
		c.DatabasePassword,
		c.DatabaseHost,
		c.DatabasePort,
		c.DatabaseName,
		c.DatabaseSSLMode,
	)
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// MustLoad loads configuration or exits on error
// Use this in main() where we want to fail fast
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	return cfg
}
