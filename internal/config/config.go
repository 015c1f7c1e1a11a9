package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration
type Config struct {
	// MLB Stats API
	MLBAPIBaseURL string        `envconfig:"MLB_API_BASE_URL" default:"https://statsapi.mlb.com/api"`
	MLBSportID    int           `envconfig:"MLB_SPORT_ID" default:"1"`
	MLBAPITimeout time.Duration `envconfig:"MLB_API_TIMEOUT" default:"10s"`

	// Classification
	RunThreshold int `envconfig:"RUN_THRESHOLD" default:"5"`

	// Database
	DatabaseHost     string `envconfig:"DATABASE_HOST" default:"localhost"`
	DatabasePort     int    `envconfig:"DATABASE_PORT" default:"5432"`
	DatabaseName     string `envconfig:"DATABASE_NAME" default:"mlb_blowouts"`
	DatabaseUser     string `envconfig:"DATABASE_USER" default:"mlb_user"`
	DatabasePassword string `envconfig:"DATABASE_PASSWORD" required:"true"`
	DatabaseSSLMode  string `envconfig:"DATABASE_SSL_MODE" default:"disable"`

	// Redis (optional terminal-game cache)
	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisEnabled  bool   `envconfig:"REDIS_ENABLED" default:"true"`

	// Application
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	// Scheduler
	EnableScheduler      bool   `envconfig:"ENABLE_SCHEDULER" default:"true"`
	ScheduleCron         string `envconfig:"SCHEDULE_CRON" default:"0 2 * * *"`
	IntradayPollInterval int    `envconfig:"INTRADAY_POLL_INTERVAL" default:"0"` // seconds, 0 disables

	// Cache TTL for terminal game markers (in seconds)
	CacheTTLTerminal int `envconfig:"CACHE_TTL_TERMINAL" default:"172800"` // 48 hours

	// Monitoring
	EnableMetrics bool `envconfig:"ENABLE_METRICS" default:"true"`
	MetricsPort   int  `envconfig:"METRICS_PORT" default:"9090"`
}

// Load loads configuration from environment variables
// It first attempts to load from .env file if present
func Load() (*Config, error) {
	// Try to load .env file (ignore error if doesn't exist)
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.DatabasePassword == "" {
		return fmt.Errorf("DATABASE_PASSWORD is required")
	}

	if c.RunThreshold < 1 {
		return fmt.Errorf("RUN_THRESHOLD must be a positive integer, got %d", c.RunThreshold)
	}

	if c.MLBSportID < 1 {
		return fmt.Errorf("MLB_SPORT_ID must be a positive integer, got %d", c.MLBSportID)
	}

	return nil
}

// RedisAddr returns the Redis address
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// TerminalTTL returns the terminal-game marker TTL as a duration
func (c *Config) TerminalTTL() time.Duration {
	return time.Duration(c.CacheTTLTerminal) * time.Second
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
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
