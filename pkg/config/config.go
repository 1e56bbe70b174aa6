package config

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/conf/v3"
	"github.com/joho/godotenv"
)

// Environment name constants used in ENVIRONMENT config field.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTesting     = "testing"
)

// Config holds all configuration for the application
type Config struct {
	// Database: SQLite DSN. The default keeps the store in process memory.
	DatabaseDSN string `conf:"default::memory:,env:DATABASE_DSN"`
	// Redis: empty disables the item read cache.
	RedisURL string `conf:"env:REDIS_URL"`

	// HTTP
	HTTPAddr           string `conf:"default::8080,env:HTTP_ADDR"`
	RateLimitPerMinute int    `conf:"default:100,env:RATE_LIMIT_PER_MINUTE"`

	// Application
	LogLevel    string `conf:"default:info,env:LOG_LEVEL"`
	Environment string `conf:"default:development,enum:development|testing|production,env:ENVIRONMENT"`

	// Items
	DeletionMinAgeDays int      `conf:"default:5,env:DELETION_MIN_AGE_DAYS"`
	SeedItems          []string `conf:"default:Item 1;Item 2;Item 3,env:SEED_ITEMS"`

	// CORS — comma-separated list of allowed origins; use * to allow all (dev only)
	CORSAllowedOrigins string `conf:"default:*,env:CORS_ALLOWED_ORIGINS"`

	// Observability
	ServiceName    string `conf:"default:itemtracker,env:SERVICE_NAME"`
	ServiceVersion string `conf:"default:dev,env:SERVICE_VERSION"`
	OtelEndpoint   string `conf:"env:OTEL_ENDPOINT"`
	SentryDSN      string `conf:"env:SENTRY_DSN,noprint"`
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	var cfg Config
	_ = godotenv.Load()
	if _, err := conf.Parse("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks settings that are invalid in every environment.
func Validate(cfg *Config) error {
	if cfg.DeletionMinAgeDays < 0 {
		return fmt.Errorf("DELETION_MIN_AGE_DAYS must not be negative (got %d)", cfg.DeletionMinAgeDays)
	}
	if cfg.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive (got %d)", cfg.RateLimitPerMinute)
	}
	return nil
}

// ValidateForProduction enforces security requirements when ENVIRONMENT=production.
// Returns an error if any critical settings are missing or unsafe.
// No-ops for non-production environments.
func ValidateForProduction(cfg *Config) error {
	if cfg.Environment != EnvProduction {
		return nil
	}

	var errs []string

	if cfg.LogLevel == "debug" {
		errs = append(errs, "LOG_LEVEL must not be 'debug' in production (SQL statements are logged at debug)")
	}

	for _, origin := range strings.Split(cfg.CORSAllowedOrigins, ",") {
		if strings.TrimSpace(origin) == "*" {
			errs = append(errs, "CORS_ALLOWED_ORIGINS must list explicit origins in production")
			break
		}
	}

	if len(errs) == 0 {
		return nil
	}

	return fmt.Errorf("production config validation failed: %s", strings.Join(errs, "; "))
}
