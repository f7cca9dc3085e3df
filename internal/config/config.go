package config

import (
	"fmt"
	"os"
)

// Database driver names accepted by DATABASE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds application configuration
type Config struct {
	APIToken          string
	ServerPort        string
	DatabaseDriver    string
	DatabaseURL       string
	DatabasePath      string
	AllowedOrigins    string
	EnableHSTS        bool
	RateLimit         string
	RedisURL          string
	RetentionSchedule string
	ServerDebugMode   bool
	OTELEnabled       bool
	OTELEndpoint      string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		APIToken:          getEnv("JAKETODO_API_TOKEN", ""),
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		DatabaseDriver:    getEnv("DATABASE_DRIVER", DriverSQLite),
		DatabaseURL:       getEnv("DATABASE_URL", ""),
		DatabasePath:      getEnv("DATABASE_PATH", "./data/todos.db"),
		AllowedOrigins:    getEnv("ALLOWED_ORIGINS", ""),
		EnableHSTS:        getEnvBool("ENABLE_HSTS", false),
		RateLimit:         getEnv("RATE_LIMIT", ""),
		RedisURL:          getEnv("REDIS_URL", ""),
		RetentionSchedule: getEnv("RETENTION_SCHEDULE", ""),
		ServerDebugMode:   getEnvBool("SERVER_DEBUG_MODE", false),
		OTELEnabled:       getEnvBool("OTEL_ENABLED", false),
		OTELEndpoint:      getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.APIToken == "" {
		return nil, fmt.Errorf("JAKETODO_API_TOKEN is required")
	}

	switch cfg.DatabaseDriver {
	case DriverSQLite:
		// DatabasePath has a default, nothing to check
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required when DATABASE_DRIVER=postgres")
		}
	default:
		return nil, fmt.Errorf("unsupported DATABASE_DRIVER %q (must be %q or %q)", cfg.DatabaseDriver, DriverSQLite, DriverPostgres)
	}

	return cfg, nil
}

// DatabaseDSN returns the connection string for the configured driver.
func (c *Config) DatabaseDSN() string {
	if c.DatabaseDriver == DriverPostgres {
		return c.DatabaseURL
	}
	return c.DatabasePath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}
