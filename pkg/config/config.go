package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv    string
	LogLevel  string
	LogFormat string
	UserID    string
	Version   string

	// Database
	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string

	// Redis. Empty keeps all caches in process.
	RedisURL string

	// Caching
	SlotCacheTTL        time.Duration
	RankCacheTTL        time.Duration
	PreferencesCacheTTL time.Duration
	CacheSize           int

	// Scheduling
	LookaheadDays int
	Timezone      string

	// Source circuit breakers
	BreakerEnabled          bool
	BreakerFailureThreshold int
	BreakerTimeout          time.Duration

	// MCP
	MCPAddr      string
	MCPAuthToken string

	// Metrics. Empty disables the Prometheus endpoint.
	MetricsAddr string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", ""),
		UserID:    getEnv("SLOTWISE_USER_ID", "00000000-0000-0000-0000-000000000001"),
		Version:   getEnv("SLOTWISE_VERSION", "dev"),

		DatabaseURL:    getEnv("DATABASE_URL", ""),
		DatabaseDriver: getEnv("DATABASE_DRIVER", ""),
		SQLitePath:     getEnv("SQLITE_PATH", ""),

		RedisURL: getEnv("REDIS_URL", ""),

		SlotCacheTTL:        getDurationEnv("SLOT_CACHE_TTL", 5*time.Minute),
		RankCacheTTL:        getDurationEnv("RANK_CACHE_TTL", 10*time.Minute),
		PreferencesCacheTTL: getDurationEnv("PREFERENCES_CACHE_TTL", 30*time.Minute),
		CacheSize:           getIntEnv("CACHE_SIZE", 1024),

		LookaheadDays: getIntEnv("LOOKAHEAD_DAYS", 7),
		Timezone:      getEnv("TIMEZONE", "Local"),

		BreakerEnabled:          getBoolEnv("BREAKER_ENABLED", true),
		BreakerFailureThreshold: getIntEnv("BREAKER_FAILURE_THRESHOLD", 5),
		BreakerTimeout:          getDurationEnv("BREAKER_TIMEOUT", 30*time.Second),

		MCPAddr:      getEnv("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: getEnv("MCP_AUTH_TOKEN", ""),

		MetricsAddr: getEnv("METRICS_ADDR", ""),
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	if cfg.LookaheadDays <= 0 {
		return nil, fmt.Errorf("LOOKAHEAD_DAYS must be positive, got %d", cfg.LookaheadDays)
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// UsesRedis reports whether caches are shared through Redis.
func (c *Config) UsesRedis() bool {
	return c.RedisURL != ""
}

// Location resolves Timezone. Dates and work hours are interpreted in it.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
