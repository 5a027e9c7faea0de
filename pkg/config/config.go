// Package config loads runtime settings from the environment and an
// optional .env file.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database. An empty DatabaseURL selects the local SQLite store.
	DatabaseURL string
	SQLitePath  string
	DBMaxConns  int

	// Redis backs the API rate limiter when set.
	RedisURL string

	// RabbitMQ receives analysis events when set.
	RabbitMQURL string

	// Servers
	HTTPAddr       string
	GRPCHealthAddr string
	MCPAddr        string
	MCPAuthToken   string
	// CORSOrigins empty allows any origin.
	CORSOrigins []string

	// Scoring defaults
	Strategy       string
	SkipWeekends   bool
	HolidaysFile   string
	StrategiesFile string

	// CalDAV holiday calendar
	CalDAVURL          string
	CalDAVUsername     string
	CalDAVPassword     string
	CalDAVToken        string
	CalDAVCalendarPath string
	CalDAVTimeout      time.Duration

	// Strategy engine plugins
	EngineSearchPath string
	EngineTimeout    time.Duration

	// Requests per minute per client
	RateLimitAnalyze int
	RateLimitExport  int
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:   getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", ""),
		DBMaxConns:  getIntEnv("DATABASE_MAX_CONNS", 10),

		RedisURL:    getEnv("REDIS_URL", ""),
		RabbitMQURL: getEnv("RABBITMQ_URL", ""),

		HTTPAddr:       getEnv("HTTP_ADDR", "127.0.0.1:8080"),
		GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", "127.0.0.1:8081"),
		MCPAddr:        getEnv("MCP_ADDR", "127.0.0.1:8082"),
		MCPAuthToken:   getEnv("MCP_AUTH_TOKEN", ""),
		CORSOrigins:    getListEnv("CORS_ALLOWED_ORIGINS"),

		Strategy:       strings.ToLower(getEnv("TASKRANK_STRATEGY", "smart_balance")),
		SkipWeekends:   getBoolEnv("TASKRANK_SKIP_WEEKENDS", true),
		HolidaysFile:   getEnv("TASKRANK_HOLIDAYS_FILE", ""),
		StrategiesFile: getEnv("TASKRANK_STRATEGIES_FILE", ""),

		CalDAVURL:          getEnv("CALDAV_URL", ""),
		CalDAVUsername:     getEnv("CALDAV_USERNAME", ""),
		CalDAVPassword:     getEnv("CALDAV_PASSWORD", ""),
		CalDAVToken:        getEnv("CALDAV_TOKEN", ""),
		CalDAVCalendarPath: getEnv("CALDAV_CALENDAR_PATH", ""),
		CalDAVTimeout:      getDurationEnv("CALDAV_TIMEOUT", 10*time.Second),

		EngineSearchPath: getEnv("TASKRANK_ENGINE_PATH", ""),
		EngineTimeout:    getDurationEnv("TASKRANK_ENGINE_TIMEOUT", 5*time.Second),

		RateLimitAnalyze: getIntEnv("RATE_LIMIT_ANALYZE", 30),
		RateLimitExport:  getIntEnv("RATE_LIMIT_EXPORT", 10),
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

// LocalMode reports whether tasks are kept in the local SQLite store.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == "" || strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "file:")
}

// CalDAVEnabled reports whether a CalDAV holiday calendar is configured.
func (c *Config) CalDAVEnabled() bool {
	return c.CalDAVURL != ""
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

func getListEnv(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
