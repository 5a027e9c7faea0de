package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envVars = []string{
	"APP_ENV", "LOG_LEVEL",
	"DATABASE_URL", "SQLITE_PATH", "DATABASE_MAX_CONNS",
	"REDIS_URL", "RABBITMQ_URL",
	"HTTP_ADDR", "GRPC_HEALTH_ADDR", "MCP_ADDR", "MCP_AUTH_TOKEN", "CORS_ALLOWED_ORIGINS",
	"TASKRANK_STRATEGY", "TASKRANK_SKIP_WEEKENDS", "TASKRANK_HOLIDAYS_FILE", "TASKRANK_STRATEGIES_FILE",
	"CALDAV_URL", "CALDAV_USERNAME", "CALDAV_PASSWORD", "CALDAV_TOKEN", "CALDAV_CALENDAR_PATH", "CALDAV_TIMEOUT",
	"TASKRANK_ENGINE_PATH", "TASKRANK_ENGINE_TIMEOUT",
	"RATE_LIMIT_ANALYZE", "RATE_LIMIT_EXPORT",
}

// clearEnv blanks every variable Load reads for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range envVars {
		t.Setenv(v, "")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	assert.Empty(t, cfg.DatabaseURL)
	assert.True(t, cfg.LocalMode())
	assert.Equal(t, 10, cfg.DBMaxConns)

	assert.Equal(t, "127.0.0.1:8080", cfg.HTTPAddr)
	assert.Equal(t, "127.0.0.1:8081", cfg.GRPCHealthAddr)
	assert.Equal(t, "127.0.0.1:8082", cfg.MCPAddr)
	assert.Empty(t, cfg.CORSOrigins)

	assert.Equal(t, "smart_balance", cfg.Strategy)
	assert.True(t, cfg.SkipWeekends)
	assert.False(t, cfg.CalDAVEnabled())
	assert.Equal(t, 10*time.Second, cfg.CalDAVTimeout)
	assert.Equal(t, 5*time.Second, cfg.EngineTimeout)

	assert.Equal(t, 30, cfg.RateLimitAnalyze)
	assert.Equal(t, 10, cfg.RateLimitExport)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://taskrank@db:5432/taskrank")
	t.Setenv("TASKRANK_STRATEGY", "Deadline_Driven")
	t.Setenv("TASKRANK_SKIP_WEEKENDS", "false")
	t.Setenv("CALDAV_URL", "https://dav.example.com")
	t.Setenv("CALDAV_TIMEOUT", "3s")
	t.Setenv("RATE_LIMIT_EXPORT", "25")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://app.example.com, ,https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.LocalMode())
	assert.Equal(t, "deadline_driven", cfg.Strategy)
	assert.False(t, cfg.SkipWeekends)
	assert.True(t, cfg.CalDAVEnabled())
	assert.Equal(t, 3*time.Second, cfg.CalDAVTimeout)
	assert.Equal(t, 25, cfg.RateLimitExport)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnv(t)
	t.Setenv("RATE_LIMIT_ANALYZE", "lots")
	t.Setenv("TASKRANK_SKIP_WEEKENDS", "sometimes")
	t.Setenv("CALDAV_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.RateLimitAnalyze)
	assert.True(t, cfg.SkipWeekends)
	assert.Equal(t, 10*time.Second, cfg.CalDAVTimeout)
}

func TestLocalMode(t *testing.T) {
	tests := []struct {
		url   string
		local bool
	}{
		{"", true},
		{"sqlite:///tmp/taskrank.db", true},
		{"file:taskrank.db", true},
		{"postgres://localhost/taskrank", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.local, (&Config{DatabaseURL: tt.url}).LocalMode(), tt.url)
	}
}
