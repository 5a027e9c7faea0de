package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("text output", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatText, Output: &buf})

		logger.Info("test message", "key", "value")
		assert.Contains(t, buf.String(), "test message")
		assert.Contains(t, buf.String(), "key=value")
		assert.Contains(t, buf.String(), "service=taskrank")
	})

	t.Run("json output with context ids", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelInfo, Format: LogFormatJSON, Output: &buf, Version: "1.2.0"})

		corr := uuid.New()
		ctx := WithCorrelationID(WithRequestID(context.Background(), "req-1"), corr)
		logger.InfoContext(ctx, "analysed", "task_count", 3)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "analysed", entry["msg"])
		assert.Equal(t, "1.2.0", entry["version"])
		assert.Equal(t, "req-1", entry[RequestIDKey])
		assert.Equal(t, corr.String(), entry[CorrelationIDKey])
		assert.Equal(t, 3.0, entry["task_count"])
	})

	t.Run("respects level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(LogConfig{Level: slog.LevelWarn, Output: &buf})

		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})
}

func TestLogConfigFor(t *testing.T) {
	dev := LogConfigFor("development", "debug", "dev")
	assert.Equal(t, LogFormatText, dev.Format)
	assert.Equal(t, slog.LevelDebug, dev.Level)
	assert.False(t, dev.AddSource)

	prod := LogConfigFor("production", "", "1.0.0")
	assert.Equal(t, LogFormatJSON, prod.Format)
	assert.Equal(t, slog.LevelInfo, prod.Level)
	assert.True(t, prod.AddSource)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewRequestContext(t *testing.T) {
	corr := uuid.New()
	ctx := NewRequestContext(context.Background(), "", corr.String())

	assert.NotEmpty(t, RequestIDFromContext(ctx))
	got, ok := CorrelationIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, corr, got)

	ctx = NewRequestContext(context.Background(), "abc", "not-a-uuid")
	assert.Equal(t, "abc", RequestIDFromContext(ctx))
	got, ok = CorrelationIDFromContext(ctx)
	require.True(t, ok)
	assert.NotEqual(t, uuid.Nil, got)

	_, ok = CorrelationIDFromContext(context.Background())
	assert.False(t, ok)
}

func TestTimer(t *testing.T) {
	m := NewInMemoryMetrics()
	ctx := context.Background()

	StartTimer("analyze").WithMetrics(m).WithTags(T("adapter", "http")).Stop(ctx)
	_, err := TimeOperationResult(ctx, nil, m, "analyze", func() (int, error) {
		return 0, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	tags := []Tag{T("operation", "analyze")}
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, append(tags, T("adapter", "http"))...))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationTotal, tags...))
	assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, tags...))
	assert.Equal(t, int64(1), m.Snapshot().Timings[formatKey(MetricOperationDuration, tags)].Count)
}
