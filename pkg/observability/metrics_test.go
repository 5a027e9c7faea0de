package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters sum per series", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter(MetricHTTPRequests, 1, T("route", "/analyze"), T("status", "200"))
		m.Counter(MetricHTTPRequests, 1, T("status", "200"), T("route", "/analyze"))
		m.Counter(MetricHTTPRequests, 1, T("route", "/analyze"), T("status", "429"))

		assert.Equal(t, int64(2), m.GetCounter(MetricHTTPRequests, T("route", "/analyze"), T("status", "200")))
		assert.Len(t, m.Snapshot().Counters, 2)
	})

	t.Run("timings keep count, total and max", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Timing("query", 100*time.Millisecond)
		m.Timing("query", 300*time.Millisecond)

		s := m.Snapshot().Timings["query"]
		assert.Equal(t, int64(2), s.Count)
		assert.InDelta(t, 400.0, s.TotalMs, 0.001)
		assert.InDelta(t, 300.0, s.MaxMs, 0.001)
	})

	t.Run("snapshot is a copy", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Counter("x", 1)
		snap := m.Snapshot()
		m.Counter("x", 1)
		assert.Equal(t, int64(1), snap.Counters["x"])
	})

	NoopMetrics{}.Counter("ignored", 1)
}

func TestHealthRegistry(t *testing.T) {
	ctx := context.Background()
	ok := PingChecker(func(context.Context) error { return nil })
	down := PingChecker(func(context.Context) error { return errors.New("connection refused") })

	t.Run("all healthy", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", true, ok)
		r.Register("redis", false, ok)

		h := r.Check(ctx)
		assert.Equal(t, HealthStatusHealthy, h.Status)
		assert.Equal(t, []string{"database", "redis"}, r.Names())
	})

	t.Run("optional component degrades", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", true, ok)
		r.Register("redis", false, down)

		h := r.Check(ctx)
		assert.Equal(t, HealthStatusDegraded, h.Status)
		assert.Equal(t, "connection refused", h.Components["redis"].Message)
	})

	t.Run("critical component fails the service", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", true, down)
		r.Register("redis", false, down)

		assert.Equal(t, HealthStatusUnhealthy, r.Check(ctx).Status)
	})
}
