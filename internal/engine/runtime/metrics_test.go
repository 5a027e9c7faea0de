package runtime

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsCollector(t *testing.T) {
	m := NewMetricsCollector()

	m.RecordOperation("acme.focus", "weigh", 10*time.Millisecond, nil)
	m.RecordOperation("acme.focus", "weigh", 30*time.Millisecond, errors.New("timeout"))
	m.RecordOperation("acme.focus", "strategies", 5*time.Millisecond, nil)

	got := m.Get("acme.focus")
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.TotalCalls)
	assert.Equal(t, int64(2), got.SuccessfulCalls)
	assert.Equal(t, int64(1), got.FailedCalls)
	assert.Equal(t, "timeout", got.LastError)
	assert.Equal(t, 15*time.Millisecond, got.AverageDuration)
	assert.Equal(t, 30*time.Millisecond, got.MaxDuration)
	assert.Equal(t, int64(2), got.Operations["weigh"].TotalCalls)
	assert.Equal(t, int64(1), got.Operations["weigh"].FailedCalls)

	got.Operations["weigh"] = OperationMetrics{}
	assert.Equal(t, int64(2), m.Get("acme.focus").Operations["weigh"].TotalCalls)

	m.RecordCircuitOpen("acme.focus", "weigh")
	m.RecordCircuitBreakerChange("acme.focus", "open")
	all := m.GetAll()
	assert.Equal(t, int64(1), all["acme.focus"].CircuitOpenCount)
	assert.Equal(t, int64(1), all["acme.focus"].Operations["weigh"].Rejected)
	assert.Equal(t, "open", all["acme.focus"].CircuitBreakerState)

	assert.Nil(t, m.Get("other"))
	m.Reset()
	assert.Empty(t, m.GetAll())
}
