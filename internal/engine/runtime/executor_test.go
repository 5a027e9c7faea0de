package runtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/engine/registry"
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

type mockEngine struct {
	id      string
	weights sdk.Weights
	err     error
}

func (m *mockEngine) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{ID: m.id, Name: m.id, Version: "1.0.0", MinAPIVersion: "1.0.0"}
}

func (m *mockEngine) Initialize(context.Context, sdk.EngineConfig) error { return nil }

func (m *mockEngine) Strategies(context.Context) ([]sdk.StrategyDefinition, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []sdk.StrategyDefinition{{Name: "mock", DisplayName: "Mock", Weights: m.weights}}, nil
}

func (m *mockEngine) Weigh(context.Context, sdk.WeighRequest) (sdk.Weights, error) {
	return m.weights, m.err
}

func (m *mockEngine) HealthCheck(context.Context) sdk.HealthStatus {
	return sdk.NewHealthStatus(m.err == nil, "mock engine")
}

func (m *mockEngine) Shutdown(context.Context) error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newExecutor(t *testing.T, config ExecutorConfig, engines ...sdk.Engine) *Executor {
	t.Helper()
	reg := registry.NewRegistry(testLogger())
	for _, e := range engines {
		require.NoError(t, reg.RegisterBuiltin(e))
	}
	return NewExecutor(reg, nil, testLogger(), config)
}

func TestDefaultExecutorConfig(t *testing.T) {
	config := DefaultExecutorConfig()
	assert.True(t, config.CircuitBreakerEnabled)
	assert.Equal(t, uint32(3), config.MaxRequests)
	assert.Equal(t, uint32(5), config.FailureThreshold)
	assert.Equal(t, 30*time.Second, config.Timeout)
	assert.Equal(t, 10*time.Second, config.CallTimeout)
}

func TestExecutor_StrategiesAndWeigh(t *testing.T) {
	engine := &mockEngine{id: "acme.mock", weights: sdk.Weights{Urgency: 2, Importance: 1, Effort: 1}}
	exec := newExecutor(t, DefaultExecutorConfig(), engine)
	ctx := context.Background()

	defs, err := exec.Strategies(ctx, "acme.mock")
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "mock", defs[0].Name)

	w, err := exec.Weigh(ctx, "acme.mock", sdk.WeighRequest{Strategy: "mock"})
	require.NoError(t, err)
	assert.Equal(t, 2.0, w.Urgency)

	m := exec.Metrics()["acme.mock"]
	assert.Equal(t, int64(2), m.TotalCalls)
	assert.Equal(t, int64(1), m.Operations["weigh"].TotalCalls)
	assert.Equal(t, "closed", exec.BreakerState("acme.mock"))
}

func TestExecutor_WeighRejectsInvalidWeights(t *testing.T) {
	tests := []sdk.Weights{
		{},
		{Urgency: -1, Importance: 2},
	}
	for _, w := range tests {
		exec := newExecutor(t, DefaultExecutorConfig(), &mockEngine{id: "bad", weights: w})
		_, err := exec.Weigh(context.Background(), "bad", sdk.WeighRequest{})
		assert.ErrorIs(t, err, sdk.ErrInvalidWeights)
	}
}

func TestExecutor_UnknownEngine(t *testing.T) {
	exec := newExecutor(t, DefaultExecutorConfig())

	_, err := exec.Weigh(context.Background(), "missing", sdk.WeighRequest{})
	assert.True(t, sdk.IsEngineNotFound(err))

	health, err := exec.HealthCheck(context.Background(), "missing")
	assert.Error(t, err)
	assert.False(t, health.Healthy)
}

func TestExecutor_CircuitOpensAfterFailures(t *testing.T) {
	config := DefaultExecutorConfig()
	config.FailureThreshold = 2
	config.Timeout = time.Minute
	boom := errors.New("plugin crashed")
	exec := newExecutor(t, config, &mockEngine{id: "flaky", err: boom})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := exec.Strategies(ctx, "flaky")
		assert.ErrorIs(t, err, boom)
	}

	_, err := exec.Strategies(ctx, "flaky")
	assert.True(t, sdk.IsCircuitOpen(err))
	assert.Equal(t, "open", exec.BreakerState("flaky"))

	m := exec.Metrics()["flaky"]
	assert.Equal(t, int64(1), m.CircuitOpenCount)
	assert.Equal(t, "open", m.CircuitBreakerState)

	exec.ResetBreaker("flaky")
	assert.Equal(t, "none", exec.BreakerState("flaky"))
}

func TestExecutor_GuardAppliesTimeout(t *testing.T) {
	config := DefaultExecutorConfig()
	config.CallTimeout = 20 * time.Millisecond
	exec := newExecutor(t, config)

	err := exec.Guard(context.Background(), "holidays.caldav", "fetch", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, int64(1), exec.Metrics()["holidays.caldav"].FailedCalls)
}

func TestExecutor_BreakerDisabled(t *testing.T) {
	config := DefaultExecutorConfig()
	config.CircuitBreakerEnabled = false
	exec := newExecutor(t, config)

	calls := 0
	for i := 0; i < 10; i++ {
		_ = exec.Guard(context.Background(), "src", "fetch", func(context.Context) error {
			calls++
			return errors.New("down")
		})
	}
	assert.Equal(t, 10, calls)
	assert.Equal(t, "none", exec.BreakerState("src"))
}
