package enginerpc

import (
	"context"
	"fmt"
	"testing"

	"github.com/hashicorp/go-plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

type stubEngine struct {
	config   sdk.EngineConfig
	shutdown bool
}

func (s *stubEngine) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{ID: "test.stub", Name: "Stub", Version: "0.1.0", MinAPIVersion: "1.0.0"}
}

func (s *stubEngine) Initialize(_ context.Context, config sdk.EngineConfig) error {
	s.config = config
	return nil
}

func (s *stubEngine) Strategies(context.Context) ([]sdk.StrategyDefinition, error) {
	return []sdk.StrategyDefinition{{
		Name:        "stub_focus",
		DisplayName: "Stub Focus",
		Weights:     sdk.Weights{Urgency: 1, Importance: 1, Effort: 2},
	}}, nil
}

func (s *stubEngine) Weigh(_ context.Context, req sdk.WeighRequest) (sdk.Weights, error) {
	if req.Strategy != "stub_focus" {
		return sdk.Weights{}, fmt.Errorf("weigh %q: %w", req.Strategy, sdk.ErrStrategyNotFound)
	}
	return sdk.Weights{Urgency: float64(req.OverdueCount), Importance: 1, Effort: 1}, nil
}

func (s *stubEngine) HealthCheck(context.Context) sdk.HealthStatus {
	return sdk.NewHealthStatus(true, "ok")
}

func (s *stubEngine) Shutdown(context.Context) error {
	s.shutdown = true
	return nil
}

func dispense(t *testing.T, impl sdk.Engine) sdk.Engine {
	t.Helper()
	client, _ := plugin.TestPluginRPCConn(t, PluginMap(impl), nil)
	t.Cleanup(func() { _ = client.Close() })

	raw, err := client.Dispense(PluginName)
	require.NoError(t, err)
	engine, ok := raw.(sdk.Engine)
	require.True(t, ok)
	return engine
}

func TestRPCRoundTrip(t *testing.T) {
	impl := &stubEngine{}
	engine := dispense(t, impl)
	ctx := context.Background()

	assert.Equal(t, "test.stub", engine.Metadata().ID)

	require.NoError(t, engine.Initialize(ctx, sdk.NewEngineConfig("test.stub", map[string]any{"sprint_hours": 3})))
	assert.Equal(t, 3.0, impl.config.GetFloat("sprint_hours"))

	defs, err := engine.Strategies(ctx)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "stub_focus", defs[0].Name)
	assert.Equal(t, 2.0, defs[0].Weights.Effort)

	w, err := engine.Weigh(ctx, sdk.WeighRequest{Strategy: "stub_focus", OverdueCount: 2})
	require.NoError(t, err)
	assert.Equal(t, 2.0, w.Urgency)

	assert.True(t, engine.HealthCheck(ctx).Healthy)

	require.NoError(t, engine.Shutdown(ctx))
	assert.True(t, impl.shutdown)
}

func TestRPCRestoresSentinels(t *testing.T) {
	engine := dispense(t, &stubEngine{})

	_, err := engine.Weigh(context.Background(), sdk.WeighRequest{Strategy: "missing"})
	require.Error(t, err)
	assert.ErrorIs(t, err, sdk.ErrStrategyNotFound)
}

func TestRPCHonoursCancelledContext(t *testing.T) {
	engine := dispense(t, &stubEngine{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The reply may race the cancellation; either outcome is acceptable but
	// a cancelled context must never block.
	_, err := engine.Strategies(ctx)
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}
