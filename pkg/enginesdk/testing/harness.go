// Package testing helps plugin authors check their engines without
// starting a plugin process.
//
//	func TestSprint(t *testing.T) {
//		h := enginetesting.NewHarness(newSprint())
//		require.NoError(t, h.Initialize(map[string]any{"sprint_hours": 3}))
//		require.NoError(t, h.Conformance())
//	}
package testing

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// ErrNoStrategies is reported by Conformance for engines that offer nothing.
var ErrNoStrategies = errors.New("engine offers no strategies")

// Harness drives an engine in-process.
type Harness struct {
	engine sdk.Engine
	ctx    context.Context
}

// NewHarness wraps engine.
func NewHarness(engine sdk.Engine) *Harness {
	return &Harness{engine: engine, ctx: context.Background()}
}

// Initialize initializes the engine with config.
func (h *Harness) Initialize(config map[string]any) error {
	return h.engine.Initialize(h.ctx, sdk.NewEngineConfig(h.engine.Metadata().ID, config))
}

// Strategies lists the engine's strategies.
func (h *Harness) Strategies() ([]sdk.StrategyDefinition, error) {
	return h.engine.Strategies(h.ctx)
}

// Weigh asks for the weights of a strategy for a batch summary.
func (h *Harness) Weigh(req sdk.WeighRequest) (sdk.Weights, error) {
	return h.engine.Weigh(h.ctx, req)
}

// HealthCheck returns the engine health.
func (h *Harness) HealthCheck() sdk.HealthStatus {
	return h.engine.HealthCheck(h.ctx)
}

// Shutdown shuts the engine down.
func (h *Harness) Shutdown() error {
	return h.engine.Shutdown(h.ctx)
}

// Conformance checks what taskrank relies on: valid metadata, at least one
// uniquely named strategy, and usable weights from Weigh for each strategy
// on both an empty and a busy batch.
func (h *Harness) Conformance() error {
	if err := h.engine.Metadata().Validate(); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	defs, err := h.Strategies()
	if err != nil {
		return fmt.Errorf("strategies: %w", err)
	}
	if len(defs) == 0 {
		return ErrNoStrategies
	}

	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.Name == "" {
			return fmt.Errorf("strategy with empty name")
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate strategy %q", d.Name)
		}
		seen[d.Name] = true

		for _, req := range sampleRequests(d.Name) {
			w, err := h.Weigh(req)
			if err != nil {
				return fmt.Errorf("weigh %s: %w", d.Name, err)
			}
			if w.Urgency < 0 || w.Importance < 0 || w.Effort < 0 || w.Dependency < 0 || w.Sum() <= 0 {
				return fmt.Errorf("weigh %s: %w: %+v", d.Name, sdk.ErrInvalidWeights, w)
			}
		}
	}

	if !h.HealthCheck().Healthy {
		return fmt.Errorf("engine reports unhealthy")
	}
	return nil
}

func sampleRequests(strategy string) []sdk.WeighRequest {
	return []sdk.WeighRequest{
		{Strategy: strategy, ReferenceDate: "2025-06-02"},
		{Strategy: strategy, TaskCount: 12, OverdueCount: 4, BlockingCount: 3, TotalHours: 55, ReferenceDate: "2025-06-02"},
	}
}
