// Package builtin holds strategy engines compiled into taskrank.
package builtin

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// AdaptiveEngineID is the registry ID of the adaptive engine.
const AdaptiveEngineID = "taskrank.adaptive"

// AdaptiveStrategy is the name of the strategy the engine provides.
const AdaptiveStrategy = "adaptive"

// AdaptiveEngine starts from the smart balance weights and shifts them
// toward whatever dominates the batch: overdue work raises urgency, tasks
// that block others raise the dependency weight, and a backlog larger than
// a working week raises the effort weight so quick wins surface.
type AdaptiveEngine struct {
	overdueBoost  float64
	blockingBoost float64
	backlogHours  float64
	backlogBoost  float64
}

// NewAdaptiveEngine creates the engine with its default tuning.
func NewAdaptiveEngine() *AdaptiveEngine {
	return &AdaptiveEngine{
		overdueBoost:  0.30,
		blockingBoost: 0.20,
		backlogHours:  40,
		backlogBoost:  0.10,
	}
}

func (e *AdaptiveEngine) Metadata() sdk.EngineMetadata {
	return sdk.EngineMetadata{
		ID:            AdaptiveEngineID,
		Name:          "Adaptive Balance",
		Version:       "1.0.0",
		Author:        "taskrank",
		Description:   "Smart balance weights adjusted to the shape of the batch",
		MinAPIVersion: "1.0.0",
	}
}

// Initialize reads optional overrides: overdue_boost, blocking_boost,
// backlog_hours and backlog_boost.
func (e *AdaptiveEngine) Initialize(_ context.Context, config sdk.EngineConfig) error {
	for key, target := range map[string]*float64{
		"overdue_boost":  &e.overdueBoost,
		"blocking_boost": &e.blockingBoost,
		"backlog_hours":  &e.backlogHours,
		"backlog_boost":  &e.backlogBoost,
	} {
		if !config.Has(key) {
			continue
		}
		v := config.GetFloat(key)
		if v < 0 {
			return fmt.Errorf("%s must not be negative, got %v", key, v)
		}
		*target = v
	}
	return nil
}

func (e *AdaptiveEngine) Strategies(context.Context) ([]sdk.StrategyDefinition, error) {
	return []sdk.StrategyDefinition{{
		Name:        AdaptiveStrategy,
		DisplayName: "Adaptive Balance",
		Description: "Balanced weights that lean toward overdue, blocking or quick work as the backlog demands",
		BestFor:     "Mixed backlogs whose shape changes day to day",
		Weights:     base(),
	}}, nil
}

func (e *AdaptiveEngine) Weigh(_ context.Context, req sdk.WeighRequest) (sdk.Weights, error) {
	if req.Strategy != AdaptiveStrategy {
		return sdk.Weights{}, fmt.Errorf("weigh %q: %w", req.Strategy, sdk.ErrStrategyNotFound)
	}

	w := base()
	if req.TaskCount == 0 {
		return w, nil
	}

	n := float64(req.TaskCount)
	w.Urgency += e.overdueBoost * float64(req.OverdueCount) / n
	w.Dependency += e.blockingBoost * float64(req.BlockingCount) / n
	if req.TotalHours > e.backlogHours {
		w.Effort += e.backlogBoost
	}
	return w, nil
}

func (e *AdaptiveEngine) HealthCheck(context.Context) sdk.HealthStatus {
	return sdk.NewHealthStatus(true, "built-in engine")
}

func (e *AdaptiveEngine) Shutdown(context.Context) error {
	return nil
}

func base() sdk.Weights {
	w := scoring.SmartBalance.Weights()
	return sdk.Weights{
		Urgency:    w.Urgency,
		Importance: w.Importance,
		Effort:     w.Effort,
		Dependency: w.Dependency,
	}
}
