// Package sdk defines the contract for strategy engines. A strategy engine
// contributes named weighting strategies to taskrank, either in-process or
// as a plugin binary served over go-plugin.
package sdk

import (
	"context"
)

// Engine is the interface every strategy engine implements.
type Engine interface {
	// Metadata returns engine identification.
	Metadata() EngineMetadata

	// Initialize is called once after the engine is loaded.
	Initialize(ctx context.Context, config EngineConfig) error

	// Strategies lists the strategies the engine provides.
	Strategies(ctx context.Context) ([]StrategyDefinition, error)

	// Weigh returns the factor weights for one of the engine's strategies
	// given a summary of the batch about to be scored.
	Weigh(ctx context.Context, req WeighRequest) (Weights, error)

	// HealthCheck reports whether the engine can serve requests.
	HealthCheck(ctx context.Context) HealthStatus

	// Shutdown releases engine resources.
	Shutdown(ctx context.Context) error
}

// EngineFactory creates engine instances on first use.
type EngineFactory func() (Engine, error)

// Weights are the four factor weights an engine hands back. They need not
// sum to one; the caller normalizes them.
type Weights struct {
	Urgency    float64 `json:"urgency"`
	Importance float64 `json:"importance"`
	Effort     float64 `json:"effort"`
	Dependency float64 `json:"dependency"`
}

// Sum returns the total of all four weights.
func (w Weights) Sum() float64 {
	return w.Urgency + w.Importance + w.Effort + w.Dependency
}

// StrategyDefinition describes one strategy offered by an engine.
type StrategyDefinition struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Description string  `json:"description"`
	BestFor     string  `json:"best_for"`
	Weights     Weights `json:"weights"`
}

// WeighRequest summarises a batch so an engine can adapt its weights.
type WeighRequest struct {
	Strategy      string  `json:"strategy"`
	TaskCount     int     `json:"task_count"`
	OverdueCount  int     `json:"overdue_count"`
	BlockingCount int     `json:"blocking_count"`
	TotalHours    float64 `json:"total_hours"`
	ReferenceDate string  `json:"reference_date"`
}
