package queries

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// ListStrategiesHandler lists presets, profile strategies and engine
// strategies.
type ListStrategiesHandler struct {
	strategies *StrategyResolver
}

// NewListStrategiesHandler creates a new ListStrategiesHandler.
func NewListStrategiesHandler(strategies *StrategyResolver) *ListStrategiesHandler {
	return &ListStrategiesHandler{strategies: strategies}
}

// Handle returns the catalogue.
func (h *ListStrategiesHandler) Handle(ctx context.Context) ([]scoring.StrategyInfo, error) {
	return h.strategies.Catalogue(ctx), nil
}
