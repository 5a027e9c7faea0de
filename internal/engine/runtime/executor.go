// Package runtime runs strategy engines and other fallible collaborators
// behind circuit breakers and records call metrics.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/felixgeelhaar/taskrank/internal/engine/registry"
	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
)

// Executor guards engine calls with per-engine circuit breakers.
type Executor struct {
	registry *registry.Registry
	metrics  *MetricsCollector
	logger   *slog.Logger
	config   ExecutorConfig

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

// ExecutorConfig configures breaker behaviour.
type ExecutorConfig struct {
	CircuitBreakerEnabled bool

	// MaxRequests is the number of trial calls allowed while half-open.
	MaxRequests uint32

	// Interval is the cyclic period of the closed state.
	Interval time.Duration

	// Timeout is how long the breaker stays open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that trips
	// the breaker.
	FailureThreshold uint32

	// CallTimeout bounds each guarded call.
	CallTimeout time.Duration
}

// DefaultExecutorConfig returns the standard breaker settings.
func DefaultExecutorConfig() ExecutorConfig {
	return ExecutorConfig{
		CircuitBreakerEnabled: true,
		MaxRequests:           3,
		Interval:              10 * time.Second,
		Timeout:               30 * time.Second,
		FailureThreshold:      5,
		CallTimeout:           10 * time.Second,
	}
}

// NewExecutor creates an executor over reg.
func NewExecutor(reg *registry.Registry, metrics *MetricsCollector, logger *slog.Logger, config ExecutorConfig) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = NewMetricsCollector()
	}
	return &Executor{
		registry: reg,
		metrics:  metrics,
		logger:   logger,
		config:   config,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

func (e *Executor) breaker(name string) *gobreaker.CircuitBreaker[any] {
	if !e.config.CircuitBreakerEnabled {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[name]; ok {
		return cb
	}

	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: e.config.MaxRequests,
		Interval:    e.config.Interval,
		Timeout:     e.config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= e.config.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.logger.Info("circuit breaker state changed",
				"name", name,
				"from", from.String(),
				"to", to.String(),
			)
			e.metrics.RecordCircuitBreakerChange(name, to.String())
		},
	})
	e.breakers[name] = cb
	return cb
}

// Guard runs fn under the breaker for name with the configured call timeout.
// It is used for engine calls and for remote holiday sources alike.
func (e *Executor) Guard(ctx context.Context, name, operation string, fn func(ctx context.Context) error) error {
	_, err := e.execute(ctx, name, operation, func(ctx context.Context) (any, error) {
		return nil, fn(ctx)
	})
	return err
}

func (e *Executor) execute(ctx context.Context, name, operation string, fn func(ctx context.Context) (any, error)) (any, error) {
	if e.config.CallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.CallTimeout)
		defer cancel()
	}

	start := time.Now()
	var (
		result any
		err    error
	)

	if cb := e.breaker(name); cb != nil {
		result, err = cb.Execute(func() (any, error) { return fn(ctx) })
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			e.metrics.RecordCircuitOpen(name, operation)
			return nil, sdk.NewEngineError(name, operation, sdk.ErrCircuitOpen)
		}
	} else {
		result, err = fn(ctx)
	}

	e.metrics.RecordOperation(name, operation, time.Since(start), err)
	return result, err
}

// Strategies lists the strategies of one engine.
func (e *Executor) Strategies(ctx context.Context, engineID string) ([]sdk.StrategyDefinition, error) {
	engine, err := e.registry.Get(ctx, engineID)
	if err != nil {
		return nil, err
	}

	result, err := e.execute(ctx, engineID, "strategies", func(ctx context.Context) (any, error) {
		return engine.Strategies(ctx)
	})
	if err != nil {
		return nil, err
	}
	defs, _ := result.([]sdk.StrategyDefinition)
	return defs, nil
}

// Weigh asks an engine for the weights of one of its strategies. Negative
// or all-zero weights are rejected with sdk.ErrInvalidWeights.
func (e *Executor) Weigh(ctx context.Context, engineID string, req sdk.WeighRequest) (sdk.Weights, error) {
	engine, err := e.registry.Get(ctx, engineID)
	if err != nil {
		return sdk.Weights{}, err
	}

	result, err := e.execute(ctx, engineID, "weigh", func(ctx context.Context) (any, error) {
		return engine.Weigh(ctx, req)
	})
	if err != nil {
		return sdk.Weights{}, err
	}

	w, _ := result.(sdk.Weights)
	if w.Urgency < 0 || w.Importance < 0 || w.Effort < 0 || w.Dependency < 0 || w.Sum() <= 0 {
		return sdk.Weights{}, sdk.NewEngineError(engineID, "weigh", fmt.Errorf("%w: %+v", sdk.ErrInvalidWeights, w))
	}
	return w, nil
}

// HealthCheck checks one engine.
func (e *Executor) HealthCheck(ctx context.Context, engineID string) (sdk.HealthStatus, error) {
	engine, err := e.registry.Get(ctx, engineID)
	if err != nil {
		return sdk.NewHealthStatus(false, err.Error()), err
	}
	return engine.HealthCheck(ctx), nil
}

// Metrics returns a snapshot of call metrics keyed by breaker name.
func (e *Executor) Metrics() map[string]EngineMetrics {
	return e.metrics.GetAll()
}

// BreakerState returns the breaker state for name, or "none".
func (e *Executor) BreakerState(name string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if cb, ok := e.breakers[name]; ok {
		return cb.State().String()
	}
	return "none"
}

// ResetBreaker drops the breaker for name so the next call starts closed.
func (e *Executor) ResetBreaker(name string) {
	e.mu.Lock()
	delete(e.breakers, name)
	e.mu.Unlock()
	e.logger.Info("circuit breaker reset", "name", name)
}
