package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/shared/application"
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// ScoringOptions are the request options shared by analysis and suggestion.
type ScoringOptions struct {
	Strategy string
	// Weights replace the strategy weights when set.
	Weights *scoring.Weights
	// SkipWeekends nil uses the configured default.
	SkipWeekends *bool
	// Holidays nil leaves the choice to the profile, the holiday source or
	// the defaults. An empty slice disables holidays.
	Holidays      []string
	ReferenceDate *calendar.Date
	// TimeAware attaches the time-of-day context.
	TimeAware bool
	// Source names the adapter that issued the request.
	Source string
}

// EngineBuilderConfig wires an EngineBuilder.
type EngineBuilderConfig struct {
	Strategies   *StrategyResolver
	Holidays     *HolidayResolver
	SkipWeekends bool
	Publisher    eventbus.Publisher
	Logger       *slog.Logger
	// Metrics receives handler timings. Nil discards them.
	Metrics observability.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

// EngineBuilder turns request options into a configured PriorityEngine.
type EngineBuilder struct {
	strategies   *StrategyResolver
	holidays     *HolidayResolver
	skipWeekends bool
	publisher    eventbus.Publisher
	logger       *slog.Logger
	metrics      observability.Metrics
	now          func() time.Time
}

// NewEngineBuilder creates a builder. Missing resolvers fall back to
// presets and default holidays.
func NewEngineBuilder(cfg EngineBuilderConfig) *EngineBuilder {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	strategies := cfg.Strategies
	if strategies == nil {
		strategies = NewStrategyResolver(StrategyResolverConfig{Logger: logger})
	}
	holidays := cfg.Holidays
	if holidays == nil {
		holidays = NewHolidayResolver(nil, nil, logger)
	}
	var metrics observability.Metrics = observability.NoopMetrics{}
	if cfg.Metrics != nil {
		metrics = cfg.Metrics
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &EngineBuilder{
		strategies:   strategies,
		holidays:     holidays,
		skipWeekends: cfg.SkipWeekends,
		publisher:    cfg.Publisher,
		logger:       logger,
		metrics:      metrics,
		now:          now,
	}
}

// Strategies exposes the strategy resolver.
func (b *EngineBuilder) Strategies() *StrategyResolver {
	return b.strategies
}

// Now returns the current time of the builder's clock.
func (b *EngineBuilder) Now() time.Time {
	return b.now()
}

// prepared is a validated request ready for scoring.
type prepared struct {
	engine       *services.PriorityEngine
	tasks        []task.Task
	ref          calendar.Date
	strategy     string
	skipWeekends bool
}

// prepare validates raw tasks and options and builds the engine.
func (b *EngineBuilder) prepare(ctx context.Context, raw []task.RawTask, opts ScoringOptions) (*prepared, error) {
	if err := validation.ValidateTasks(raw); err != nil {
		return nil, err
	}

	name := opts.Strategy
	if name == "" {
		name = b.strategies.Default()
	}
	if err := validation.ValidateStrategy(name, b.strategies.Names(ctx)...); err != nil {
		return nil, err
	}
	if opts.Weights != nil {
		if err := validation.ValidateWeights(*opts.Weights); err != nil {
			return nil, err
		}
	}

	tasks := task.NormalizeAll(raw)
	ref := calendar.DateOf(b.now())
	if opts.ReferenceDate != nil {
		ref = *opts.ReferenceDate
	}
	skip := b.skipWeekends
	if opts.SkipWeekends != nil {
		skip = *opts.SkipWeekends
	}

	holidays, err := b.holidays.Resolve(ctx, opts.Holidays, tasks, ref)
	if err != nil {
		return nil, err
	}

	resolved := b.strategies.Resolve(ctx, name, tasks, ref)
	weights := resolved.Weights
	if opts.Weights != nil {
		weights = opts.Weights
	}

	engine := services.NewPriorityEngine(services.PriorityEngineConfig{
		Strategy:     scoring.Strategy(resolved.Name),
		Weights:      weights,
		DisplayName:  resolved.DisplayName,
		SkipWeekends: skip,
		Holidays:     holidays,
	})

	return &prepared{
		engine:       engine,
		tasks:        tasks,
		ref:          ref,
		strategy:     resolved.Name,
		skipWeekends: skip,
	}, nil
}

// publish sends events with the request's correlation id. Failures are
// logged and never fail the request.
func (b *EngineBuilder) publish(ctx context.Context, source string, events ...domain.DomainEvent) {
	if b.publisher == nil || len(events) == 0 {
		return
	}
	if source == "" {
		source = "taskrank"
	}
	application.ApplyEventMetadata(domain.EventMetadata{
		CorrelationID: application.CorrelationID(ctx),
		Source:        source,
	}, events...)

	if err := eventbus.PublishEvents(ctx, b.publisher, events...); err != nil {
		b.logger.Warn("failed to publish event", "error", err)
	}
}
