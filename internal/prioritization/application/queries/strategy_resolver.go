// Package queries holds the read-side use cases: analysing and suggesting
// tasks, listing strategies and listing stored tasks.
package queries

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/felixgeelhaar/taskrank/internal/engine/sdk"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// Profile supplies user-defined strategies and holidays.
type Profile interface {
	Strategy(name string) (scoring.StrategyInfo, bool)
	StrategyNames() []string
	HolidayDates() ([]calendar.Date, bool)
}

// EngineCatalog lists registered strategy engines.
type EngineCatalog interface {
	IDs() []string
}

// EngineExecutor calls strategy engines behind circuit breakers.
type EngineExecutor interface {
	Strategies(ctx context.Context, engineID string) ([]sdk.StrategyDefinition, error)
	Weigh(ctx context.Context, engineID string, req sdk.WeighRequest) (sdk.Weights, error)
}

// ResolvedStrategy is the strategy a request will be scored with.
type ResolvedStrategy struct {
	Name        string
	DisplayName string
	Source      string
	// Weights replaces the preset weights when set.
	Weights  *scoring.Weights
	EngineID string
}

type engineStrategy struct {
	engineID   string
	definition sdk.StrategyDefinition
}

// StrategyResolver maps a strategy name to weights. Presets win over
// profile strategies, which win over strategies offered by engines.
type StrategyResolver struct {
	defaultStrategy string
	profile         Profile
	catalog         EngineCatalog
	engines         EngineExecutor
	logger          *slog.Logger

	mu      sync.Mutex
	loaded  bool
	plugins map[string]engineStrategy
	order   []string
}

// StrategyResolverConfig wires the optional strategy sources.
type StrategyResolverConfig struct {
	DefaultStrategy string
	Profile         Profile
	Catalog         EngineCatalog
	Engines         EngineExecutor
	Logger          *slog.Logger
}

// NewStrategyResolver creates a resolver. Every source is optional.
func NewStrategyResolver(cfg StrategyResolverConfig) *StrategyResolver {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	def := cfg.DefaultStrategy
	if def == "" {
		def = string(scoring.DefaultStrategy)
	}
	return &StrategyResolver{
		defaultStrategy: def,
		profile:         cfg.Profile,
		catalog:         cfg.Catalog,
		engines:         cfg.Engines,
		logger:          logger,
	}
}

// Default is the strategy used when a request names none.
func (r *StrategyResolver) Default() string {
	return r.defaultStrategy
}

// Names lists the accepted strategy names beyond the presets.
func (r *StrategyResolver) Names(ctx context.Context) []string {
	var names []string
	if r.profile != nil {
		names = append(names, r.profile.StrategyNames()...)
	}
	r.loadPlugins(ctx)
	r.mu.Lock()
	names = append(names, r.order...)
	r.mu.Unlock()
	return names
}

// Catalogue describes every available strategy.
func (r *StrategyResolver) Catalogue(ctx context.Context) []scoring.StrategyInfo {
	out := scoring.Catalogue()
	if r.profile != nil {
		for _, name := range r.profile.StrategyNames() {
			if info, ok := r.profile.Strategy(name); ok {
				out = append(out, info)
			}
		}
	}

	r.loadPlugins(ctx)
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range r.order {
		d := r.plugins[name].definition
		out = append(out, scoring.StrategyInfo{
			Name:        d.Name,
			DisplayName: d.DisplayName,
			Description: d.Description,
			BestFor:     d.BestFor,
			Weights:     toScoringWeights(d.Weights).Normalize().Rounded(),
			Source:      scoring.SourcePlugin,
		})
	}
	return out
}

// Resolve picks weights for name. Engine strategies are weighed against
// the batch; if the engine fails, its advertised weights are used. Names
// that match nothing keep their name and score with default weights.
func (r *StrategyResolver) Resolve(ctx context.Context, name string, tasks []task.Task, ref calendar.Date) ResolvedStrategy {
	if name == "" {
		name = r.defaultStrategy
	}

	if s := scoring.Strategy(name); s.IsPreset() {
		return ResolvedStrategy{Name: name, DisplayName: s.DisplayName(), Source: scoring.SourceBuiltin}
	}

	if r.profile != nil {
		if info, ok := r.profile.Strategy(name); ok {
			w := info.Weights
			return ResolvedStrategy{Name: name, DisplayName: info.DisplayName, Source: scoring.SourceProfile, Weights: &w}
		}
	}

	r.loadPlugins(ctx)
	r.mu.Lock()
	es, ok := r.plugins[name]
	r.mu.Unlock()
	if ok {
		resolved := ResolvedStrategy{
			Name:        name,
			DisplayName: es.definition.DisplayName,
			Source:      scoring.SourcePlugin,
			EngineID:    es.engineID,
		}
		weights, err := r.engines.Weigh(ctx, es.engineID, WeighRequestFor(name, tasks, ref))
		if err != nil {
			r.logger.Warn("strategy engine failed, using advertised weights",
				"engine_id", es.engineID, "strategy", name, "error", err)
			weights = es.definition.Weights
		}
		w := toScoringWeights(weights)
		resolved.Weights = &w
		return resolved
	}

	return ResolvedStrategy{Name: name, DisplayName: scoring.Strategy(name).DisplayName()}
}

func (r *StrategyResolver) loadPlugins(ctx context.Context) {
	if r.catalog == nil || r.engines == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return
	}

	plugins := make(map[string]engineStrategy)
	for _, id := range r.catalog.IDs() {
		defs, err := r.engines.Strategies(ctx, id)
		if err != nil {
			r.logger.Warn("failed to list engine strategies", "engine_id", id, "error", err)
			continue
		}
		for _, d := range defs {
			if scoring.Strategy(d.Name).IsPreset() {
				r.logger.Warn("engine strategy shadows a preset, ignoring", "engine_id", id, "strategy", d.Name)
				continue
			}
			if r.profile != nil {
				if _, taken := r.profile.Strategy(d.Name); taken {
					continue
				}
			}
			if _, dup := plugins[d.Name]; dup {
				continue
			}
			plugins[d.Name] = engineStrategy{engineID: id, definition: d}
		}
	}

	order := make([]string, 0, len(plugins))
	for name := range plugins {
		order = append(order, name)
	}
	sort.Strings(order)

	r.plugins = plugins
	r.order = order
	r.loaded = true
}

// WeighRequestFor summarises a batch for a strategy engine.
func WeighRequestFor(strategy string, tasks []task.Task, ref calendar.Date) sdk.WeighRequest {
	req := sdk.WeighRequest{
		Strategy:      strategy,
		TaskCount:     len(tasks),
		ReferenceDate: ref.String(),
	}

	blockers := make(map[int64]struct{})
	for _, t := range tasks {
		req.TotalHours += t.EstimatedHours
		if t.DueDate != nil && t.DueDate.Before(ref) {
			req.OverdueCount++
		}
		for _, dep := range t.Dependencies {
			if t.ID == nil || *t.ID != dep {
				blockers[dep] = struct{}{}
			}
		}
	}
	for _, t := range tasks {
		if t.ID == nil {
			continue
		}
		if _, ok := blockers[*t.ID]; ok {
			req.BlockingCount++
		}
	}
	return req
}

func toScoringWeights(w sdk.Weights) scoring.Weights {
	return scoring.Weights{
		Urgency:    w.Urgency,
		Importance: w.Importance,
		Effort:     w.Effort,
		Dependency: w.Dependency,
	}
}
