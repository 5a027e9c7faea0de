package services

import (
	"sort"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/graph"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// PriorityEngineConfig selects how factor scores combine into a priority.
type PriorityEngineConfig struct {
	// Strategy names the preset. Unknown names fall back to smart_balance
	// weights but keep their name for reporting.
	Strategy scoring.Strategy
	// Weights, when set, replace the strategy weights. They are normalized.
	Weights *scoring.Weights
	// DisplayName overrides the strategy label used in suggestion messages.
	DisplayName  string
	SkipWeekends bool
	// Holidays nil selects calendar.DefaultHolidays; empty disables holidays.
	Holidays []calendar.Date
}

// DefaultPriorityEngineConfig returns the smart_balance configuration with
// weekend and holiday skipping on.
func DefaultPriorityEngineConfig() PriorityEngineConfig {
	return PriorityEngineConfig{
		Strategy:     scoring.DefaultStrategy,
		SkipWeekends: true,
	}
}

// PriorityEngine scores, ranks and explains tasks. It is immutable after
// construction and safe for concurrent use.
type PriorityEngine struct {
	strategy    scoring.Strategy
	displayName string
	weights     scoring.Weights
	calendar    *calendar.Calendar
}

// NewPriorityEngine creates a new engine with the given configuration.
func NewPriorityEngine(cfg PriorityEngineConfig) *PriorityEngine {
	strategy := cfg.Strategy
	if strategy == "" {
		strategy = scoring.DefaultStrategy
	}

	weights := strategy.Weights()
	if cfg.Weights != nil {
		weights = cfg.Weights.Normalize()
	}

	display := cfg.DisplayName
	if display == "" {
		display = strategy.DisplayName()
	}

	return &PriorityEngine{
		strategy:    strategy,
		displayName: display,
		weights:     weights,
		calendar:    calendar.New(cfg.SkipWeekends, cfg.Holidays),
	}
}

// Strategy returns the configured strategy name.
func (e *PriorityEngine) Strategy() scoring.Strategy { return e.strategy }

// StrategyName returns the label used in suggestion messages.
func (e *PriorityEngine) StrategyName() string { return e.displayName }

// Weights returns the normalized weights in use.
func (e *PriorityEngine) Weights() scoring.Weights { return e.weights }

// Calendar returns the working-day calendar in use.
func (e *PriorityEngine) Calendar() *calendar.Calendar { return e.calendar }

// Batch is the graph state shared by every task of one analysis.
type Batch struct {
	Graph    graph.Graph
	Circular graph.Set
}

// NewBatch builds the dependency graph for tasks and finds its cycles.
func NewBatch(tasks []task.Task) Batch {
	g, circular := graph.Analyze(task.Nodes(tasks))
	return Batch{Graph: g, Circular: circular}
}

// ScoreOne scores a single task against the batch it belongs to.
func (e *PriorityEngine) ScoreOne(t task.Task, batch Batch, ref calendar.Date) ScoredTask {
	urgency := scoring.Urgency(e.calendar, t.DueDate, ref)
	importance := scoring.Importance(t.Importance)
	effort := scoring.Effort(t.EstimatedHours)
	dependency := scoring.Dependency(t.ID, t.Dependencies, batch.Graph)

	quadrant := scoring.Classify(urgency.Score, t.Importance)

	circular := t.ID != nil && batch.Circular.Has(*t.ID)
	dependencyScore := dependency.Score
	if circular {
		dependencyScore *= scoring.CircularPenalty
	}

	breakdown := Breakdown{
		Urgency:    FactorScore{Raw: urgency.Score, Contribution: urgency.Score * e.weights.Urgency},
		Importance: FactorScore{Raw: importance, Contribution: importance * e.weights.Importance},
		Effort:     FactorScore{Raw: effort, Contribution: effort * e.weights.Effort},
		Dependency: FactorScore{Raw: dependencyScore, Contribution: dependencyScore * e.weights.Dependency},
	}
	score := breakdown.Total()
	level := scoring.LevelFor(score)

	deps := t.Dependencies
	if deps == nil {
		deps = []int64{}
	}

	scored := ScoredTask{
		ID:                    t.ID,
		Title:                 t.Title,
		DueDate:               t.DueDate,
		EstimatedHours:        t.EstimatedHours,
		Importance:            t.Importance,
		Dependencies:          deps,
		PriorityScore:         scoring.Round(score, 2),
		PriorityLevel:         level,
		Breakdown:             breakdown,
		IsOverdue:             urgency.Overdue,
		IsBlockingOthers:      dependency.Blocking,
		HasCircularDependency: circular,
		EisenhowerQuadrant:    quadrant,
		WorkingDaysUntilDue:   urgency.WorkingDays,
		ComplexityScore:       scoring.Complexity(t.Title, len(t.Dependencies), t.EstimatedHours),
	}
	scored.Explanation = explain(scored, score)
	return scored
}

// AnalyzeBatch scores every task and returns them ordered by descending
// priority. Tasks with equal scores keep their input order.
func (e *PriorityEngine) AnalyzeBatch(tasks []task.Task, ref calendar.Date) []ScoredTask {
	if len(tasks) == 0 {
		return []ScoredTask{}
	}

	batch := NewBatch(tasks)
	scored := make([]ScoredTask, len(tasks))
	for i, t := range tasks {
		scored[i] = e.ScoreOne(t, batch, ref)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].PriorityScore > scored[j].PriorityScore
	})
	return scored
}
