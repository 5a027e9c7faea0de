package queries

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/events"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
	sharedApplication "github.com/felixgeelhaar/taskrank/internal/shared/application"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// fallbackEffort is the effort assumed for a task without an estimate
// when rating fatigue.
const fallbackEffort = 2.0

// SuggestTasksQuery selects today's working set from a batch.
type SuggestTasksQuery struct {
	Tasks []task.RawTask
	ScoringOptions
	// Count zero means services.DefaultSuggestCount.
	Count int
	// MaxHours zero means services.DefaultSuggestMaxHours.
	MaxHours float64
	// Completed is the work already done today, used to rate fatigue.
	Completed []workload.CompletedTask
}

// QueryName implements application.Query.
func (SuggestTasksQuery) QueryName() string { return "suggest_tasks" }

// SuggestTasksResult is the suggestion plus optional workload context.
type SuggestTasksResult struct {
	services.Suggestion
	Weights           scoring.Weights       `json:"weights_used"`
	QuadrantBreakdown map[string][]string   `json:"quadrant_breakdown"`
	MaxHours          float64               `json:"max_hours"`
	TimeContext       *workload.TimeContext `json:"time_context,omitempty"`
	Fatigue           *workload.Fatigue     `json:"fatigue_analysis,omitempty"`
}

var _ sharedApplication.QueryHandler[SuggestTasksQuery, *SuggestTasksResult] = (*SuggestTasksHandler)(nil)

// SuggestTasksHandler handles SuggestTasksQuery.
type SuggestTasksHandler struct {
	builder *EngineBuilder
}

// NewSuggestTasksHandler creates a new SuggestTasksHandler.
func NewSuggestTasksHandler(builder *EngineBuilder) *SuggestTasksHandler {
	return &SuggestTasksHandler{builder: builder}
}

// Handle executes the SuggestTasksQuery.
func (h *SuggestTasksHandler) Handle(ctx context.Context, query SuggestTasksQuery) (*SuggestTasksResult, error) {
	return observability.TimeOperationResult(ctx, h.builder.logger, h.builder.metrics, "suggest_tasks",
		func() (*SuggestTasksResult, error) { return h.suggest(ctx, query) })
}

func (h *SuggestTasksHandler) suggest(ctx context.Context, query SuggestTasksQuery) (*SuggestTasksResult, error) {
	count := query.Count
	if count == 0 {
		count = services.DefaultSuggestCount
	}
	maxHours := query.MaxHours
	if maxHours == 0 {
		maxHours = services.DefaultSuggestMaxHours
	}
	if err := validation.ValidateSuggestParams(count, maxHours); err != nil {
		return nil, err
	}

	p, err := h.builder.prepare(ctx, query.Tasks, query.ScoringOptions)
	if err != nil {
		return nil, err
	}

	var timeContext *workload.TimeContext
	if query.TimeAware {
		tc := workload.ContextAt(h.builder.Now())
		timeContext = &tc
		maxHours = tc.CapHours(maxHours)
	}

	var fatigue *workload.Fatigue
	if len(query.Completed) > 0 {
		f := workload.AssessFatigue(query.Completed, averageEffort(query.Tasks), "")
		fatigue = &f
	}

	suggestion := p.engine.SuggestTop(p.tasks, count, maxHours, p.ref)
	suggestion.Strategy = p.strategy

	h.builder.logger.Debug("suggestion generated",
		"strategy", p.strategy,
		"task_count", len(p.tasks),
		"selected", len(suggestion.Tasks),
	)

	ids := make([]int64, 0, len(suggestion.Tasks))
	titles := make([]string, 0, len(suggestion.Tasks))
	for _, t := range suggestion.Tasks {
		if t.ID != nil {
			ids = append(ids, *t.ID)
		}
		titles = append(titles, t.Title)
	}
	h.builder.publish(ctx, query.Source, events.NewSuggestionGenerated(
		p.strategy, p.ref.String(), ids, titles, suggestion.TotalHours,
	))

	return &SuggestTasksResult{
		Suggestion:        suggestion,
		Weights:           p.engine.Weights().Rounded(),
		QuadrantBreakdown: suggestion.QuadrantBreakdown(),
		MaxHours:          maxHours,
		TimeContext:       timeContext,
		Fatigue:           fatigue,
	}, nil
}

func averageEffort(tasks []task.RawTask) float64 {
	if len(tasks) == 0 {
		return 0
	}
	total := 0.0
	for _, t := range tasks {
		if t.EstimatedHours != nil {
			total += *t.EstimatedHours
		} else {
			total += fallbackEffort
		}
	}
	return total / float64(len(tasks))
}
