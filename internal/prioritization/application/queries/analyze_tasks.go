package queries

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/events"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
	sharedApplication "github.com/felixgeelhaar/taskrank/internal/shared/application"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// AnalyzeTasksQuery scores and ranks a batch of tasks.
type AnalyzeTasksQuery struct {
	Tasks []task.RawTask
	ScoringOptions
}

// QueryName implements application.Query.
func (AnalyzeTasksQuery) QueryName() string { return "analyze_tasks" }

// AnalyzeTasksResult is the ranked batch with its summary.
type AnalyzeTasksResult struct {
	Count           int                     `json:"count"`
	Strategy        string                  `json:"strategy"`
	StrategyDisplay string                  `json:"strategy_display_name"`
	Weights         scoring.Weights         `json:"weights_used"`
	SkipWeekends    bool                    `json:"skip_weekends"`
	ReferenceDate   calendar.Date           `json:"reference_date"`
	Tasks           []services.ScoredTask   `json:"tasks"`
	Summary         services.Summary        `json:"summary"`
	Quadrants       services.QuadrantCounts `json:"eisenhower_matrix"`
	TimeContext     *workload.TimeContext   `json:"time_context,omitempty"`
}

var _ sharedApplication.QueryHandler[AnalyzeTasksQuery, *AnalyzeTasksResult] = (*AnalyzeTasksHandler)(nil)

// AnalyzeTasksHandler handles AnalyzeTasksQuery.
type AnalyzeTasksHandler struct {
	builder *EngineBuilder
}

// NewAnalyzeTasksHandler creates a new AnalyzeTasksHandler.
func NewAnalyzeTasksHandler(builder *EngineBuilder) *AnalyzeTasksHandler {
	return &AnalyzeTasksHandler{builder: builder}
}

// Handle executes the AnalyzeTasksQuery.
func (h *AnalyzeTasksHandler) Handle(ctx context.Context, query AnalyzeTasksQuery) (*AnalyzeTasksResult, error) {
	timer := observability.StartTimer("analyze_tasks").
		WithLogger(h.builder.logger).
		WithMetrics(h.builder.metrics)

	p, err := h.builder.prepare(ctx, query.Tasks, query.ScoringOptions)
	if err != nil {
		timer.StopWithError(ctx, err)
		return nil, err
	}

	scored := p.engine.AnalyzeBatch(p.tasks, p.ref)
	summary := services.Summarize(scored)

	result := &AnalyzeTasksResult{
		Count:           len(scored),
		Strategy:        p.strategy,
		StrategyDisplay: p.engine.StrategyName(),
		Weights:         p.engine.Weights().Rounded(),
		SkipWeekends:    p.skipWeekends,
		ReferenceDate:   p.ref,
		Tasks:           scored,
		Summary:         summary,
		Quadrants:       summary.Quadrants,
	}
	if query.TimeAware {
		tc := workload.ContextAt(h.builder.Now())
		result.TimeContext = &tc
	}

	timer.WithTags(observability.T("strategy", p.strategy)).Stop(ctx)
	h.builder.logger.Debug("tasks analysed",
		"strategy", p.strategy,
		"task_count", len(scored),
	)

	h.builder.publish(ctx, query.Source, events.NewAnalysisCompleted(
		p.strategy,
		p.ref.String(),
		summary.TotalTasks,
		summary.HighPriorityCount,
		summary.OverdueCount,
		summary.CircularDependenciesDetected,
	))

	return result, nil
}
