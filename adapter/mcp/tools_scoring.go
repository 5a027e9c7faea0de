package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
)

type analyzeInput struct {
	Tasks []task.RawTask `json:"tasks,omitempty"`
	// Stored analyzes the stored backlog instead of Tasks.
	Stored        bool          `json:"stored,omitempty"`
	Limit         int           `json:"limit,omitempty"`
	Strategy      string        `json:"strategy,omitempty"`
	Weights       *weightsInput `json:"weights,omitempty"`
	SkipWeekends  *bool         `json:"skip_weekends,omitempty"`
	Holidays      []string      `json:"holidays,omitempty"`
	ReferenceDate string        `json:"reference_date,omitempty"`
	TimeAware     bool          `json:"time_aware,omitempty"`
}

type suggestInput struct {
	Tasks         []task.RawTask           `json:"tasks,omitempty"`
	Strategy      string                   `json:"strategy,omitempty"`
	Weights       *weightsInput            `json:"weights,omitempty"`
	SkipWeekends  *bool                    `json:"skip_weekends,omitempty"`
	Holidays      []string                 `json:"holidays,omitempty"`
	ReferenceDate string                   `json:"reference_date,omitempty"`
	TimeAware     bool                     `json:"time_aware,omitempty"`
	Stored        bool                     `json:"stored,omitempty"`
	Count         int                      `json:"count,omitempty"`
	MaxHours      float64                  `json:"max_hours,omitempty"`
	Completed     []workload.CompletedTask `json:"completed_tasks,omitempty"`
}

type fatigueInput struct {
	Completed    []workload.CompletedTask `json:"completed_tasks,omitempty"`
	NextEffort   float64                  `json:"next_task_effort,omitempty"`
	NextCategory string                   `json:"next_task_category,omitempty"`
}

type strategiesOutput struct {
	Strategies []scoring.StrategyInfo `json:"strategies"`
	Default    string                 `json:"default"`
}

type timeContextOutput struct {
	CurrentTime string `json:"current_time"`
	workload.TimeContext
}

func registerScoringTools(srv *mcp.Server, t *tools) {
	srv.Tool("tasks.analyze").
		Description("Score and rank tasks by urgency, importance, effort and dependencies").
		Handler(t.analyze)

	srv.Tool("tasks.suggest").
		Description("Pick the tasks to work on today within an hour budget").
		Handler(t.suggest)

	srv.Tool("strategies.list").
		Description("List the scoring strategies and their weights").
		Handler(t.listStrategies)

	srv.Tool("workload.time_context").
		Description("Describe how much focused work suits the current hour").
		Handler(t.timeContext)

	srv.Tool("workload.fatigue").
		Description("Rate fatigue from the tasks completed today").
		Handler(t.fatigue)
}

func (t *tools) backlog(ctx context.Context, stored bool, tasks []task.RawTask) ([]task.RawTask, error) {
	if !stored {
		return tasks, nil
	}
	if t.deps.ListTasks == nil {
		return nil, errors.New("stored tasks require a database connection")
	}
	return t.deps.ListTasks.HandleRaw(ctx)
}

func (t *tools) analyze(ctx context.Context, input analyzeInput) (*queries.AnalyzeTasksResult, error) {
	opts, err := scoringInput{
		Strategy:      input.Strategy,
		Weights:       input.Weights,
		SkipWeekends:  input.SkipWeekends,
		Holidays:      input.Holidays,
		ReferenceDate: input.ReferenceDate,
		TimeAware:     input.TimeAware,
	}.options()
	if err != nil {
		return nil, err
	}
	tasks, err := t.backlog(ctx, input.Stored, input.Tasks)
	if err != nil {
		return nil, err
	}

	result, err := t.deps.Analyze.Handle(ctx, queries.AnalyzeTasksQuery{Tasks: tasks, ScoringOptions: opts})
	if err != nil {
		return nil, err
	}
	if input.Limit > 0 && input.Limit < len(result.Tasks) {
		result.Tasks = result.Tasks[:input.Limit]
	}
	return result, nil
}

func (t *tools) suggest(ctx context.Context, input suggestInput) (*queries.SuggestTasksResult, error) {
	if input.Count < 0 {
		return nil, validation.ValidateSuggestParams(input.Count, 1)
	}
	if input.MaxHours < 0 {
		return nil, validation.ValidateSuggestParams(1, input.MaxHours)
	}
	opts, err := scoringInput{
		Strategy:      input.Strategy,
		Weights:       input.Weights,
		SkipWeekends:  input.SkipWeekends,
		Holidays:      input.Holidays,
		ReferenceDate: input.ReferenceDate,
		TimeAware:     input.TimeAware,
	}.options()
	if err != nil {
		return nil, err
	}
	tasks, err := t.backlog(ctx, input.Stored, input.Tasks)
	if err != nil {
		return nil, err
	}

	return t.deps.Suggest.Handle(ctx, queries.SuggestTasksQuery{
		Tasks:          tasks,
		ScoringOptions: opts,
		Count:          input.Count,
		MaxHours:       input.MaxHours,
		Completed:      input.Completed,
	})
}

func (t *tools) listStrategies(ctx context.Context, _ struct{}) (*strategiesOutput, error) {
	if t.deps.Strategies == nil {
		return nil, errors.New("strategy listing is not available")
	}
	infos, err := t.deps.Strategies.Handle(ctx)
	if err != nil {
		return nil, err
	}
	def := t.deps.DefaultStrategy
	if def == "" {
		def = scoring.DefaultStrategy.String()
	}
	return &strategiesOutput{Strategies: infos, Default: def}, nil
}

func (t *tools) timeContext(_ context.Context, _ struct{}) (*timeContextOutput, error) {
	now := t.deps.Now()
	return &timeContextOutput{
		CurrentTime: now.Format("2006-01-02T15:04:05"),
		TimeContext: workload.ContextAt(now),
	}, nil
}

func (t *tools) fatigue(_ context.Context, input fatigueInput) (*workload.Fatigue, error) {
	next := input.NextEffort
	if next <= 0 {
		next = 2
	}
	f := workload.AssessFatigue(input.Completed, next, input.NextCategory)
	return &f, nil
}
