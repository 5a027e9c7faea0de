package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/export"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
)

const requestSource = "taskrank.api"

// WeightsRequest carries custom weights. Missing values fall back to the
// smart balance weights.
type WeightsRequest struct {
	Urgency    *float64 `json:"urgency"`
	Importance *float64 `json:"importance"`
	Effort     *float64 `json:"effort"`
	Dependency *float64 `json:"dependency"`
}

// ScoringRequest is the body shared by analyze, suggest and export.
type ScoringRequest struct {
	Tasks    []task.RawTask  `json:"tasks"`
	Strategy string          `json:"strategy,omitempty"`
	Weights  *WeightsRequest `json:"weights,omitempty"`
	// Flat weight fields are accepted as an alternative to Weights.
	UrgencyWeight    *float64 `json:"urgency_weight,omitempty"`
	ImportanceWeight *float64 `json:"importance_weight,omitempty"`
	EffortWeight     *float64 `json:"effort_weight,omitempty"`
	DependencyWeight *float64 `json:"dependency_weight,omitempty"`
	SkipWeekends     *bool    `json:"skip_weekends,omitempty"`
	Holidays         []string `json:"holidays,omitempty"`
	ReferenceDate    string   `json:"reference_date,omitempty"`
	TimeAware        bool     `json:"time_aware,omitempty"`
}

// SuggestRequest adds the selection limits and today's completed work.
type SuggestRequest struct {
	ScoringRequest
	Count          *int                     `json:"count,omitempty"`
	MaxHours       *float64                 `json:"max_hours,omitempty"`
	CompletedTasks []workload.CompletedTask `json:"completed_tasks,omitempty"`
}

// FatigueRequest rates fatigue before starting the next task.
type FatigueRequest struct {
	CompletedTasks   []workload.CompletedTask `json:"completed_tasks"`
	NextTaskEffort   *float64                 `json:"next_task_effort,omitempty"`
	NextTaskCategory string                   `json:"next_task_category,omitempty"`
}

// options converts the request into scoring options.
func (req ScoringRequest) options() (queries.ScoringOptions, error) {
	opts := queries.ScoringOptions{
		Strategy:     strings.ToLower(strings.TrimSpace(req.Strategy)),
		SkipWeekends: req.SkipWeekends,
		Holidays:     req.Holidays,
		TimeAware:    req.TimeAware,
		Source:       requestSource,
	}

	if w, ok := req.customWeights(); ok {
		opts.Weights = &w
	}

	if req.ReferenceDate != "" {
		d, err := calendar.ParseDate(req.ReferenceDate)
		if err != nil {
			return opts, &validation.Error{
				Code:    validation.CodeInvalidDate,
				Message: "Reference date must be in ISO format (YYYY-MM-DD)",
				Field:   "reference_date",
			}
		}
		opts.ReferenceDate = &d
	}
	return opts, nil
}

func (req ScoringRequest) customWeights() (scoring.Weights, bool) {
	nested := req.Weights
	if nested == nil {
		nested = &WeightsRequest{}
	}
	urgency := pick(nested.Urgency, req.UrgencyWeight)
	importance := pick(nested.Importance, req.ImportanceWeight)
	effort := pick(nested.Effort, req.EffortWeight)
	dependency := pick(nested.Dependency, req.DependencyWeight)
	if req.Weights == nil && urgency == nil && importance == nil && effort == nil && dependency == nil {
		return scoring.Weights{}, false
	}

	def := scoring.SmartBalance.Weights()
	return scoring.Weights{
		Urgency:    valueOr(urgency, def.Urgency),
		Importance: valueOr(importance, def.Importance),
		Effort:     valueOr(effort, def.Effort),
		Dependency: valueOr(dependency, def.Dependency),
	}, true
}

func pick(values ...*float64) *float64 {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// handleAnalyze handles POST /api/v1/tasks/analyze
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req ScoringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	result, err := s.deps.Analyze.Handle(r.Context(), queries.AnalyzeTasksQuery{Tasks: req.Tasks, ScoringOptions: opts})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// handleSuggest handles POST /api/v1/tasks/suggest
func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	query := queries.SuggestTasksQuery{
		Tasks:          req.Tasks,
		ScoringOptions: opts,
		Completed:      req.CompletedTasks,
	}
	if req.Count != nil {
		if *req.Count < 1 {
			writeError(w, s.logger, validation.ValidateSuggestParams(*req.Count, 1))
			return
		}
		query.Count = *req.Count
	}
	if req.MaxHours != nil {
		if *req.MaxHours <= 0 {
			writeError(w, s.logger, validation.ValidateSuggestParams(1, *req.MaxHours))
			return
		}
		query.MaxHours = *req.MaxHours
	}

	result, err := s.deps.Suggest.Handle(r.Context(), query)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

type strategiesResponse struct {
	Strategies []scoring.StrategyInfo `json:"strategies"`
	Default    string                 `json:"default"`
}

// handleStrategies handles GET /api/v1/tasks/strategies
func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	infos, err := s.deps.ListStrategies.Handle(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	def := s.deps.DefaultStrategy
	if def == "" {
		def = scoring.DefaultStrategy.String()
	}
	writeData(w, http.StatusOK, strategiesResponse{Strategies: infos, Default: def})
}

type timeContextResponse struct {
	CurrentTime string `json:"current_time"`
	workload.TimeContext
}

// handleTimeContext handles GET /api/v1/tasks/time-context
func (s *Server) handleTimeContext(w http.ResponseWriter, _ *http.Request) {
	now := s.deps.Now()
	writeData(w, http.StatusOK, timeContextResponse{
		CurrentTime: now.Format("2006-01-02T15:04:05"),
		TimeContext: workload.ContextAt(now),
	})
}

// handleFatigue handles POST /api/v1/tasks/fatigue
func (s *Server) handleFatigue(w http.ResponseWriter, r *http.Request) {
	var req FatigueRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, workload.AssessFatigue(req.CompletedTasks, valueOr(req.NextTaskEffort, 2), req.NextTaskCategory))
}

// handleExport handles POST /api/v1/tasks/export/{format}
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, s.logger, &validation.Error{
			Code:    validation.CodeInvalidParameter,
			Message: err.Error(),
			Field:   "format",
		})
		return
	}

	var req ScoringRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	opts, err := req.options()
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	result, err := s.deps.Analyze.Handle(r.Context(), queries.AnalyzeTasksQuery{Tasks: req.Tasks, ScoringOptions: opts})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		err = export.WriteCSV(&buf, result.Tasks)
	case export.FormatICS:
		err = export.WriteICS(&buf, result.Tasks, s.deps.Now())
	default:
		err = export.WriteJSON(&buf, export.NewDocument(result.Strategy, result.Tasks, s.deps.Now().UTC()))
	}
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", `attachment; filename="`+format.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
