package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// ImportRequest stores a batch of tasks.
type ImportRequest struct {
	Tasks   []task.RawTask `json:"tasks"`
	Replace bool           `json:"replace,omitempty"`
}

// handleListBacklog handles GET /api/v1/backlog
func (s *Server) handleListBacklog(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.deps.ListTasks.Handle(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	writeData(w, http.StatusOK, tasks)
}

// handleCreateBacklogTask handles POST /api/v1/backlog
func (s *Server) handleCreateBacklogTask(w http.ResponseWriter, r *http.Request) {
	var raw task.RawTask
	if err := decodeJSON(w, r, &raw); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := validation.ValidateTasks([]task.RawTask{raw}); err != nil {
		writeError(w, s.logger, err)
		return
	}

	cmd := commands.CreateTaskCommand{
		ID:             raw.ID,
		Title:          *raw.Title,
		EstimatedHours: *raw.EstimatedHours,
		Importance:     *raw.Importance,
		Dependencies:   raw.Dependencies,
	}
	if raw.DueDate != nil {
		cmd.DueDate = *raw.DueDate
	}

	result, err := s.deps.CreateTask.Handle(r.Context(), cmd)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result.Task)
}

// handleImportBacklog handles POST /api/v1/backlog/import
func (s *Server) handleImportBacklog(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	result, err := s.deps.ImportTasks.Handle(r.Context(), commands.ImportTasksCommand{Tasks: req.Tasks, Replace: req.Replace})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusCreated, result)
}

// handleAnalyzeBacklog handles POST /api/v1/backlog/analyze. The body
// carries scoring options only; the tasks come from the store.
func (s *Server) handleAnalyzeBacklog(w http.ResponseWriter, r *http.Request) {
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
	raw, err := s.deps.ListTasks.HandleRaw(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	result, err := s.deps.Analyze.Handle(r.Context(), queries.AnalyzeTasksQuery{Tasks: raw, ScoringOptions: opts})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}

// handleDeleteBacklogTask handles DELETE /api/v1/backlog/{id}
func (s *Server) handleDeleteBacklogTask(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, s.logger, &validation.Error{
			Code:    validation.CodeInvalidParameter,
			Message: "Task id must be an integer",
			Field:   "id",
		})
		return
	}

	result, err := s.deps.DeleteTask.Handle(r.Context(), commands.DeleteTaskCommand{ID: id})
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeData(w, http.StatusOK, result)
}
