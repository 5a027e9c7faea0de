package api

import (
	"net/http"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// Info describes the API.
type Info struct {
	Name       string            `json:"name"`
	Version    string            `json:"version"`
	Features   []string          `json:"features"`
	Endpoints  map[string]string `json:"endpoints"`
	Strategies map[string]string `json:"strategies"`
	ErrorCodes []string          `json:"error_codes"`
}

var endpoints = map[string]string{
	"GET /health":                        "Service and dependency health",
	"GET /api/v1/":                       "This info endpoint",
	"GET /api/v1/metrics":                "Request and operation metrics",
	"POST /api/v1/tasks/analyze":         "Analyze and sort tasks by priority",
	"POST /api/v1/tasks/suggest":         "Get top task suggestions for today",
	"GET /api/v1/tasks/strategies":       "Get available sorting strategies",
	"GET /api/v1/tasks/time-context":     "Get time-based work suggestions",
	"POST /api/v1/tasks/fatigue":         "Calculate work fatigue level",
	"POST /api/v1/tasks/export/{format}": "Export analysis as json, csv or ics",
	"GET /api/v1/backlog":                "List stored tasks",
	"POST /api/v1/backlog":               "Store a task",
	"POST /api/v1/backlog/import":        "Store a batch of tasks",
	"POST /api/v1/backlog/analyze":       "Analyze the stored tasks",
	"DELETE /api/v1/backlog/{id}":        "Remove a stored task",
}

var features = []string{
	"Multi-factor priority scoring",
	"Customizable algorithm weights",
	"Eisenhower Matrix classification",
	"Weekend & holiday awareness",
	"Circular dependency detection",
	"Human-readable explanations",
	"Rate limiting",
	"Time-based suggestions",
	"Task fatigue modeling",
	"Export (JSON/CSV/iCalendar)",
	"Strategy engine plugins",
}

// handleInfo handles GET /api/v1/
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	strategies := make(map[string]string)
	infos, err := s.deps.ListStrategies.Handle(r.Context())
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	for _, info := range infos {
		strategies[info.Name] = info.Description
	}
	def := s.deps.DefaultStrategy
	if def == "" {
		def = scoring.DefaultStrategy.String()
	}
	if _, ok := strategies[def]; ok {
		strategies[def] += " (default)"
	}

	writeData(w, http.StatusOK, Info{
		Name:       "taskrank",
		Version:    Version,
		Features:   features,
		Endpoints:  endpoints,
		Strategies: strategies,
		ErrorCodes: errorCodes(),
	})
}

func errorCodes() []string {
	codes := []string{
		string(validation.CodeMissingField),
		string(validation.CodeInvalidDate),
		string(validation.CodeInvalidHours),
		string(validation.CodeInvalidImportance),
		string(validation.CodeCircularDependency),
		string(validation.CodeSelfDependency),
		string(validation.CodeInvalidDependency),
		string(validation.CodeInvalidWeights),
		string(validation.CodeEmptyTasks),
		string(validation.CodeInvalidStrategy),
		string(validation.CodeInvalidParameter),
	}
	return append(codes, CodeRateLimited, CodeNotFound, CodeInternal)
}
