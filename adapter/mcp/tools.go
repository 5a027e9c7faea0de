package mcp

import (
	"errors"
	"time"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// ToolDependencies provides handlers and context for MCP tools.
type ToolDependencies struct {
	Analyze    *queries.AnalyzeTasksHandler
	Suggest    *queries.SuggestTasksHandler
	Strategies *queries.ListStrategiesHandler
	ListTasks  *queries.ListTasksHandler
	CreateTask *commands.CreateTaskHandler
	DeleteTask *commands.DeleteTaskHandler
	Health     *observability.HealthRegistry

	DefaultStrategy string
	// Now defaults to time.Now.
	Now func() time.Time
}

// DependenciesFrom collects the tool dependencies from a container.
func DependenciesFrom(c *app.Container) ToolDependencies {
	return ToolDependencies{
		Analyze:         c.AnalyzeTasksHandler,
		Suggest:         c.SuggestTasksHandler,
		Strategies:      c.ListStrategiesHandler,
		ListTasks:       c.ListTasksHandler,
		CreateTask:      c.CreateTaskHandler,
		DeleteTask:      c.DeleteTaskHandler,
		Health:          c.Health,
		DefaultStrategy: c.Strategies.Default(),
		Now:             time.Now,
	}
}

type tools struct {
	deps ToolDependencies
}

func newTools(deps ToolDependencies) *tools {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &tools{deps: deps}
}

// RegisterTools registers the scoring and backlog tools.
func RegisterTools(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if deps.Analyze == nil || deps.Suggest == nil {
		return errors.New("scoring handlers are required")
	}

	t := newTools(deps)
	registerScoringTools(srv, t)
	registerTaskTools(srv, t)
	return nil
}
