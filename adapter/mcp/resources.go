package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
)

// RegisterResources registers read-only views of the backlog and the
// strategy catalogue.
func RegisterResources(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}
	t := newTools(deps)

	srv.Resource("taskrank://strategies").
		Name("Strategies").
		Description("Scoring strategies with their factor weights").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			out, err := t.listStrategies(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, out)
		})

	srv.Resource("taskrank://tasks").
		Name("Backlog").
		Description("Every stored task ordered by id").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			out, err := t.listTasks(ctx, struct{}{})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, out)
		})

	srv.Resource("taskrank://tasks/ranked").
		Name("Ranked backlog").
		Description("The stored backlog ranked with the default strategy").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if t.deps.ListTasks == nil || t.deps.Analyze == nil {
				return nil, fmt.Errorf("ranking requires database connection")
			}
			tasks, err := t.deps.ListTasks.HandleRaw(ctx)
			if err != nil {
				return nil, err
			}
			if len(tasks) == 0 {
				return jsonResource(uri, map[string]any{"count": 0, "tasks": []any{}})
			}
			result, err := t.deps.Analyze.Handle(ctx, queries.AnalyzeTasksQuery{
				Tasks:          tasks,
				ScoringOptions: queries.ScoringOptions{Source: mcpSource},
			})
			if err != nil {
				return nil, err
			}
			return jsonResource(uri, result)
		})

	srv.Resource("taskrank://health").
		Name("Health").
		Description("Storage, cache, broker and engine health").
		MimeType("application/json").
		Handler(func(ctx context.Context, uri string, params map[string]string) (*mcp.ResourceContent, error) {
			if t.deps.Health == nil {
				return nil, fmt.Errorf("health checks are not available")
			}
			return jsonResource(uri, t.deps.Health.Check(ctx))
		})

	return nil
}

func jsonResource(uri string, v any) (*mcp.ResourceContent, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{
		URI:      uri,
		MimeType: "application/json",
		Text:     string(data),
	}, nil
}
