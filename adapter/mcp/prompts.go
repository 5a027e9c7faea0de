package mcp

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/mcp-go"
)

// RegisterPrompts registers prompts for common prioritization sessions.
func RegisterPrompts(srv *mcp.Server, deps ToolDependencies) error {
	if srv == nil {
		return fmt.Errorf("server is required")
	}

	srv.Prompt("plan_day").
		Description("Pick today's tasks from the backlog, taking the hour and fatigue into account.").
		Argument("hours", "Hours available today (default 8)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			hours := args["hours"]
			if hours == "" {
				hours = "8"
			}
			return userPrompt("Daily Planning", fmt.Sprintf(`Help me plan today. I have %s hours available.

1. Read the taskrank://tasks/ranked resource to see the ranked backlog
2. Call workload.time_context to see what kind of work suits this hour
3. Call tasks.suggest with stored=true, max_hours=%s and time_aware=true

Then:
- Explain why each suggested task made the cut
- Point out overdue tasks and tasks that block others
- If anything is in a dependency cycle, say which tasks and how to break it`, hours, hours)), nil
		})

	srv.Prompt("triage_backlog").
		Description("Sort the backlog into do now, plan, delegate and eliminate.").
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			return userPrompt("Backlog Triage", `Triage my backlog.

1. Call tasks.analyze with stored=true
2. Group the result by eisenhower_quadrant

For each quadrant:
- Do now: order them and flag anything over 4 hours that should be split
- Plan: propose a due date where one is missing
- Delegate: suggest what to hand off
- Eliminate: confirm before calling tasks.remove on anything`), nil
		})

	srv.Prompt("compare_strategies").
		Description("Rank the same tasks with every strategy and explain the differences.").
		Argument("strategies", "Comma separated strategy names (default all)", false).
		Handler(func(ctx context.Context, args map[string]string) (*mcp.PromptResult, error) {
			which := args["strategies"]
			if which == "" {
				which = "every strategy from strategies.list"
			}
			return userPrompt("Strategy Comparison", fmt.Sprintf(`Compare how %s rank my stored backlog.

Call tasks.analyze with stored=true and limit=5 once per strategy, then show the
top five of each side by side. Explain which factor weights caused the
differences and recommend one strategy for this week.`, which)), nil
		})

	return nil
}

func userPrompt(description, text string) *mcp.PromptResult {
	return &mcp.PromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role: string(mcp.RoleUser),
				Content: mcp.TextContent{
					Type: "text",
					Text: text,
				},
			},
		},
	}
}
