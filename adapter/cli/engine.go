package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/engine/registry"
)

var engineCmd = &cobra.Command{
	Use:     "engines",
	Aliases: []string{"engine"},
	Short:   "Manage strategy engines",
	Long: `Strategy engines contribute named weight strategies. The adaptive
engine is built in; plugin engines are discovered from TASKRANK_ENGINE_PATH.`,
}

type engineRow struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Version string `json:"version"`
	Status  string `json:"status"`
	Builtin bool   `json:"builtin"`
	Error   string `json:"error,omitempty"`
}

var engineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all registered engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EngineRegistry == nil {
			return fmt.Errorf("engine registry not available")
		}

		entries := app.EngineRegistry.List()
		rows := make([]engineRow, 0, len(entries))
		for _, entry := range entries {
			meta := entry.Metadata()
			row := engineRow{
				ID:      meta.ID,
				Name:    meta.Name,
				Version: meta.Version,
				Status:  string(entry.Status),
				Builtin: entry.Builtin,
			}
			if entry.Error != nil {
				row.Error = entry.Error.Error()
			}
			rows = append(rows, row)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })

		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), rows)
		}

		out := cmd.OutOrStdout()
		if len(rows) == 0 {
			fmt.Fprintln(out, "No engines registered")
			return nil
		}
		for _, row := range rows {
			name := titleStyle.Render(row.Name) + mutedStyle.Render(" v"+row.Version)
			if row.Builtin {
				name += " " + okStyle.Render("[built-in]")
			}
			fmt.Fprintln(out, name)
			fmt.Fprintf(out, "  ID: %s\n", row.ID)
			fmt.Fprintf(out, "  Status: %s\n", statusText(row.Status))
			if row.Error != "" {
				fmt.Fprintf(out, "  Error: %s\n", errorStyle.Render(row.Error))
			}
		}
		fmt.Fprintf(out, "\nTotal: %d engines\n", app.EngineRegistry.Count())
		return nil
	},
}

var engineInfoCmd = &cobra.Command{
	Use:   "info <engine-id>",
	Short: "Show an engine and the strategies it provides",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EngineRegistry == nil || app.EngineExecutor == nil {
			return fmt.Errorf("engine registry not available")
		}

		ctx := cmd.Context()
		engineID := args[0]

		engine, err := app.EngineRegistry.Get(ctx, engineID)
		if err != nil {
			return fmt.Errorf("engine not found: %s", engineID)
		}
		strategies, err := app.EngineExecutor.Strategies(ctx, engineID)
		if err != nil {
			return fmt.Errorf("failed to list strategies: %w", err)
		}

		meta := engine.Metadata()
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), map[string]any{
				"engine":     meta,
				"strategies": strategies,
				"breaker":    app.EngineExecutor.BreakerState(engineID),
			})
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Engine: %s\n", titleStyle.Render(meta.Name))
		fmt.Fprintf(out, "ID: %s\n", meta.ID)
		fmt.Fprintf(out, "Version: %s\n", meta.Version)
		if meta.Author != "" {
			fmt.Fprintf(out, "Author: %s\n", meta.Author)
		}
		if meta.Description != "" {
			fmt.Fprintf(out, "Description: %s\n", meta.Description)
		}
		fmt.Fprintf(out, "Min API Version: %s\n", meta.MinAPIVersion)
		fmt.Fprintf(out, "Circuit: %s\n", app.EngineExecutor.BreakerState(engineID))

		fmt.Fprintln(out, "\nStrategies:")
		for _, s := range strategies {
			fmt.Fprintf(out, "  %s  %s\n", titleStyle.Render(s.Name), s.Description)
		}
		return nil
	},
}

var engineHealthCmd = &cobra.Command{
	Use:   "health [engine-id]",
	Short: "Check health of engines",
	Long:  "Check health of a specific engine or all registered engines if no ID is provided.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.EngineRegistry == nil || app.EngineExecutor == nil {
			return fmt.Errorf("engine registry not available")
		}

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		ids := args
		if len(ids) == 0 {
			ids = app.EngineRegistry.IDs()
		}
		if len(ids) == 0 {
			fmt.Fprintln(out, "No engines registered")
			return nil
		}

		healthy, unhealthy := 0, 0
		for _, id := range ids {
			status, err := app.EngineExecutor.HealthCheck(ctx, id)
			switch {
			case err != nil:
				fmt.Fprintf(out, "%s: %s (%s)\n", id, errorStyle.Render("error"), err.Error())
				unhealthy++
			case !status.Healthy:
				fmt.Fprintf(out, "%s: %s (%s)\n", id, errorStyle.Render("unhealthy"), status.Message)
				unhealthy++
			default:
				fmt.Fprintf(out, "%s: %s\n", id, okStyle.Render("healthy"))
				healthy++
			}
		}

		fmt.Fprintf(out, "\nHealthy: %d, Unhealthy: %d\n", healthy, unhealthy)
		if unhealthy > 0 {
			return fmt.Errorf("%d engine(s) unhealthy", unhealthy)
		}
		return nil
	},
}

func statusText(status string) string {
	switch registry.EngineStatus(status) {
	case registry.StatusReady:
		return okStyle.Render(status)
	case registry.StatusFailed:
		return errorStyle.Render(status)
	default:
		return mutedStyle.Render(status)
	}
}

func init() {
	rootCmd.AddCommand(engineCmd)
	engineCmd.AddCommand(engineListCmd)
	engineCmd.AddCommand(engineInfoCmd)
	engineCmd.AddCommand(engineHealthCmd)
}
