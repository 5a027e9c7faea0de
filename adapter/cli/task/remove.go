package task

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
)

var removeCmd = &cobra.Command{
	Use:     "remove <id>",
	Short:   "Remove a stored task",
	Long:    `Remove a stored task. Tasks that depended on it lose that dependency.`,
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.DeleteTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid task id %q", args[0])
		}

		result, err := app.DeleteTaskHandler.Handle(cmd.Context(), commands.DeleteTaskCommand{ID: id})
		if err != nil {
			return fmt.Errorf("failed to remove task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Task removed: %d\n", id)
		if len(result.Unlinked) > 0 {
			fmt.Fprintf(out, "  unlinked from: %v\n", result.Unlinked)
		}
		return nil
	},
}
