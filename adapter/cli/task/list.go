package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored tasks",
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ListTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		tasks, err := app.ListTasksHandler.Handle(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		if cli.JSONOutput() {
			return cli.PrintJSON(cmd.OutOrStdout(), tasks)
		}
		cli.RenderTaskList(cmd.OutOrStdout(), tasks)
		return nil
	},
}
