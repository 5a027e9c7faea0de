package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
)

var replace bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Store every task in a JSON or YAML file",
	Long: `Store every task in a JSON or YAML file. The batch is validated as a
whole and stored in one transaction; nothing is stored when any task is
invalid. Use - to read from stdin.

Examples:
  taskrank task import tasks.yaml
  taskrank task import tasks.json --replace`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.ImportTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		tasks, err := cli.ReadTasks(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		result, err := app.ImportTasksHandler.Handle(cmd.Context(), commands.ImportTasksCommand{Tasks: tasks, Replace: replace})
		if err != nil {
			return fmt.Errorf("failed to import tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Imported %d tasks\n", result.Imported)
		if result.Removed > 0 {
			fmt.Fprintf(out, "  replaced %d stored tasks\n", result.Removed)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVar(&replace, "replace", false, "remove the stored backlog first")
}
