package task

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
)

var (
	taskID       int64
	dueDate      string
	hours        float64
	importance   int
	dependencies []int64
)

var addCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Store a new task",
	Long: `Store a new task. Dependencies must name tasks already stored.

Examples:
  taskrank task add "Fix login bug" --due 2025-06-03 --hours 2 --importance 8
  taskrank task add "Write release notes" -H 1 -i 5 --after 1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.CreateTaskHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		createCmd := commands.CreateTaskCommand{
			Title:          args[0],
			DueDate:        dueDate,
			EstimatedHours: hours,
			Importance:     importance,
			Dependencies:   dependencies,
		}
		if cmd.Flags().Changed("id") {
			id := taskID
			createCmd.ID = &id
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), createCmd)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		out := cmd.OutOrStdout()
		if cli.JSONOutput() {
			return cli.PrintJSON(out, result)
		}
		fmt.Fprintf(out, "Task stored: %d\n", *result.Task.ID)
		fmt.Fprintf(out, "  title: %s\n", result.Task.Title)
		if result.Task.DueDate != nil {
			fmt.Fprintf(out, "  due: %s\n", result.Task.DueDate)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().Int64Var(&taskID, "id", 0, "explicit task id")
	addCmd.Flags().StringVarP(&dueDate, "due", "d", "", "due date (YYYY-MM-DD)")
	addCmd.Flags().Float64VarP(&hours, "hours", "H", 1, "estimated hours")
	addCmd.Flags().IntVarP(&importance, "importance", "i", 5, "importance from 1 to 10")
	addCmd.Flags().Int64SliceVar(&dependencies, "after", nil, "id of a task that must finish first, repeatable")
}
