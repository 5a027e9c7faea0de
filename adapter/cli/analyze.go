package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
)

var (
	analyzeFlags   scoringFlags
	showReasons    bool
	analyzeLimit   int
	suggestFlags   scoringFlags
	suggestCount   int
	suggestMaxHour float64
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Score and rank tasks",
	Long: `Score every task and print them from highest to lowest priority.

Examples:
  taskrank analyze -f tasks.json
  taskrank analyze -f tasks.yaml --strategy deadline_driven
  taskrank analyze --stored --weights urgency=0.6,importance=0.2
  cat tasks.json | taskrank analyze -f - --date 2025-06-02 --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.AnalyzeTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		opts, err := analyzeFlags.options()
		if err != nil {
			return err
		}
		tasks, err := analyzeFlags.load(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.AnalyzeTasksHandler.Handle(cmd.Context(), queries.AnalyzeTasksQuery{Tasks: tasks, ScoringOptions: opts})
		if err != nil {
			return err
		}
		if analyzeLimit > 0 && analyzeLimit < len(result.Tasks) {
			result.Tasks = result.Tasks[:analyzeLimit]
		}

		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), result)
		}
		renderAnalysis(cmd.OutOrStdout(), result, showReasons || Verbose())
		return nil
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest what to work on today",
	Long: `Pick the highest priority tasks that fit into today's hours. Overdue
tasks come first, then the rest in rank order.

Examples:
  taskrank suggest -f tasks.json
  taskrank suggest --stored -n 5 --max-hours 6`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.SuggestTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		opts, err := suggestFlags.options()
		if err != nil {
			return err
		}
		tasks, err := suggestFlags.load(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.SuggestTasksHandler.Handle(cmd.Context(), queries.SuggestTasksQuery{
			Tasks:          tasks,
			ScoringOptions: opts,
			Count:          suggestCount,
			MaxHours:       suggestMaxHour,
		})
		if err != nil {
			return err
		}

		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), result)
		}
		renderSuggestion(cmd.OutOrStdout(), result)
		return nil
	},
}

func init() {
	analyzeFlags.register(analyzeCmd.Flags())
	analyzeCmd.Flags().BoolVar(&showReasons, "explain", false, "print the explanation for each task")
	analyzeCmd.Flags().IntVarP(&analyzeLimit, "limit", "n", 0, "show only the top n tasks (0 = all)")
	rootCmd.AddCommand(analyzeCmd)

	suggestFlags.register(suggestCmd.Flags())
	suggestCmd.Flags().IntVarP(&suggestCount, "count", "n", 0, "number of suggestions (default 3)")
	suggestCmd.Flags().Float64Var(&suggestMaxHour, "max-hours", 0, "hours available today (default 8)")
	rootCmd.AddCommand(suggestCmd)
}
