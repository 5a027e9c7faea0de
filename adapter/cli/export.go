package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/export"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

var (
	exportFlags  scoringFlags
	exportFormat string
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export an analysis to JSON, CSV or iCalendar",
	Long: `Analyze tasks and write the ranked result as a JSON document, a CSV
table or an iCalendar file of to-dos.

Examples:
  taskrank export -f tasks.json --format csv -o analysis.csv
  taskrank export --stored --format ics -o tasks.ics
  taskrank export -f tasks.yaml                  # JSON to stdout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.AnalyzeTasksHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		format, err := export.ParseFormat(exportFormat)
		if err != nil {
			return fmt.Errorf("%w (supported: json, csv, ics)", err)
		}
		opts, err := exportFlags.options()
		if err != nil {
			return err
		}
		tasks, err := exportFlags.load(cmd, app)
		if err != nil {
			return err
		}

		result, err := app.AnalyzeTasksHandler.Handle(cmd.Context(), queries.AnalyzeTasksQuery{Tasks: tasks, ScoringOptions: opts})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			f, err := security.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			out = f
		}

		if err := writeExport(out, format, result, time.Now()); err != nil {
			return err
		}
		if exportOutput != "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d tasks to %s\n", result.Count, exportOutput)
		}
		return nil
	},
}

func writeExport(w io.Writer, format export.Format, result *queries.AnalyzeTasksResult, now time.Time) error {
	switch format {
	case export.FormatCSV:
		return export.WriteCSV(w, result.Tasks)
	case export.FormatICS:
		return export.WriteICS(w, result.Tasks, now)
	default:
		return export.WriteJSON(w, export.NewDocument(result.Strategy, result.Tasks, now.UTC()))
	}
}

func init() {
	exportFlags.register(exportCmd.Flags())
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format (json, csv, ics)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}
