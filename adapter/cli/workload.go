package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/workload"
)

var (
	completedHours []float64
	nextEffort     float64
	nextCategory   string
	categories     []string
)

var timeContextCmd = &cobra.Command{
	Use:   "time-context",
	Short: "Show how much focused work suits the current hour",
	Annotations: map[string]string{
		AnnotationNoApp: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		now := time.Now()
		tc := workload.ContextAt(now)
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), map[string]any{
				"current_time":        now.Format("2006-01-02T15:04:05"),
				"time_context":        tc.Period,
				"suggested_max_hours": tc.SuggestedMaxHours,
				"effort_preference":   tc.EffortPreference,
				"focus_level":         tc.FocusLevel,
				"message":             tc.Message,
			})
		}
		renderTimeContext(cmd.OutOrStdout(), tc)
		return nil
	},
}

var fatigueCmd = &cobra.Command{
	Use:   "fatigue",
	Short: "Rate fatigue from the work done today",
	Long: `Rate fatigue from the hours of the tasks completed today, oldest first.

Examples:
  taskrank fatigue --done 3 --done 2.5
  taskrank fatigue --done 1 --done 3 --category writing --category writing --next-category writing`,
	Annotations: map[string]string{
		AnnotationNoApp: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(categories) > 0 && len(categories) != len(completedHours) {
			return fmt.Errorf("--category must be given once per --done")
		}
		completed := make([]workload.CompletedTask, len(completedHours))
		for i, h := range completedHours {
			if h < 0 {
				return fmt.Errorf("completed hours cannot be negative")
			}
			completed[i] = workload.CompletedTask{EffortHours: h}
			if len(categories) > 0 {
				completed[i].Category = categories[i]
			}
		}

		f := workload.AssessFatigue(completed, nextEffort, nextCategory)
		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), f)
		}
		renderFatigue(cmd.OutOrStdout(), f)
		return nil
	},
}

func init() {
	fatigueCmd.Flags().Float64SliceVar(&completedHours, "done", nil, "hours of a completed task, repeatable")
	fatigueCmd.Flags().StringSliceVar(&categories, "category", nil, "category of each completed task, repeatable")
	fatigueCmd.Flags().Float64Var(&nextEffort, "next", 2, "hours of the next task")
	fatigueCmd.Flags().StringVar(&nextCategory, "next-category", "", "category of the next task")

	rootCmd.AddCommand(timeContextCmd)
	rootCmd.AddCommand(fatigueCmd)
}
