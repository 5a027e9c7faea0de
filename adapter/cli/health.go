package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check storage and engine health",
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.Health == nil {
			return fmt.Errorf("app not initialized")
		}

		health := app.Health.Check(cmd.Context())
		if JSONOutput() {
			if err := PrintJSON(cmd.OutOrStdout(), health); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			names := make([]string, 0, len(health.Components))
			for name := range health.Components {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				result := health.Components[name]
				line := fmt.Sprintf("%-10s %s", name, healthText(result.Status))
				if result.Message != "" {
					line += mutedStyle.Render(" " + result.Message)
				}
				fmt.Fprintln(out, line)
			}
			fmt.Fprintf(out, "\noverall: %s\n", healthText(health.Status))
		}

		if health.Status == observability.HealthStatusUnhealthy {
			return fmt.Errorf("service unhealthy")
		}
		return nil
	},
}

func healthText(s observability.HealthStatus) string {
	switch s {
	case observability.HealthStatusHealthy:
		return okStyle.Render(string(s))
	case observability.HealthStatusDegraded:
		return warnStyle.Render(string(s))
	default:
		return errorStyle.Render(string(s))
	}
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
