package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags.
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Annotations: map[string]string{
		AnnotationNoApp: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if JSONOutput() {
			return PrintJSON(out, map[string]string{
				"version":    Version,
				"commit":     Commit,
				"build_date": BuildDate,
				"go":         runtime.Version(),
			})
		}
		fmt.Fprintf(out, "%s %s\n", titleStyle.Render("taskrank"), Version)
		fmt.Fprintln(out, mutedStyle.Render(fmt.Sprintf("commit %s · built %s · %s", Commit, BuildDate, runtime.Version())))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
