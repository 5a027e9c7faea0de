package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var strategiesCmd = &cobra.Command{
	Use:     "strategies",
	Aliases: []string{"strategy"},
	Short:   "List the scoring strategies",
	Long: `List the built-in strategies, the ones defined in the profile given
with --config and the ones advertised by strategy engines.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil || app.ListStrategiesHandler == nil {
			return fmt.Errorf("application not initialized")
		}

		infos, err := app.ListStrategiesHandler.Handle(cmd.Context())
		if err != nil {
			return err
		}

		if JSONOutput() {
			return PrintJSON(cmd.OutOrStdout(), map[string]any{
				"strategies": infos,
				"default":    app.DefaultStrategy(),
			})
		}
		renderStrategies(cmd.OutOrStdout(), infos, app.DefaultStrategy())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(strategiesCmd)
}
