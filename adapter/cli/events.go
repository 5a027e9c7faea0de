package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Inspect published events",
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch [pattern...]",
	Short: "Print events from RabbitMQ as they are published",
	Long: `Bind a private queue to the taskrank exchange and print each event.
Patterns use topic syntax and default to "taskrank.#".

Examples:
  taskrank events watch
  taskrank events watch taskrank.analysis.* --json`,
	Annotations: map[string]string{
		AnnotationNoApp: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil || cfg.RabbitMQURL == "" {
			return fmt.Errorf("RABBITMQ_URL is not set")
		}
		patterns := args
		if len(patterns) == 0 {
			patterns = []string{"taskrank.#"}
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sub, err := eventbus.NewRabbitMQSubscriber(cfg.RabbitMQURL, logger)
		if err != nil {
			return err
		}
		defer sub.Close()

		out := cmd.OutOrStdout()
		fmt.Fprintln(cmd.ErrOrStderr(), mutedStyle.Render(fmt.Sprintf("watching %v, Ctrl-C to stop", patterns)))
		err = sub.Consume(ctx, patterns, func(_ context.Context, env eventbus.Envelope) error {
			if JSONOutput() {
				return PrintJSON(out, env)
			}
			fmt.Fprintf(out, "%s %s %s\n",
				mutedStyle.Render(env.OccurredAt.Format("15:04:05")),
				titleStyle.Render(env.RoutingKey),
				mutedStyle.Render(env.Source))
			fmt.Fprintf(out, "  %s\n", string(env.Payload))
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	eventsCmd.AddCommand(eventsWatchCmd)
	rootCmd.AddCommand(eventsCmd)
}
