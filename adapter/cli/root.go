package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	internalApp "github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Command annotations read by the root pre-run.
const (
	// AnnotationOnline marks long running commands that connect to Redis
	// and RabbitMQ.
	AnnotationOnline = "taskrank.online"
	// AnnotationNoApp marks commands that never touch the container.
	AnnotationNoApp = "taskrank.no-app"
)

var (
	cfgFile    string
	verbose    bool
	jsonOutput bool
	logger     *slog.Logger
	cfg        *config.Config
)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "taskrank",
	Short: "taskrank - task priority scoring",
	Long: `taskrank scores and ranks tasks by urgency, importance, effort and
dependencies, classifies them into the Eisenhower matrix and suggests
what to work on today.

Tasks come from a JSON or YAML file, or from the local backlog managed
with "taskrank task".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			appEnv := ""
			if cfg != nil {
				appEnv = cfg.AppEnv
			}
			logger = observability.NewLogger(observability.LogConfigFor(appEnv, "debug", Version))
		}
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := observability.WithCorrelationID(cmd.Context(), info.correlationID)
		cmd.SetContext(context.WithValue(ctx, commandContextKey{}, info))
		logger.Debug("command start",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
		)
		return ensureApp(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.Debug("command end",
			"command", cmd.CommandPath(),
			"correlation_id", info.correlationID.String(),
			"duration_ms", time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// ensureApp builds the container unless one was set with SetApp. One-shot
// commands run offline; commands annotated online get the full stack.
func ensureApp(cmd *cobra.Command) error {
	if app != nil || cmd.Annotations[AnnotationNoApp] == "true" {
		return nil
	}
	if cfg == nil {
		return fmt.Errorf("configuration not loaded")
	}

	container, err := internalApp.NewContainer(cmd.Context(), cfg, logger, internalApp.Options{
		ProfilePath: cfgFile,
		Offline:     cmd.Annotations[AnnotationOnline] != "true",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	app = NewApp(container)
	ownsApp = true
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	err := rootCmd.Execute()
	closeApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "strategy profile file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level and explain every score")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// Root returns the root command.
func Root() *cobra.Command {
	return rootCmd
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// SetConfig sets the configuration used to build the container.
func SetConfig(c *config.Config) {
	cfg = c
}

// Verbose reports whether --verbose was given.
func Verbose() bool {
	return verbose
}

// JSONOutput reports whether --json was given.
func JSONOutput() bool {
	return jsonOutput
}
