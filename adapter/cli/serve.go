package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/api"
	"github.com/felixgeelhaar/taskrank/adapter/grpcserver"
	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	mcpinternal "github.com/felixgeelhaar/taskrank/internal/mcp"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/ratelimit"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

const shutdownTimeout = 10 * time.Second

var (
	serveAddr     string
	serveGRPCAddr string
	serveMCP      bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the HTTP API together with a gRPC health endpoint and, with --mcp,
the MCP server. Stops cleanly on SIGINT or SIGTERM.

Examples:
  taskrank serve
  taskrank serve --addr :8080 --grpc-addr :8081 --mcp
  taskrank serve --grpc-addr ""                   # no gRPC health`,
	Annotations: map[string]string{
		AnnotationOnline: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app.Bus.Subscribe("taskrank.#", eventLogger(app))

		httpCfg := api.DefaultServerConfig()
		httpCfg.Addr = app.Config.HTTPAddr
		if cmd.Flags().Changed("addr") {
			httpCfg.Addr = serveAddr
		}
		httpCfg.AllowedOrigins = app.Config.CORSOrigins

		rules := api.DefaultRules()
		if app.Config.RateLimitAnalyze > 0 {
			rules.Analyze = ratelimit.PerMinute(app.Config.RateLimitAnalyze)
		}
		if app.Config.RateLimitExport > 0 {
			rules.Export = ratelimit.PerMinute(app.Config.RateLimitExport)
		}
		server := api.NewServer(httpCfg, api.DependenciesFrom(app.Container), rules, app.Logger)

		errCh := make(chan error, 3)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()

		grpcAddr := app.Config.GRPCHealthAddr
		if cmd.Flags().Changed("grpc-addr") {
			grpcAddr = serveGRPCAddr
		}
		if grpcAddr != "" {
			health := grpcserver.NewHealthServer(app.Health, 0, app.Logger)
			go func() {
				if err := health.Serve(ctx, grpcAddr); err != nil {
					errCh <- fmt.Errorf("grpc health server: %w", err)
				}
			}()
		}

		if serveMCP {
			go func() {
				err := mcpinternal.Serve(ctx, app.Config, mcplocal.DependenciesFrom(app.Container), app.Logger)
				if err != nil && !errors.Is(err, context.Canceled) {
					errCh <- fmt.Errorf("mcp server: %w", err)
				}
			}()
		}

		var runErr error
		select {
		case <-ctx.Done():
			app.Logger.Info("shutdown signal received")
		case runErr = <-errCh:
			app.Logger.Error("server failed", "error", runErr)
			stop()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("http server shutdown error", "error", err)
		}
		return runErr
	},
}

// eventLogger records every in-process event in the debug log and the
// metrics registry.
func eventLogger(app *App) eventbus.Handler {
	return func(ctx context.Context, env eventbus.Envelope) error {
		app.Metrics.Counter("taskrank.events.published", 1, observability.T("routing_key", env.RoutingKey))
		app.Logger.DebugContext(ctx, "event",
			"routing_key", env.RoutingKey,
			"event_id", env.EventID.String(),
			"source", env.Source,
		)
		return nil
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "HTTP listen address (default HTTP_ADDR)")
	serveCmd.Flags().StringVar(&serveGRPCAddr, "grpc-addr", "", "gRPC health listen address, empty to disable (default GRPC_HEALTH_ADDR)")
	serveCmd.Flags().BoolVar(&serveMCP, "mcp", false, "also serve MCP on MCP_ADDR")
	rootCmd.AddCommand(serveCmd)
}
