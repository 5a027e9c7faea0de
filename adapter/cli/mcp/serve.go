package mcp

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	mcpinternal "github.com/felixgeelhaar/taskrank/internal/mcp"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Serve the taskrank tools, resources and prompts to MCP clients over HTTP.
Set MCP_AUTH_TOKEN to require a bearer token.`,
	Annotations: map[string]string{
		cli.AnnotationOnline: "true",
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil {
			return fmt.Errorf("application not initialized")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		cfg := *app.Config
		if serveAddr != "" {
			cfg.MCPAddr = serveAddr
		}

		err := mcpinternal.Serve(ctx, &cfg, mcplocal.DependenciesFrom(app.Container), app.Logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default MCP_ADDR)")
}
