package main

import (
	"fmt"
	"os"

	"github.com/felixgeelhaar/taskrank/adapter/cli"
	"github.com/felixgeelhaar/taskrank/adapter/cli/mcp"
	"github.com/felixgeelhaar/taskrank/adapter/cli/task"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(observability.LogConfigFor(cfg.AppEnv, cfg.LogLevel, cli.Version))
	cli.SetLogger(logger)
	cli.SetConfig(cfg)

	cli.AddCommand(task.Cmd)
	cli.AddCommand(mcp.Cmd)

	cli.Execute()
}
