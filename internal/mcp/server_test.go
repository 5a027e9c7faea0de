package mcp

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/mcp-go/middleware"
	"github.com/felixgeelhaar/mcp-go/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mcplocal "github.com/felixgeelhaar/taskrank/adapter/mcp"
	"github.com/felixgeelhaar/taskrank/internal/app"
	"github.com/felixgeelhaar/taskrank/pkg/config"
)

func TestNewServer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		AppEnv:     "test",
		SQLitePath: filepath.Join(t.TempDir(), "taskrank.db"),
		Strategy:   "smart_balance",
	}
	c, err := app.NewContainer(context.Background(), cfg, logger, app.Options{Offline: true})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	srv, err := NewServer(mcplocal.DependenciesFrom(c), logger)
	require.NoError(t, err)

	tc := testutil.NewTestClient(t, srv)
	defer tc.Close()

	tools, err := tc.ListTools()
	require.NoError(t, err)
	assert.NotEmpty(t, tools)
}

func TestNewServer_MissingHandlers(t *testing.T) {
	_, err := NewServer(mcplocal.ToolDependencies{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	assert.Error(t, err)
}

func TestServe_RequiresConfig(t *testing.T) {
	assert.Error(t, Serve(context.Background(), nil, mcplocal.ToolDependencies{}, nil))
}

func TestFieldsToArgs(t *testing.T) {
	args := fieldsToArgs([]middleware.Field{{Key: "tool", Value: "tasks.analyze"}, {Key: "ms", Value: 12}})
	assert.Equal(t, []any{"tool", "tasks.analyze", "ms", 12}, args)
}
