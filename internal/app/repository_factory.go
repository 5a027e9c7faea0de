package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/infrastructure/persistence"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/taskrank/pkg/config"

	_ "github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
)

// RepositoryFactory creates repositories based on the database driver.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// TaskRepository creates a task repository for the configured driver.
func (f *RepositoryFactory) TaskRepository() (task.Repository, error) {
	switch f.driver {
	case database.DriverPostgres:
		return persistence.NewPostgresTaskRepository(f.conn), nil
	case database.DriverSQLite:
		return persistence.NewSQLiteTaskRepository(f.conn), nil
	default:
		return nil, fmt.Errorf("unsupported driver: %s", f.driver)
	}
}

// UnitOfWork creates a transaction scope over the connection.
func (f *RepositoryFactory) UnitOfWork() *database.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// openDatabase connects to PostgreSQL when a server URL is configured and to
// the local SQLite file otherwise, then applies the schema.
func openDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) (database.Connection, error) {
	if !cfg.LocalMode() {
		if err := migrations.RunPostgres(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		conn, err := database.Open(ctx, database.Config{
			Driver:   database.DriverPostgres,
			URL:      cfg.DatabaseURL,
			MaxConns: cfg.DBMaxConns,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		logger.Info("connected to database", "driver", database.DriverPostgres)
		return conn, nil
	}

	path := cfg.SQLitePath
	if path == "" && cfg.DatabaseURL != "" {
		path = database.SQLitePathFromURL(cfg.DatabaseURL)
	}
	if path == "" {
		path = database.DefaultSQLitePath()
	}

	conn, err := sqlite.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunSQLite(ctx, conn.DB()); err != nil {
		_ = conn.Close()
		return nil, err
	}
	logger.Info("connected to database", "driver", database.DriverSQLite, "path", path)
	return conn, nil
}
