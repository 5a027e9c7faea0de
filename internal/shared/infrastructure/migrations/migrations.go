// Package migrations applies the embedded schema for each backend.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	_ "github.com/lib/pq"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// RunSQLite applies the SQLite schema to db.
func RunSQLite(ctx context.Context, db *sql.DB) error {
	return run(ctx, db, "sqlite")
}

// RunPostgres opens url with the lib/pq driver and applies the PostgreSQL
// schema. The pgx pool used by repositories is separate.
func RunPostgres(ctx context.Context, url string) error {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return fmt.Errorf("failed to open postgres for migrations: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return run(ctx, db, "postgres")
}

// UpFiles lists the forward migrations of a backend in apply order.
func UpFiles(dir string) ([]string, error) {
	entries, err := fs.ReadDir(files, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var up []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			up = append(up, entry.Name())
		}
	}
	sort.Strings(up)
	return up, nil
}

// Every statement is idempotent, so migrations are re-run on each start.
func run(ctx context.Context, db *sql.DB, dir string) error {
	up, err := UpFiles(dir)
	if err != nil {
		return err
	}
	for _, name := range up {
		body, err := files.ReadFile(dir + "/" + name)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.ExecContext(ctx, string(body)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}
	return nil
}
