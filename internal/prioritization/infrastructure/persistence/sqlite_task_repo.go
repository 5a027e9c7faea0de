package persistence

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
)

const sqliteColumns = `id, title, due_date, estimated_hours, importance, dependencies`

// SQLiteTaskRepository implements task.Repository on SQLite. Dependencies
// are stored as a JSON array.
type SQLiteTaskRepository struct {
	conn database.Connection
}

// NewSQLiteTaskRepository creates a repository on a migrated connection.
func NewSQLiteTaskRepository(conn database.Connection) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{conn: conn}
}

func (r *SQLiteTaskRepository) Save(ctx context.Context, t *task.Task) error {
	deps, err := json.Marshal(nonNil(t.Dependencies))
	if err != nil {
		return fmt.Errorf("encode dependencies: %w", err)
	}
	exec := database.ExecutorFromContext(ctx, r.conn)

	if t.ID == nil {
		var id int64
		err := exec.QueryRow(ctx, `
			INSERT INTO tasks (title, due_date, estimated_hours, importance, dependencies)
			VALUES (?, ?, ?, ?, ?)
			RETURNING id`,
			t.Title, dueDateParam(t), t.EstimatedHours, t.Importance, string(deps),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return t.SetID(id)
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO tasks (id, title, due_date, estimated_hours, importance, dependencies)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			due_date = excluded.due_date,
			estimated_hours = excluded.estimated_hours,
			importance = excluded.importance,
			dependencies = excluded.dependencies,
			updated_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')`,
		*t.ID, t.Title, dueDateParam(t), t.EstimatedHours, t.Importance, string(deps),
	)
	if err != nil {
		return fmt.Errorf("save task %d: %w", *t.ID, err)
	}
	return nil
}

func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+sqliteColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanSQLiteTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *SQLiteTaskRepository) List(ctx context.Context) ([]task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+sqliteColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collect(rows, scanSQLiteTask)
}

func (r *SQLiteTaskRepository) Delete(ctx context.Context, id int64) error {
	return deleted(database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id))
}

func scanSQLiteTask(row database.Row) (task.Task, error) {
	var (
		id         int64
		title      string
		due        *string
		hours      float64
		importance int
		rawDeps    string
	)
	if err := row.Scan(&id, &title, &due, &hours, &importance, &rawDeps); err != nil {
		return task.Task{}, err
	}
	var deps []int64
	if err := json.Unmarshal([]byte(rawDeps), &deps); err != nil {
		return task.Task{}, fmt.Errorf("task %d: decode dependencies: %w", id, err)
	}
	return buildTask(id, title, due, hours, importance, deps)
}

func nonNil(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
