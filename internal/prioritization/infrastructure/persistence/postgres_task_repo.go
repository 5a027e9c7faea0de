package persistence

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
)

const postgresColumns = `id, title, to_char(due_date, 'YYYY-MM-DD'), estimated_hours, importance, dependencies`

// PostgresTaskRepository implements task.Repository on PostgreSQL.
// Dependencies are stored in a BIGINT[] column.
type PostgresTaskRepository struct {
	conn database.Connection
}

// NewPostgresTaskRepository creates a repository on a migrated connection.
func NewPostgresTaskRepository(conn database.Connection) *PostgresTaskRepository {
	return &PostgresTaskRepository{conn: conn}
}

func (r *PostgresTaskRepository) Save(ctx context.Context, t *task.Task) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	deps := pq.Array(nonNil(t.Dependencies))

	if t.ID == nil {
		var id int64
		err := exec.QueryRow(ctx, `
			INSERT INTO tasks (title, due_date, estimated_hours, importance, dependencies)
			VALUES ($1, $2::date, $3, $4, $5)
			RETURNING id`,
			t.Title, dueDateParam(t), t.EstimatedHours, t.Importance, deps,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert task: %w", err)
		}
		return t.SetID(id)
	}

	_, err := exec.Exec(ctx, `
		INSERT INTO tasks (id, title, due_date, estimated_hours, importance, dependencies)
		VALUES ($1, $2, $3::date, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			due_date = EXCLUDED.due_date,
			estimated_hours = EXCLUDED.estimated_hours,
			importance = EXCLUDED.importance,
			dependencies = EXCLUDED.dependencies,
			updated_at = NOW()`,
		*t.ID, t.Title, dueDateParam(t), t.EstimatedHours, t.Importance, deps,
	)
	if err != nil {
		return fmt.Errorf("save task %d: %w", *t.ID, err)
	}

	// Explicit ids bypass the sequence; move it past them.
	_, err = exec.Exec(ctx,
		`SELECT setval(pg_get_serial_sequence('tasks', 'id'), GREATEST((SELECT MAX(id) FROM tasks), 1))`)
	if err != nil {
		return fmt.Errorf("advance task id sequence: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepository) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	row := database.ExecutorFromContext(ctx, r.conn).QueryRow(ctx,
		`SELECT `+postgresColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanPostgresTask(row)
	if err != nil {
		if database.IsNoRows(err) {
			return nil, task.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (r *PostgresTaskRepository) List(ctx context.Context) ([]task.Task, error) {
	rows, err := database.ExecutorFromContext(ctx, r.conn).Query(ctx,
		`SELECT `+postgresColumns+` FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collect(rows, scanPostgresTask)
}

func (r *PostgresTaskRepository) Delete(ctx context.Context, id int64) error {
	return deleted(database.ExecutorFromContext(ctx, r.conn).Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id))
}

func scanPostgresTask(row database.Row) (task.Task, error) {
	var (
		id         int64
		title      string
		due        *string
		hours      float64
		importance int
		deps       []int64
	)
	if err := row.Scan(&id, &title, &due, &hours, &importance, pq.Array(&deps)); err != nil {
		return task.Task{}, err
	}
	return buildTask(id, title, due, hours, importance, deps)
}
