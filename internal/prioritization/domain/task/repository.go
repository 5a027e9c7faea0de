package task

import "context"

// Repository persists the local task backlog.
type Repository interface {
	// Save inserts a task without an id and assigns one, or updates an existing task.
	Save(ctx context.Context, t *Task) error
	FindByID(ctx context.Context, id int64) (*Task, error)
	List(ctx context.Context) ([]Task, error)
	Delete(ctx context.Context, id int64) error
}
