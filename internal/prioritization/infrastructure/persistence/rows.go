// Package persistence stores the task backlog in SQLite or PostgreSQL.
package persistence

import (
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/database"
)

func dueDateParam(t *task.Task) *string {
	if t.DueDate == nil {
		return nil
	}
	s := t.DueDate.String()
	return &s
}

func buildTask(id int64, title string, due *string, hours float64, importance int, deps []int64) (task.Task, error) {
	t := task.Task{
		ID:             &id,
		Title:          title,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   deps,
	}
	if t.Dependencies == nil {
		t.Dependencies = []int64{}
	}
	if due != nil && *due != "" {
		d, err := calendar.ParseDate(*due)
		if err != nil {
			return task.Task{}, fmt.Errorf("task %d: %w", id, err)
		}
		t.DueDate = &d
	}
	return t, nil
}

func collect(rows database.Rows, scan func(database.Row) (task.Task, error)) ([]task.Task, error) {
	defer rows.Close()

	tasks := []task.Task{}
	for rows.Next() {
		t, err := scan(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return tasks, nil
}

func deleted(res database.Result, err error) error {
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return task.ErrNotFound
	}
	return nil
}
