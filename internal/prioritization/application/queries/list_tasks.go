package queries

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// ListTasksHandler reads the stored backlog.
type ListTasksHandler struct {
	repo task.Repository
}

// NewListTasksHandler creates a new ListTasksHandler.
func NewListTasksHandler(repo task.Repository) *ListTasksHandler {
	return &ListTasksHandler{repo: repo}
}

// Handle returns every stored task ordered by id.
func (h *ListTasksHandler) Handle(ctx context.Context) ([]task.Task, error) {
	tasks, err := h.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// HandleRaw returns the stored backlog in wire form, ready for analysis.
func (h *ListTasksHandler) HandleRaw(ctx context.Context) ([]task.RawTask, error) {
	tasks, err := h.Handle(ctx)
	if err != nil {
		return nil, err
	}
	raw := make([]task.RawTask, len(tasks))
	for i, t := range tasks {
		raw[i] = t.Raw()
	}
	return raw, nil
}
