// Package commands holds the write-side use cases over the stored backlog.
package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	sharedApplication "github.com/felixgeelhaar/taskrank/internal/shared/application"
)

// CreateTaskCommand contains the data needed to store a task.
type CreateTaskCommand struct {
	// ID is optional; the repository assigns one when nil.
	ID             *int64
	Title          string
	DueDate        string
	EstimatedHours float64
	Importance     int
	Dependencies   []int64
}

// CommandName implements application.Command.
func (CreateTaskCommand) CommandName() string { return "create_task" }

func (c CreateTaskCommand) raw() task.RawTask {
	r := task.RawTask{
		ID:             c.ID,
		Title:          &c.Title,
		EstimatedHours: &c.EstimatedHours,
		Importance:     &c.Importance,
		Dependencies:   c.Dependencies,
	}
	if c.DueDate != "" {
		r.DueDate = &c.DueDate
	}
	return r
}

// CreateTaskResult contains the stored task.
type CreateTaskResult struct {
	Task task.Task `json:"task"`
}

var _ sharedApplication.CommandHandler[CreateTaskCommand, *CreateTaskResult] = (*CreateTaskHandler)(nil)

// CreateTaskHandler handles the CreateTaskCommand.
type CreateTaskHandler struct {
	taskRepo task.Repository
	uow      sharedApplication.UnitOfWork
}

// NewCreateTaskHandler creates a new CreateTaskHandler.
func NewCreateTaskHandler(taskRepo task.Repository, uow sharedApplication.UnitOfWork) *CreateTaskHandler {
	return &CreateTaskHandler{taskRepo: taskRepo, uow: uow}
}

// Handle executes the CreateTaskCommand. Every dependency must name a
// stored task.
func (h *CreateTaskHandler) Handle(ctx context.Context, cmd CreateTaskCommand) (*CreateTaskResult, error) {
	if err := validation.ValidateTasks([]task.RawTask{cmd.raw()}); err != nil {
		return nil, err
	}
	t, err := newTask(cmd.raw())
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		for _, dep := range t.Dependencies {
			if _, err := h.taskRepo.FindByID(txCtx, dep); err != nil {
				if errors.Is(err, task.ErrNotFound) {
					return &validation.Error{
						Code:    validation.CodeInvalidDependency,
						Message: fmt.Sprintf("Dependency %d does not exist", dep),
						Field:   "dependencies",
					}
				}
				return err
			}
		}
		return h.taskRepo.Save(txCtx, t)
	})
	if err != nil {
		return nil, err
	}
	return &CreateTaskResult{Task: *t}, nil
}

// newTask builds a task from a validated raw record.
func newTask(r task.RawTask) (*task.Task, error) {
	var due *calendar.Date
	if r.DueDate != nil && *r.DueDate != "" {
		d, err := calendar.ParseDate(*r.DueDate)
		if err != nil {
			return nil, err
		}
		due = &d
	}
	t, err := task.New(*r.Title, due, *r.EstimatedHours, *r.Importance, append([]int64(nil), r.Dependencies...))
	if err != nil {
		return nil, err
	}
	if r.ID != nil {
		if err := t.SetID(*r.ID); err != nil {
			return nil, err
		}
	}
	return t, nil
}
