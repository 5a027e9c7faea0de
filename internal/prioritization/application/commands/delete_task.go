package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	sharedApplication "github.com/felixgeelhaar/taskrank/internal/shared/application"
)

// DeleteTaskCommand removes a stored task.
type DeleteTaskCommand struct {
	ID int64
}

// CommandName implements application.Command.
func (DeleteTaskCommand) CommandName() string { return "delete_task" }

// DeleteTaskResult lists the tasks whose dependency on the removed task
// was dropped.
type DeleteTaskResult struct {
	Unlinked []int64 `json:"unlinked"`
}

var _ sharedApplication.CommandHandler[DeleteTaskCommand, *DeleteTaskResult] = (*DeleteTaskHandler)(nil)

// DeleteTaskHandler handles the DeleteTaskCommand.
type DeleteTaskHandler struct {
	taskRepo task.Repository
	uow      sharedApplication.UnitOfWork
}

// NewDeleteTaskHandler creates a new DeleteTaskHandler.
func NewDeleteTaskHandler(taskRepo task.Repository, uow sharedApplication.UnitOfWork) *DeleteTaskHandler {
	return &DeleteTaskHandler{taskRepo: taskRepo, uow: uow}
}

// Handle executes the DeleteTaskCommand. It returns task.ErrNotFound when
// no task has the id.
func (h *DeleteTaskHandler) Handle(ctx context.Context, cmd DeleteTaskCommand) (*DeleteTaskResult, error) {
	result := &DeleteTaskResult{Unlinked: []int64{}}

	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if err := h.taskRepo.Delete(txCtx, cmd.ID); err != nil {
			return err
		}

		remaining, err := h.taskRepo.List(txCtx)
		if err != nil {
			return fmt.Errorf("list tasks: %w", err)
		}
		for i := range remaining {
			t := &remaining[i]
			if !t.DependsOn(cmd.ID) {
				continue
			}
			t.Dependencies = without(t.Dependencies, cmd.ID)
			if err := h.taskRepo.Save(txCtx, t); err != nil {
				return err
			}
			result.Unlinked = append(result.Unlinked, *t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func without(ids []int64, id int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
