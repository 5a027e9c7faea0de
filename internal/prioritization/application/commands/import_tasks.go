package commands

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
	sharedApplication "github.com/felixgeelhaar/taskrank/internal/shared/application"
)

// ImportTasksCommand stores a batch of tasks, for example one read from a
// JSON or YAML file.
type ImportTasksCommand struct {
	Tasks []task.RawTask
	// Replace removes the stored backlog first.
	Replace bool
}

// CommandName implements application.Command.
func (ImportTasksCommand) CommandName() string { return "import_tasks" }

// ImportTasksResult reports the stored tasks.
type ImportTasksResult struct {
	Imported int     `json:"imported"`
	Removed  int     `json:"removed"`
	IDs      []int64 `json:"ids"`
}

var _ sharedApplication.CommandHandler[ImportTasksCommand, *ImportTasksResult] = (*ImportTasksHandler)(nil)

// ImportTasksHandler handles the ImportTasksCommand.
type ImportTasksHandler struct {
	taskRepo task.Repository
	uow      sharedApplication.UnitOfWork
}

// NewImportTasksHandler creates a new ImportTasksHandler.
func NewImportTasksHandler(taskRepo task.Repository, uow sharedApplication.UnitOfWork) *ImportTasksHandler {
	return &ImportTasksHandler{taskRepo: taskRepo, uow: uow}
}

// Handle executes the ImportTasksCommand. The batch is stored all or
// nothing. Tasks with an id replace the stored task with that id.
func (h *ImportTasksHandler) Handle(ctx context.Context, cmd ImportTasksCommand) (*ImportTasksResult, error) {
	if err := validation.ValidateTasks(cmd.Tasks); err != nil {
		return nil, err
	}

	tasks := make([]*task.Task, 0, len(cmd.Tasks))
	for i, r := range cmd.Tasks {
		t, err := newTask(r)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}

	result := &ImportTasksResult{IDs: make([]int64, 0, len(tasks))}
	err := sharedApplication.WithUnitOfWork(ctx, h.uow, func(txCtx context.Context) error {
		if cmd.Replace {
			existing, err := h.taskRepo.List(txCtx)
			if err != nil {
				return fmt.Errorf("list tasks: %w", err)
			}
			for _, t := range existing {
				if err := h.taskRepo.Delete(txCtx, *t.ID); err != nil {
					return err
				}
			}
			result.Removed = len(existing)
		}

		for _, t := range tasks {
			if err := h.taskRepo.Save(txCtx, t); err != nil {
				return fmt.Errorf("save %q: %w", t.Title, err)
			}
			result.IDs = append(result.IDs, *t.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	result.Imported = len(result.IDs)
	return result, nil
}
