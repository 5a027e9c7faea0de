package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

type taskAddInput struct {
	ID             *int64  `json:"id,omitempty"`
	Title          string  `json:"title" jsonschema:"required"`
	DueDate        string  `json:"due_date,omitempty"`
	EstimatedHours float64 `json:"estimated_hours,omitempty"`
	Importance     int     `json:"importance,omitempty"`
	Dependencies   []int64 `json:"dependencies,omitempty"`
}

type taskIDInput struct {
	ID int64 `json:"id" jsonschema:"required"`
}

type taskListOutput struct {
	Tasks []task.Task `json:"tasks"`
	Count int         `json:"count"`
}

func registerTaskTools(srv *mcp.Server, t *tools) {
	srv.Tool("tasks.list").
		Description("List the stored backlog").
		Handler(t.listTasks)

	srv.Tool("tasks.add").
		Description("Store a task in the backlog").
		Handler(t.addTask)

	srv.Tool("tasks.remove").
		Description("Remove a stored task and drop dependencies on it").
		Handler(t.removeTask)
}

func (t *tools) listTasks(ctx context.Context, _ struct{}) (*taskListOutput, error) {
	if t.deps.ListTasks == nil {
		return nil, errors.New("task listing requires database connection")
	}
	tasks, err := t.deps.ListTasks.Handle(ctx)
	if err != nil {
		return nil, err
	}
	return &taskListOutput{Tasks: tasks, Count: len(tasks)}, nil
}

func (t *tools) addTask(ctx context.Context, input taskAddInput) (*commands.CreateTaskResult, error) {
	if t.deps.CreateTask == nil {
		return nil, errors.New("task creation requires database connection")
	}
	if input.Title == "" {
		return nil, errors.New("title is required")
	}
	hours := input.EstimatedHours
	if hours == 0 {
		hours = task.DefaultHours
	}
	importance := input.Importance
	if importance == 0 {
		importance = task.DefaultImportance
	}

	return t.deps.CreateTask.Handle(ctx, commands.CreateTaskCommand{
		ID:             input.ID,
		Title:          input.Title,
		DueDate:        input.DueDate,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   input.Dependencies,
	})
}

func (t *tools) removeTask(ctx context.Context, input taskIDInput) (*commands.DeleteTaskResult, error) {
	if t.deps.DeleteTask == nil {
		return nil, errors.New("task removal requires database connection")
	}
	return t.deps.DeleteTask.Handle(ctx, commands.DeleteTaskCommand{ID: input.ID})
}
