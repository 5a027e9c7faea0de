package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

type ctxKey string

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Save(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *mockTaskRepo) List(ctx context.Context) ([]task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]task.Task), args.Error(1)
}

func (m *mockTaskRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// assignID mimics a repository assigning the next id on insert.
func assignID(next int64) func(mock.Arguments) {
	return func(args mock.Arguments) {
		t := args.Get(1).(*task.Task)
		if t.ID == nil {
			_ = t.SetID(next)
		}
	}
}

func storedTask(t *testing.T, id int64, title string, deps ...int64) task.Task {
	t.Helper()
	st, err := task.New(title, nil, 1, 5, deps)
	require.NoError(t, err)
	require.NoError(t, st.SetID(id))
	return *st
}

func TestCreateTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

	t.Run("stores a task and returns its id", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		existing := storedTask(t, 1, "Design schema")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("FindByID", txCtx, int64(1)).Return(&existing, nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*task.Task")).Run(assignID(2)).Return(nil)

		result, err := NewCreateTaskHandler(repo, uow).Handle(ctx, CreateTaskCommand{
			Title:          "  Build API  ",
			DueDate:        "2025-06-09",
			EstimatedHours: 6,
			Importance:     8,
			Dependencies:   []int64{1},
		})
		require.NoError(t, err)

		assert.Equal(t, int64(2), *result.Task.ID)
		assert.Equal(t, "Build API", result.Task.Title)
		assert.Equal(t, calendar.NewDate(2025, time.June, 9), *result.Task.DueDate)
		uow.AssertExpectations(t)
		repo.AssertExpectations(t)
	})

	t.Run("rejects invalid input before opening a transaction", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)

		_, err := NewCreateTaskHandler(repo, uow).Handle(ctx, CreateTaskCommand{
			Title:          "Bad",
			EstimatedHours: 1,
			Importance:     11,
		})
		assert.Equal(t, validation.CodeInvalidImportance, validation.CodeOf(err))
		uow.AssertNotCalled(t, "Begin", mock.Anything)
	})

	t.Run("rolls back on a missing dependency", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("FindByID", txCtx, int64(9)).Return(nil, task.ErrNotFound)

		_, err := NewCreateTaskHandler(repo, uow).Handle(ctx, CreateTaskCommand{
			Title:          "Orphan",
			EstimatedHours: 1,
			Importance:     5,
			Dependencies:   []int64{9},
		})
		assert.Equal(t, validation.CodeInvalidDependency, validation.CodeOf(err))
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		uow.AssertExpectations(t)
	})

	t.Run("fails when begin fails", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		boom := errors.New("database locked")
		uow.On("Begin", ctx).Return(ctx, boom)

		_, err := NewCreateTaskHandler(repo, uow).Handle(ctx, CreateTaskCommand{
			Title: "Task", EstimatedHours: 1, Importance: 5,
		})
		assert.ErrorIs(t, err, boom)
	})
}

func TestDeleteTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

	t.Run("removes the task and unlinks dependents", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("Delete", txCtx, int64(1)).Return(nil)
		repo.On("List", txCtx).Return([]task.Task{
			storedTask(t, 2, "Depends on one", 1, 3),
			storedTask(t, 3, "Independent"),
		}, nil)
		repo.On("Save", txCtx, mock.MatchedBy(func(st *task.Task) bool {
			return *st.ID == 2 && len(st.Dependencies) == 1 && st.Dependencies[0] == 3
		})).Return(nil).Once()

		result, err := NewDeleteTaskHandler(repo, uow).Handle(ctx, DeleteTaskCommand{ID: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{2}, result.Unlinked)
		repo.AssertExpectations(t)
		uow.AssertExpectations(t)
	})

	t.Run("missing task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("Delete", txCtx, int64(5)).Return(task.ErrNotFound)

		_, err := NewDeleteTaskHandler(repo, uow).Handle(ctx, DeleteTaskCommand{ID: 5})
		assert.ErrorIs(t, err, task.ErrNotFound)
		uow.AssertExpectations(t)
	})
}

func TestImportTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()
	txCtx := context.WithValue(ctx, ctxKey("tx"), "transaction")

	title := func(s string) *string { return &s }
	hours := func(h float64) *float64 { return &h }
	importance := func(i int) *int { return &i }
	id := func(i int64) *int64 { return &i }

	batch := []task.RawTask{
		{ID: id(10), Title: title("Plan"), EstimatedHours: hours(1), Importance: importance(7)},
		{Title: title("Execute"), EstimatedHours: hours(3), Importance: importance(6), Dependencies: []int64{10}},
	}

	t.Run("replaces the backlog", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Commit", txCtx).Return(nil)
		repo.On("List", txCtx).Return([]task.Task{storedTask(t, 1, "Old")}, nil)
		repo.On("Delete", txCtx, int64(1)).Return(nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*task.Task")).Run(assignID(11)).Return(nil).Twice()

		result, err := NewImportTasksHandler(repo, uow).Handle(ctx, ImportTasksCommand{Tasks: batch, Replace: true})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Imported)
		assert.Equal(t, 1, result.Removed)
		assert.Equal(t, []int64{10, 11}, result.IDs)
		repo.AssertExpectations(t)
	})

	t.Run("rolls back when a save fails", func(t *testing.T) {
		repo := new(mockTaskRepo)
		uow := new(mockUnitOfWork)
		boom := errors.New("constraint failed")

		uow.On("Begin", ctx).Return(txCtx, nil)
		uow.On("Rollback", txCtx).Return(nil)
		repo.On("Save", txCtx, mock.AnythingOfType("*task.Task")).Return(boom).Once()

		_, err := NewImportTasksHandler(repo, uow).Handle(ctx, ImportTasksCommand{Tasks: batch})
		assert.ErrorIs(t, err, boom)
		uow.AssertExpectations(t)
	})

	t.Run("rejects an empty batch", func(t *testing.T) {
		_, err := NewImportTasksHandler(new(mockTaskRepo), new(mockUnitOfWork)).Handle(ctx, ImportTasksCommand{})
		assert.Equal(t, validation.CodeEmptyTasks, validation.CodeOf(err))
	})
}
