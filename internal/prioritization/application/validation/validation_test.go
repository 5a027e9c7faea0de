package validation

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

func ptr[T any](v T) *T { return &v }

func validTask(id int64) task.RawTask {
	return task.RawTask{
		ID:             ptr(id),
		Title:          ptr("Write docs"),
		DueDate:        ptr("2025-06-10"),
		EstimatedHours: ptr(2.0),
		Importance:     ptr(6),
	}
}

func TestValidateTasks(t *testing.T) {
	t.Run("valid batch", func(t *testing.T) {
		assert.NoError(t, ValidateTasks([]task.RawTask{validTask(1), validTask(2)}))
	})

	t.Run("empty batch", func(t *testing.T) {
		err := ValidateTasks(nil)
		require.Error(t, err)
		assert.Equal(t, CodeEmptyTasks, CodeOf(err))
		assert.Contains(t, err.Error(), "At least one task is required for analysis")
	})

	tests := []struct {
		name   string
		mutate func(*task.RawTask)
		code   Code
		field  string
	}{
		{"missing title", func(r *task.RawTask) { r.Title = nil }, CodeMissingField, "title"},
		{"blank title", func(r *task.RawTask) { r.Title = ptr("   ") }, CodeMissingField, "title"},
		{"missing hours", func(r *task.RawTask) { r.EstimatedHours = nil }, CodeMissingField, "estimated_hours"},
		{"hours too small", func(r *task.RawTask) { r.EstimatedHours = ptr(0.05) }, CodeInvalidHours, "estimated_hours"},
		{"hours too large", func(r *task.RawTask) { r.EstimatedHours = ptr(1000.0) }, CodeInvalidHours, "estimated_hours"},
		{"missing importance", func(r *task.RawTask) { r.Importance = nil }, CodeMissingField, "importance"},
		{"importance out of range", func(r *task.RawTask) { r.Importance = ptr(11) }, CodeInvalidImportance, "importance"},
		{"bad date", func(r *task.RawTask) { r.DueDate = ptr("10/06/2025") }, CodeInvalidDate, "due_date"},
		{"self dependency", func(r *task.RawTask) { r.Dependencies = []int64{7} }, CodeSelfDependency, "dependencies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := validTask(7)
			tt.mutate(&raw)

			err := ValidateTasks([]task.RawTask{raw})
			require.Error(t, err)

			var errs Errors
			require.True(t, errors.As(err, &errs))
			require.Len(t, errs, 1)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
			require.NotNil(t, errs[0].TaskID)
			assert.Equal(t, int64(7), *errs[0].TaskID)
		})
	}

	t.Run("empty due date is allowed", func(t *testing.T) {
		raw := validTask(1)
		raw.DueDate = ptr("")
		assert.NoError(t, ValidateTasks([]task.RawTask{raw}))
	})

	t.Run("duplicate ids", func(t *testing.T) {
		err := ValidateTasks([]task.RawTask{validTask(3), validTask(3)})
		require.Error(t, err)
		assert.Equal(t, CodeInvalidDependency, CodeOf(err))
		assert.Contains(t, err.Error(), "Duplicate task ID: 3")
	})

	t.Run("task without id is referenced by position", func(t *testing.T) {
		raw := validTask(0)
		raw.ID = nil
		raw.Title = nil

		err := ValidateTasks([]task.RawTask{validTask(9), raw})
		var errs Errors
		require.True(t, errors.As(err, &errs))
		assert.Equal(t, int64(2), *errs[0].TaskID)
	})

	t.Run("reports every problem", func(t *testing.T) {
		raw := task.RawTask{}
		var errs Errors
		require.True(t, errors.As(ValidateTasks([]task.RawTask{raw}), &errs))
		assert.Len(t, errs, 3)
	})
}

func TestValidateWeights(t *testing.T) {
	assert.NoError(t, ValidateWeights(scoring.Weights{Urgency: 0, Importance: 1, Effort: 0.5, Dependency: 0.2}))

	err := ValidateWeights(scoring.Weights{Urgency: -0.1, Importance: 1.5})
	var errs Errors
	require.True(t, errors.As(err, &errs))
	require.Len(t, errs, 2)
	assert.Equal(t, "Urgency weight must be between 0 and 1", errs[0].Message)
	assert.Equal(t, "importance_weight", errs[1].Field)
	assert.Equal(t, CodeInvalidWeights, CodeOf(err))
}

func TestValidateStrategy(t *testing.T) {
	assert.NoError(t, ValidateStrategy(""))
	assert.NoError(t, ValidateStrategy("high_impact"))
	assert.NoError(t, ValidateStrategy("focus_sprint", "focus_sprint"))

	err := ValidateStrategy("random")
	require.Error(t, err)
	assert.Equal(t, CodeInvalidStrategy, CodeOf(err))
	assert.Contains(t, err.Error(), "Valid options: smart_balance, fastest_wins, high_impact, deadline_driven")
}

func TestValidateSuggestParams(t *testing.T) {
	assert.NoError(t, ValidateSuggestParams(3, 8))
	assert.Equal(t, CodeInvalidParameter, CodeOf(ValidateSuggestParams(0, 8)))
	assert.Error(t, ValidateSuggestParams(1, 0))
}

func TestIsValidationError(t *testing.T) {
	err := ValidateStrategy("nope")
	assert.True(t, IsValidationError(err))
	assert.True(t, IsValidationError(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidationError(errors.New("boom")))
	assert.Equal(t, Code(""), CodeOf(errors.New("boom")))
}

func TestCode_IsValid(t *testing.T) {
	assert.True(t, CodeSelfDependency.IsValid())
	assert.False(t, Code("ERR_UNKNOWN").IsValid())
}
