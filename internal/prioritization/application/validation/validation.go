// Package validation checks caller input before it reaches the scoring
// engine and reports problems with stable error codes.
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// Code identifies a class of input problem.
type Code string

const (
	CodeSuccess            Code = "SUCCESS"
	CodeMissingField       Code = "ERR_MISSING_FIELD"
	CodeInvalidDate        Code = "ERR_INVALID_DATE"
	CodeInvalidHours       Code = "ERR_INVALID_HOURS"
	CodeInvalidImportance  Code = "ERR_INVALID_IMPORTANCE"
	CodeCircularDependency Code = "ERR_CIRCULAR_DEPENDENCY"
	CodeSelfDependency     Code = "ERR_SELF_DEPENDENCY"
	CodeInvalidDependency  Code = "ERR_INVALID_DEPENDENCY"
	CodeInvalidWeights     Code = "ERR_INVALID_WEIGHTS"
	CodeEmptyTasks         Code = "ERR_EMPTY_TASKS"
	CodeInvalidStrategy    Code = "ERR_INVALID_STRATEGY"
	CodeInvalidParameter   Code = "ERR_INVALID_PARAMETER"
)

func (c Code) String() string { return string(c) }

// IsValid reports whether c is a known code.
func (c Code) IsValid() bool {
	switch c {
	case CodeSuccess, CodeMissingField, CodeInvalidDate, CodeInvalidHours,
		CodeInvalidImportance, CodeCircularDependency, CodeSelfDependency,
		CodeInvalidDependency, CodeInvalidWeights, CodeEmptyTasks,
		CodeInvalidStrategy, CodeInvalidParameter:
		return true
	}
	return false
}

// Error is a single validation failure.
type Error struct {
	Code    Code   `json:"error_code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	// TaskID is the task's id, or its 1-based position when it has none.
	TaskID *int64 `json:"task_id,omitempty"`
}

func (e *Error) Error() string {
	if e.TaskID != nil {
		return fmt.Sprintf("%s: task %d: %s", e.Code, *e.TaskID, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Errors aggregates every failure found in one request.
type Errors []*Error

func (errs Errors) Error() string {
	msgs := make([]string, len(errs))
	for i, e := range errs {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Code returns the code of the first failure.
func (errs Errors) Code() Code {
	if len(errs) == 0 {
		return CodeSuccess
	}
	return errs[0].Code
}

// Unwrap exposes the individual failures to errors.Is and errors.As.
func (errs Errors) Unwrap() []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}

// orNil keeps a nil Errors from becoming a non-nil error interface.
func (errs Errors) orNil() error {
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// IsValidationError reports whether err carries validation failures.
func IsValidationError(err error) bool {
	var one *Error
	var many Errors
	return errors.As(err, &many) || errors.As(err, &one)
}

// CodeOf extracts the code of the first validation failure in err.
func CodeOf(err error) Code {
	var many Errors
	if errors.As(err, &many) {
		return many.Code()
	}
	var one *Error
	if errors.As(err, &one) {
		return one.Code
	}
	return ""
}

// ValidateTasks checks a batch of raw tasks. It returns nil or Errors.
func ValidateTasks(tasks []task.RawTask) error {
	if len(tasks) == 0 {
		return Errors{{Code: CodeEmptyTasks, Message: "At least one task is required for analysis"}}
	}

	var errs Errors
	seen := make(map[int64]struct{}, len(tasks))

	for i, t := range tasks {
		ref := int64(i + 1)
		if t.ID != nil {
			ref = *t.ID
		}
		add := func(code Code, field, msg string) {
			taskID := ref
			errs = append(errs, &Error{Code: code, Message: msg, Field: field, TaskID: &taskID})
		}

		if t.Title == nil || strings.TrimSpace(*t.Title) == "" {
			add(CodeMissingField, "title", "Task title is required and cannot be empty")
		}

		switch {
		case t.EstimatedHours == nil:
			add(CodeMissingField, "estimated_hours", "Estimated hours is required")
		case *t.EstimatedHours < task.MinHours:
			add(CodeInvalidHours, "estimated_hours", "Estimated hours must be a positive number (minimum 0.1)")
		case *t.EstimatedHours >= task.MaxHours:
			add(CodeInvalidHours, "estimated_hours", "Estimated hours must be less than 1000")
		}

		switch {
		case t.Importance == nil:
			add(CodeMissingField, "importance", "Importance rating is required")
		case *t.Importance < task.MinImportance || *t.Importance > task.MaxImportance:
			add(CodeInvalidImportance, "importance", "Importance must be an integer between 1 and 10")
		}

		if t.DueDate != nil && *t.DueDate != "" {
			if _, err := calendar.ParseDate(*t.DueDate); err != nil {
				add(CodeInvalidDate, "due_date", "Due date must be in ISO format (YYYY-MM-DD)")
			}
		}

		if t.ID != nil {
			for _, d := range t.Dependencies {
				if d == *t.ID {
					add(CodeSelfDependency, "dependencies", "A task cannot depend on itself")
					break
				}
			}
			if _, dup := seen[*t.ID]; dup {
				add(CodeInvalidDependency, "id", fmt.Sprintf("Duplicate task ID: %d", *t.ID))
			}
			seen[*t.ID] = struct{}{}
		}
	}

	return errs.orNil()
}

// ValidateWeights checks that every weight lies in [0, 1].
func ValidateWeights(w scoring.Weights) error {
	var errs Errors
	check := func(name, field string, v float64) {
		if v < 0 || v > 1 {
			errs = append(errs, &Error{
				Code:    CodeInvalidWeights,
				Message: name + " weight must be between 0 and 1",
				Field:   field,
			})
		}
	}
	check("Urgency", "urgency_weight", w.Urgency)
	check("Importance", "importance_weight", w.Importance)
	check("Effort", "effort_weight", w.Effort)
	check("Dependency", "dependency_weight", w.Dependency)
	return errs.orNil()
}

// ValidateStrategy rejects names that are neither presets nor in extra.
func ValidateStrategy(name string, extra ...string) error {
	if name == "" {
		return nil
	}
	if scoring.Strategy(name).IsPreset() {
		return nil
	}
	for _, e := range extra {
		if e == name {
			return nil
		}
	}

	valid := make([]string, 0, len(scoring.Presets())+len(extra))
	for _, s := range scoring.Presets() {
		valid = append(valid, s.String())
	}
	valid = append(valid, extra...)
	return &Error{
		Code:    CodeInvalidStrategy,
		Message: fmt.Sprintf("Invalid strategy: %s. Valid options: %s", name, strings.Join(valid, ", ")),
		Field:   "strategy",
	}
}

// ValidateSuggestParams checks the count and hour budget of a suggestion request.
func ValidateSuggestParams(count int, maxHours float64) error {
	var errs Errors
	if count < 1 {
		errs = append(errs, &Error{Code: CodeInvalidParameter, Message: "Count must be at least 1", Field: "count"})
	}
	if maxHours <= 0 {
		errs = append(errs, &Error{Code: CodeInvalidParameter, Message: "Max hours must be positive", Field: "max_hours"})
	}
	return errs.orNil()
}
