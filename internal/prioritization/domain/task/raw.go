package task

import (
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
)

// RawTask is the task as received from callers. Every field is optional.
type RawTask struct {
	ID             *int64   `json:"id,omitempty" yaml:"id,omitempty"`
	Title          *string  `json:"title,omitempty" yaml:"title,omitempty"`
	DueDate        *string  `json:"due_date,omitempty" yaml:"due_date,omitempty"`
	EstimatedHours *float64 `json:"estimated_hours,omitempty" yaml:"estimated_hours,omitempty"`
	Importance     *int     `json:"importance,omitempty" yaml:"importance,omitempty"`
	Dependencies   []int64  `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Normalize applies defaults. A due date that does not parse is dropped
// rather than reported; validation is a separate step.
func (r RawTask) Normalize() Task {
	t := Task{
		ID:             r.ID,
		Title:          DefaultTitle,
		EstimatedHours: DefaultHours,
		Importance:     DefaultImportance,
		Dependencies:   []int64{},
	}
	if r.Title != nil {
		t.Title = *r.Title
	}
	if r.EstimatedHours != nil {
		t.EstimatedHours = *r.EstimatedHours
	}
	if r.Importance != nil {
		t.Importance = *r.Importance
	}
	if r.DueDate != nil && *r.DueDate != "" {
		if d, err := calendar.ParseDate(*r.DueDate); err == nil {
			t.DueDate = &d
		}
	}
	if len(r.Dependencies) > 0 {
		t.Dependencies = append([]int64(nil), r.Dependencies...)
	}
	return t
}

// NormalizeAll normalizes a batch.
func NormalizeAll(raw []RawTask) []Task {
	out := make([]Task, len(raw))
	for i, r := range raw {
		out[i] = r.Normalize()
	}
	return out
}

// Raw converts a normalized task back into its wire form.
func (t Task) Raw() RawTask {
	title := t.Title
	hours := t.EstimatedHours
	importance := t.Importance
	r := RawTask{
		ID:             t.ID,
		Title:          &title,
		EstimatedHours: &hours,
		Importance:     &importance,
		Dependencies:   append([]int64(nil), t.Dependencies...),
	}
	if t.DueDate != nil {
		s := t.DueDate.String()
		r.DueDate = &s
	}
	return r
}
