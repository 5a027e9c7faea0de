// Package services holds the priority engine and the selection logic built
// on top of it.
package services

import (
	"encoding/json"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// FactorScore is one factor's raw 0-100 score and its weighted share.
type FactorScore struct {
	Raw          float64
	Contribution float64
}

// MarshalJSON rounds both values to two decimals.
func (f FactorScore) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RawScore     float64 `json:"raw_score"`
		Contribution float64 `json:"contribution"`
	}{
		RawScore:     scoring.Round(f.Raw, 2),
		Contribution: scoring.Round(f.Contribution, 2),
	})
}

// UnmarshalJSON reads the rounded form written by MarshalJSON.
func (f *FactorScore) UnmarshalJSON(data []byte) error {
	var v struct {
		RawScore     float64 `json:"raw_score"`
		Contribution float64 `json:"contribution"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Raw, f.Contribution = v.RawScore, v.Contribution
	return nil
}

// Breakdown lists the per-factor scores behind a priority.
type Breakdown struct {
	Urgency    FactorScore `json:"urgency"`
	Importance FactorScore `json:"importance"`
	Effort     FactorScore `json:"effort"`
	Dependency FactorScore `json:"dependency"`
}

// Total is the unrounded weighted sum.
func (b Breakdown) Total() float64 {
	return b.Urgency.Contribution + b.Importance.Contribution +
		b.Effort.Contribution + b.Dependency.Contribution
}

// PrimaryFactor names the largest contribution. Ties go to the factor
// listed first.
func (b Breakdown) PrimaryFactor() string {
	factors := []struct {
		name  string
		value float64
	}{
		{"Urgency", b.Urgency.Contribution},
		{"Importance", b.Importance.Contribution},
		{"Effort", b.Effort.Contribution},
		{"Dependencies", b.Dependency.Contribution},
	}

	best := factors[0]
	for _, f := range factors[1:] {
		if f.value > best.value {
			best = f
		}
	}
	return best.name
}

// ScoredTask is the annotated result for one task.
type ScoredTask struct {
	ID                    *int64           `json:"id"`
	Title                 string           `json:"title"`
	DueDate               *calendar.Date   `json:"due_date"`
	EstimatedHours        float64          `json:"estimated_hours"`
	Importance            int              `json:"importance"`
	Dependencies          []int64          `json:"dependencies"`
	PriorityScore         float64          `json:"priority_score"`
	PriorityLevel         scoring.Level    `json:"priority_level"`
	Breakdown             Breakdown        `json:"score_breakdown"`
	Explanation           string           `json:"explanation"`
	IsOverdue             bool             `json:"is_overdue"`
	IsBlockingOthers      bool             `json:"is_blocking_others"`
	HasCircularDependency bool             `json:"has_circular_dependency"`
	EisenhowerQuadrant    scoring.Quadrant `json:"eisenhower_quadrant"`
	WorkingDaysUntilDue   *int             `json:"working_days_until_due"`
	ComplexityScore       float64          `json:"complexity_score"`
}
