package mcp

import (
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

const mcpSource = "taskrank.mcp"

// weightsInput holds custom factor weights. Missing factors keep their
// smart_balance value.
type weightsInput struct {
	Urgency    *float64 `json:"urgency,omitempty"`
	Importance *float64 `json:"importance,omitempty"`
	Effort     *float64 `json:"effort,omitempty"`
	Dependency *float64 `json:"dependency,omitempty"`
}

func (in *weightsInput) weights() *scoring.Weights {
	if in == nil {
		return nil
	}
	w := scoring.SmartBalance.Weights()
	if in.Urgency != nil {
		w.Urgency = *in.Urgency
	}
	if in.Importance != nil {
		w.Importance = *in.Importance
	}
	if in.Effort != nil {
		w.Effort = *in.Effort
	}
	if in.Dependency != nil {
		w.Dependency = *in.Dependency
	}
	return &w
}

// scoringInput carries the options shared by analysis and suggestion.
type scoringInput struct {
	Strategy      string
	Weights       *weightsInput
	SkipWeekends  *bool
	Holidays      []string
	ReferenceDate string
	TimeAware     bool
}

func (in scoringInput) options() (queries.ScoringOptions, error) {
	opts := queries.ScoringOptions{
		Strategy:     in.Strategy,
		Weights:      in.Weights.weights(),
		SkipWeekends: in.SkipWeekends,
		Holidays:     in.Holidays,
		TimeAware:    in.TimeAware,
		Source:       mcpSource,
	}
	if in.ReferenceDate != "" {
		d, err := calendar.ParseDate(in.ReferenceDate)
		if err != nil {
			return opts, &validation.Error{
				Code:    validation.CodeInvalidDate,
				Message: "Reference date must be in ISO format (YYYY-MM-DD)",
				Field:   "reference_date",
			}
		}
		opts.ReferenceDate = &d
	}
	return opts, nil
}
