package workload

import (
	"math"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// CompletedTask is a piece of work already done today.
type CompletedTask struct {
	EffortHours float64 `json:"effort_hours"`
	Category    string  `json:"category,omitempty"`
}

// Fatigue is the estimated tiredness after a list of completed tasks.
type Fatigue struct {
	Level                 float64 `json:"fatigue_level"`
	ScoreMultiplier       float64 `json:"score_multiplier"`
	TotalHoursWorked      float64 `json:"total_hours_worked"`
	ConsecutiveHeavyTasks int     `json:"consecutive_heavy_tasks"`
	SameCategoryStreak    int     `json:"same_category_streak"`
	Recommendation        string  `json:"recommendation"`
}

const heavyTaskHours = 2.0

// AssessFatigue rates fatigue from completed work. nextEffort is the size
// of the task about to start and category its optional category.
func AssessFatigue(completed []CompletedTask, nextEffort float64, category string) Fatigue {
	if len(completed) == 0 {
		return Fatigue{
			ScoreMultiplier: 1,
			Recommendation:  "Fresh start - ready for any task!",
		}
	}

	total := 0.0
	for _, c := range completed {
		total += c.EffortHours
	}

	heavy := 0
	for i := len(completed) - 1; i >= 0; i-- {
		if completed[i].EffortHours <= heavyTaskHours {
			break
		}
		heavy++
	}

	streak := 0
	if category != "" {
		for i := len(completed) - 1; i >= 0; i-- {
			if completed[i].Category != category {
				break
			}
			streak++
		}
	}

	level := math.Min(100, (total/8)*40+float64(heavy)*15+float64(streak)*10)

	var multiplier float64
	var rec string
	switch {
	case level < 20:
		multiplier, rec = 1.0, "Energy levels good - proceed with planned tasks."
	case level < 40:
		multiplier, rec = 0.95, "Slight fatigue - consider mixing in a quick win."
	case level < 60:
		multiplier, rec = 0.85, "Moderate fatigue - prioritize shorter, easier tasks."
	case level < 80:
		multiplier, rec = 0.70, "High fatigue - strongly recommend switching to quick tasks or taking a break."
	default:
		multiplier, rec = 0.50, "Very high fatigue - consider stopping or only doing minimal tasks."
	}

	if nextEffort > 4 && level > 50 {
		multiplier *= 0.8
		rec += " Avoid starting new heavy tasks."
	}

	return Fatigue{
		Level:                 scoring.Round(level, 1),
		ScoreMultiplier:       scoring.Round(multiplier, 2),
		TotalHoursWorked:      scoring.Round(total, 1),
		ConsecutiveHeavyTasks: heavy,
		SameCategoryStreak:    streak,
		Recommendation:        rec,
	}
}
