// Package workload adjusts daily suggestions for the time of day and for
// the work already done.
package workload

import "time"

// TimeContext describes how much focused work suits the current hour.
type TimeContext struct {
	Period            string  `json:"time_context"`
	SuggestedMaxHours float64 `json:"suggested_max_hours"`
	EffortPreference  string  `json:"effort_preference"`
	FocusLevel        string  `json:"focus_level"`
	Message           string  `json:"message"`
}

type period struct {
	from, to int
	ctx      TimeContext
}

var periods = []period{
	{5, 9, TimeContext{"early_morning", 8, "high", "high", "Early morning - great time for complex, high-focus tasks!"}},
	{9, 12, TimeContext{"morning", 6, "high", "high", "Peak productivity hours - tackle your most important work!"}},
	{12, 14, TimeContext{"midday", 4, "medium", "medium", "Post-lunch period - good for moderate complexity tasks."}},
	{14, 17, TimeContext{"afternoon", 4, "medium", "medium", "Afternoon focus - balance important and quick-win tasks."}},
	{17, 20, TimeContext{"evening", 2, "low", "low", "Evening hours - focus on lighter tasks or wrap-up work."}},
	{20, 23, TimeContext{"late_evening", 1, "low", "low", "Late evening - only tackle quick, low-effort tasks."}},
}

var night = TimeContext{"night", 0.5, "minimal", "minimal", "Late night - consider resting! Only urgent items if needed."}

// ContextAt returns the time context for the wall-clock hour of t.
func ContextAt(t time.Time) TimeContext {
	hour := t.Hour()
	for _, p := range periods {
		if hour >= p.from && hour < p.to {
			return p.ctx
		}
	}
	return night
}

// CapHours limits maxHours to what the time context suggests.
func (c TimeContext) CapHours(maxHours float64) float64 {
	return min(maxHours, c.SuggestedMaxHours)
}
