package workload

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContextAt(t *testing.T) {
	at := func(hour int) time.Time {
		return time.Date(2025, 6, 2, hour, 15, 0, 0, time.UTC)
	}

	tests := []struct {
		hour     int
		period   string
		maxHours float64
	}{
		{5, "early_morning", 8},
		{10, "morning", 6},
		{12, "midday", 4},
		{16, "afternoon", 4},
		{19, "evening", 2},
		{22, "late_evening", 1},
		{23, "night", 0.5},
		{2, "night", 0.5},
	}

	for _, tt := range tests {
		ctx := ContextAt(at(tt.hour))
		assert.Equal(t, tt.period, ctx.Period, "hour %d", tt.hour)
		assert.Equal(t, tt.maxHours, ctx.SuggestedMaxHours, "hour %d", tt.hour)
	}

	assert.Equal(t, 2.0, ContextAt(at(18)).CapHours(8))
	assert.Equal(t, 1.5, ContextAt(at(10)).CapHours(1.5))
}

func TestAssessFatigue(t *testing.T) {
	t.Run("fresh start", func(t *testing.T) {
		f := AssessFatigue(nil, 3, "")
		assert.Equal(t, 0.0, f.Level)
		assert.Equal(t, 1.0, f.ScoreMultiplier)
		assert.Equal(t, "Fresh start - ready for any task!", f.Recommendation)
	})

	t.Run("light work", func(t *testing.T) {
		f := AssessFatigue([]CompletedTask{{EffortHours: 1}, {EffortHours: 1.5}}, 1, "")
		assert.Equal(t, 12.5, f.Level)
		assert.Equal(t, 1.0, f.ScoreMultiplier)
		assert.Equal(t, 0, f.ConsecutiveHeavyTasks)
		assert.Equal(t, 2.5, f.TotalHoursWorked)
	})

	t.Run("heavy streak with same category", func(t *testing.T) {
		done := []CompletedTask{
			{EffortHours: 1, Category: "ops"},
			{EffortHours: 3, Category: "dev"},
			{EffortHours: 3, Category: "dev"},
		}
		f := AssessFatigue(done, 5, "dev")

		// 7/8*40 + 2*15 + 2*10 = 85
		assert.Equal(t, 85.0, f.Level)
		assert.Equal(t, 2, f.ConsecutiveHeavyTasks)
		assert.Equal(t, 2, f.SameCategoryStreak)
		assert.Equal(t, 0.4, f.ScoreMultiplier)
		assert.Contains(t, f.Recommendation, "Avoid starting new heavy tasks.")
	})

	t.Run("level caps at 100", func(t *testing.T) {
		f := AssessFatigue([]CompletedTask{{EffortHours: 30}}, 1, "")
		assert.Equal(t, 100.0, f.Level)
		assert.Equal(t, 0.5, f.ScoreMultiplier)
	})
}
