package services

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// Monday with no holiday in the following weeks.
var monday = calendar.NewDate(2025, 6, 2)

func id(v int64) *int64 { return &v }

func due(offset int) *calendar.Date {
	d := monday.AddDays(offset)
	return &d
}

func newTask(title string, dueOffset *int, hours float64, importance int) task.Task {
	t := task.Task{
		Title:          title,
		EstimatedHours: hours,
		Importance:     importance,
		Dependencies:   []int64{},
	}
	if dueOffset != nil {
		t.DueDate = due(*dueOffset)
	}
	return t
}

func offset(v int) *int { return &v }

func TestDefaultPriorityEngineConfig(t *testing.T) {
	cfg := DefaultPriorityEngineConfig()

	assert.Equal(t, scoring.SmartBalance, cfg.Strategy)
	assert.True(t, cfg.SkipWeekends)
	assert.Nil(t, cfg.Weights)
	assert.Nil(t, cfg.Holidays)
}

func TestNewPriorityEngine(t *testing.T) {
	t.Run("uses preset weights", func(t *testing.T) {
		engine := NewPriorityEngine(PriorityEngineConfig{Strategy: scoring.HighImpact})
		assert.Equal(t, scoring.HighImpact.Weights(), engine.Weights())
		assert.Equal(t, "High Impact", engine.StrategyName())
	})

	t.Run("custom weights override the strategy and are normalized", func(t *testing.T) {
		w := scoring.Weights{Urgency: 1, Importance: 1, Effort: 1, Dependency: 1}
		engine := NewPriorityEngine(PriorityEngineConfig{Strategy: scoring.FastestWins, Weights: &w})
		assert.InDelta(t, 0.25, engine.Weights().Effort, 1e-12)
	})

	t.Run("unknown strategy keeps its name but scores as smart_balance", func(t *testing.T) {
		engine := NewPriorityEngine(PriorityEngineConfig{Strategy: "yolo"})
		assert.Equal(t, scoring.Strategy("yolo"), engine.Strategy())
		assert.Equal(t, scoring.SmartBalance.Weights(), engine.Weights())
		assert.Equal(t, "Custom", engine.StrategyName())
	})

	t.Run("empty strategy defaults", func(t *testing.T) {
		engine := NewPriorityEngine(PriorityEngineConfig{})
		assert.Equal(t, scoring.SmartBalance, engine.Strategy())
	})
}

func TestPriorityEngine_ScoreOne(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())

	tk := newTask("Fix login", offset(1), 1, 5)
	tk.ID = id(1)
	tasks := []task.Task{tk}

	scored := engine.ScoreOne(tk, NewBatch(tasks), monday)

	assert.InDelta(t, 70.0, scored.Breakdown.Urgency.Raw, 1e-9)
	assert.InDelta(t, 21.0, scored.Breakdown.Urgency.Contribution, 1e-9)
	assert.InDelta(t, 90.0, scored.Breakdown.Effort.Raw, 1e-9)
	assert.InDelta(t, 30.0, scored.Breakdown.Dependency.Raw, 1e-9)
	assert.Equal(t, 55.14, scored.PriorityScore)
	assert.Equal(t, scoring.LevelMedium, scored.PriorityLevel)
	assert.Equal(t, scoring.Delegate, scored.EisenhowerQuadrant)
	require.NotNil(t, scored.WorkingDaysUntilDue)
	assert.Equal(t, 1, *scored.WorkingDaysUntilDue)
	assert.False(t, scored.IsOverdue)

	assert.Equal(t,
		"DELEGATE - Urgent but less important | Due in 1 working day(s) - very urgent | "+
			"Moderate importance (5/10) | Quick win (1.0h) - easy to complete | "+
			"Score: 55.1/100 (Primary factor: Urgency)",
		scored.Explanation,
	)
}

func TestPriorityEngine_AnalyzeBatch(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		result := engine.AnalyzeBatch(nil, monday)
		assert.NotNil(t, result)
		assert.Empty(t, result)
	})

	t.Run("sorted descending", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		result := engine.AnalyzeBatch([]task.Task{
			newTask("low", nil, 30, 1),
			newTask("high", offset(-3), 1, 10),
			newTask("mid", offset(5), 3, 6),
		}, monday)

		require.Len(t, result, 3)
		for i := 1; i < len(result); i++ {
			assert.GreaterOrEqual(t, result[i-1].PriorityScore, result[i].PriorityScore)
		}
		assert.Equal(t, "high", result[0].Title)
		assert.Equal(t, "low", result[2].Title)
	})

	t.Run("equal scores keep input order", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		var tasks []task.Task
		for _, title := range []string{"a", "b", "c", "d", "e"} {
			tasks = append(tasks, newTask(title, nil, 2, 5))
		}
		// Single-letter titles keep complexity identical too.
		result := engine.AnalyzeBatch(tasks, monday)

		titles := make([]string, len(result))
		for i, r := range result {
			titles[i] = r.Title
		}
		assert.Equal(t, []string{"a", "b", "c", "d", "e"}, titles)
	})

	t.Run("idempotent", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		tasks := []task.Task{
			{ID: id(1), Title: "one", EstimatedHours: 2, Importance: 7, Dependencies: []int64{2}},
			{ID: id(2), Title: "two", EstimatedHours: 4, Importance: 4, Dependencies: []int64{1}},
			{ID: id(3), Title: "three", DueDate: due(-2), EstimatedHours: 1, Importance: 9, Dependencies: []int64{1, 42}},
		}

		first := engine.AnalyzeBatch(tasks, monday)
		second := engine.AnalyzeBatch(tasks, monday)
		assert.Equal(t, first, second)
	})

	t.Run("circular dependencies halve the dependency score", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		result := engine.AnalyzeBatch([]task.Task{
			{ID: id(1), Title: "a", EstimatedHours: 1, Importance: 5, Dependencies: []int64{2}},
			{ID: id(2), Title: "b", EstimatedHours: 1, Importance: 5, Dependencies: []int64{1}},
			{ID: id(3), Title: "c", EstimatedHours: 1, Importance: 5, Dependencies: []int64{}},
		}, monday)

		byTitle := map[string]ScoredTask{}
		for _, r := range result {
			byTitle[r.Title] = r
		}

		a := byTitle["a"]
		assert.True(t, a.HasCircularDependency)
		assert.True(t, a.IsBlockingOthers)
		assert.InDelta(t, 32.5, a.Breakdown.Dependency.Raw, 1e-9)
		assert.Contains(t, a.Explanation, "CIRCULAR DEPENDENCY")
		assert.Contains(t, a.Explanation, "BLOCKING")

		c := byTitle["c"]
		assert.False(t, c.HasCircularDependency)
		assert.InDelta(t, 30.0, c.Breakdown.Dependency.Raw, 1e-9)
	})

	t.Run("self dependency is circular but not blocking", func(t *testing.T) {
		engine := NewPriorityEngine(DefaultPriorityEngineConfig())
		result := engine.AnalyzeBatch([]task.Task{
			{ID: id(1), Title: "loop", EstimatedHours: 1, Importance: 5, Dependencies: []int64{1}},
			{ID: id(2), Title: "loop and missing", EstimatedHours: 1, Importance: 5, Dependencies: []int64{2, 99}},
		}, monday)

		byTitle := map[string]ScoredTask{}
		for _, r := range result {
			byTitle[r.Title] = r
		}

		loop := byTitle["loop"]
		assert.True(t, loop.HasCircularDependency)
		assert.False(t, loop.IsBlockingOthers)
		assert.InDelta(t, 15.0, loop.Breakdown.Dependency.Raw, 1e-9)
		assert.NotContains(t, loop.Explanation, "BLOCKING")

		missing := byTitle["loop and missing"]
		assert.False(t, missing.IsBlockingOthers)
		assert.InDelta(t, 12.0, missing.Breakdown.Dependency.Raw, 1e-9)
	})

	t.Run("zero weights score zero", func(t *testing.T) {
		engine := NewPriorityEngine(PriorityEngineConfig{Weights: &scoring.Weights{}, SkipWeekends: true})
		result := engine.AnalyzeBatch([]task.Task{newTask("x", offset(-10), 1, 10)}, monday)

		require.Len(t, result, 1)
		assert.Equal(t, 0.0, result[0].PriorityScore)
		assert.Equal(t, scoring.LevelLow, result[0].PriorityLevel)
	})
}

func TestPriorityEngine_StrategyOrdering(t *testing.T) {
	tasks := []task.Task{
		newTask("quick urgent", offset(1), 1, 5),
		newTask("heavy important", offset(10), 20, 10),
		newTask("quick unimportant", offset(30), 0.5, 2),
	}

	top := func(s scoring.Strategy) string {
		engine := NewPriorityEngine(PriorityEngineConfig{Strategy: s, SkipWeekends: true})
		return engine.AnalyzeBatch(tasks, monday)[0].Title
	}

	assert.Contains(t, []string{"quick urgent", "quick unimportant"}, top(scoring.FastestWins))
	assert.Equal(t, "heavy important", top(scoring.HighImpact))
	assert.Equal(t, "quick urgent", top(scoring.DeadlineDriven))
}

func TestScoredTask_JSON(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())
	tk := newTask("Fix login", offset(1), 1, 5)
	tk.ID = id(1)
	scored := engine.AnalyzeBatch([]task.Task{tk}, monday)[0]

	data, err := json.Marshal(scored)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "Medium", decoded["priority_level"])
	assert.Equal(t, "delegate", decoded["eisenhower_quadrant"])
	assert.Equal(t, "2025-06-03", decoded["due_date"])
	assert.Equal(t, 1.0, decoded["working_days_until_due"])

	breakdown := decoded["score_breakdown"].(map[string]any)
	importance := breakdown["importance"].(map[string]any)
	assert.Equal(t, 41.82, importance["raw_score"])
	assert.Equal(t, 14.64, importance["contribution"])
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "1.0", formatHours(1))
	assert.Equal(t, "0.5", formatHours(0.5))
	assert.Equal(t, "2.25", formatHours(2.25))
	assert.Equal(t, "40.0", formatHours(40))
}

func TestExplain_Buckets(t *testing.T) {
	engine := NewPriorityEngine(DefaultPriorityEngineConfig())

	tests := []struct {
		name     string
		task     task.Task
		contains string
	}{
		{"no due date", newTask("x", nil, 1, 5), "No due date set - moderate urgency assumed"},
		{"due today", newTask("x", offset(0), 1, 5), "Due TODAY - critical deadline"},
		{"overdue", newTask("x", offset(-1), 1, 5), "OVERDUE by 1 working day(s) - needs immediate attention!"},
		{"approaching", newTask("x", offset(3), 1, 5), "Due in 3 working days - approaching deadline"},
		{"this week", newTask("x", offset(9), 1, 5), "Due in 7 working days - plan this week"},
		{"later", newTask("x", offset(28), 1, 5), "working days - schedule for later"},
		{"critical", newTask("x", nil, 1, 9), "Critical importance (9/10) - business-critical task"},
		{"high", newTask("x", nil, 1, 7), "High importance (7/10) - significant impact"},
		{"lower", newTask("x", nil, 1, 2), "Lower importance (2/10) - consider if necessary"},
		{"short", newTask("x", nil, 1.5, 5), "Short task (1.5h) - good for focused session"},
		{"half day", newTask("x", nil, 4, 5), "Half-day task (4.0h)"},
		{"full day", newTask("x", nil, 6, 5), "Full-day task (6.0h) - block dedicated time"},
		{"large", newTask("x", nil, 12, 5), "Large project (12.0h) - consider breaking down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scored := engine.AnalyzeBatch([]task.Task{tt.task}, monday)[0]
			assert.Contains(t, scored.Explanation, tt.contains)
			assert.True(t, strings.HasPrefix(scored.Explanation, scored.EisenhowerQuadrant.Label()))
		})
	}
}

func TestBreakdown_PrimaryFactor(t *testing.T) {
	b := Breakdown{
		Urgency:    FactorScore{Contribution: 10},
		Importance: FactorScore{Contribution: 20},
		Effort:     FactorScore{Contribution: 20},
		Dependency: FactorScore{Contribution: 5},
	}
	assert.Equal(t, "Importance", b.PrimaryFactor(), "first maximum wins")

	b.Dependency.Contribution = 21
	assert.Equal(t, "Dependencies", b.PrimaryFactor())
}
