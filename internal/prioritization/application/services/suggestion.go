package services

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// Suggestion defaults.
const (
	DefaultSuggestCount    = 3
	DefaultSuggestMaxHours = 8.0
)

const (
	msgNoTasks       = "No tasks provided for analysis."
	msgEmptySelected = "No tasks to suggest. Add some tasks to get started!"
)

// Suggestion is the selected working set for a day.
type Suggestion struct {
	Tasks      []ScoredTask `json:"suggested_tasks"`
	TotalHours float64      `json:"total_estimated_hours"`
	Message    string       `json:"message"`
	Strategy   string       `json:"strategy_used"`
}

// QuadrantBreakdown groups the selected task titles by quadrant.
func (s Suggestion) QuadrantBreakdown() map[string][]string {
	out := make(map[string][]string)
	for _, t := range s.Tasks {
		key := t.EisenhowerQuadrant.String()
		out[key] = append(out[key], t.Title)
	}
	return out
}

// SuggestTop picks up to count tasks for today. Overdue tasks are taken
// first in ranked order, then the remaining ranked tasks are added while
// they fit into maxHours. The first task is always accepted when nothing
// has been selected yet, even if it alone exceeds the budget.
func (e *PriorityEngine) SuggestTop(tasks []task.Task, count int, maxHours float64, ref calendar.Date) Suggestion {
	ranked := e.AnalyzeBatch(tasks, ref)
	if len(ranked) == 0 {
		return Suggestion{
			Tasks:    []ScoredTask{},
			Message:  msgNoTasks,
			Strategy: string(e.strategy),
		}
	}

	selected := make([]ScoredTask, 0, max(count, 0))
	picked := make(map[int]struct{}, len(ranked))
	total := 0.0

	for i, t := range ranked {
		if t.IsOverdue && len(selected) < count {
			selected = append(selected, t)
			picked[i] = struct{}{}
			total += t.EstimatedHours
		}
	}

	for i, t := range ranked {
		if _, ok := picked[i]; ok {
			continue
		}
		if len(selected) >= count {
			break
		}
		if total+t.EstimatedHours <= maxHours || len(selected) == 0 {
			selected = append(selected, t)
			picked[i] = struct{}{}
			total += t.EstimatedHours
		}
	}

	return Suggestion{
		Tasks:      selected,
		TotalHours: scoring.Round(total, 2),
		Message:    e.suggestionMessage(selected, total),
		Strategy:   string(e.strategy),
	}
}

func (e *PriorityEngine) suggestionMessage(selected []ScoredTask, total float64) string {
	if len(selected) == 0 {
		return msgEmptySelected
	}

	overdue, high := 0, 0
	for _, t := range selected {
		if t.IsOverdue {
			overdue++
		}
		if t.PriorityLevel == scoring.LevelHigh {
			high++
		}
	}

	parts := []string{
		fmt.Sprintf("Recommended %d task(s) for today", len(selected)),
		fmt.Sprintf("Total estimated time: %.1f hours", total),
	}
	if overdue > 0 {
		parts = append(parts, fmt.Sprintf("%d overdue task(s) need immediate attention", overdue))
	}
	if high > 0 {
		parts = append(parts, fmt.Sprintf("%d high-priority task(s)", high))
	}
	parts = append(parts, "Strategy: "+e.displayName)

	return strings.Join(parts, partSeparator)
}
