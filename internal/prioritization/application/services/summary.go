package services

import "github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"

// QuadrantCounts is the Eisenhower distribution of a batch.
type QuadrantCounts struct {
	DoNow     int `json:"do_now"`
	Plan      int `json:"plan"`
	Delegate  int `json:"delegate"`
	Eliminate int `json:"eliminate"`
}

// Get returns the count for q.
func (c QuadrantCounts) Get(q scoring.Quadrant) int {
	switch q {
	case scoring.DoNow:
		return c.DoNow
	case scoring.Plan:
		return c.Plan
	case scoring.Delegate:
		return c.Delegate
	default:
		return c.Eliminate
	}
}

// Summary aggregates a scored batch.
type Summary struct {
	TotalTasks                   int            `json:"total_tasks"`
	HighPriorityCount            int            `json:"high_priority_count"`
	MediumPriorityCount          int            `json:"medium_priority_count"`
	LowPriorityCount             int            `json:"low_priority_count"`
	OverdueCount                 int            `json:"overdue_count"`
	CircularDependenciesDetected bool           `json:"circular_dependencies_detected"`
	TotalEstimatedHours          float64        `json:"total_estimated_hours"`
	Quadrants                    QuadrantCounts `json:"-"`
}

// Summarize counts levels, overdue tasks, cycles and quadrants.
func Summarize(tasks []ScoredTask) Summary {
	s := Summary{TotalTasks: len(tasks)}
	for _, t := range tasks {
		switch t.PriorityLevel {
		case scoring.LevelHigh:
			s.HighPriorityCount++
		case scoring.LevelMedium:
			s.MediumPriorityCount++
		default:
			s.LowPriorityCount++
		}
		if t.IsOverdue {
			s.OverdueCount++
		}
		if t.HasCircularDependency {
			s.CircularDependenciesDetected = true
		}
		s.TotalEstimatedHours += t.EstimatedHours

		switch t.EisenhowerQuadrant {
		case scoring.DoNow:
			s.Quadrants.DoNow++
		case scoring.Plan:
			s.Quadrants.Plan++
		case scoring.Delegate:
			s.Quadrants.Delegate++
		default:
			s.Quadrants.Eliminate++
		}
	}
	s.TotalEstimatedHours = scoring.Round(s.TotalEstimatedHours, 2)
	return s
}
