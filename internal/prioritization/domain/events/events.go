// Package events defines the events raised when tasks are analysed.
package events

import (
	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
)

const (
	RoutingKeyAnalysisCompleted   = "taskrank.analysis.completed"
	RoutingKeySuggestionGenerated = "taskrank.suggestion.generated"
)

// AnalysisCompleted is raised after a batch has been scored.
type AnalysisCompleted struct {
	domain.BaseEvent
	Strategy         string `json:"strategy"`
	ReferenceDate    string `json:"reference_date"`
	TaskCount        int    `json:"task_count"`
	HighPriority     int    `json:"high_priority_count"`
	OverdueCount     int    `json:"overdue_count"`
	CircularDetected bool   `json:"circular_dependencies_detected"`
}

// NewAnalysisCompleted creates the event.
func NewAnalysisCompleted(strategy, referenceDate string, taskCount, highPriority, overdue int, circular bool) *AnalysisCompleted {
	return &AnalysisCompleted{
		BaseEvent:        domain.NewBaseEvent(RoutingKeyAnalysisCompleted),
		Strategy:         strategy,
		ReferenceDate:    referenceDate,
		TaskCount:        taskCount,
		HighPriority:     highPriority,
		OverdueCount:     overdue,
		CircularDetected: circular,
	}
}

// SuggestionGenerated is raised after a daily working set was selected.
type SuggestionGenerated struct {
	domain.BaseEvent
	Strategy      string   `json:"strategy"`
	ReferenceDate string   `json:"reference_date"`
	TaskIDs       []int64  `json:"task_ids"`
	Titles        []string `json:"titles"`
	TotalHours    float64  `json:"total_estimated_hours"`
}

// NewSuggestionGenerated creates the event. Tasks without an id contribute
// only their title.
func NewSuggestionGenerated(strategy, referenceDate string, ids []int64, titles []string, totalHours float64) *SuggestionGenerated {
	if ids == nil {
		ids = []int64{}
	}
	if titles == nil {
		titles = []string{}
	}
	return &SuggestionGenerated{
		BaseEvent:     domain.NewBaseEvent(RoutingKeySuggestionGenerated),
		Strategy:      strategy,
		ReferenceDate: referenceDate,
		TaskIDs:       ids,
		Titles:        titles,
		TotalHours:    totalHours,
	}
}
