// Package export renders analysed tasks as JSON, CSV or iCalendar documents.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatICS  Format = "ics"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatCSV, FormatICS:
		return Format(s), nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatICS:
		return "text/calendar"
	default:
		return "application/json"
	}
}

// Filename is the suggested attachment name.
func (f Format) Filename() string {
	return "task_analysis." + string(f)
}

// Document is the JSON export payload.
type Document struct {
	ExportedAt time.Time             `json:"exported_at"`
	Strategy   string                `json:"strategy"`
	TotalTasks int                   `json:"total_tasks"`
	Tasks      []services.ScoredTask `json:"tasks"`
	Summary    DocumentSummary       `json:"summary"`
}

// DocumentSummary is the level breakdown of an export.
type DocumentSummary struct {
	HighPriority   int `json:"high_priority"`
	MediumPriority int `json:"medium_priority"`
	LowPriority    int `json:"low_priority"`
}

// NewDocument assembles an export from ranked tasks.
func NewDocument(strategy string, tasks []services.ScoredTask, now time.Time) Document {
	summary := services.Summarize(tasks)
	if tasks == nil {
		tasks = []services.ScoredTask{}
	}
	return Document{
		ExportedAt: now,
		Strategy:   strategy,
		TotalTasks: len(tasks),
		Tasks:      tasks,
		Summary: DocumentSummary{
			HighPriority:   summary.HighPriorityCount,
			MediumPriority: summary.MediumPriorityCount,
			LowPriority:    summary.LowPriorityCount,
		},
	}
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return nil
}

// CSVHeader lists the CSV columns in order.
var CSVHeader = []string{
	"Rank", "Title", "Priority Score", "Priority Level", "Urgency Score",
	"Importance Score", "Effort Score", "Dependency Score", "Eisenhower Quadrant",
	"Due Date", "Estimated Hours", "Is Overdue", "Explanation",
}

// WriteCSV writes one row per task in rank order.
func WriteCSV(w io.Writer, tasks []services.ScoredTask) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.String()
		}
		row := []string{
			strconv.Itoa(i + 1),
			t.Title,
			formatScore(t.PriorityScore),
			t.PriorityLevel.String(),
			formatScore(t.Breakdown.Urgency.Raw),
			formatScore(t.Breakdown.Importance.Raw),
			formatScore(t.Breakdown.Effort.Raw),
			formatScore(t.Breakdown.Dependency.Raw),
			t.EisenhowerQuadrant.String(),
			due,
			strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64),
			strconv.FormatBool(t.IsOverdue),
			t.Explanation,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(scoring.Round(v, 3), 'f', -1, 64)
}
