package services

import (
	"fmt"
	"strconv"
	"strings"
)

const partSeparator = " | "

// explain builds the human readable reasoning for a scored task. score is
// the unrounded priority.
func explain(t ScoredTask, score float64) string {
	parts := []string{t.EisenhowerQuadrant.Label()}

	switch days := t.WorkingDaysUntilDue; {
	case t.IsOverdue:
		parts = append(parts, fmt.Sprintf("OVERDUE by %d working day(s) - needs immediate attention!", -*days))
	case days == nil:
		parts = append(parts, "No due date set - moderate urgency assumed")
	case *days == 0:
		parts = append(parts, "Due TODAY - critical deadline")
	case *days <= 2:
		parts = append(parts, fmt.Sprintf("Due in %d working day(s) - very urgent", *days))
	case *days <= 5:
		parts = append(parts, fmt.Sprintf("Due in %d working days - approaching deadline", *days))
	case *days <= 10:
		parts = append(parts, fmt.Sprintf("Due in %d working days - plan this week", *days))
	default:
		parts = append(parts, fmt.Sprintf("Due in %d working days - schedule for later", *days))
	}

	switch imp := t.Importance; {
	case imp >= 9:
		parts = append(parts, fmt.Sprintf("Critical importance (%d/10) - business-critical task", imp))
	case imp >= 7:
		parts = append(parts, fmt.Sprintf("High importance (%d/10) - significant impact", imp))
	case imp >= 5:
		parts = append(parts, fmt.Sprintf("Moderate importance (%d/10)", imp))
	default:
		parts = append(parts, fmt.Sprintf("Lower importance (%d/10) - consider if necessary", imp))
	}

	hours := formatHours(t.EstimatedHours)
	switch h := t.EstimatedHours; {
	case h <= 1:
		parts = append(parts, fmt.Sprintf("Quick win (%sh) - easy to complete", hours))
	case h <= 2:
		parts = append(parts, fmt.Sprintf("Short task (%sh) - good for focused session", hours))
	case h <= 4:
		parts = append(parts, fmt.Sprintf("Half-day task (%sh)", hours))
	case h <= 8:
		parts = append(parts, fmt.Sprintf("Full-day task (%sh) - block dedicated time", hours))
	default:
		parts = append(parts, fmt.Sprintf("Large project (%sh) - consider breaking down", hours))
	}

	if t.IsBlockingOthers {
		parts = append(parts, "BLOCKING: Other tasks depend on this - prioritize!")
	}
	if t.HasCircularDependency {
		parts = append(parts, "CIRCULAR DEPENDENCY: Part of a dependency cycle - review task structure")
	}

	parts = append(parts, fmt.Sprintf("Score: %.1f/100 (Primary factor: %s)", score, t.Breakdown.PrimaryFactor()))

	return strings.Join(parts, partSeparator)
}

// formatHours prints the shortest decimal form and always keeps one
// fractional digit, so 1 prints as "1.0" and 0.25 as "0.25".
func formatHours(h float64) string {
	s := strconv.FormatFloat(h, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
