package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/services"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/scoring"
)

const productID = "-//taskrank//Task Analysis//EN"

// WriteICS writes the ranked tasks as VTODO components. Tasks with a due
// date carry it as an all-day DUE; the iCalendar PRIORITY follows the
// priority level.
func WriteICS(w io.Writer, tasks []services.ScoredTask, now time.Time) error {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	stamp := now.UTC()
	for i, t := range tasks {
		todo := ical.NewComponent(ical.CompToDo)
		todo.Props.SetText(ical.PropUID, todoUID(t, i))
		todo.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		todo.Props.SetText(ical.PropSummary, t.Title)
		if t.Explanation != "" {
			todo.Props.SetText(ical.PropDescription, t.Explanation)
		}
		if t.DueDate != nil {
			todo.Props.SetDate(ical.PropDue, t.DueDate.Time())
		}

		priority := ical.NewProp(ical.PropPriority)
		priority.Value = strconv.Itoa(icalPriority(t.PriorityLevel))
		todo.Props.Set(priority)

		category := ical.NewProp(ical.PropCategories)
		category.Value = t.EisenhowerQuadrant.String()
		todo.Props.Set(category)

		cal.Children = append(cal.Children, todo)
	}

	if err := ical.NewEncoder(w).Encode(cal); err != nil {
		return fmt.Errorf("encode calendar: %w", err)
	}
	return nil
}

func todoUID(t services.ScoredTask, rank int) string {
	if t.ID != nil {
		return fmt.Sprintf("task-%d@taskrank", *t.ID)
	}
	return fmt.Sprintf("rank-%d@taskrank", rank+1)
}

// icalPriority maps levels onto RFC 5545 priorities (1 highest, 9 lowest).
func icalPriority(l scoring.Level) int {
	switch l {
	case scoring.LevelHigh:
		return 1
	case scoring.LevelMedium:
		return 5
	default:
		return 9
	}
}
