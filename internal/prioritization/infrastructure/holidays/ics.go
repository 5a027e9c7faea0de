// Package holidays loads non-working days from static lists, iCalendar
// files and CalDAV servers.
package holidays

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/security"
)

// Static is a fixed holiday list.
type Static []calendar.Date

// Holidays returns the dates of s within [from, to].
func (s Static) Holidays(_ context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	out := []calendar.Date{}
	for _, d := range s {
		if !d.Before(from) && !d.After(to) {
			out = append(out, d)
		}
	}
	return out, nil
}

// ICSFile reads all-day events from an iCalendar file on every call.
type ICSFile struct {
	Path string
}

// NewICSFile creates a source for path.
func NewICSFile(path string) *ICSFile {
	return &ICSFile{Path: path}
}

func (f *ICSFile) Holidays(_ context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	file, err := security.Open(f.Path)
	if err != nil {
		return nil, fmt.Errorf("open holiday calendar: %w", err)
	}
	defer file.Close()

	return ParseICS(file, from, to)
}

// ParseICS decodes every calendar in r and returns the sorted, distinct
// days covered by all-day events within [from, to]. Recurring events are
// expanded. Timed events are ignored.
func ParseICS(r io.Reader, from, to calendar.Date) ([]calendar.Date, error) {
	dec := ical.NewDecoder(r)
	var events []ical.Event
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode holiday calendar: %w", err)
		}
		events = append(events, cal.Events()...)
	}
	return collectDays(events, from, to)
}

func collectDays(events []ical.Event, from, to calendar.Date) ([]calendar.Date, error) {
	seen := make(map[calendar.Date]struct{})
	for i := range events {
		if err := addEventDays(&events[i], from, to, seen); err != nil {
			return nil, err
		}
	}

	out := make([]calendar.Date, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func addEventDays(ev *ical.Event, from, to calendar.Date, seen map[calendar.Date]struct{}) error {
	prop := ev.Props.Get(ical.PropDateTimeStart)
	if prop == nil || prop.ValueType() != ical.ValueDate {
		return nil
	}

	start, err := ev.DateTimeStart(time.UTC)
	if err != nil {
		return fmt.Errorf("holiday start: %w", err)
	}
	days := 1
	if end, err := ev.DateTimeEnd(time.UTC); err == nil && end.After(start) {
		days = calendar.DaysBetween(calendar.DateOf(start), calendar.DateOf(end))
	}

	starts := []time.Time{start}
	set, err := ev.RecurrenceSet(time.UTC)
	if err != nil {
		return fmt.Errorf("holiday recurrence: %w", err)
	}
	if set != nil {
		starts = occurrences(set, from, to, days)
	}

	for _, s := range starts {
		first := calendar.DateOf(s)
		for i := 0; i < days; i++ {
			d := first.AddDays(i)
			if !d.Before(from) && !d.After(to) {
				seen[d] = struct{}{}
			}
		}
	}
	return nil
}

// occurrences lists recurrence starts whose span can touch [from, to].
func occurrences(set *rrule.Set, from, to calendar.Date, days int) []time.Time {
	lo := from.AddDays(-(days - 1)).Time()
	hi := to.Time()
	return set.Between(lo, hi, true)
}
