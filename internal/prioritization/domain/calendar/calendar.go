// Package calendar counts working days between calendar dates under a
// weekend policy and a holiday set.
package calendar

import (
	"context"
	"sort"
	"time"
)

// Calendar counts business days. It is immutable after construction.
type Calendar struct {
	skipWeekends bool
	holidays     map[Date]struct{}
}

// New creates a calendar. A nil holiday slice selects DefaultHolidays;
// a non-nil empty slice disables holidays entirely.
func New(skipWeekends bool, holidays []Date) *Calendar {
	if holidays == nil {
		holidays = DefaultHolidays()
	}
	set := make(map[Date]struct{}, len(holidays))
	for _, h := range holidays {
		set[h] = struct{}{}
	}
	return &Calendar{
		skipWeekends: skipWeekends,
		holidays:     set,
	}
}

// SkipsWeekends reports whether weekends and holidays are excluded.
func (c *Calendar) SkipsWeekends() bool {
	return c.skipWeekends
}

// IsHoliday reports whether d is in the holiday set.
func (c *Calendar) IsHoliday(d Date) bool {
	_, ok := c.holidays[d]
	return ok
}

// IsWorkingDay reports whether d counts towards the working-day total.
func (c *Calendar) IsWorkingDay(d Date) bool {
	if !c.skipWeekends {
		return true
	}
	switch d.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !c.IsHoliday(d)
}

// Holidays returns the holiday set in ascending order.
func (c *Calendar) Holidays() []Date {
	out := make([]Date, 0, len(c.holidays))
	for d := range c.holidays {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// CountWorkingDays returns the signed number of working days from start to end.
// The magnitude counts days after the earlier date up to and including the later
// one; the result is negative when end is before start and zero when they match.
func (c *Calendar) CountWorkingDays(start, end Date) int {
	if start.Compare(end) >= 0 {
		return -c.countForward(end, start)
	}
	return c.countForward(start, end)
}

func (c *Calendar) countForward(from, to Date) int {
	if !c.skipWeekends {
		return DaysBetween(from, to)
	}

	count := 0
	for d := from.AddDays(1); !d.After(to); d = d.AddDays(1) {
		if c.IsWorkingDay(d) {
			count++
		}
	}
	return count
}

// HolidaySource supplies holidays for a date range from an external calendar.
type HolidaySource interface {
	Holidays(ctx context.Context, from, to Date) ([]Date, error)
}
