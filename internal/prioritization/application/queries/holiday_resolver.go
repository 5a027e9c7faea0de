package queries

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/application/validation"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/task"
)

// HolidayResolver picks the holiday set for a request. Explicit dates win,
// then the profile, then the external source. A nil result selects the
// built-in defaults.
type HolidayResolver struct {
	profile Profile
	source  calendar.HolidaySource
	logger  *slog.Logger
}

// NewHolidayResolver creates a resolver. profile and source may be nil.
func NewHolidayResolver(profile Profile, source calendar.HolidaySource, logger *slog.Logger) *HolidayResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &HolidayResolver{profile: profile, source: source, logger: logger}
}

// Resolve returns the holidays to use. explicit nil means the caller sent
// none; an empty non-nil slice disables holidays.
func (r *HolidayResolver) Resolve(ctx context.Context, explicit []string, tasks []task.Task, ref calendar.Date) ([]calendar.Date, error) {
	if explicit != nil {
		return ParseHolidays(explicit)
	}

	if r.profile != nil {
		if dates, ok := r.profile.HolidayDates(); ok {
			return dates, nil
		}
	}

	if r.source == nil {
		return nil, nil
	}

	from, to := dateSpan(tasks, ref)
	dates, err := r.source.Holidays(ctx, from, to)
	if err != nil {
		r.logger.Warn("holiday source unavailable, using defaults",
			"from", from.String(), "to", to.String(), "error", err)
		return nil, nil
	}
	if dates == nil {
		dates = []calendar.Date{}
	}
	return dates, nil
}

// ParseHolidays parses ISO dates, reporting every malformed entry.
func ParseHolidays(values []string) ([]calendar.Date, error) {
	out := make([]calendar.Date, 0, len(values))
	var errs validation.Errors
	for i, v := range values {
		d, err := calendar.ParseDate(v)
		if err != nil {
			errs = append(errs, &validation.Error{
				Code:    validation.CodeInvalidDate,
				Message: fmt.Sprintf("Invalid holiday date %q. Expected YYYY-MM-DD", v),
				Field:   fmt.Sprintf("holidays[%d]", i),
			})
			continue
		}
		out = append(out, d)
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}

// dateSpan covers the reference date and every due date in the batch.
func dateSpan(tasks []task.Task, ref calendar.Date) (calendar.Date, calendar.Date) {
	from, to := ref, ref
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		if t.DueDate.Before(from) {
			from = *t.DueDate
		}
		if t.DueDate.After(to) {
			to = *t.DueDate
		}
	}
	return from, to
}
