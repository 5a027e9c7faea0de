package holidays

import (
	"context"

	"github.com/felixgeelhaar/taskrank/internal/prioritization/domain/calendar"
)

// Guard runs fn under a circuit breaker registered as name.
type Guard interface {
	Guard(ctx context.Context, name, operation string, fn func(context.Context) error) error
}

// Guarded protects a remote source with a circuit breaker so a failing
// calendar server stops being called for a while.
type Guarded struct {
	name   string
	source calendar.HolidaySource
	guard  Guard
}

// NewGuarded wraps source; name identifies its breaker.
func NewGuarded(name string, source calendar.HolidaySource, guard Guard) *Guarded {
	return &Guarded{name: name, source: source, guard: guard}
}

func (g *Guarded) Holidays(ctx context.Context, from, to calendar.Date) ([]calendar.Date, error) {
	var out []calendar.Date
	err := g.guard.Guard(ctx, g.name, "holidays", func(ctx context.Context) error {
		var err error
		out, err = g.source.Holidays(ctx, from, to)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
