package calendar

import "time"

// defaultHolidays covers the US federal holidays of 2025 plus New Year 2026.
var defaultHolidays = [...]Date{
	{2025, time.January, 1},
	{2025, time.January, 20},
	{2025, time.February, 17},
	{2025, time.May, 26},
	{2025, time.June, 19},
	{2025, time.July, 4},
	{2025, time.September, 1},
	{2025, time.October, 13},
	{2025, time.November, 11},
	{2025, time.November, 27},
	{2025, time.December, 25},
	{2026, time.January, 1},
}

// DefaultHolidays returns a fresh copy of the built-in holiday list.
func DefaultHolidays() []Date {
	out := make([]Date, len(defaultHolidays))
	copy(out, defaultHolidays[:])
	return out
}
