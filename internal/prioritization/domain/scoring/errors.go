package scoring

import "errors"

var (
	// ErrUnknownStrategy is returned when a strategy name is not a preset.
	ErrUnknownStrategy = errors.New("unknown strategy")
)
