package application

import "context"

// Command changes state.
type Command interface {
	CommandName() string
}

// CommandHandler handles one command type and returns its result.
type CommandHandler[C Command, R any] interface {
	Handle(ctx context.Context, cmd C) (R, error)
}
