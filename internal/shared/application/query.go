// Package application holds the command and query contracts used by the
// application layers of each bounded context.
package application

import "context"

// Query reads state without changing it.
type Query interface {
	QueryName() string
}

// QueryHandler handles one query type.
type QueryHandler[Q Query, R any] interface {
	Handle(ctx context.Context, query Q) (R, error)
}
