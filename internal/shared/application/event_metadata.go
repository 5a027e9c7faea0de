package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/taskrank/internal/shared/domain"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// WithCorrelationID stores a correlation id in ctx.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	return observability.WithCorrelationID(ctx, id)
}

// CorrelationID returns the id stored in ctx, or a new one.
func CorrelationID(ctx context.Context) uuid.UUID {
	if id, ok := observability.CorrelationIDFromContext(ctx); ok {
		return id
	}
	return uuid.New()
}

type metadataSetter interface {
	SetMetadata(metadata domain.EventMetadata)
}

// ApplyEventMetadata sets metadata on the events that accept it.
func ApplyEventMetadata(metadata domain.EventMetadata, events ...domain.DomainEvent) {
	for _, event := range events {
		if setter, ok := event.(metadataSetter); ok {
			setter.SetMetadata(metadata)
		}
	}
}
