package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	correlationIDCtxKey contextKey = "correlation_id"
	requestIDCtxKey     contextKey = "request_id"
)

// Standard attribute keys used in logs and metrics.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	OperationKey     = "operation"
	DurationKey      = "duration_ms"
	ErrorKey         = "error"
	StatusKey        = "status"
)

// WithCorrelationID stores the id that ties a request to the events it
// raises. uuid.Nil generates a new id.
func WithCorrelationID(ctx context.Context, id uuid.UUID) context.Context {
	if id == uuid.Nil {
		id = uuid.New()
	}
	return context.WithValue(ctx, correlationIDCtxKey, id)
}

// CorrelationIDFromContext extracts the correlation ID from context.
func CorrelationIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	if ctx == nil {
		return uuid.Nil, false
	}
	id, ok := ctx.Value(correlationIDCtxKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// WithRequestID adds a request ID to the context.
// If id is empty, a new UUID is generated.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = uuid.New().String()
	}
	return context.WithValue(ctx, requestIDCtxKey, id)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(requestIDCtxKey).(string); ok {
		return id
	}
	return ""
}

// NewRequestContext starts a request: a fresh request id and the given
// correlation id, or a new one when header is empty or malformed.
func NewRequestContext(ctx context.Context, requestID, correlationHeader string) context.Context {
	ctx = WithRequestID(ctx, requestID)
	id, err := uuid.Parse(correlationHeader)
	if err != nil {
		id = uuid.Nil
	}
	return WithCorrelationID(ctx, id)
}
