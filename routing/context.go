package routing

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID tags a request context so downstream routing events can
// be correlated with the HTTP request that caused them.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFrom returns the request id attached to ctx, or "" when the
// context was never tagged.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
