// Package context carries per-request values through the service: the correlation id
// set by the request logger and the session opened by the auth middleware (session.go).
package context

import "context"

type contextKey string

// CorrelationIDKey is the context key for correlation IDs.
const CorrelationIDKey contextKey = "correlation_id"

// WithCorrelationID tags the context with the request's correlation id. Transitions
// committed while serving the request carry it into the log line and the audit entry.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, CorrelationIDKey, correlationID)
}

// GetCorrelationID returns the correlation id, or "" outside a request.
func GetCorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(CorrelationIDKey).(string); ok {
		return id
	}
	return ""
}
