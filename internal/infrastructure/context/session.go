package context

import (
	"context"

	"3tcapital/wealthdesk/internal/core/session"
)

// SessionKey is the context key for the authenticated session.
const SessionKey contextKey = "session"

// WithSession attaches the caller's session to the request context.
// Handlers read it once and pass it explicitly to the workflow.
func WithSession(ctx context.Context, s *session.Session) context.Context {
	return context.WithValue(ctx, SessionKey, s)
}

// GetSession returns the session stored by WithSession, or nil.
func GetSession(ctx context.Context) *session.Session {
	if s, ok := ctx.Value(SessionKey).(*session.Session); ok {
		return s
	}
	return nil
}
