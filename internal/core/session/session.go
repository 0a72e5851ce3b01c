// Package session models the acting identity passed explicitly into every workflow operation.
// A session is opened at login and closed at logout; nothing reads it from ambient state.
package session

import (
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrForbidden is returned when the acting role may not perform an operation.
	ErrForbidden = errors.New("session: forbidden")
	// ErrSessionClosed is returned when a closed session is used.
	ErrSessionClosed = errors.New("session: closed")
	// ErrInvalidSession is returned for malformed session attributes.
	ErrInvalidSession = errors.New("session: invalid")
)

// Role is the declared role of the caller.
type Role string

const (
	RoleClient  Role = "client"
	RoleAdvisor Role = "advisor"
)

// NormalizeRole validates and normalizes a role string.
func NormalizeRole(value string) (Role, bool) {
	switch r := Role(strings.ToLower(strings.TrimSpace(value))); r {
	case RoleClient, RoleAdvisor:
		return r, true
	default:
		return "", false
	}
}

// Session is the acting identity for a sequence of operations.
type Session struct {
	ID       uuid.UUID
	Subject  string
	Role     Role
	ClientID string
	OpenedAt time.Time

	closed atomic.Bool
}

// Open starts a session. Client sessions must name the client they act for.
func Open(subject string, role Role, clientID string, now time.Time) (*Session, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, fmt.Errorf("subject is required: %w", ErrInvalidSession)
	}
	normalized, ok := NormalizeRole(string(role))
	if !ok {
		return nil, fmt.Errorf("role %q: %w", role, ErrInvalidSession)
	}
	clientID = strings.TrimSpace(clientID)
	if normalized == RoleClient && clientID == "" {
		return nil, fmt.Errorf("client session without client id: %w", ErrInvalidSession)
	}
	return &Session{
		ID:       uuid.New(),
		Subject:  subject,
		Role:     normalized,
		ClientID: clientID,
		OpenedAt: now.UTC(),
	}, nil
}

// Close ends the session; later operations with it fail with ErrSessionClosed.
func (s *Session) Close() {
	if s != nil {
		s.closed.Store(true)
	}
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s == nil || s.closed.Load()
}
