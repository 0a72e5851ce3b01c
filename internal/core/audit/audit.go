// Package audit describes the append-only trail of lifecycle transitions.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Entry is one recorded transition.
type Entry struct {
	ID            uuid.UUID
	CorrelationID string
	ClientID      string
	Kind          lifecycle.EntityKind
	EntityID      int64
	OldStatus     string
	NewStatus     string
	Actor         string
	OccurredAt    time.Time
	RecordedAt    time.Time
}

// FromTransition builds an entry with a fresh id.
func FromTransition(t lifecycle.Transition, correlationID string) Entry {
	return Entry{
		ID:            uuid.New(),
		CorrelationID: correlationID,
		ClientID:      t.ClientID,
		Kind:          t.Kind,
		EntityID:      t.EntityID,
		OldStatus:     t.OldStatus,
		NewStatus:     t.NewStatus,
		Actor:         t.Actor,
		OccurredAt:    t.OccurredAt,
	}
}

// Repository persists and reads back audit entries.
type Repository interface {
	Save(ctx context.Context, entry Entry) error

	// FindByClient returns the client's most recent entries, newest first.
	FindByClient(ctx context.Context, clientID string, limit int) ([]Entry, error)
}
