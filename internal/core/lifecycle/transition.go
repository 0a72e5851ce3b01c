package lifecycle

import (
	"context"
	"time"
)

// EntityKind identifies what kind of record changed status.
type EntityKind string

const (
	EntityDocument EntityKind = "document"
	EntityHolding  EntityKind = "holding"
)

// Transition describes one successful status change.
type Transition struct {
	ClientID   string
	Kind       EntityKind
	EntityID   int64
	OldStatus  string
	NewStatus  string
	Actor      string
	OccurredAt time.Time
}

// Notifier is informed after each successful transition.
// Implementations must not fail the caller; errors are theirs to log.
type Notifier interface {
	Notify(ctx context.Context, t Transition)
}

// NopNotifier discards every transition.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Transition) {}
