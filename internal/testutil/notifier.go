package testutil

import (
	"context"
	"sync"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// RecordingNotifier keeps every transition it is told about.
type RecordingNotifier struct {
	mu          sync.Mutex
	transitions []lifecycle.Transition
}

// Notify records the transition.
func (n *RecordingNotifier) Notify(_ context.Context, t lifecycle.Transition) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.transitions = append(n.transitions, t)
}

// Transitions returns a copy of the recorded transitions.
func (n *RecordingNotifier) Transitions() []lifecycle.Transition {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]lifecycle.Transition(nil), n.transitions...)
}

// PanickingNotifier simulates a broken notification channel.
type PanickingNotifier struct{}

func (PanickingNotifier) Notify(context.Context, lifecycle.Transition) {
	panic("notification channel unavailable")
}
