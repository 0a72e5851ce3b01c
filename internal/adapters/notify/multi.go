package notify

import (
	"context"
	"log/slog"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// MultiNotifier fans a transition out to several notifiers in order.
// A panicking notifier is logged and skipped; the rest still receive the transition.
type MultiNotifier struct {
	log       *slog.Logger
	notifiers []lifecycle.Notifier
}

// NewMultiNotifier constructs a MultiNotifier. Nil entries are skipped; log may be nil.
func NewMultiNotifier(log *slog.Logger, notifiers ...lifecycle.Notifier) *MultiNotifier {
	return &MultiNotifier{log: log, notifiers: notifiers}
}

func (m *MultiNotifier) Notify(ctx context.Context, t lifecycle.Transition) {
	if m == nil {
		return
	}
	for i, notifier := range m.notifiers {
		if notifier != nil {
			m.deliver(ctx, i, notifier, t)
		}
	}
}

func (m *MultiNotifier) deliver(ctx context.Context, index int, n lifecycle.Notifier, t lifecycle.Transition) {
	defer func() {
		if r := recover(); r != nil && m.log != nil {
			m.log.Error("notifier panicked",
				"notifier", index,
				"client_id", t.ClientID,
				"kind", t.Kind,
				"entity_id", t.EntityID,
				"panic", r,
			)
		}
	}()
	n.Notify(ctx, t)
}
