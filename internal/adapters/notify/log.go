package notify

import (
	"context"
	"log/slog"

	"3tcapital/wealthdesk/internal/core/lifecycle"
	ctxutil "3tcapital/wealthdesk/internal/infrastructure/context"
)

// LogNotifier writes one structured line per transition.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, t lifecycle.Transition) {
	attrs := []any{
		"client_id", t.ClientID,
		"kind", t.Kind,
		"entity_id", t.EntityID,
		"old_status", t.OldStatus,
		"new_status", t.NewStatus,
		"actor", t.Actor,
		"occurred_at", t.OccurredAt,
	}
	if id := ctxutil.GetCorrelationID(ctx); id != "" {
		attrs = append(attrs, "correlation_id", id)
	}
	n.log.InfoContext(ctx, "lifecycle transition", attrs...)
}
