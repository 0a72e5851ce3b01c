package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"3tcapital/wealthdesk/internal/core/audit"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	ctxutil "3tcapital/wealthdesk/internal/infrastructure/context"
)

// AuditNotifier queues transitions and writes them to the audit repository on a
// background worker, so request handling never waits on the database.
type AuditNotifier struct {
	repo         audit.Repository
	log          *slog.Logger
	metrics      *Metrics
	breaker      *Breaker
	writeTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	queue  chan audit.Entry
	done   chan struct{}
}

// AuditOption customizes an AuditNotifier.
type AuditOption func(*AuditNotifier)

// WithBreaker guards repository writes with b.
func WithBreaker(b *Breaker) AuditOption {
	return func(n *AuditNotifier) { n.breaker = b }
}

// NewAuditNotifier starts the writer. metrics may be nil.
func NewAuditNotifier(repo audit.Repository, log *slog.Logger, queueSize int, writeTimeout time.Duration, metrics *Metrics, opts ...AuditOption) *AuditNotifier {
	if queueSize <= 0 {
		queueSize = 1
	}
	n := &AuditNotifier{
		repo:         repo,
		log:          log,
		metrics:      metrics,
		writeTimeout: writeTimeout,
		queue:        make(chan audit.Entry, queueSize),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(n)
	}
	go n.run()
	return n
}

// Notify enqueues the transition. A full or closed queue drops it.
func (n *AuditNotifier) Notify(ctx context.Context, t lifecycle.Transition) {
	entry := audit.FromTransition(t, ctxutil.GetCorrelationID(ctx))

	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		n.drop(entry, "audit notifier closed")
		return
	}
	select {
	case n.queue <- entry:
	default:
		n.drop(entry, "audit queue full")
	}
}

// Close stops accepting transitions and waits for queued ones to be written.
func (n *AuditNotifier) Close(ctx context.Context) error {
	n.mu.Lock()
	if !n.closed {
		n.closed = true
		close(n.queue)
	}
	n.mu.Unlock()

	select {
	case <-n.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (n *AuditNotifier) run() {
	defer close(n.done)
	for entry := range n.queue {
		n.write(entry)
	}
}

func (n *AuditNotifier) write(entry audit.Entry) {
	ctx := context.Background()
	if n.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, n.writeTimeout)
		defer cancel()
	}
	save := func() error { return n.repo.Save(ctx, entry) }
	var err error
	if n.breaker != nil {
		err = n.breaker.Execute(save)
	} else {
		err = save()
	}
	if errors.Is(err, ErrBreakerOpen) {
		n.drop(entry, "audit database unavailable")
		return
	}
	if err != nil {
		n.metrics.failedAudit()
		n.log.Error("failed to audit transition",
			"client_id", entry.ClientID,
			"kind", entry.Kind,
			"entity_id", entry.EntityID,
			"correlation_id", entry.CorrelationID,
			"error", err,
		)
	}
}

func (n *AuditNotifier) drop(entry audit.Entry, reason string) {
	n.metrics.droppedAudit()
	n.log.Warn(reason, "client_id", entry.ClientID, "kind", entry.Kind, "entity_id", entry.EntityID)
}
