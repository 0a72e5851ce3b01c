package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
)

// AutoReviewActor is recorded as the actor of decisions taken by a ReviewPolicy.
const AutoReviewActor = "auto-review"

// Service runs the advisor/client document workflow and the holding pipeline.
// Each client's ledger and tracker sit behind one lock; different clients never contend.
type Service struct {
	clients   client.Directory
	documents document.Repository
	holdings  holding.Repository
	notifier  lifecycle.Notifier
	policy    ReviewPolicy
	clock     Clock
	log       *slog.Logger

	mu    sync.Mutex
	desks map[string]*desk
}

// desk is the single-writer scope of one client.
type desk struct {
	mu      sync.Mutex
	ledger  *document.Ledger
	tracker *holding.Tracker
}

// Option customizes a Service.
type Option func(*Service)

// WithNotifier sets the observer informed after each transition.
func WithNotifier(n lifecycle.Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithReviewPolicy sets the automated reviewer consulted after each submission.
func WithReviewPolicy(p ReviewPolicy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithClock overrides the clock used for transition timestamps.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// NewService creates the workflow service over the given data-access ports.
func NewService(clients client.Directory, documents document.Repository, holdings holding.Repository, log *slog.Logger, opts ...Option) (*Service, error) {
	if clients == nil || documents == nil || holdings == nil {
		return nil, errors.New("workflow: client directory, document and holding repositories are required")
	}
	if log == nil {
		return nil, errors.New("workflow: logger is required")
	}
	s := &Service{
		clients:   clients,
		documents: documents,
		holdings:  holdings,
		notifier:  lifecycle.NopNotifier{},
		policy:    ManualReview{},
		clock:     SystemClock{},
		log:       log,
		desks:     make(map[string]*desk),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RequestDocument lets an advisor ask a client for a document.
func (s *Service) RequestDocument(ctx context.Context, sess *session.Session, clientID, name, message string) (document.Record, error) {
	if err := sess.Authorize(session.ActionRequestDocument, clientID); err != nil {
		return document.Record{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return document.Record{}, err
	}
	defer d.mu.Unlock()
	rec, err := d.ledger.RequestDocument(name, sess.Subject, message, s.clock.Now())
	if err != nil {
		return document.Record{}, err
	}

	s.notify(ctx, s.documentTransition(clientID, rec.ID, "", rec.Status, sess.Subject))
	return rec, nil
}

// SubmitDocument records a client's upload, including resubmissions after a rejection.
// When the review policy decides the document, the decision is applied immediately.
func (s *Service) SubmitDocument(ctx context.Context, sess *session.Session, clientID string, documentID int64) (document.Record, error) {
	if err := sess.Authorize(session.ActionSubmitDocument, clientID); err != nil {
		return document.Record{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return document.Record{}, err
	}
	defer d.mu.Unlock()

	before, err := d.ledger.Get(documentID)
	if err != nil {
		return document.Record{}, err
	}
	rec, err := d.ledger.Submit(documentID, s.clock.Now())
	if err != nil {
		return document.Record{}, err
	}
	s.notify(ctx, s.documentTransition(clientID, rec.ID, before.Status, rec.Status, sess.Subject))

	outcome, ok := s.policy.Decide(rec)
	if !ok {
		return rec, nil
	}
	reviewed, err := d.ledger.Review(rec.ID, outcome, s.clock.Now())
	if err != nil {
		// The submission stands; the document simply waits for a human reviewer.
		s.log.Warn("auto review failed", "client_id", clientID, "document_id", rec.ID, "error", err)
		return rec, nil
	}
	s.notify(ctx, s.documentTransition(clientID, rec.ID, rec.Status, reviewed.Status, AutoReviewActor))
	return reviewed, nil
}

// BeginReview marks a submitted document as opened by the advisor.
func (s *Service) BeginReview(ctx context.Context, sess *session.Session, clientID string, documentID int64) (document.Record, error) {
	if err := sess.Authorize(session.ActionReviewDocument, clientID); err != nil {
		return document.Record{}, err
	}
	return s.transitionDocument(ctx, sess, clientID, documentID, func(l *document.Ledger) (document.Record, error) {
		return l.BeginReview(documentID)
	})
}

// ReviewDocument applies the advisor's decision to a submitted document.
func (s *Service) ReviewDocument(ctx context.Context, sess *session.Session, clientID string, documentID int64, outcome document.Outcome) (document.Record, error) {
	if err := sess.Authorize(session.ActionReviewDocument, clientID); err != nil {
		return document.Record{}, err
	}
	return s.transitionDocument(ctx, sess, clientID, documentID, func(l *document.Ledger) (document.Record, error) {
		return l.Review(documentID, outcome, s.clock.Now())
	})
}

// GetDocument returns one document record.
func (s *Service) GetDocument(ctx context.Context, sess *session.Session, clientID string, documentID int64) (document.Record, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return document.Record{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return document.Record{}, err
	}
	defer d.mu.Unlock()
	return d.ledger.Get(documentID)
}

// ListDocuments returns the client's documents in priority order,
// optionally restricted to one status.
func (s *Service) ListDocuments(ctx context.Context, sess *session.Session, clientID string, status *document.Status) ([]document.Record, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return nil, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer d.mu.Unlock()

	if status == nil {
		return client.PriorityList(d.ledger.List()), nil
	}
	return d.ledger.ListByStatus(*status)
}

// Summary derives the client's standing from the current ledger.
func (s *Service) Summary(ctx context.Context, sess *session.Session, clientID string) (client.Summary, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return client.Summary{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return client.Summary{}, err
	}
	defer d.mu.Unlock()
	return client.Summarize(d.ledger.List()), nil
}

// Snapshot returns consistent copies of a client's documents and holding cases.
func (s *Service) Snapshot(ctx context.Context, sess *session.Session, clientID string) ([]document.Record, []holding.Case, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return nil, nil, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return nil, nil, err
	}
	defer d.mu.Unlock()
	return d.ledger.List(), d.tracker.List(), nil
}

// StartFormation opens a new holding-formation case for the client.
func (s *Service) StartFormation(ctx context.Context, sess *session.Session, clientID string, req holding.FormationRequest) (holding.Case, error) {
	if err := sess.Authorize(session.ActionManageHoldings, clientID); err != nil {
		return holding.Case{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return holding.Case{}, err
	}
	defer d.mu.Unlock()
	c, err := d.tracker.StartFormation(req)
	if err != nil {
		return holding.Case{}, err
	}

	s.notify(ctx, s.holdingTransition(clientID, c.ID, "", c.Status, sess.Subject))
	return c, nil
}

// AdvanceStage moves an in-progress holding one stage forward.
func (s *Service) AdvanceStage(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error) {
	return s.transitionHolding(ctx, sess, clientID, holdingID, (*holding.Tracker).AdvanceStage)
}

// SetUnderAnalysis pauses a holding for external analysis.
func (s *Service) SetUnderAnalysis(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error) {
	return s.transitionHolding(ctx, sess, clientID, holdingID, (*holding.Tracker).SetUnderAnalysis)
}

// SetPending pauses a holding pending review.
func (s *Service) SetPending(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error) {
	return s.transitionHolding(ctx, sess, clientID, holdingID, (*holding.Tracker).SetPending)
}

// ResumeHolding returns a paused holding to the documentation stage.
func (s *Service) ResumeHolding(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error) {
	return s.transitionHolding(ctx, sess, clientID, holdingID, (*holding.Tracker).Resume)
}

// GetHolding returns one holding case.
func (s *Service) GetHolding(ctx context.Context, sess *session.Session, clientID string, holdingID int64) (holding.Case, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return holding.Case{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return holding.Case{}, err
	}
	defer d.mu.Unlock()
	return d.tracker.Get(holdingID)
}

// ListHoldings returns the client's holding cases ordered by id.
func (s *Service) ListHoldings(ctx context.Context, sess *session.Session, clientID string) ([]holding.Case, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return nil, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer d.mu.Unlock()
	return d.tracker.List(), nil
}

func (s *Service) transitionDocument(ctx context.Context, sess *session.Session, clientID string, documentID int64, apply func(*document.Ledger) (document.Record, error)) (document.Record, error) {
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return document.Record{}, err
	}
	defer d.mu.Unlock()
	before, err := d.ledger.Get(documentID)
	if err != nil {
		return document.Record{}, err
	}
	rec, err := apply(d.ledger)
	if err != nil {
		return document.Record{}, err
	}

	s.notify(ctx, s.documentTransition(clientID, rec.ID, before.Status, rec.Status, sess.Subject))
	return rec, nil
}

func (s *Service) transitionHolding(ctx context.Context, sess *session.Session, clientID string, holdingID int64, apply func(*holding.Tracker, int64) (holding.Case, error)) (holding.Case, error) {
	if err := sess.Authorize(session.ActionManageHoldings, clientID); err != nil {
		return holding.Case{}, err
	}
	d, err := s.acquire(ctx, clientID)
	if err != nil {
		return holding.Case{}, err
	}
	defer d.mu.Unlock()
	before, err := d.tracker.Get(holdingID)
	if err != nil {
		return holding.Case{}, err
	}
	c, err := apply(d.tracker, holdingID)
	if err != nil {
		return holding.Case{}, err
	}

	s.notify(ctx, s.holdingTransition(clientID, c.ID, before.Status, c.Status, sess.Subject))
	return c, nil
}

// acquire returns the client's desk with its lock held, loading it on first use.
// The caller must unlock d.mu.
func (s *Service) acquire(ctx context.Context, clientID string) (*desk, error) {
	s.mu.Lock()
	d, ok := s.desks[clientID]
	s.mu.Unlock()
	if !ok {
		if _, err := s.clients.Get(ctx, clientID); err != nil {
			return nil, err
		}
		s.mu.Lock()
		if d, ok = s.desks[clientID]; !ok {
			d = &desk{}
			s.desks[clientID] = d
		}
		s.mu.Unlock()
	}

	d.mu.Lock()
	if d.ledger != nil {
		return d, nil
	}
	// An unloaded desk stays registered; the next caller retries the load under the same lock.
	if err := s.load(ctx, clientID, d); err != nil {
		d.mu.Unlock()
		return nil, err
	}
	return d, nil
}

func (s *Service) load(ctx context.Context, clientID string, d *desk) error {
	records, err := s.documents.ListByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("load documents for client %s: %w", clientID, err)
	}
	cases, err := s.holdings.ListByClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("load holdings for client %s: %w", clientID, err)
	}

	ledger, err := document.NewLedger(records...)
	if err != nil {
		return fmt.Errorf("client %s documents: %w", clientID, err)
	}
	tracker, err := holding.NewTracker(cases...)
	if err != nil {
		return fmt.Errorf("client %s holdings: %w", clientID, err)
	}
	d.ledger, d.tracker = ledger, tracker

	s.log.Debug("client desk loaded", "client_id", clientID, "documents", len(records), "holdings", len(cases))
	return nil
}

func (s *Service) documentTransition(clientID string, id int64, from, to document.Status, actor string) lifecycle.Transition {
	return lifecycle.Transition{
		ClientID:   clientID,
		Kind:       lifecycle.EntityDocument,
		EntityID:   id,
		OldStatus:  string(from),
		NewStatus:  string(to),
		Actor:      actor,
		OccurredAt: s.clock.Now(),
	}
}

func (s *Service) holdingTransition(clientID string, id int64, from, to holding.Status, actor string) lifecycle.Transition {
	return lifecycle.Transition{
		ClientID:   clientID,
		Kind:       lifecycle.EntityHolding,
		EntityID:   id,
		OldStatus:  string(from),
		NewStatus:  string(to),
		Actor:      actor,
		OccurredAt: s.clock.Now(),
	}
}

// notify runs after the transition is committed; a misbehaving observer cannot undo it.
// notify runs with the client's desk lock held, so observers see one client's
// transitions in commit order. Notifiers must not block or call back into the service.
func (s *Service) notify(ctx context.Context, t lifecycle.Transition) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("transition notifier panicked", "client_id", t.ClientID, "kind", t.Kind, "entity_id", t.EntityID, "panic", r)
		}
	}()
	s.notifier.Notify(ctx, t)
}
