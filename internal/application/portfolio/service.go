// Package portfolio builds the advisor-facing read models: the client list and client profiles.
package portfolio

import (
	"context"
	"errors"
	"fmt"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/session"
)

// Workflow is the part of the workflow service the read models need.
type Workflow interface {
	Snapshot(ctx context.Context, sess *session.Session, clientID string) ([]document.Record, []holding.Case, error)
}

// Entry is one row of the advisor's client list.
type Entry struct {
	Client  client.Client  `json:"client"`
	Summary client.Summary `json:"summary"`
}

// DefaultWorkers is the number of concurrent summary workers used by ListClients.
const DefaultWorkers = 4

// Service derives views from the live ledgers; nothing is cached.
type Service struct {
	clients  client.Directory
	workflow Workflow
	workers  int
}

// Option customizes a Service.
type Option func(*Service)

// WithWorkers sets how many client summaries are computed concurrently.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

func NewService(clients client.Directory, workflow Workflow, opts ...Option) (*Service, error) {
	if clients == nil || workflow == nil {
		return nil, errors.New("portfolio: client directory and workflow are required")
	}
	s := &Service{clients: clients, workflow: workflow, workers: DefaultWorkers}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ListClients returns every client with its current document summary. Advisors only.
func (s *Service) ListClients(ctx context.Context, sess *session.Session) ([]Entry, error) {
	if err := sess.Authorize(session.ActionListClients, ""); err != nil {
		return nil, err
	}
	clients, err := s.clients.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}

	if len(clients) == 0 {
		return []Entry{}, nil
	}
	return newSummaryPool(ctx, s.workers, s.workflow, sess).run(clients)
}

// Profile returns the overview of one client: document standing plus holding totals.
func (s *Service) Profile(ctx context.Context, sess *session.Session, clientID string) (client.Overview, error) {
	if err := sess.Authorize(session.ActionRead, clientID); err != nil {
		return client.Overview{}, err
	}
	c, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return client.Overview{}, err
	}
	records, cases, err := s.workflow.Snapshot(ctx, sess, clientID)
	if err != nil {
		return client.Overview{}, err
	}
	return client.BuildOverview(c, records, cases), nil
}
