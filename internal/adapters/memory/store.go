// Package memory serves the client, document and holding data-access ports from a seeded snapshot.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"3tcapital/wealthdesk/internal/adapters/fixtures"
	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Store holds the seed snapshot. Reads return copies; the workflow owns the live state.
type Store struct {
	mu        sync.RWMutex
	clients   map[string]client.Client
	documents map[string][]document.Record
	holdings  map[string][]holding.Case
}

// New builds a store from a fixture seed.
func New(seed fixtures.Seed) *Store {
	s := &Store{
		clients:   make(map[string]client.Client, len(seed.Clients)),
		documents: make(map[string][]document.Record, len(seed.Documents)),
		holdings:  make(map[string][]holding.Case, len(seed.Holdings)),
	}
	for _, c := range seed.Clients {
		s.clients[c.ID] = c
	}
	for id, records := range seed.Documents {
		s.documents[id] = cloneRecords(records)
	}
	for id, cases := range seed.Holdings {
		s.holdings[id] = append([]holding.Case(nil), cases...)
	}
	return s
}

// List returns every client ordered by id.
func (s *Store) List(ctx context.Context) ([]client.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]client.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns one client.
func (s *Store) Get(ctx context.Context, id string) (client.Client, error) {
	if err := ctx.Err(); err != nil {
		return client.Client{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.clients[id]
	if !ok {
		return client.Client{}, fmt.Errorf("client %s: %w", id, lifecycle.ErrNotFound)
	}
	return c, nil
}

// Documents exposes the store as a document.Repository.
func (s *Store) Documents() document.Repository {
	return documentRepository{s}
}

// Holdings exposes the store as a holding.Repository.
func (s *Store) Holdings() holding.Repository {
	return holdingRepository{s}
}

type documentRepository struct{ s *Store }

func (r documentRepository) ListByClient(ctx context.Context, clientID string) ([]document.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return cloneRecords(r.s.documents[clientID]), nil
}

type holdingRepository struct{ s *Store }

func (r holdingRepository) ListByClient(ctx context.Context, clientID string) ([]holding.Case, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return append([]holding.Case{}, r.s.holdings[clientID]...), nil
}

func cloneRecords(records []document.Record) []document.Record {
	out := make([]document.Record, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}
