package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// MockStore implements the client, document and holding data-access ports for tests.
// Set a Func field to override the default map-backed behaviour.
type MockStore struct {
	Clients   []client.Client
	Documents map[string][]document.Record
	Holdings  map[string][]holding.Case

	ListDocumentsFunc func(ctx context.Context, clientID string) ([]document.Record, error)
	ListHoldingsFunc  func(ctx context.Context, clientID string) ([]holding.Case, error)

	DocumentLoads int
}

// List returns the configured clients ordered by id.
func (m *MockStore) List(_ context.Context) ([]client.Client, error) {
	out := append([]client.Client(nil), m.Clients...)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get returns the configured client or lifecycle.ErrNotFound.
func (m *MockStore) Get(_ context.Context, id string) (client.Client, error) {
	for _, c := range m.Clients {
		if c.ID == id {
			return c, nil
		}
	}
	return client.Client{}, fmt.Errorf("client %s: %w", id, lifecycle.ErrNotFound)
}

// ListByClient satisfies document.Repository.
func (m *MockStore) ListByClient(ctx context.Context, clientID string) ([]document.Record, error) {
	m.DocumentLoads++
	if m.ListDocumentsFunc != nil {
		return m.ListDocumentsFunc(ctx, clientID)
	}
	return append([]document.Record(nil), m.Documents[clientID]...), nil
}

// HoldingRepository adapts the store to holding.Repository, whose method name collides with ListByClient.
func (m *MockStore) HoldingRepository() holding.Repository {
	return holdingRepo{m}
}

type holdingRepo struct{ m *MockStore }

func (r holdingRepo) ListByClient(ctx context.Context, clientID string) ([]holding.Case, error) {
	if r.m.ListHoldingsFunc != nil {
		return r.m.ListHoldingsFunc(ctx, clientID)
	}
	return append([]holding.Case(nil), r.m.Holdings[clientID]...), nil
}

// NewSeededStore returns a store with two clients: client 1 has three documents and two
// holding cases, client 2 has nothing yet.
func NewSeededStore() *MockStore {
	submitted := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	approved := time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC)
	return &MockStore{
		Clients: []client.Client{
			{ID: "1", Name: "João Silva", Email: "joao.silva@email.com", AdvisorID: "consultor.w1", PatrimonyValue: decimal.NewFromInt(2750000)},
			{ID: "2", Name: "Maria Oliveira", Email: "maria.oliveira@email.com", AdvisorID: "consultor.w1"},
		},
		Documents: map[string][]document.Record{
			"1": {
				{ID: 1, Name: "Contrato Social", Status: document.StatusApproved, SubmittedDate: &submitted, ApprovedDate: &approved},
				{ID: 2, Name: "Escritura do Imóvel", Status: document.StatusSubmitted, SubmittedDate: &submitted},
				{ID: 3, Name: "Declaração IR", Status: document.StatusRequested, RequestedBy: "consultor.w1"},
			},
		},
		Holdings: map[string][]holding.Case{
			"1": {
				{ID: 1, Name: "Família Silva Holdings", EntityType: "Limitada", Status: holding.StatusActive, PartnerCount: 4, AssetCount: 12, TotalValue: decimal.NewFromInt(7500000)},
				{ID: 2, Name: "JSP Participações", EntityType: "S.A.", Status: holding.StatusInProgress, Stage: holding.StageReview, PartnerCount: 3, AssetCount: 5, TotalValue: decimal.NewFromInt(3200000)},
			},
		},
	}
}
