package portfolio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/application/workflow"
	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
	"3tcapital/wealthdesk/internal/testutil"
)

func newPortfolio(t *testing.T) *Service {
	t.Helper()
	submitted := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	approved := time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC)
	store := &testutil.MockStore{
		Clients: []client.Client{
			{ID: "2", Name: "Maria Oliveira"},
			{ID: "1", Name: "João Silva"},
		},
		Documents: map[string][]document.Record{
			"1": {
				{ID: 1, Name: "Contrato Social", Status: document.StatusApproved, SubmittedDate: &submitted, ApprovedDate: &approved},
				{ID: 2, Name: "Declaração IR", Status: document.StatusRequested, RequestedBy: "consultor.w1"},
			},
			"2": {
				{ID: 1, Name: "RG", Status: document.StatusApproved, SubmittedDate: &submitted, ApprovedDate: &approved},
			},
		},
		Holdings: map[string][]holding.Case{
			"1": {
				{ID: 1, Name: "Família Silva", EntityType: "Limitada", Status: holding.StatusActive, TotalValue: decimal.NewFromInt(7500000)},
				{ID: 2, Name: "JSP", EntityType: "S.A.", Status: holding.StatusInProgress, Stage: holding.StageReview, TotalValue: decimal.NewFromInt(3200000)},
			},
		},
	}
	wf, err := workflow.NewService(store, store, store.HoldingRepository(), testutil.NewNullLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc, err := NewService(store, wf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc
}

func TestNewService_RequiresDependencies(t *testing.T) {
	if _, err := NewService(nil, nil); err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}

func TestService_ListClients(t *testing.T) {
	svc := newPortfolio(t)

	entries, err := svc.ListClients(context.Background(), testutil.AdvisorSession(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Client.ID != "1" || entries[1].Client.ID != "2" {
		t.Errorf("expected clients ordered by id, got %s, %s", entries[0].Client.ID, entries[1].Client.ID)
	}
	if entries[0].Summary.OverallStanding != client.StandingPending || entries[0].Summary.PendingDocumentCount != 1 {
		t.Errorf("unexpected summary for client 1: %+v", entries[0].Summary)
	}
	if entries[1].Summary.OverallStanding != client.StandingUpToDate {
		t.Errorf("expected client 2 up to date, got %s", entries[1].Summary.OverallStanding)
	}
}

func TestService_ListClients_ClientForbidden(t *testing.T) {
	svc := newPortfolio(t)

	_, err := svc.ListClients(context.Background(), testutil.ClientSession(t, "1"))
	if !errors.Is(err, session.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestService_Profile(t *testing.T) {
	svc := newPortfolio(t)
	ctx := context.Background()

	tests := []struct {
		name        string
		sess        *session.Session
		clientID    string
		expectedErr error
	}{
		{"advisor reads any client", testutil.AdvisorSession(t), "1", nil},
		{"client reads own profile", testutil.ClientSession(t, "1"), "1", nil},
		{"client cannot read another profile", testutil.ClientSession(t, "2"), "1", session.ErrForbidden},
		{"unknown client", testutil.AdvisorSession(t), "42", lifecycle.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := svc.Profile(ctx, tt.sess, tt.clientID)
			if tt.expectedErr != nil {
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if o.Client.Name != "João Silva" {
				t.Errorf("expected João Silva, got %q", o.Client.Name)
			}
			if o.Holdings.Count != 2 || o.Holdings.InProgress != 1 {
				t.Errorf("unexpected holdings overview %+v", o.Holdings)
			}
			if !o.Holdings.TotalValue.Equal(decimal.NewFromInt(10700000)) {
				t.Errorf("expected total 10700000, got %s", o.Holdings.TotalValue)
			}
		})
	}
}
