package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
	"3tcapital/wealthdesk/internal/testutil"
)

var epoch = time.Date(2023, 5, 16, 9, 0, 0, 0, time.UTC)

func newStore() *testutil.MockStore {
	submitted := time.Date(2023, 4, 10, 0, 0, 0, 0, time.UTC)
	approved := time.Date(2023, 4, 12, 0, 0, 0, 0, time.UTC)
	return &testutil.MockStore{
		Clients: []client.Client{{ID: "1", Name: "João Silva"}, {ID: "2", Name: "Maria Oliveira"}},
		Documents: map[string][]document.Record{
			"1": {
				{ID: 1, Name: "Contrato Social", Status: document.StatusApproved, SubmittedDate: &submitted, ApprovedDate: &approved},
				{ID: 2, Name: "Escritura do Imóvel", Status: document.StatusSubmitted, SubmittedDate: &submitted},
				{ID: 3, Name: "Declaração IR", Status: document.StatusRequested, RequestedBy: "consultor.w1"},
			},
		},
		Holdings: map[string][]holding.Case{
			"1": {
				{ID: 1, Name: "Família Silva", EntityType: "Limitada", Status: holding.StatusActive, TotalValue: decimal.NewFromInt(7500000)},
				{ID: 2, Name: "JSP Participações", EntityType: "S.A.", Status: holding.StatusInProgress, Stage: holding.StageReview, TotalValue: decimal.NewFromInt(3200000)},
			},
		},
	}
}

func newTestService(t *testing.T, store *testutil.MockStore, opts ...Option) (*Service, *testutil.RecordingNotifier) {
	t.Helper()
	rec := &testutil.RecordingNotifier{}
	opts = append([]Option{WithNotifier(rec), WithClock(&testutil.StepClock{Start: epoch, Step: time.Second})}, opts...)
	svc, err := NewService(store, store, store.HoldingRepository(), testutil.NewNullLogger(), opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return svc, rec
}

func TestNewService_Validation(t *testing.T) {
	store := newStore()
	if _, err := NewService(nil, store, store.HoldingRepository(), testutil.NewNullLogger()); err == nil {
		t.Error("expected error for missing directory")
	}
	if _, err := NewService(store, store, store.HoldingRepository(), nil); err == nil {
		t.Error("expected error for missing logger")
	}
}

func TestService_RequestSubmitReview(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)
	joao := testutil.ClientSession(t, "1")

	requested, err := svc.RequestDocument(ctx, advisor, "1", "Certidão de Casamento", "Enviar até sexta")
	if err != nil {
		t.Fatalf("request: unexpected error: %v", err)
	}
	if requested.ID != 4 || requested.Status != document.StatusRequested {
		t.Fatalf("expected new requested record 4, got %d/%s", requested.ID, requested.Status)
	}
	if requested.RequestedBy != advisor.Subject {
		t.Errorf("expected requestedBy %q, got %q", advisor.Subject, requested.RequestedBy)
	}

	submitted, err := svc.SubmitDocument(ctx, joao, "1", requested.ID)
	if err != nil {
		t.Fatalf("submit: unexpected error: %v", err)
	}
	if submitted.Status != document.StatusSubmitted || submitted.SubmittedDate == nil {
		t.Fatalf("expected submitted with date, got %+v", submitted)
	}

	if _, err := svc.BeginReview(ctx, advisor, "1", requested.ID); err != nil {
		t.Fatalf("begin review: unexpected error: %v", err)
	}
	reviewed, err := svc.ReviewDocument(ctx, advisor, "1", requested.ID, document.OutcomeApproved)
	if err != nil {
		t.Fatalf("review: unexpected error: %v", err)
	}
	if reviewed.Status != document.StatusApproved || reviewed.ApprovedDate == nil {
		t.Fatalf("expected approved with date, got %+v", reviewed)
	}

	got := rec.Transitions()
	want := []struct {
		from, to string
		actor    string
	}{
		{"", "requested", advisor.Subject},
		{"requested", "submitted", joao.Subject},
		{"submitted", "under_review", advisor.Subject},
		{"under_review", "approved", advisor.Subject},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].OldStatus != w.from || got[i].NewStatus != w.to || got[i].Actor != w.actor {
			t.Errorf("transition %d: expected %s->%s by %s, got %+v", i, w.from, w.to, w.actor, got[i])
		}
		if got[i].ClientID != "1" || got[i].Kind != lifecycle.EntityDocument || got[i].EntityID != requested.ID {
			t.Errorf("transition %d: unexpected identity %+v", i, got[i])
		}
		if got[i].OccurredAt.IsZero() {
			t.Errorf("transition %d: missing timestamp", i)
		}
	}
}

func TestService_ResubmissionKeepsID(t *testing.T) {
	svc, _ := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)
	joao := testutil.ClientSession(t, "1")

	if _, err := svc.ReviewDocument(ctx, advisor, "1", 2, document.OutcomeRejected); err != nil {
		t.Fatalf("reject: unexpected error: %v", err)
	}
	again, err := svc.SubmitDocument(ctx, joao, "1", 2)
	if err != nil {
		t.Fatalf("resubmit: unexpected error: %v", err)
	}
	if again.ID != 2 || again.Status != document.StatusSubmitted {
		t.Errorf("expected document 2 submitted again, got %d/%s", again.ID, again.Status)
	}
}

func TestService_RoleGating(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)
	joao := testutil.ClientSession(t, "1")
	maria := testutil.ClientSession(t, "2")

	tests := []struct {
		name string
		call func() error
	}{
		{"client requests", func() error {
			_, err := svc.RequestDocument(ctx, joao, "1", "RG", "")
			return err
		}},
		{"advisor submits", func() error {
			_, err := svc.SubmitDocument(ctx, advisor, "1", 3)
			return err
		}},
		{"client submits for another client", func() error {
			_, err := svc.SubmitDocument(ctx, maria, "1", 3)
			return err
		}},
		{"client reviews", func() error {
			_, err := svc.ReviewDocument(ctx, joao, "1", 2, document.OutcomeApproved)
			return err
		}},
		{"client begins review", func() error {
			_, err := svc.BeginReview(ctx, joao, "1", 2)
			return err
		}},
		{"client advances holding", func() error {
			_, err := svc.AdvanceStage(ctx, joao, "1", 2)
			return err
		}},
		{"client starts formation", func() error {
			_, err := svc.StartFormation(ctx, joao, "1", holding.FormationRequest{Name: "X", EntityType: "Limitada"})
			return err
		}},
		{"client reads another ledger", func() error {
			_, err := svc.ListDocuments(ctx, maria, "1", nil)
			return err
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, session.ErrForbidden) {
				t.Fatalf("expected ErrForbidden, got %v", err)
			}
		})
	}
	if n := len(rec.Transitions()); n != 0 {
		t.Errorf("expected no transitions after forbidden calls, got %d", n)
	}
}

func TestService_ClosedSession(t *testing.T) {
	svc, _ := newTestService(t, newStore())
	advisor := testutil.AdvisorSession(t)
	advisor.Close()

	_, err := svc.RequestDocument(context.Background(), advisor, "1", "RG", "")
	if !errors.Is(err, session.ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
}

func TestService_Errors(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)
	joao := testutil.ClientSession(t, "1")

	tests := []struct {
		name        string
		call        func() error
		expectedErr error
	}{
		{"unknown client", func() error {
			_, err := svc.ListDocuments(ctx, advisor, "99", nil)
			return err
		}, lifecycle.ErrNotFound},
		{"unknown document", func() error {
			_, err := svc.SubmitDocument(ctx, joao, "1", 42)
			return err
		}, lifecycle.ErrNotFound},
		{"duplicate active request", func() error {
			_, err := svc.RequestDocument(ctx, advisor, "1", " declaração ir ", "")
			return err
		}, lifecycle.ErrDuplicateActiveRequest},
		{"submit approved document", func() error {
			_, err := svc.SubmitDocument(ctx, joao, "1", 1)
			return err
		}, lifecycle.ErrInvalidTransition},
		{"review requested document", func() error {
			_, err := svc.ReviewDocument(ctx, advisor, "1", 3, document.OutcomeApproved)
			return err
		}, lifecycle.ErrInvalidTransition},
		{"advance active holding", func() error {
			_, err := svc.AdvanceStage(ctx, advisor, "1", 1)
			return err
		}, lifecycle.ErrNotInProgress},
		{"unknown holding", func() error {
			_, err := svc.GetHolding(ctx, advisor, "1", 9)
			return err
		}, lifecycle.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
	if n := len(rec.Transitions()); n != 0 {
		t.Errorf("expected no transitions after failed calls, got %d", n)
	}
}

func TestService_ListDocuments(t *testing.T) {
	svc, _ := newTestService(t, newStore())
	ctx := context.Background()
	joao := testutil.ClientSession(t, "1")

	all, err := svc.ListDocuments(ctx, joao, "1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantOrder := []int64{3, 2, 1}
	for i, id := range wantOrder {
		if all[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d", i, id, all[i].ID)
		}
	}

	status := document.StatusApproved
	approved, err := svc.ListDocuments(ctx, joao, "1", &status)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(approved) != 1 || approved[0].ID != 1 {
		t.Errorf("expected only document 1, got %+v", approved)
	}

	summary, err := svc.Summary(ctx, joao, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.PendingDocumentCount != 2 || summary.OverallStanding != client.StandingPending {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestService_AutoApprovePolicy(t *testing.T) {
	svc, rec := newTestService(t, newStore(), WithReviewPolicy(NewAutoApproveNames([]string{"DECLARAÇÃO IR"})))
	joao := testutil.ClientSession(t, "1")

	got, err := svc.SubmitDocument(context.Background(), joao, "1", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != document.StatusApproved || got.ApprovedDate == nil {
		t.Fatalf("expected auto approval, got %+v", got)
	}

	transitions := rec.Transitions()
	if len(transitions) != 2 {
		t.Fatalf("expected submit and auto review transitions, got %d", len(transitions))
	}
	if transitions[1].Actor != AutoReviewActor || transitions[1].NewStatus != string(document.StatusApproved) {
		t.Errorf("unexpected auto review transition %+v", transitions[1])
	}
}

func TestService_HoldingPipeline(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	c, err := svc.StartFormation(ctx, advisor, "2", holding.FormationRequest{
		Name:       "Oliveira Patrimonial",
		EntityType: "Limitada",
		TotalValue: decimal.RequireFromString("4500000.00"),
	})
	if err != nil {
		t.Fatalf("start formation: unexpected error: %v", err)
	}
	if c.ID != 1 || c.Stage != holding.StageDocumentation {
		t.Fatalf("expected case 1 at documentation, got %d/%s", c.ID, c.Stage)
	}

	for i := 0; i < 4; i++ {
		if c, err = svc.AdvanceStage(ctx, advisor, "2", c.ID); err != nil {
			t.Fatalf("advance %d: unexpected error: %v", i+1, err)
		}
	}
	if c.Status != holding.StatusActive || c.Stage != "" {
		t.Fatalf("expected active without stage, got %s/%q", c.Status, c.Stage)
	}

	if _, err := svc.SetUnderAnalysis(ctx, advisor, "2", c.ID); err != nil {
		t.Fatalf("set under analysis: unexpected error: %v", err)
	}
	if _, err := svc.SetPending(ctx, advisor, "2", c.ID); err != nil {
		t.Fatalf("set pending: unexpected error: %v", err)
	}
	resumed, err := svc.ResumeHolding(ctx, advisor, "2", c.ID)
	if err != nil {
		t.Fatalf("resume: unexpected error: %v", err)
	}
	if resumed.Stage != holding.StageDocumentation {
		t.Errorf("expected documentation stage, got %s", resumed.Stage)
	}

	cases, err := svc.ListHoldings(ctx, testutil.ClientSession(t, "2"), "2")
	if err != nil {
		t.Fatalf("list: unexpected error: %v", err)
	}
	if len(cases) != 1 {
		t.Errorf("expected one case, got %d", len(cases))
	}

	var statuses []string
	for _, tr := range rec.Transitions() {
		if tr.Kind != lifecycle.EntityHolding {
			t.Fatalf("unexpected kind %s", tr.Kind)
		}
		statuses = append(statuses, tr.OldStatus+">"+tr.NewStatus)
	}
	want := []string{
		">in_progress",
		"in_progress>in_progress", "in_progress>in_progress", "in_progress>in_progress",
		"in_progress>active",
		"active>under_analysis",
		"under_analysis>pending_review",
		"pending_review>in_progress",
	}
	if fmt.Sprint(statuses) != fmt.Sprint(want) {
		t.Errorf("expected %v, got %v", want, statuses)
	}
}

func TestService_NotifierPanicDoesNotRollBack(t *testing.T) {
	store := newStore()
	svc, err := NewService(store, store, store.HoldingRepository(), testutil.NewNullLogger(), WithNotifier(testutil.PanickingNotifier{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	rec, err := svc.RequestDocument(ctx, advisor, "1", "Comprovante de Residência", "")
	if err != nil {
		t.Fatalf("expected transition to succeed despite notifier panic, got %v", err)
	}
	got, err := svc.GetDocument(ctx, advisor, "1", rec.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Status != document.StatusRequested {
		t.Errorf("expected requested, got %s", got.Status)
	}
}

func TestService_LoadsDeskOnce(t *testing.T) {
	store := newStore()
	svc, _ := newTestService(t, store)
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	for i := 0; i < 3; i++ {
		if _, err := svc.ListDocuments(ctx, advisor, "1", nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if store.DocumentLoads != 1 {
		t.Errorf("expected one load, got %d", store.DocumentLoads)
	}
}

func TestService_LoadFailureIsRetried(t *testing.T) {
	store := newStore()
	fail := true
	store.ListDocumentsFunc = func(_ context.Context, clientID string) ([]document.Record, error) {
		if fail {
			return nil, errors.New("seed unavailable")
		}
		return store.Documents[clientID], nil
	}
	svc, _ := newTestService(t, store)
	advisor := testutil.AdvisorSession(t)

	if _, err := svc.ListDocuments(context.Background(), advisor, "1", nil); err == nil {
		t.Fatal("expected load error")
	}
	fail = false
	if _, err := svc.ListDocuments(context.Background(), advisor, "1", nil); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
}

func TestService_ConcurrentRequestsAreSerialized(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.RequestDocument(ctx, advisor, "1", fmt.Sprintf("Documento %d", i), ""); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	docs, err := svc.ListDocuments(ctx, advisor, "1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 3+n {
		t.Fatalf("expected %d documents, got %d", 3+n, len(docs))
	}
	seen := make(map[int64]bool, len(docs))
	for _, d := range docs {
		if seen[d.ID] {
			t.Fatalf("duplicate id %d", d.ID)
		}
		seen[d.ID] = true
	}
	if len(rec.Transitions()) != n {
		t.Errorf("expected %d transitions, got %d", n, len(rec.Transitions()))
	}
}

func TestService_NotificationsFollowCommitOrder(t *testing.T) {
	svc, rec := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.RequestDocument(ctx, advisor, "1", fmt.Sprintf("Extrato %d", i), ""); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	transitions := rec.Transitions()
	if len(transitions) != n {
		t.Fatalf("expected %d transitions, got %d", n, len(transitions))
	}
	for i := 1; i < len(transitions); i++ {
		if transitions[i].EntityID <= transitions[i-1].EntityID {
			t.Fatalf("position %d: document %d notified after document %d", i, transitions[i].EntityID, transitions[i-1].EntityID)
		}
		if transitions[i].OccurredAt.Before(transitions[i-1].OccurredAt) {
			t.Fatalf("position %d: timestamps out of order", i)
		}
	}
}

func TestService_SnapshotIsACopy(t *testing.T) {
	svc, _ := newTestService(t, newStore())
	ctx := context.Background()
	advisor := testutil.AdvisorSession(t)

	docs, cases, err := svc.Snapshot(ctx, advisor, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	docs[0].Status = document.StatusRejected
	cases[0].Status = holding.StatusUnderAnalysis

	again, againCases, _ := svc.Snapshot(ctx, advisor, "1")
	if again[0].Status == document.StatusRejected || againCases[0].Status == holding.StatusUnderAnalysis {
		t.Error("expected snapshot mutations not to leak into the desk")
	}
}
