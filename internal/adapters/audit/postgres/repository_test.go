package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"3tcapital/wealthdesk/internal/core/audit"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/infrastructure/database"
	"3tcapital/wealthdesk/internal/testutil"
)

var _ audit.Repository = (*Repository)(nil)

// recordingDB captures Exec calls and fails Query.
type recordingDB struct {
	execSQL  string
	execArgs []any
	execErr  error
}

func (d *recordingDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	d.execSQL = sql
	d.execArgs = args
	return pgconn.NewCommandTag("INSERT 0 1"), d.execErr
}

func (d *recordingDB) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("query not supported")
}

func sampleEntry() audit.Entry {
	return audit.FromTransition(lifecycle.Transition{
		ClientID:   "2",
		Kind:       lifecycle.EntityHolding,
		EntityID:   3,
		OldStatus:  "under_analysis",
		NewStatus:  "in_progress",
		Actor:      "consultor.w1",
		OccurredAt: time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC),
	}, "req-42")
}

func TestRepository_Save(t *testing.T) {
	db := &recordingDB{}
	repo := NewRepository(db, testutil.NewNullLogger())
	entry := sampleEntry()

	if err := repo.Save(context.Background(), entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(db.execArgs) != 9 {
		t.Fatalf("expected 9 arguments, got %d", len(db.execArgs))
	}
	if db.execArgs[0] != entry.ID {
		t.Errorf("expected id argument %s, got %v", entry.ID, db.execArgs[0])
	}
	if db.execArgs[3] != "holding" {
		t.Errorf("expected entity kind as plain string, got %#v", db.execArgs[3])
	}
	if db.execArgs[6] != "in_progress" {
		t.Errorf("expected new status argument, got %v", db.execArgs[6])
	}
}

func TestRepository_Save_Error(t *testing.T) {
	db := &recordingDB{execErr: errors.New("connection refused")}
	repo := NewRepository(db, nil)

	err := repo.Save(context.Background(), sampleEntry())
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, db.execErr) {
		t.Errorf("expected wrapped driver error, got %v", err)
	}
}

func TestRepository_FindByClient_InvalidLimit(t *testing.T) {
	repo := NewRepository(&recordingDB{}, nil)

	if _, err := repo.FindByClient(context.Background(), "1", 0); !errors.Is(err, lifecycle.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

// TestRepositoryIntegration needs a PostgreSQL database in WEALTHDESK_TEST_DATABASE_URL.
func TestRepositoryIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}
	dsn := os.Getenv("WEALTHDESK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("WEALTHDESK_TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, testutil.NewNullLogger()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	repo := NewRepository(pool, testutil.NewNullLogger())
	clientID := "it-" + sampleEntry().ID.String()

	first := sampleEntry()
	first.ClientID = clientID
	second := sampleEntry()
	second.ClientID = clientID
	second.OccurredAt = first.OccurredAt.Add(time.Minute)
	second.OldStatus, second.NewStatus = "in_progress", "active"

	for _, e := range []audit.Entry{first, second} {
		if err := repo.Save(ctx, e); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	entries, err := repo.FindByClient(ctx, clientID, 10)
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != second.ID || entries[0].NewStatus != "active" {
		t.Errorf("expected newest entry first, got %+v", entries[0])
	}
	if entries[1].Kind != lifecycle.EntityHolding || entries[1].RecordedAt.IsZero() {
		t.Errorf("unexpected stored entry %+v", entries[1])
	}
}
