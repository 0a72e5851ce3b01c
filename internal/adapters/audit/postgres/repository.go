package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"3tcapital/wealthdesk/internal/core/audit"
	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// DB is the subset of *pgxpool.Pool the repository needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Repository implements audit.Repository on PostgreSQL.
type Repository struct {
	db  DB
	log *slog.Logger
}

// NewRepository creates a PostgreSQL audit repository. log may be nil.
func NewRepository(db DB, log *slog.Logger) *Repository {
	return &Repository{db: db, log: log}
}

const insertEntry = `
	INSERT INTO lifecycle_transition_log (
		id, correlation_id, client_id, entity_kind, entity_id,
		old_status, new_status, actor, occurred_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Save appends one transition to the log.
func (r *Repository) Save(ctx context.Context, entry audit.Entry) error {
	_, err := r.db.Exec(ctx, insertEntry,
		entry.ID,
		entry.CorrelationID,
		entry.ClientID,
		string(entry.Kind),
		entry.EntityID,
		entry.OldStatus,
		entry.NewStatus,
		entry.Actor,
		entry.OccurredAt,
	)
	if err != nil {
		if r.log != nil {
			r.log.Error("failed to insert transition",
				"correlation_id", entry.CorrelationID,
				"client_id", entry.ClientID,
				"kind", entry.Kind,
				"entity_id", entry.EntityID,
				"error", err,
			)
		}
		return fmt.Errorf("insert transition: %w", err)
	}

	if r.log != nil {
		r.log.Debug("transition saved", "id", entry.ID, "client_id", entry.ClientID, "kind", entry.Kind, "entity_id", entry.EntityID)
	}
	return nil
}

const selectByClient = `
	SELECT id, correlation_id, client_id, entity_kind, entity_id,
	       old_status, new_status, actor, occurred_at, recorded_at
	FROM lifecycle_transition_log
	WHERE client_id = $1
	ORDER BY occurred_at DESC, recorded_at DESC
	LIMIT $2
`

// FindByClient returns the client's most recent transitions, newest first.
func (r *Repository) FindByClient(ctx context.Context, clientID string, limit int) ([]audit.Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive: %w", lifecycle.ErrInvalidInput)
	}

	rows, err := r.db.Query(ctx, selectByClient, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	entries := make([]audit.Entry, 0, limit)
	for rows.Next() {
		var (
			entry audit.Entry
			kind  string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.CorrelationID,
			&entry.ClientID,
			&kind,
			&entry.EntityID,
			&entry.OldStatus,
			&entry.NewStatus,
			&entry.Actor,
			&entry.OccurredAt,
			&entry.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		entry.Kind = lifecycle.EntityKind(kind)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return entries, nil
}
