// Package history exposes the persisted transition audit trail to advisors.
package history

import (
	"context"
	"errors"
	"fmt"

	"3tcapital/wealthdesk/internal/core/audit"
	"3tcapital/wealthdesk/internal/core/lifecycle"
	"3tcapital/wealthdesk/internal/core/session"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Service struct {
	repo audit.Repository
}

func NewService(repo audit.Repository) (*Service, error) {
	if repo == nil {
		return nil, errors.New("history: audit repository is required")
	}
	return &Service{repo: repo}, nil
}

// Transitions returns the newest audit entries of a client, most recent first.
// A zero limit means DefaultLimit; limits above MaxLimit are rejected.
func (s *Service) Transitions(ctx context.Context, sess *session.Session, clientID string, limit int) ([]audit.Entry, error) {
	if err := sess.Authorize(session.ActionViewAudit, clientID); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 || limit > MaxLimit {
		return nil, fmt.Errorf("limit must be between 1 and %d: %w", MaxLimit, lifecycle.ErrInvalidInput)
	}
	entries, err := s.repo.FindByClient(ctx, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("load transitions for client %s: %w", clientID, err)
	}
	return entries, nil
}
