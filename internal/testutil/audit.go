package testutil

import (
	"context"
	"sync"

	"3tcapital/wealthdesk/internal/core/audit"
)

// MockAuditRepository records saved entries in memory.
// SaveFunc and FindByClientFunc override the default behaviour when set.
type MockAuditRepository struct {
	SaveFunc         func(ctx context.Context, entry audit.Entry) error
	FindByClientFunc func(ctx context.Context, clientID string, limit int) ([]audit.Entry, error)

	mu      sync.Mutex
	entries []audit.Entry
}

func (m *MockAuditRepository) Save(ctx context.Context, entry audit.Entry) error {
	if m.SaveFunc != nil {
		if err := m.SaveFunc(ctx, entry); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

func (m *MockAuditRepository) FindByClient(ctx context.Context, clientID string, limit int) ([]audit.Entry, error) {
	if m.FindByClientFunc != nil {
		return m.FindByClientFunc(ctx, clientID, limit)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []audit.Entry
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if m.entries[i].ClientID == clientID {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// Entries returns a copy of the saved entries in save order.
func (m *MockAuditRepository) Entries() []audit.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]audit.Entry(nil), m.entries...)
}
