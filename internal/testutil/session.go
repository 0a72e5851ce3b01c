package testutil

import (
	"testing"
	"time"

	"3tcapital/wealthdesk/internal/core/session"
)

// AdvisorSession opens an advisor session or fails the test.
func AdvisorSession(t testing.TB) *session.Session {
	t.Helper()
	s, err := session.Open("consultor.w1", session.RoleAdvisor, "", time.Now())
	if err != nil {
		t.Fatalf("open advisor session: %v", err)
	}
	return s
}

// ClientSession opens a client session bound to clientID or fails the test.
func ClientSession(t testing.TB, clientID string) *session.Session {
	t.Helper()
	s, err := session.Open("client-"+clientID, session.RoleClient, clientID, time.Now())
	if err != nil {
		t.Fatalf("open client session: %v", err)
	}
	return s
}
