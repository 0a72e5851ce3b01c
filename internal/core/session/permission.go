package session

import "fmt"

// Action is an operation gated by role.
type Action string

const (
	ActionRead            Action = "read"
	ActionRequestDocument Action = "request_document"
	ActionSubmitDocument  Action = "submit_document"
	ActionReviewDocument  Action = "review_document"
	ActionManageHoldings  Action = "manage_holdings"
	ActionListClients     Action = "list_clients"
	ActionViewAudit       Action = "view_audit"
)

var advisorActions = map[Action]bool{
	ActionRead:            true,
	ActionRequestDocument: true,
	ActionReviewDocument:  true,
	ActionManageHoldings:  true,
	ActionListClients:     true,
	ActionViewAudit:       true,
}

var clientActions = map[Action]bool{
	ActionRead:           true,
	ActionSubmitDocument: true,
}

// Authorize checks that the session may perform action against the given client.
// Clients only ever act on their own records.
func (s *Session) Authorize(action Action, clientID string) error {
	if s.Closed() {
		return ErrSessionClosed
	}
	switch s.Role {
	case RoleAdvisor:
		if advisorActions[action] {
			return nil
		}
	case RoleClient:
		if clientActions[action] && s.ClientID == clientID {
			return nil
		}
	}
	return fmt.Errorf("%s %q cannot %s for client %q: %w", s.Role, s.Subject, action, clientID, ErrForbidden)
}
