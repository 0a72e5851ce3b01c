package document

import (
	"fmt"
	"strings"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Status is the lifecycle state of a document record.
type Status string

const (
	StatusRequested   Status = "requested"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
)

// Statuses lists every valid document status.
var Statuses = []Status{StatusRequested, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected}

// legacyStatuses maps the labels used by the first dashboard release.
var legacyStatuses = map[string]Status{
	"solicitado": StatusRequested,
	"pendente":   StatusUnderReview,
	"aprovado":   StatusApproved,
	"rejeitado":  StatusRejected,
}

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(value); s.Valid() {
		return s, nil
	}
	if s, ok := legacyStatuses[value]; ok {
		return s, nil
	}
	return "", fmt.Errorf("document status %q: %w", raw, lifecycle.ErrInvalidStatus)
}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected:
		return true
	default:
		return false
	}
}

// Pending reports whether the record still needs action from someone.
// These are also the statuses that block a second request for the same name.
func (s Status) Pending() bool {
	return s == StatusRequested || s == StatusSubmitted || s == StatusUnderReview
}

func (s Status) String() string { return string(s) }

// Outcome is the reviewer's decision on a submitted document.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeRejected Outcome = "rejected"
)

// ParseOutcome validates a raw review outcome.
func ParseOutcome(raw string) (Outcome, error) {
	switch o := Outcome(strings.ToLower(strings.TrimSpace(raw))); o {
	case OutcomeApproved, OutcomeRejected:
		return o, nil
	default:
		return "", fmt.Errorf("review outcome %q: %w", raw, lifecycle.ErrInvalidStatus)
	}
}
