package document

import (
	"fmt"
	"time"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Record is the metadata and status of one requested or submitted document.
type Record struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Status         Status     `json:"status"`
	SubmittedDate  *time.Time `json:"submittedDate,omitempty"`
	ApprovedDate   *time.Time `json:"approvedDate,omitempty"`
	RequestedBy    string     `json:"requestedBy,omitempty"`
	RequestMessage string     `json:"requestMessage,omitempty"`
	RequestedDate  *time.Time `json:"requestedDate,omitempty"`
}

// Validate checks the status/date invariants of the record.
func (r Record) Validate() error {
	if !r.Status.Valid() {
		return fmt.Errorf("document %d status %q: %w", r.ID, r.Status, lifecycle.ErrInvalidStatus)
	}
	if r.ID <= 0 {
		return fmt.Errorf("document id %d must be positive: %w", r.ID, lifecycle.ErrInvalidRecord)
	}
	if r.Name == "" {
		return fmt.Errorf("document %d has no name: %w", r.ID, lifecycle.ErrInvalidRecord)
	}
	if (r.ApprovedDate != nil) != (r.Status == StatusApproved) {
		return fmt.Errorf("document %d: approved date must be set only when approved: %w", r.ID, lifecycle.ErrInvalidRecord)
	}
	if (r.SubmittedDate != nil) == (r.Status == StatusRequested) {
		return fmt.Errorf("document %d: submitted date must be set for every status except requested: %w", r.ID, lifecycle.ErrInvalidRecord)
	}
	if r.Status != StatusRequested && (r.RequestedBy != "" || r.RequestMessage != "" || r.RequestedDate != nil) {
		return fmt.Errorf("document %d: request details only apply while requested: %w", r.ID, lifecycle.ErrInvalidRecord)
	}
	return nil
}

// Clone returns a deep copy so callers never share timestamps with the ledger.
func (r Record) Clone() Record {
	out := r
	out.SubmittedDate = cloneTime(r.SubmittedDate)
	out.ApprovedDate = cloneTime(r.ApprovedDate)
	out.RequestedDate = cloneTime(r.RequestedDate)
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
