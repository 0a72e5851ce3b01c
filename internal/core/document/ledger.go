package document

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Ledger owns the document records of a single client and applies status transitions.
// It is not safe for concurrent use; callers hold one lock per client.
type Ledger struct {
	records map[int64]*Record
	nextID  int64
}

// NewLedger builds a ledger from previously loaded records, rejecting any that break an invariant.
func NewLedger(records ...Record) (*Ledger, error) {
	l := &Ledger{records: make(map[int64]*Record, len(records)), nextID: 1}
	open := make(map[string]int64)
	for _, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, err
		}
		if _, exists := l.records[rec.ID]; exists {
			return nil, fmt.Errorf("duplicate document id %d: %w", rec.ID, lifecycle.ErrInvalidRecord)
		}
		if rec.Status.Pending() {
			key := nameKey(rec.Name)
			if other, exists := open[key]; exists {
				return nil, fmt.Errorf("documents %d and %d are both open for %q: %w", other, rec.ID, rec.Name, lifecycle.ErrInvalidRecord)
			}
			open[key] = rec.ID
		}
		c := rec.Clone()
		l.records[rec.ID] = &c
		if rec.ID >= l.nextID {
			l.nextID = rec.ID + 1
		}
	}
	return l, nil
}

// RequestDocument opens a new request for the named document type.
func (l *Ledger) RequestDocument(name, requestedBy, message string, requestedAt time.Time) (Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Record{}, fmt.Errorf("document name is required: %w", lifecycle.ErrInvalidInput)
	}
	if open, ok := l.openRequest(name, 0); ok {
		return Record{}, fmt.Errorf("document %q already has open request %d: %w", name, open.ID, lifecycle.ErrDuplicateActiveRequest)
	}

	rec := &Record{
		ID:             l.nextID,
		Name:           name,
		Status:         StatusRequested,
		RequestedBy:    strings.TrimSpace(requestedBy),
		RequestMessage: strings.TrimSpace(message),
		RequestedDate:  &requestedAt,
	}
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	l.records[rec.ID] = rec
	l.nextID++
	return rec.Clone(), nil
}

// Submit records the client's upload, either for an open request or as a resubmission after rejection.
func (l *Ledger) Submit(id int64, submittedAt time.Time) (Record, error) {
	rec, err := l.lookup(id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusRequested && rec.Status != StatusRejected {
		return Record{}, invalidTransition(rec, "submit")
	}
	if open, ok := l.openRequest(rec.Name, rec.ID); ok {
		return Record{}, fmt.Errorf("document %q already has open request %d: %w", rec.Name, open.ID, lifecycle.ErrDuplicateActiveRequest)
	}

	next := *rec
	next.Status = StatusSubmitted
	next.SubmittedDate = &submittedAt
	next.ApprovedDate = nil
	next.RequestedBy = ""
	next.RequestMessage = ""
	next.RequestedDate = nil
	return l.commit(next)
}

// BeginReview marks a submitted document as opened by the reviewer.
func (l *Ledger) BeginReview(id int64) (Record, error) {
	rec, err := l.lookup(id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusSubmitted {
		return Record{}, invalidTransition(rec, "begin review")
	}

	next := *rec
	next.Status = StatusUnderReview
	return l.commit(next)
}

// Review applies the reviewer's decision to a submitted document.
func (l *Ledger) Review(id int64, outcome Outcome, reviewedAt time.Time) (Record, error) {
	if _, err := ParseOutcome(string(outcome)); err != nil {
		return Record{}, err
	}
	rec, err := l.lookup(id)
	if err != nil {
		return Record{}, err
	}
	if rec.Status != StatusSubmitted && rec.Status != StatusUnderReview {
		return Record{}, invalidTransition(rec, "review")
	}

	next := *rec
	switch outcome {
	case OutcomeApproved:
		next.Status = StatusApproved
		next.ApprovedDate = &reviewedAt
	case OutcomeRejected:
		next.Status = StatusRejected
		next.ApprovedDate = nil
	}
	return l.commit(next)
}

// Get returns a copy of the record with the given id.
func (l *Ledger) Get(id int64) (Record, error) {
	rec, err := l.lookup(id)
	if err != nil {
		return Record{}, err
	}
	return rec.Clone(), nil
}

// ListByStatus returns the records in the given status ordered by id.
func (l *Ledger) ListByStatus(status Status) ([]Record, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("document status %q: %w", status, lifecycle.ErrInvalidStatus)
	}
	out := make([]Record, 0)
	for _, rec := range l.sorted() {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out, nil
}

// List returns every record ordered by id.
func (l *Ledger) List() []Record {
	return l.sorted()
}

// openRequest finds a pending record with the given name other than the one with id except.
func (l *Ledger) openRequest(name string, except int64) (*Record, bool) {
	key := nameKey(name)
	for _, rec := range l.records {
		if rec.ID != except && rec.Status.Pending() && nameKey(rec.Name) == key {
			return rec, true
		}
	}
	return nil, false
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func (l *Ledger) lookup(id int64) (*Record, error) {
	rec, ok := l.records[id]
	if !ok {
		return nil, fmt.Errorf("document %d: %w", id, lifecycle.ErrNotFound)
	}
	return rec, nil
}

// commit validates the candidate before replacing the stored record,
// so a rejected transition leaves the ledger untouched.
func (l *Ledger) commit(next Record) (Record, error) {
	if err := next.Validate(); err != nil {
		return Record{}, err
	}
	stored := next.Clone()
	l.records[next.ID] = &stored
	return stored.Clone(), nil
}

func (l *Ledger) sorted() []Record {
	out := make([]Record, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func invalidTransition(rec *Record, op string) error {
	return fmt.Errorf("cannot %s document %d in status %s: %w", op, rec.ID, rec.Status, lifecycle.ErrInvalidTransition)
}
