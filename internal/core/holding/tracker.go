package holding

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Tracker owns the holding-formation cases of a single client.
// It is not safe for concurrent use; callers hold one lock per client.
type Tracker struct {
	cases  map[int64]*Case
	nextID int64
}

// NewTracker builds a tracker from previously loaded cases, rejecting any that break an invariant.
func NewTracker(cases ...Case) (*Tracker, error) {
	t := &Tracker{cases: make(map[int64]*Case, len(cases)), nextID: 1}
	for _, c := range cases {
		if err := c.Validate(); err != nil {
			return nil, err
		}
		if _, exists := t.cases[c.ID]; exists {
			return nil, fmt.Errorf("duplicate holding id %d: %w", c.ID, lifecycle.ErrInvalidRecord)
		}
		stored := c
		t.cases[c.ID] = &stored
		if c.ID >= t.nextID {
			t.nextID = c.ID + 1
		}
	}
	return t, nil
}

// FormationRequest carries the details of a new holding to be formed.
type FormationRequest struct {
	Name         string
	EntityType   string
	PartnerCount int
	AssetCount   int
	TotalValue   decimal.Decimal
}

// StartFormation opens a new case at the documentation stage.
func (t *Tracker) StartFormation(req FormationRequest) (Case, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Case{}, fmt.Errorf("holding name is required: %w", lifecycle.ErrInvalidInput)
	}
	if strings.TrimSpace(req.EntityType) == "" {
		return Case{}, fmt.Errorf("holding entity type is required: %w", lifecycle.ErrInvalidInput)
	}
	if req.TotalValue.IsNegative() || req.PartnerCount < 0 || req.AssetCount < 0 {
		return Case{}, fmt.Errorf("holding %q: counts and total value must not be negative: %w", name, lifecycle.ErrInvalidInput)
	}

	c := Case{
		ID:           t.nextID,
		Name:         name,
		EntityType:   strings.TrimSpace(req.EntityType),
		Status:       StatusInProgress,
		Stage:        StageDocumentation,
		PartnerCount: req.PartnerCount,
		AssetCount:   req.AssetCount,
		TotalValue:   req.TotalValue,
	}
	saved, err := t.commit(c)
	if err != nil {
		return Case{}, err
	}
	t.nextID++
	return saved, nil
}

// AdvanceStage moves an in-progress case one stage forward.
// Advancing past the completed stage closes the formation and the case becomes active.
func (t *Tracker) AdvanceStage(id int64) (Case, error) {
	c, err := t.lookup(id)
	if err != nil {
		return Case{}, err
	}
	if c.Status != StatusInProgress {
		return Case{}, fmt.Errorf("holding %d in status %s: %w", id, c.Status, lifecycle.ErrNotInProgress)
	}

	next := *c
	if stage, ok := c.Stage.Next(); ok {
		next.Stage = stage
	} else {
		next.Status = StatusActive
		next.Stage = ""
	}
	return t.commit(next)
}

// SetUnderAnalysis pauses a case for external analysis.
func (t *Tracker) SetUnderAnalysis(id int64) (Case, error) {
	return t.override(id, StatusUnderAnalysis)
}

// SetPending pauses a case waiting for review outside the stage pipeline.
func (t *Tracker) SetPending(id int64) (Case, error) {
	return t.override(id, StatusPendingReview)
}

// Resume puts a paused case back into the pipeline at the documentation stage.
func (t *Tracker) Resume(id int64) (Case, error) {
	c, err := t.lookup(id)
	if err != nil {
		return Case{}, err
	}
	if c.Status != StatusPendingReview && c.Status != StatusUnderAnalysis {
		return Case{}, fmt.Errorf("cannot resume holding %d in status %s: %w", id, c.Status, lifecycle.ErrInvalidTransition)
	}

	next := *c
	next.Status = StatusInProgress
	next.Stage = StageDocumentation
	return t.commit(next)
}

// Get returns a copy of the case with the given id.
func (t *Tracker) Get(id int64) (Case, error) {
	c, err := t.lookup(id)
	if err != nil {
		return Case{}, err
	}
	return *c, nil
}

// List returns every case ordered by id.
func (t *Tracker) List() []Case {
	out := make([]Case, 0, len(t.cases))
	for _, c := range t.cases {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (t *Tracker) override(id int64, status Status) (Case, error) {
	c, err := t.lookup(id)
	if err != nil {
		return Case{}, err
	}
	if c.Status == status {
		return Case{}, fmt.Errorf("holding %d is already %s: %w", id, status, lifecycle.ErrInvalidTransition)
	}

	next := *c
	next.Status = status
	next.Stage = ""
	return t.commit(next)
}

func (t *Tracker) lookup(id int64) (*Case, error) {
	c, ok := t.cases[id]
	if !ok {
		return nil, fmt.Errorf("holding %d: %w", id, lifecycle.ErrNotFound)
	}
	return c, nil
}

func (t *Tracker) commit(next Case) (Case, error) {
	if err := next.Validate(); err != nil {
		return Case{}, err
	}
	stored := next
	t.cases[next.ID] = &stored
	return stored, nil
}
