package holding

import (
	"fmt"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Case is a holding-formation case: a legal entity being set up to hold a family's assets.
type Case struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	EntityType   string          `json:"entityType"`
	Status       Status          `json:"status"`
	Stage        Stage           `json:"stage,omitempty"`
	PartnerCount int             `json:"partnerCount"`
	AssetCount   int             `json:"assetCount"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

// Validate checks the status/stage and value invariants of the case.
func (c Case) Validate() error {
	if !c.Status.Valid() {
		return fmt.Errorf("holding %d status %q: %w", c.ID, c.Status, lifecycle.ErrInvalidStatus)
	}
	if c.ID <= 0 {
		return fmt.Errorf("holding id %d must be positive: %w", c.ID, lifecycle.ErrInvalidRecord)
	}
	if c.Name == "" {
		return fmt.Errorf("holding %d has no name: %w", c.ID, lifecycle.ErrInvalidRecord)
	}
	if c.Status == StatusInProgress {
		if !c.Stage.Valid() {
			return fmt.Errorf("holding %d stage %q: %w", c.ID, c.Stage, lifecycle.ErrInvalidStatus)
		}
	} else if c.Stage != "" {
		return fmt.Errorf("holding %d: stage only applies while in progress: %w", c.ID, lifecycle.ErrInvalidRecord)
	}
	if c.TotalValue.IsNegative() {
		return fmt.Errorf("holding %d: total value %s is negative: %w", c.ID, c.TotalValue, lifecycle.ErrInvalidRecord)
	}
	if c.PartnerCount < 0 || c.AssetCount < 0 {
		return fmt.Errorf("holding %d: partner and asset counts must not be negative: %w", c.ID, lifecycle.ErrInvalidRecord)
	}
	return nil
}

// ProgressRatio maps the stage of an in-progress case to a fraction in [0,1].
// Cases in any other status report 0.
func ProgressRatio(c Case) float64 {
	if c.Status != StatusInProgress {
		return 0
	}
	if i := c.Stage.index(); i >= 0 {
		return stages[i].progress
	}
	return 0
}
