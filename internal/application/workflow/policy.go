package workflow

import (
	"strings"

	"3tcapital/wealthdesk/internal/core/document"
)

// ReviewPolicy decides submitted documents without an advisor.
// ok is false when the document must wait for a human reviewer.
type ReviewPolicy interface {
	Decide(rec document.Record) (outcome document.Outcome, ok bool)
}

// ManualReview leaves every submission to an advisor.
type ManualReview struct{}

func (ManualReview) Decide(document.Record) (document.Outcome, bool) { return "", false }

// AutoApproveNames approves submissions whose document name is on a fixed list.
type AutoApproveNames struct {
	names map[string]struct{}
}

// NewAutoApproveNames builds the policy; names are matched case-insensitively.
func NewAutoApproveNames(names []string) AutoApproveNames {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if key := normalizeName(n); key != "" {
			set[key] = struct{}{}
		}
	}
	return AutoApproveNames{names: set}
}

func (p AutoApproveNames) Decide(rec document.Record) (document.Outcome, bool) {
	if _, ok := p.names[normalizeName(rec.Name)]; ok {
		return document.OutcomeApproved, true
	}
	return "", false
}

func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
