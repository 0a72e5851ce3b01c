package client

import (
	"sort"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
)

// Standing is a client's aggregate document position.
type Standing string

const (
	StandingUpToDate Standing = "up_to_date"
	StandingPending  Standing = "pending"
)

// Summary is derived from a client's document records and is never stored.
type Summary struct {
	PendingDocumentCount int      `json:"pendingDocumentCount"`
	TotalDocuments       int      `json:"totalDocuments"`
	OverallStanding      Standing `json:"overallStanding"`
}

// Summarize counts the records still waiting on someone and derives the standing.
func Summarize(records []document.Record) Summary {
	s := Summary{TotalDocuments: len(records), OverallStanding: StandingUpToDate}
	for _, rec := range records {
		if rec.Status.Pending() {
			s.PendingDocumentCount++
		}
	}
	if s.PendingDocumentCount > 0 {
		s.OverallStanding = StandingPending
	}
	return s
}

// priorityRank orders statuses for "needs attention first" display.
func priorityRank(s document.Status) int {
	switch s {
	case document.StatusRequested:
		return 0
	case document.StatusSubmitted, document.StatusUnderReview:
		return 1
	case document.StatusRejected:
		return 2
	case document.StatusApproved:
		return 3
	default:
		return 4
	}
}

// PriorityList returns a sorted copy of records: requested, then submitted and under review,
// then rejected, then approved. Ties are broken by ascending id.
func PriorityList(records []document.Record) []document.Record {
	out := make([]document.Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := priorityRank(out[i].Status), priorityRank(out[j].Status)
		if ri != rj {
			return ri < rj
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// HoldingsOverview aggregates a client's holding-formation cases.
type HoldingsOverview struct {
	Count      int             `json:"count"`
	InProgress int             `json:"inProgress"`
	TotalValue decimal.Decimal `json:"totalValue"`
}

// PatrimonyOverview sets the declared patrimony beside the value already placed in holdings.
type PatrimonyOverview struct {
	Declared     decimal.Decimal `json:"declared"`
	AnnualIncome decimal.Decimal `json:"annualIncome"`
	InHoldings   decimal.Decimal `json:"inHoldings"`
}

// Overview is the profile view of one client.
type Overview struct {
	Client    Client            `json:"client"`
	Summary   Summary           `json:"summary"`
	Holdings  HoldingsOverview  `json:"holdings"`
	Patrimony PatrimonyOverview `json:"patrimony"`
}

// BuildOverview combines the document summary with holding totals and the declared patrimony.
func BuildOverview(c Client, records []document.Record, cases []holding.Case) Overview {
	h := HoldingsOverview{Count: len(cases), TotalValue: decimal.Zero}
	for _, hc := range cases {
		h.TotalValue = h.TotalValue.Add(hc.TotalValue)
		if hc.Status == holding.StatusInProgress {
			h.InProgress++
		}
	}
	return Overview{
		Client:   c,
		Summary:  Summarize(records),
		Holdings: h,
		Patrimony: PatrimonyOverview{
			Declared:     c.PatrimonyValue,
			AnnualIncome: c.AnnualIncome,
			InHoldings:   h.TotalValue,
		},
	}
}
