package client

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Client is a customer of the advisory practice.
// PatrimonyValue is the declared patrimony, tracked independently of any holding.
type Client struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone,omitempty"`
	Address        string          `json:"address,omitempty"`
	AdvisorID      string          `json:"advisorId,omitempty"`
	ClientSince    string          `json:"clientSince,omitempty"`
	LastActive     *time.Time      `json:"lastActive,omitempty"`
	AnnualIncome   decimal.Decimal `json:"annualIncome"`
	PatrimonyValue decimal.Decimal `json:"patrimonyValue"`
}

// Directory looks up clients.
type Directory interface {
	// List returns every client ordered by id.
	List(ctx context.Context) ([]Client, error)
	// Get returns the client with the given id or an error wrapping lifecycle.ErrNotFound.
	Get(ctx context.Context, id string) (Client, error)
}
