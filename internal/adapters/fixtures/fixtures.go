// Package fixtures reads the YAML seed dataset that hydrates the in-memory store.
package fixtures

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"3tcapital/wealthdesk/internal/core/client"
	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
)

const dateLayout = "2006-01-02"

//go:embed default.yaml
var defaultDataset []byte

// Dataset is the on-disk shape of the seed file.
type Dataset struct {
	Clients []ClientSeed `yaml:"clients"`
}

// ClientSeed keeps dates as YYYY-MM-DD strings and money amounts as decimal strings.
type ClientSeed struct {
	ID             string         `yaml:"id"`
	Name           string         `yaml:"name"`
	Email          string         `yaml:"email"`
	Phone          string         `yaml:"phone"`
	Address        string         `yaml:"address"`
	AdvisorID      string         `yaml:"advisor_id"`
	ClientSince    string         `yaml:"client_since"`
	LastActive     string         `yaml:"last_active"`
	AnnualIncome   string         `yaml:"annual_income"`
	PatrimonyValue string         `yaml:"patrimony_value"`
	Documents      []DocumentSeed `yaml:"documents"`
	Holdings       []HoldingSeed  `yaml:"holdings"`
}

// DocumentSeed keeps dates as YYYY-MM-DD strings.
type DocumentSeed struct {
	ID             int64  `yaml:"id"`
	Name           string `yaml:"name"`
	Status         string `yaml:"status"`
	SubmittedDate  string `yaml:"submitted_date"`
	ApprovedDate   string `yaml:"approved_date"`
	RequestedBy    string `yaml:"requested_by"`
	RequestedDate  string `yaml:"requested_date"`
	RequestMessage string `yaml:"request_message"`
}

// HoldingSeed keeps the total value as a decimal string.
type HoldingSeed struct {
	ID           int64  `yaml:"id"`
	Name         string `yaml:"name"`
	EntityType   string `yaml:"entity_type"`
	Status       string `yaml:"status"`
	Stage        string `yaml:"stage"`
	PartnerCount int    `yaml:"partner_count"`
	AssetCount   int    `yaml:"asset_count"`
	TotalValue   string `yaml:"total_value"`
}

// Seed is the dataset converted to domain types and checked against the lifecycle invariants.
type Seed struct {
	Clients   []client.Client
	Documents map[string][]document.Record
	Holdings  map[string][]holding.Case
}

// Default returns the embedded dataset.
func Default() (Seed, error) {
	return Parse(bytes.NewReader(defaultDataset))
}

// Load reads the dataset at path, or the embedded one when path is empty.
func Load(path string) (Seed, error) {
	if path == "" {
		return Default()
	}
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	seed, err := Parse(f)
	if err != nil {
		return Seed{}, fmt.Errorf("seed file %s: %w", path, err)
	}
	return seed, nil
}

// Parse decodes a dataset and converts it. Unknown keys are rejected.
func Parse(r io.Reader) (Seed, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var ds Dataset
	if err := dec.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return Seed{}, fmt.Errorf("decode dataset: %w", err)
	}
	return ds.Seed()
}

// Seed converts the dataset to domain types.
func (ds Dataset) Seed() (Seed, error) {
	seed := Seed{
		Clients:   make([]client.Client, 0, len(ds.Clients)),
		Documents: make(map[string][]document.Record, len(ds.Clients)),
		Holdings:  make(map[string][]holding.Case, len(ds.Clients)),
	}

	seen := make(map[string]bool, len(ds.Clients))
	for _, cs := range ds.Clients {
		id := strings.TrimSpace(cs.ID)
		if id == "" {
			return Seed{}, fmt.Errorf("client without id: %w", lifecycle.ErrInvalidRecord)
		}
		if seen[id] {
			return Seed{}, fmt.Errorf("duplicate client id %s: %w", id, lifecycle.ErrInvalidRecord)
		}
		seen[id] = true

		c, err := cs.client(id)
		if err != nil {
			return Seed{}, err
		}
		seed.Clients = append(seed.Clients, c)

		records := make([]document.Record, 0, len(cs.Documents))
		for _, d := range cs.Documents {
			rec, err := d.record()
			if err != nil {
				return Seed{}, fmt.Errorf("client %s: %w", id, err)
			}
			records = append(records, rec)
		}
		if _, err := document.NewLedger(records...); err != nil {
			return Seed{}, fmt.Errorf("client %s: %w", id, err)
		}
		seed.Documents[id] = records

		cases := make([]holding.Case, 0, len(cs.Holdings))
		for _, h := range cs.Holdings {
			c, err := h.holdingCase()
			if err != nil {
				return Seed{}, fmt.Errorf("client %s: %w", id, err)
			}
			cases = append(cases, c)
		}
		seed.Holdings[id] = cases
	}

	return seed, nil
}

func (cs ClientSeed) client(id string) (client.Client, error) {
	lastActive, err := parseDate(cs.LastActive)
	if err != nil {
		return client.Client{}, fmt.Errorf("client %s last_active: %w", id, err)
	}
	income, err := parseAmount(cs.AnnualIncome)
	if err != nil {
		return client.Client{}, fmt.Errorf("client %s annual_income: %w", id, err)
	}
	patrimony, err := parseAmount(cs.PatrimonyValue)
	if err != nil {
		return client.Client{}, fmt.Errorf("client %s patrimony_value: %w", id, err)
	}
	return client.Client{
		ID:             id,
		Name:           cs.Name,
		Email:          cs.Email,
		Phone:          cs.Phone,
		Address:        cs.Address,
		AdvisorID:      cs.AdvisorID,
		ClientSince:    cs.ClientSince,
		LastActive:     lastActive,
		AnnualIncome:   income,
		PatrimonyValue: patrimony,
	}, nil
}

func (d DocumentSeed) record() (document.Record, error) {
	status, err := document.ParseStatus(d.Status)
	if err != nil {
		return document.Record{}, fmt.Errorf("document %d: %w", d.ID, err)
	}
	rec := document.Record{
		ID:             d.ID,
		Name:           d.Name,
		Status:         status,
		RequestedBy:    d.RequestedBy,
		RequestMessage: d.RequestMessage,
	}
	for _, field := range []struct {
		name string
		raw  string
		dst  **time.Time
	}{
		{"submitted_date", d.SubmittedDate, &rec.SubmittedDate},
		{"approved_date", d.ApprovedDate, &rec.ApprovedDate},
		{"requested_date", d.RequestedDate, &rec.RequestedDate},
	} {
		t, err := parseDate(field.raw)
		if err != nil {
			return document.Record{}, fmt.Errorf("document %d %s: %w", d.ID, field.name, err)
		}
		*field.dst = t
	}
	if err := rec.Validate(); err != nil {
		return document.Record{}, err
	}
	return rec, nil
}

func (h HoldingSeed) holdingCase() (holding.Case, error) {
	status, err := holding.ParseStatus(h.Status)
	if err != nil {
		return holding.Case{}, fmt.Errorf("holding %d: %w", h.ID, err)
	}
	var stage holding.Stage
	if h.Stage != "" {
		if stage, err = holding.ParseStage(h.Stage); err != nil {
			return holding.Case{}, fmt.Errorf("holding %d: %w", h.ID, err)
		}
	}
	value, err := parseAmount(h.TotalValue)
	if err != nil {
		return holding.Case{}, fmt.Errorf("holding %d total_value: %w", h.ID, err)
	}
	c := holding.Case{
		ID:           h.ID,
		Name:         h.Name,
		EntityType:   h.EntityType,
		Status:       status,
		Stage:        stage,
		PartnerCount: h.PartnerCount,
		AssetCount:   h.AssetCount,
		TotalValue:   value,
	}
	if err := c.Validate(); err != nil {
		return holding.Case{}, err
	}
	return c, nil
}

func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, fmt.Errorf("date %q: %w", raw, lifecycle.ErrInvalidRecord)
	}
	return &t, nil
}

// parseAmount reads a non-negative decimal amount; empty means zero.
func parseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("amount %q: %w", raw, lifecycle.ErrInvalidRecord)
	}
	if v.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("amount %q is negative: %w", raw, lifecycle.ErrInvalidRecord)
	}
	return v, nil
}
