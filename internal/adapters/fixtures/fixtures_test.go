package fixtures

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"3tcapital/wealthdesk/internal/core/document"
	"3tcapital/wealthdesk/internal/core/holding"
	"3tcapital/wealthdesk/internal/core/lifecycle"
)

func TestDefault(t *testing.T) {
	seed, err := Default()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(seed.Clients) != 3 {
		t.Fatalf("expected 3 clients, got %d", len(seed.Clients))
	}
	joao := seed.Clients[0]
	if joao.Name != "João Silva" {
		t.Errorf("expected first client João Silva, got %q", joao.Name)
	}
	if !joao.PatrimonyValue.Equal(decimal.NewFromInt(2750000)) || !joao.AnnualIncome.Equal(decimal.NewFromInt(350000)) {
		t.Errorf("unexpected patrimony %s / income %s", joao.PatrimonyValue, joao.AnnualIncome)
	}
	if joao.LastActive == nil || joao.LastActive.Format(dateLayout) != "2023-05-16" {
		t.Errorf("expected last active 2023-05-16, got %v", joao.LastActive)
	}
	if joao.Address == "" {
		t.Error("expected an address")
	}

	docs := seed.Documents["1"]
	if len(docs) != 5 {
		t.Fatalf("expected 5 documents for client 1, got %d", len(docs))
	}
	if docs[2].Status != document.StatusUnderReview {
		t.Errorf("expected legacy 'pendente' to load as under_review, got %s", docs[2].Status)
	}
	if docs[3].Status != document.StatusRequested || docs[3].RequestedBy != "Consultor W1" {
		t.Errorf("unexpected requested document %+v", docs[3])
	}
	if docs[0].ApprovedDate == nil || docs[0].ApprovedDate.Format(dateLayout) != "2023-03-20" {
		t.Errorf("expected approved date 2023-03-20, got %v", docs[0].ApprovedDate)
	}

	cases := seed.Holdings["1"]
	if len(cases) != 2 {
		t.Fatalf("expected 2 holdings for client 1, got %d", len(cases))
	}
	if cases[1].Status != holding.StatusInProgress || cases[1].Stage != holding.StageReview {
		t.Errorf("expected in_progress/review, got %s/%s", cases[1].Status, cases[1].Stage)
	}
	if !cases[0].TotalValue.Equal(decimal.NewFromInt(7500000)) {
		t.Errorf("expected total value 7500000, got %s", cases[0].TotalValue)
	}

	if len(seed.Holdings["3"]) != 0 {
		t.Errorf("expected no holdings for client 3, got %d", len(seed.Holdings["3"]))
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectedErr error
	}{
		{
			name: "unknown document status",
			yaml: `
clients:
  - id: "1"
    name: A
    documents:
      - {id: 1, name: RG, status: arquivado}
`,
			expectedErr: lifecycle.ErrInvalidStatus,
		},
		{
			name: "approved without approved date",
			yaml: `
clients:
  - id: "1"
    name: A
    documents:
      - {id: 1, name: RG, status: approved, submitted_date: 2023-01-01}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "bad date",
			yaml: `
clients:
  - id: "1"
    name: A
    documents:
      - {id: 1, name: RG, status: submitted, submitted_date: 01/05/2023}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "in progress without stage",
			yaml: `
clients:
  - id: "1"
    name: A
    holdings:
      - {id: 1, name: H, entity_type: S.A., status: em_andamento, total_value: "10"}
`,
			expectedErr: lifecycle.ErrInvalidStatus,
		},
		{
			name: "malformed total value",
			yaml: `
clients:
  - id: "1"
    name: A
    holdings:
      - {id: 1, name: H, entity_type: S.A., status: ativa, total_value: "R$ 10"}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "two open requests for the same document",
			yaml: `
clients:
  - id: "1"
    name: A
    documents:
      - {id: 1, name: RG, status: solicitado}
      - {id: 2, name: rg, status: submitted, submitted_date: 2023-01-01}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "negative patrimony",
			yaml: `
clients:
  - {id: "1", name: A, patrimony_value: "-1"}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "malformed last active",
			yaml: `
clients:
  - {id: "1", name: A, last_active: 16/05/2023}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
		{
			name: "duplicate client",
			yaml: `
clients:
  - {id: "1", name: A}
  - {id: "1", name: B}
`,
			expectedErr: lifecycle.ErrInvalidRecord,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.yaml))
			if !errors.Is(err, tt.expectedErr) {
				t.Fatalf("expected %v, got %v", tt.expectedErr, err)
			}
		})
	}
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("clients:\n  - id: \"1\"\n    nome: A\n"))
	if err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestParse_Empty(t *testing.T) {
	seed, err := Parse(strings.NewReader(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Clients) != 0 {
		t.Errorf("expected no clients, got %d", len(seed.Clients))
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	content := `
clients:
  - id: "7"
    name: Ana Costa
    documents:
      - {id: 3, name: RG, status: rejeitado, submitted_date: 2024-02-01}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	seed, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seed.Clients) != 1 || seed.Clients[0].ID != "7" {
		t.Fatalf("unexpected clients %+v", seed.Clients)
	}
	if got := seed.Documents["7"][0].Status; got != document.StatusRejected {
		t.Errorf("expected rejected, got %s", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for a missing file")
	}

	def, err := Load("")
	if err != nil || len(def.Clients) != 3 {
		t.Errorf("expected embedded dataset for empty path, got %d clients, err %v", len(def.Clients), err)
	}
}
