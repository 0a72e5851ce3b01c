package holding

import (
	"fmt"
	"strings"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

// Status is the lifecycle state of a holding-formation case.
type Status string

const (
	StatusActive        Status = "active"
	StatusInProgress    Status = "in_progress"
	StatusPendingReview Status = "pending_review"
	StatusUnderAnalysis Status = "under_analysis"
)

var legacyStatuses = map[string]Status{
	"ativa":        StatusActive,
	"em_andamento": StatusInProgress,
	"pendente":     StatusPendingReview,
	"em_analise":   StatusUnderAnalysis,
}

// ParseStatus validates a raw holding status.
func ParseStatus(raw string) (Status, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if s := Status(value); s.Valid() {
		return s, nil
	}
	if s, ok := legacyStatuses[value]; ok {
		return s, nil
	}
	return "", fmt.Errorf("holding status %q: %w", raw, lifecycle.ErrInvalidStatus)
}

// Valid reports whether s belongs to the closed status set.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInProgress, StatusPendingReview, StatusUnderAnalysis:
		return true
	default:
		return false
	}
}

func (s Status) String() string { return string(s) }

// Stage is one of the ordered sub-steps of an in-progress formation.
type Stage string

const (
	StageDocumentation Stage = "documentation"
	StageReview        Stage = "review"
	StageApproval      Stage = "approval"
	StageCompleted     Stage = "completed"
)

// stages holds the pipeline order together with the progress each stage represents.
var stages = []struct {
	stage    Stage
	progress float64
}{
	{StageDocumentation, 0.25},
	{StageReview, 0.50},
	{StageApproval, 0.75},
	{StageCompleted, 1.0},
}

var legacyStages = map[string]Stage{
	"documentacao": StageDocumentation,
	"revisao":      StageReview,
	"aprovacao":    StageApproval,
	"concluido":    StageCompleted,
}

// ParseStage validates a raw stage value.
func ParseStage(raw string) (Stage, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if s := Stage(value); s.Valid() {
		return s, nil
	}
	if s, ok := legacyStages[value]; ok {
		return s, nil
	}
	return "", fmt.Errorf("holding stage %q: %w", raw, lifecycle.ErrInvalidStatus)
}

// Valid reports whether s belongs to the closed stage set.
func (s Stage) Valid() bool {
	return s.index() >= 0
}

// Next returns the stage after s; ok is false when s is the last stage.
func (s Stage) Next() (Stage, bool) {
	i := s.index()
	if i < 0 || i == len(stages)-1 {
		return "", false
	}
	return stages[i+1].stage, true
}

func (s Stage) String() string { return string(s) }

func (s Stage) index() int {
	for i, st := range stages {
		if st.stage == s {
			return i
		}
	}
	return -1
}
