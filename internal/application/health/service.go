package health

import (
	"context"
	"time"

	corehealth "3tcapital/wealthdesk/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Checker checks one dependency, such as the audit database.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}

// CheckFunc adapts a function to Checker.
type CheckFunc struct {
	Label string
	Fn    func(ctx context.Context) error
}

func (c CheckFunc) Name() string                    { return c.Label }
func (c CheckFunc) Check(ctx context.Context) error { return c.Fn(ctx) }

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	startedAt time.Time
	checkers  []Checker
}

func NewService(meta Metadata, checkers ...Checker) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		checkers:  checkers,
	}
}

// Status returns the current availability snapshot. Any failing check degrades it.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)
	status := corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      corehealth.StatusUp,
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}

	for _, c := range s.checkers {
		check := corehealth.Check{Name: c.Name(), Status: corehealth.StatusUp}
		if err := c.Check(ctx); err != nil {
			check.Status = corehealth.StatusDegraded
			check.Error = err.Error()
			status.Status = corehealth.StatusDegraded
		}
		status.Checks = append(status.Checks, check)
	}
	return status
}
