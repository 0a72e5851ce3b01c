package testutil

import (
	"sync"
	"time"
)

// StepClock returns Start and advances by Step on every call.
type StepClock struct {
	mu    sync.Mutex
	Start time.Time
	Step  time.Duration
	calls int
}

func (c *StepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.Start.Add(time.Duration(c.calls) * c.Step)
	c.calls++
	return now
}
