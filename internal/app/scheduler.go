package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Scheduler calls a step function at a fixed period. A slow step delays the
// next one; missed ticks are dropped rather than queued.
type Scheduler struct {
	clock  clockwork.Clock
	period time.Duration
	step   func()
}

// NewScheduler creates a Scheduler. clock may be nil for the real clock.
func NewScheduler(clock clockwork.Clock, period time.Duration, step func()) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Scheduler{clock: clock, period: period, step: step}
}

// Run invokes the step function on every tick until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
			s.step()
		}
	}
}
