package app

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/bft-labs/overdrive/internal/ports"
	"github.com/bft-labs/overdrive/pkg/log"
)

// ValueSource provides the values to persist. *registry.Registry satisfies it.
type ValueSource interface {
	Snapshot() (params, logs map[string]uint32)
}

// Snapshotter periodically persists every registered value.
type Snapshotter struct {
	source   ValueSource
	repo     ports.SnapshotRepository
	interval time.Duration
	clock    clockwork.Clock
	logger   log.Logger
}

// NewSnapshotter creates a Snapshotter. clock and logger may be nil.
func NewSnapshotter(source ValueSource, repo ports.SnapshotRepository, interval time.Duration, clock clockwork.Clock, logger log.Logger) *Snapshotter {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Snapshotter{source: source, repo: repo, interval: interval, clock: clock, logger: logger}
}

// Run saves a snapshot every interval and once more when ctx is cancelled.
// Save failures are logged and retried on the next tick.
func (s *Snapshotter) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// ctx is already done; the final save must not inherit it.
			if err := s.SaveNow(context.WithoutCancel(ctx)); err != nil {
				s.logger.Error("final snapshot failed", log.Err(err))
			}
			return nil
		case <-ticker.Chan():
			if err := s.SaveNow(ctx); err != nil {
				s.logger.Error("snapshot failed", log.Err(err))
			}
		}
	}
}

// SaveNow captures and persists one snapshot.
func (s *Snapshotter) SaveNow(ctx context.Context) error {
	params, logs := s.source.Snapshot()
	return s.repo.Save(ctx, ports.Snapshot{
		CapturedAt: s.clock.Now().UTC(),
		Params:     params,
		Logs:       logs,
	})
}
