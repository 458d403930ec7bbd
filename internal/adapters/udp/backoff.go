package udp

import (
	"context"
	"math/rand"
	"time"

	"github.com/jonboulle/clockwork"
)

// Default backoff configuration values.
const (
	DefaultBackoffInitial = 50 * time.Millisecond
	DefaultBackoffMax     = 2 * time.Second
)

// backoff implements exponential backoff with jitter.
type backoff struct {
	clock   clockwork.Clock
	initial time.Duration
	max     time.Duration
	current time.Duration
}

func newBackoff(clock clockwork.Clock, initial, max time.Duration) *backoff {
	return &backoff{
		clock:   clock,
		initial: initial,
		max:     max,
		current: initial,
	}
}

// Wait sleeps for the current backoff duration, then doubles it up to max.
// Returns ctx.Err() if the context ends first.
func (b *backoff) Wait(ctx context.Context) error {
	// ±20% jitter
	jitter := float64(b.current) * 0.2 * (rand.Float64()*2 - 1)
	d := time.Duration(float64(b.current) + jitter)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.clock.After(d):
		return nil
	}
}

// Reset resets the backoff to the initial duration.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the duration of the next wait before jitter.
func (b *backoff) Current() time.Duration {
	return b.current
}
