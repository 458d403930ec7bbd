// Package tick provides a wrapping millisecond tick counter.
//
// Ticks mirror a free-running 32-bit hardware counter: they wrap after
// about 49.7 days and must only be compared through Elapsed.
package tick

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Tick is a millisecond count modulo 2^32.
type Tick uint32

// Period is the duration of one tick.
const Period = time.Millisecond

// Elapsed returns the time from then to now. The subtraction is done in the
// counter's own modulus, so a then just before wraparound and a now just after
// yields a small positive value.
func Elapsed(now, then Tick) time.Duration {
	return time.Duration(uint32(now-then)) * Period
}

// Source derives ticks from a clock.
type Source struct {
	clock  clockwork.Clock
	start  time.Time
	offset Tick
}

// NewSource returns a Source whose counter reads offset at creation time.
func NewSource(clock clockwork.Clock, offset Tick) *Source {
	return &Source{clock: clock, start: clock.Now(), offset: offset}
}

// Now returns the current tick.
func (s *Source) Now() Tick {
	ms := uint64(s.clock.Since(s.start) / Period)
	return s.offset + Tick(uint32(ms))
}
