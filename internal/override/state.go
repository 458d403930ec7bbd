package override

import (
	"sync/atomic"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/tick"
)

// State is the shared command cell. The Receiver is its only writer and the
// Stepper its only reader; telemetry reads are incidental.
type State struct {
	motors   [domain.NumMotors]atomic.Uint32
	at       atomic.Uint32
	received atomic.Bool
	seq      atomic.Uint32
}

func (s *State) store(c domain.Command, at tick.Tick) {
	for i, v := range c {
		s.motors[i].Store(uint32(v))
	}
	s.at.Store(uint32(at))
	s.received.Store(true)
	s.seq.Add(1)
}

// Command returns a best-effort copy of the stored drive values.
func (s *State) Command() domain.Command {
	var c domain.Command
	for i := range c {
		c[i] = uint16(s.motors[i].Load())
	}
	return c
}

// LastReceivedAt returns the tick of the last accepted packet. ok is false
// until the first packet arrives.
func (s *State) LastReceivedAt() (at tick.Tick, ok bool) {
	if !s.received.Load() {
		return 0, false
	}
	return tick.Tick(s.at.Load()), true
}

// Sequence returns the number of accepted packets modulo 2^16.
func (s *State) Sequence() uint16 {
	return uint16(s.seq.Load())
}
