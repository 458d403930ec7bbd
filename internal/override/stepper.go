package override

import (
	"sync/atomic"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/ports"
	"github.com/bft-labs/overdrive/internal/tick"
)

// Mode is the decision taken by one Stepper cycle.
type Mode uint8

const (
	// ModeDisabled: the channel is off; actuators were zeroed on entry.
	ModeDisabled Mode = iota
	// ModeFresh: the stored command was forwarded.
	ModeFresh
	// ModeStale: the stored command timed out and zeros were forwarded.
	ModeStale
)

func (m Mode) String() string {
	switch m {
	case ModeDisabled:
		return "disabled"
	case ModeFresh:
		return "fresh"
	case ModeStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Stepper applies the shared State to the actuators once per control cycle.
type Stepper struct {
	state    *State
	cfg      *Config
	ticks    ports.TickSource
	act      ports.Actuator
	observer Observer

	// Owned by the stepping goroutine.
	wasEnabled bool
	last       Mode

	// Published for telemetry.
	mode atomic.Uint32
	out  [domain.NumMotors]atomic.Uint32
}

// NewStepper creates a Stepper in the Disabled state.
func NewStepper(state *State, cfg *Config, ticks ports.TickSource, act ports.Actuator, observer Observer) *Stepper {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Stepper{
		state:    state,
		cfg:      cfg,
		ticks:    ticks,
		act:      act,
		observer: observer,
		last:     ModeDisabled,
	}
}

// Step runs one control cycle. It never blocks beyond the actuator calls.
func (s *Stepper) Step() {
	if !s.cfg.Enabled() {
		if s.wasEnabled {
			s.drive(domain.Zero)
			s.wasEnabled = false
		}
		s.finish(ModeDisabled)
		return
	}

	s.wasEnabled = true

	if s.fresh(s.ticks.Now()) {
		s.drive(s.state.Command())
		s.finish(ModeFresh)
		return
	}
	s.drive(domain.Zero)
	s.finish(ModeStale)
}

// Cutoff drives all actuators to zero regardless of mode and leaves the
// Stepper Disabled until the next enabled cycle. Used on shutdown; it must
// not run concurrently with Step.
func (s *Stepper) Cutoff() {
	s.drive(domain.Zero)
	s.wasEnabled = false
	s.finish(ModeDisabled)
}

// Mode returns the decision of the most recent cycle.
func (s *Stepper) Mode() Mode {
	return Mode(s.mode.Load())
}

// Output returns the values most recently written to the actuators.
func (s *Stepper) Output() domain.Command {
	var c domain.Command
	for i := range c {
		c[i] = uint16(s.out[i].Load())
	}
	return c
}

func (s *Stepper) fresh(now tick.Tick) bool {
	at, ok := s.state.LastReceivedAt()
	if !ok {
		return false
	}
	return tick.Elapsed(now, at) <= s.cfg.Timeout()
}

func (s *Stepper) drive(c domain.Command) {
	for _, id := range domain.AllMotors() {
		v := c.Get(id)
		s.act.SetRatio(id, v)
		s.out[id.Index()].Store(uint32(v))
	}
}

func (s *Stepper) finish(m Mode) {
	s.mode.Store(uint32(m))
	s.observer.OnStep(m)
	if m != s.last {
		s.observer.OnModeChange(s.last, m)
		s.last = m
	}
}
