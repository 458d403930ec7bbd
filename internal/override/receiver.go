package override

import (
	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/ports"
)

// Receiver decodes override packets into the shared State.
type Receiver struct {
	state    *State
	ticks    ports.TickSource
	observer Observer
}

// NewReceiver creates a Receiver writing into state.
func NewReceiver(state *State, ticks ports.TickSource, observer Observer) *Receiver {
	if observer == nil {
		observer = NoopObserver{}
	}
	return &Receiver{state: state, ticks: ticks, observer: observer}
}

// HandlePacket implements ports.PacketHandler.
func (r *Receiver) HandlePacket(p domain.Packet) {
	r.Accept(p.Data)
}

// Accept stores payload if it holds a full command and reports whether it did.
// Short payloads leave the state and sequence untouched.
func (r *Receiver) Accept(payload []byte) bool {
	c, ok := domain.DecodeCommand(payload)
	if !ok {
		r.observer.OnPacket(false)
		return false
	}
	r.state.store(c, r.ticks.Now())
	r.observer.OnPacket(true)
	return true
}
