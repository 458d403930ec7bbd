package overdrive

import (
	"github.com/bft-labs/overdrive/internal/app"
	"github.com/bft-labs/overdrive/internal/override"
)

// State is the lifecycle state of a Service.
type State = app.State

const (
	StateStopped  = app.StateStopped
	StateStarting = app.StateStarting
	StateRunning  = app.StateRunning
	StateStopping = app.StateStopping
	StateCrashed  = app.StateCrashed
)

// Mode is the decision taken by the last actuation step.
type Mode = override.Mode

const (
	ModeDisabled = override.ModeDisabled
	ModeFresh    = override.ModeFresh
	ModeStale    = override.ModeStale
)

// StateChangeEvent describes a lifecycle transition.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// ModeChangeEvent describes a change between consecutive step decisions,
// e.g. fresh to stale when the controller goes quiet.
type ModeChangeEvent struct {
	Previous Mode
	Current  Mode
}

// EventHandler receives service notifications.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnModeChange(event ModeChangeEvent)
}

// BaseEventHandler implements EventHandler with no-ops.
type BaseEventHandler struct{}

func (BaseEventHandler) OnStateChange(StateChangeEvent) {}
func (BaseEventHandler) OnModeChange(ModeChangeEvent)   {}

// eventEmitter adapts EventHandler to the internal emitter interfaces.
type eventEmitter struct {
	override.NoopObserver
	handler EventHandler
}

func (e *eventEmitter) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{Previous: previous, Current: current, Reason: reason})
}

func (e *eventEmitter) OnModeChange(previous, current override.Mode) {
	if e.handler == nil {
		return
	}
	e.handler.OnModeChange(ModeChangeEvent{Previous: previous, Current: current})
}
