package override

// Observer is notified from the Receiver and Stepper goroutines. Calls happen
// inline on the real-time paths, so implementations must not block.
type Observer interface {
	// OnPacket reports a payload that was accepted or dropped as too short.
	OnPacket(accepted bool)

	// OnStep reports the decision taken by one Stepper cycle.
	OnStep(mode Mode)

	// OnModeChange reports a change between consecutive Stepper decisions.
	OnModeChange(previous, current Mode)
}

// NoopObserver ignores all notifications.
type NoopObserver struct{}

func (NoopObserver) OnPacket(bool)           {}
func (NoopObserver) OnStep(Mode)             {}
func (NoopObserver) OnModeChange(Mode, Mode) {}

// Observers fans notifications out to several observers.
type Observers []Observer

func (o Observers) OnPacket(accepted bool) {
	for _, x := range o {
		x.OnPacket(accepted)
	}
}

func (o Observers) OnStep(mode Mode) {
	for _, x := range o {
		x.OnStep(mode)
	}
}

func (o Observers) OnModeChange(previous, current Mode) {
	for _, x := range o {
		x.OnModeChange(previous, current)
	}
}
