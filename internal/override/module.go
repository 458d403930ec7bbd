package override

import (
	"github.com/bft-labs/overdrive/internal/ports"
)

// Group is the registry group under which the channel exposes its values.
const Group = "override"

// Module wires State, Config, Receiver and Stepper together. One Module lives
// for the whole process; there is no reinitialization path.
type Module struct {
	State    *State
	Config   *Config
	Receiver *Receiver
	Stepper  *Stepper
}

// New creates a Module driving act. cfg may be nil for defaults.
func New(ticks ports.TickSource, act ports.Actuator, cfg *Config, observer Observer) *Module {
	if cfg == nil {
		cfg = NewConfig()
	}
	state := &State{}
	return &Module{
		State:    state,
		Config:   cfg,
		Receiver: NewReceiver(state, ticks, observer),
		Stepper:  NewStepper(state, cfg, ticks, act, observer),
	}
}

// Register exposes the configuration params and the telemetry variables.
func (m *Module) Register(r ports.Registry) {
	r.AddParam(Group, "enable", ports.TypeUint8,
		func() uint32 { return uint32(m.Config.EnableRaw()) },
		func(v uint32) { m.Config.SetEnableRaw(uint8(v)) },
	)
	r.AddParam(Group, "timeoutMs", ports.TypeUint16,
		func() uint32 { return uint32(m.Config.TimeoutMs()) },
		func(v uint32) { m.Config.SetTimeoutMs(uint16(v)) },
	)

	for i := range m.State.motors {
		i := i
		r.AddLog(Group, motorName("m", i), ports.TypeUint16, func() uint32 {
			return m.State.motors[i].Load() & 0xFFFF
		})
	}
	r.AddLog(Group, "seq", ports.TypeUint16, func() uint32 {
		return uint32(m.State.Sequence())
	})

	for i := range m.Stepper.out {
		i := i
		r.AddLog(Group, motorName("out", i), ports.TypeUint16, func() uint32 {
			return m.Stepper.out[i].Load()
		})
	}
	r.AddLog(Group, "mode", ports.TypeUint8, func() uint32 {
		return uint32(m.Stepper.Mode())
	})
}

func motorName(prefix string, i int) string {
	return prefix + string(rune('1'+i))
}
