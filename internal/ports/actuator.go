package ports

import "github.com/bft-labs/overdrive/internal/domain"

// Actuator drives physical outputs. SetRatio must not block: it is called from
// the periodic control loop. Implementations clamp out-of-range values.
type Actuator interface {
	SetRatio(id domain.MotorID, ratio uint16)
}

// ActuatorFunc adapts a function to Actuator.
type ActuatorFunc func(id domain.MotorID, ratio uint16)

// SetRatio calls f.
func (f ActuatorFunc) SetRatio(id domain.MotorID, ratio uint16) {
	f(id, ratio)
}
