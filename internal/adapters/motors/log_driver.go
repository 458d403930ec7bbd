// Package motors contains actuator drivers.
package motors

import (
	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/ports"
	"github.com/bft-labs/overdrive/pkg/log"
)

var (
	_ ports.Actuator = (*LogDriver)(nil)
	_ ports.Actuator = Multi(nil)
)

// LogDriver records ratio changes in the log instead of driving hardware.
// Useful on a bench or in simulation. Only changes are logged.
type LogDriver struct {
	logger log.Logger
	last   domain.Command
	seen   [domain.NumMotors]bool
}

// NewLogDriver creates a LogDriver writing debug entries to logger.
func NewLogDriver(logger log.Logger) *LogDriver {
	return &LogDriver{logger: logger}
}

// SetRatio implements ports.Actuator.
func (d *LogDriver) SetRatio(id domain.MotorID, ratio uint16) {
	if !id.Valid() {
		return
	}
	i := id.Index()
	if d.seen[i] && d.last[i] == ratio {
		return
	}
	d.seen[i] = true
	d.last[i] = ratio
	d.logger.Debug("motor ratio", log.String("motor", id.String()), log.Uint("ratio", ratio))
}

// Last returns the most recent ratio per motor.
func (d *LogDriver) Last() domain.Command {
	return d.last
}

// Multi fans SetRatio out to several actuators in order.
type Multi []ports.Actuator

// SetRatio implements ports.Actuator.
func (m Multi) SetRatio(id domain.MotorID, ratio uint16) {
	for _, a := range m {
		a.SetRatio(id, ratio)
	}
}
