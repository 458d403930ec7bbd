package overdrive

import (
	"net"

	"github.com/jonboulle/clockwork"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/ports"
	"github.com/bft-labs/overdrive/pkg/log"
)

// MotorID names one of the four actuators.
type MotorID = domain.MotorID

// Command holds one drive value per motor, M1 first.
type Command = domain.Command

// Actuator receives one drive ratio per motor per step.
type Actuator = ports.Actuator

// ActuatorFunc adapts a function to Actuator.
type ActuatorFunc = ports.ActuatorFunc

// Option configures optional behavior of a Service.
type Option func(*options)

type options struct {
	logger       log.Logger
	actuator     ports.Actuator
	clock        clockwork.Clock
	conn         net.PacketConn
	eventHandler EventHandler
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithActuator sets the motor driver. If not provided, ratio changes are
// logged at debug level.
func WithActuator(a Actuator) Option {
	return func(o *options) {
		o.actuator = a
	}
}

// WithClock replaces the clock driving ticks, the step schedule and snapshots.
func WithClock(clock clockwork.Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithPacketConn supplies the command connection instead of listening on
// Config.ListenAddr. The Service does not close a supplied connection.
func WithPacketConn(conn net.PacketConn) Option {
	return func(o *options) {
		o.conn = conn
	}
}

// WithEventHandler sets a handler for service events.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}
