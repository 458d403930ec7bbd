package domain

import (
	"encoding/binary"
	"fmt"
)

// NumMotors is the number of independently driven actuators.
const NumMotors = 4

// CommandSize is the encoded size of a Command: four little-endian uint16 fields.
const CommandSize = NumMotors * 2

// MotorID identifies an actuator position. Positions are fixed, M1 through M4.
type MotorID int

const (
	M1 MotorID = iota + 1
	M2
	M3
	M4
)

// AllMotors returns all motor positions in order.
func AllMotors() []MotorID {
	return []MotorID{M1, M2, M3, M4}
}

// Index returns the zero-based slot of the motor in a Command.
func (m MotorID) Index() int {
	return int(m) - 1
}

// Valid reports whether m is one of M1..M4.
func (m MotorID) Valid() bool {
	return m >= M1 && m <= M4
}

func (m MotorID) String() string {
	if !m.Valid() {
		return fmt.Sprintf("M?(%d)", int(m))
	}
	return fmt.Sprintf("M%d", int(m))
}

// Command holds one raw drive value per motor, indexed by MotorID.Index().
// Values are passed through unvalidated; clamping is the driver's job.
type Command [NumMotors]uint16

// Zero is the all-off command.
var Zero Command

// DecodeCommand decodes the fixed payload layout m1,m2,m3,m4 (uint16, little-endian).
// Payloads shorter than CommandSize are rejected; trailing bytes are ignored.
func DecodeCommand(payload []byte) (Command, bool) {
	var c Command
	if len(payload) < CommandSize {
		return c, false
	}
	for i := range c {
		c[i] = binary.LittleEndian.Uint16(payload[i*2:])
	}
	return c, true
}

// Encode returns the CommandSize-byte wire encoding of c.
func (c Command) Encode() []byte {
	b := make([]byte, CommandSize)
	for i, v := range c {
		binary.LittleEndian.PutUint16(b[i*2:], v)
	}
	return b
}

// Get returns the value for motor m, or 0 for an invalid id.
func (c Command) Get(m MotorID) uint16 {
	if !m.Valid() {
		return 0
	}
	return c[m.Index()]
}

// IsZero reports whether every motor is off.
func (c Command) IsZero() bool {
	return c == Zero
}
