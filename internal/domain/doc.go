// Package domain contains the core value types of the override channel.
//
// It has no dependencies on transport, drivers or logging:
//
//   - [Command]: four raw drive values, one per actuator position
//   - [MotorID]: fixed actuator positions M1..M4
//   - [Packet]: a transport-delivered unit tagged with a port and channel
//
// Decoding is total: malformed input is reported with a boolean, never an error,
// because short packets are expected on a lossy link.
package domain
