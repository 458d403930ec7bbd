// Package ports defines the interfaces that connect the override core to
// infrastructure adapters.
//
// # Port Interfaces
//
//   - [Actuator]: accepts a drive ratio per motor (PWM sysfs, log, test doubles)
//   - [TickSource]: monotonic wrapping tick counter
//   - [Registry]: named parameter and telemetry registration
//   - [PacketHandler]: transport callback for one port
//   - [SnapshotRepository]: persists registry snapshots for external inspection
//
// The core (internal/override) depends only on these interfaces; adapters in
// internal/adapters implement them.
package ports
