// Package override implements the direct-actuation override channel.
//
// A Receiver stores the latest four drive values from the command link and a
// Stepper, invoked once per control cycle, forwards them to the actuators
// while they are fresh. If nothing fresh has arrived within the configured
// timeout, or the channel is disabled, the actuators are driven to zero.
//
// # Concurrency
//
// Receiver and Stepper run on independent goroutines with no lock between
// them. Every shared word is a separate atomic, written by the Receiver in the
// order values, timestamp, sequence and read by the Stepper timestamp first.
// A Stepper racing a Receiver may therefore forward a mix of old and new drive
// values, but it never sees a timestamp fresher than the newest stored values.
// Both paths are wait-free.
//
// # State machine
//
// The Stepper is either Disabled or Enabled. Enabled has two per-cycle output
// modes, Fresh (forward) and Stale (zero), recomputed on every step. The
// Disabled cutoff writes zeros once on the Enabled to Disabled edge and then
// leaves the driver alone.
package override
