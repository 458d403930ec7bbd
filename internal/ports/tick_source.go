package ports

import "github.com/bft-labs/overdrive/internal/tick"

// TickSource returns the current monotonic tick.
// *tick.Source satisfies this interface.
type TickSource interface {
	Now() tick.Tick
}
