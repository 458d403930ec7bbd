package override

import (
	"sync/atomic"
	"time"
)

// DefaultTimeoutMs is the staleness window applied when nothing else is set.
const DefaultTimeoutMs = 50

// Config holds the externally settable knobs. Writes are visible to the
// Stepper on its next cycle.
type Config struct {
	enable    atomic.Uint32
	timeoutMs atomic.Uint32
}

// NewConfig returns a disabled Config with the default timeout.
func NewConfig() *Config {
	c := &Config{}
	c.timeoutMs.Store(DefaultTimeoutMs)
	return c
}

// Enabled reports whether the override channel may drive the actuators.
func (c *Config) Enabled() bool {
	return c.enable.Load() != 0
}

// SetEnabled switches the channel on or off.
func (c *Config) SetEnabled(on bool) {
	if on {
		c.enable.Store(1)
		return
	}
	c.enable.Store(0)
}

// EnableRaw returns the 8-bit enable register as last written.
func (c *Config) EnableRaw() uint8 {
	return uint8(c.enable.Load())
}

// SetEnableRaw writes the 8-bit enable register; any nonzero value enables.
func (c *Config) SetEnableRaw(v uint8) {
	c.enable.Store(uint32(v))
}

// TimeoutMs returns the staleness window in milliseconds.
func (c *Config) TimeoutMs() uint16 {
	return uint16(c.timeoutMs.Load())
}

// SetTimeoutMs sets the staleness window in milliseconds.
func (c *Config) SetTimeoutMs(ms uint16) {
	c.timeoutMs.Store(uint32(ms))
}

// Timeout returns the staleness window as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs()) * time.Millisecond
}
