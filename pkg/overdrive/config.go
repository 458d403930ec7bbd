package overdrive

import (
	"fmt"
	"time"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/override"
)

// Config holds the configuration of a Service.
type Config struct {
	// ListenAddr is the UDP address commands arrive on. Ignored when a
	// connection is supplied with WithPacketConn.
	ListenAddr string

	// Port is the link port the override channel listens on. Default: 0x09.
	Port uint8

	// StepPeriod is the actuation step interval. Default: 2ms.
	StepPeriod time.Duration

	// Enable and TimeoutMs seed the runtime params override.enable and
	// override.timeoutMs.
	Enable    bool
	TimeoutMs uint16

	// HTTPAddr serves the param/log API and /metrics when not empty.
	HTTPAddr string

	// StatusDir receives status.json every StatusInterval when not empty.
	StatusDir      string
	StatusInterval time.Duration

	// ConfigPath is watched for enable/timeout_ms changes when not empty.
	ConfigPath string
}

// DefaultConfig returns a Config with the default link settings. The channel
// starts disabled.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7450",
		Port:           uint8(domain.PortOverride),
		StepPeriod:     2 * time.Millisecond,
		TimeoutMs:      override.DefaultTimeoutMs,
		StatusInterval: time.Second,
	}
}

// SetDefaults fills zero durations.
func (c *Config) SetDefaults() {
	if c.StepPeriod <= 0 {
		c.StepPeriod = 2 * time.Millisecond
	}
	if c.StatusInterval <= 0 {
		c.StatusInterval = time.Second
	}
}

// Validate checks the configuration for errors.
func (c Config) Validate() error {
	if c.Port > 0x0F {
		return fmt.Errorf("%w: port %d does not fit in 4 bits", domain.ErrInvalidConfig, c.Port)
	}
	if c.StepPeriod <= 0 {
		return fmt.Errorf("%w: step period must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
