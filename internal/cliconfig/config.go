package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/overdrive/internal/domain"
)

// Driver names accepted by --driver.
const (
	DriverLog   = "log"
	DriverSysfs = "sysfs"
)

// Config holds CLI configuration for overdrive.
type Config struct {
	ListenAddr string
	Port       int

	StepPeriod time.Duration
	Enable     bool
	TimeoutMs  int

	Driver      string
	PWMRoot     string
	PWMChip     int
	PWMPeriod   time.Duration
	PWMChannels []int

	HTTPAddr       string
	StatusDir      string
	StatusInterval time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ListenAddr:     "127.0.0.1:7450",
		Port:           int(domain.PortOverride),
		StepPeriod:     2 * time.Millisecond,
		TimeoutMs:      50,
		Driver:         DriverLog,
		PWMRoot:        "/sys/class/pwm",
		PWMPeriod:      50 * time.Microsecond,
		PWMChannels:    []int{0, 1, 2, 3},
		StatusInterval: time.Second,
		LogLevel:       "info",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen address is required", domain.ErrInvalidConfig)
	}
	if c.Port < 0 || c.Port > 0x0F {
		return fmt.Errorf("%w: port %d out of range 0-15", domain.ErrInvalidConfig, c.Port)
	}
	if c.StepPeriod <= 0 {
		return fmt.Errorf("%w: step period must be positive", domain.ErrInvalidConfig)
	}
	if c.TimeoutMs < 0 || c.TimeoutMs > 0xFFFF {
		return fmt.Errorf("%w: timeout-ms %d out of range 0-65535", domain.ErrInvalidConfig, c.TimeoutMs)
	}

	switch c.Driver {
	case DriverLog:
	case DriverSysfs:
		if len(c.PWMChannels) != domain.NumMotors {
			return fmt.Errorf("%w: pwm-channels needs %d entries, got %d", domain.ErrInvalidConfig, domain.NumMotors, len(c.PWMChannels))
		}
		if c.PWMPeriod <= 0 {
			return fmt.Errorf("%w: pwm period must be positive", domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown driver %q", domain.ErrInvalidConfig, c.Driver)
	}

	if c.StatusDir != "" && c.StatusInterval <= 0 {
		return fmt.Errorf("%w: status interval must be positive", domain.ErrInvalidConfig)
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log level: %v", domain.ErrInvalidConfig, err)
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer so that zero can be configured.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setInts(flag string, value []int, dst *[]int) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]int(nil), value...)
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = i
	return nil
}

// setIntsFromString parses a comma separated list such as "0,1,2,3".
func (s *configSetter) setIntsFromString(flag, value string, dst *[]int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		i, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return fmt.Errorf("parse %s: %w", flag, err)
		}
		out = append(out, i)
	}
	*dst = out
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
