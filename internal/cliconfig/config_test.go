package cliconfig

import (
	"errors"
	"testing"
	"time"

	"github.com/bft-labs/overdrive/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != 0x09 {
		t.Errorf("Port = %v, want 9", cfg.Port)
	}
	if cfg.TimeoutMs != 50 {
		t.Errorf("TimeoutMs = %v, want 50", cfg.TimeoutMs)
	}
	if cfg.Enable {
		t.Error("Enable = true, want false")
	}
	if cfg.Driver != DriverLog {
		t.Errorf("Driver = %v, want %v", cfg.Driver, DriverLog)
	}
	if cfg.StepPeriod != 2*time.Millisecond {
		t.Errorf("StepPeriod = %v, want 2ms", cfg.StepPeriod)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "missing listen address",
			mutate:  func(c *Config) { c.ListenAddr = "" },
			wantErr: true,
		},
		{
			name:    "port above 4 bits",
			mutate:  func(c *Config) { c.Port = 16 },
			wantErr: true,
		},
		{
			name:    "zero step period",
			mutate:  func(c *Config) { c.StepPeriod = 0 },
			wantErr: true,
		},
		{
			name:   "zero timeout is allowed",
			mutate: func(c *Config) { c.TimeoutMs = 0 },
		},
		{
			name:    "timeout above 16 bits",
			mutate:  func(c *Config) { c.TimeoutMs = 70000 },
			wantErr: true,
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Driver = "can" },
			wantErr: true,
		},
		{
			name:   "sysfs with four channels",
			mutate: func(c *Config) { c.Driver = DriverSysfs },
		},
		{
			name: "sysfs with three channels",
			mutate: func(c *Config) {
				c.Driver = DriverSysfs
				c.PWMChannels = []int{0, 1, 2}
			},
			wantErr: true,
		},
		{
			name: "status dir without interval",
			mutate: func(c *Config) {
				c.StatusDir = "/tmp/overdrive"
				c.StatusInterval = 0
			},
			wantErr: true,
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.LogLevel = "loud" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfigSetter_RespectsChangedFlags(t *testing.T) {
	s := newConfigSetter(map[string]bool{"listen": true, "timeout-ms": true})

	addr := "flag"
	s.setString("listen", "file", &addr)
	if addr != "flag" {
		t.Errorf("setString overwrote a changed flag: %v", addr)
	}

	timeout := 80
	zero := 0
	s.setInt("timeout-ms", &zero, &timeout)
	if timeout != 80 {
		t.Errorf("setInt overwrote a changed flag: %v", timeout)
	}

	port := 9
	s.setInt("port", &zero, &port)
	if port != 0 {
		t.Errorf("setInt did not apply explicit zero: %v", port)
	}
}

func TestConfigSetter_SetIntsFromString(t *testing.T) {
	s := newConfigSetter(nil)

	var got []int
	if err := s.setIntsFromString("pwm-channels", "4, 5,6,7", &got); err != nil {
		t.Fatalf("setIntsFromString() = %v", err)
	}
	want := []int{4, 5, 6, 7}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if err := s.setIntsFromString("pwm-channels", "1,x", &got); err == nil {
		t.Error("setIntsFromString() expected error for non-numeric entry")
	}
}
