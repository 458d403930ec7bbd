package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
// Pointers distinguish "absent" from an explicit zero.
type FileConfig struct {
	ListenAddr string `toml:"listen_addr"`
	Port       *int   `toml:"port"`

	StepPeriod string `toml:"step_period"`
	Enable     *bool  `toml:"enable"`
	TimeoutMs  *int   `toml:"timeout_ms"`

	Driver      string `toml:"driver"`
	PWMRoot     string `toml:"pwm_root"`
	PWMChip     *int   `toml:"pwm_chip"`
	PWMPeriod   string `toml:"pwm_period"`
	PWMChannels []int  `toml:"pwm_channels"`

	HTTPAddr       string `toml:"http_addr"`
	StatusDir      string `toml:"status_dir"`
	StatusInterval string `toml:"status_interval"`

	LogLevel string `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.overdrive/config.toml, or "" when the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".overdrive", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", fc.ListenAddr, &cfg.ListenAddr)
	s.setString("driver", fc.Driver, &cfg.Driver)
	s.setString("pwm-root", fc.PWMRoot, &cfg.PWMRoot)
	s.setString("http-addr", fc.HTTPAddr, &cfg.HTTPAddr)
	s.setString("status-dir", fc.StatusDir, &cfg.StatusDir)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("step-period", fc.StepPeriod, &cfg.StepPeriod); err != nil {
		return err
	}
	if err := s.setDuration("pwm-period", fc.PWMPeriod, &cfg.PWMPeriod); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", fc.StatusInterval, &cfg.StatusInterval); err != nil {
		return err
	}

	s.setInt("port", fc.Port, &cfg.Port)
	s.setInt("timeout-ms", fc.TimeoutMs, &cfg.TimeoutMs)
	s.setInt("pwm-chip", fc.PWMChip, &cfg.PWMChip)
	s.setInts("pwm-channels", fc.PWMChannels, &cfg.PWMChannels)

	s.setBool("enable", fc.Enable, &cfg.Enable)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
