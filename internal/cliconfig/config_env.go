package cliconfig

import "os"

// EnvPrefix prefixes every environment variable read by ApplyEnvConfig.
const EnvPrefix = "OVERDRIVE_"

// ApplyEnvConfig applies configuration from environment variables (OVERDRIVE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", getenv("LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("driver", getenv("DRIVER"), &cfg.Driver)
	s.setString("pwm-root", getenv("PWM_ROOT"), &cfg.PWMRoot)
	s.setString("http-addr", getenv("HTTP_ADDR"), &cfg.HTTPAddr)
	s.setString("status-dir", getenv("STATUS_DIR"), &cfg.StatusDir)
	s.setString("log-level", getenv("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("step-period", getenv("STEP_PERIOD"), &cfg.StepPeriod); err != nil {
		return err
	}
	if err := s.setDuration("pwm-period", getenv("PWM_PERIOD"), &cfg.PWMPeriod); err != nil {
		return err
	}
	if err := s.setDuration("status-interval", getenv("STATUS_INTERVAL"), &cfg.StatusInterval); err != nil {
		return err
	}

	if err := s.setIntFromString("port", getenv("PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("timeout-ms", getenv("TIMEOUT_MS"), &cfg.TimeoutMs); err != nil {
		return err
	}
	if err := s.setIntFromString("pwm-chip", getenv("PWM_CHIP"), &cfg.PWMChip); err != nil {
		return err
	}
	if err := s.setIntsFromString("pwm-channels", getenv("PWM_CHANNELS"), &cfg.PWMChannels); err != nil {
		return err
	}

	s.setBoolFromString("enable", getenv("ENABLE"), &cfg.Enable)

	return nil
}

func getenv(name string) string {
	return os.Getenv(EnvPrefix + name)
}
