package motors

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/pkg/log"
)

// DefaultSysfsRoot is where the Linux PWM class exposes its chips.
const DefaultSysfsRoot = "/sys/class/pwm"

// SysfsConfig describes how motors map onto a PWM chip.
type SysfsConfig struct {
	Root     string
	Chip     int
	Channels [domain.NumMotors]int
	Period   time.Duration
	// MaxRatio caps the drive ratio; 0 means no cap.
	MaxRatio uint16
}

// SysfsDriver drives motors through the Linux PWM sysfs interface.
type SysfsDriver struct {
	cfg     SysfsConfig
	periods int64
	duty    [domain.NumMotors]int64
	logger  log.Logger
	limiter *rate.Limiter
}

// OpenSysfs exports and enables each configured channel with zero duty.
func OpenSysfs(cfg SysfsConfig, logger log.Logger) (*SysfsDriver, error) {
	if cfg.Root == "" {
		cfg.Root = DefaultSysfsRoot
	}
	if cfg.Period <= 0 {
		return nil, errors.New("pwm period must be positive")
	}
	if cfg.MaxRatio == 0 {
		cfg.MaxRatio = math.MaxUint16
	}
	d := &SysfsDriver{
		cfg:     cfg,
		periods: cfg.Period.Nanoseconds(),
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(time.Second), 1),
	}
	for i := range cfg.Channels {
		if err := d.setup(i); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *SysfsDriver) chipDir() string {
	return filepath.Join(d.cfg.Root, fmt.Sprintf("pwmchip%d", d.cfg.Chip))
}

func (d *SysfsDriver) channelDir(i int) string {
	return filepath.Join(d.chipDir(), fmt.Sprintf("pwm%d", d.cfg.Channels[i]))
}

func (d *SysfsDriver) setup(i int) error {
	dir := d.channelDir(i)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := writeAttr(filepath.Join(d.chipDir(), "export"), int64(d.cfg.Channels[i])); err != nil {
			return fmt.Errorf("export pwm%d: %w", d.cfg.Channels[i], err)
		}
	}
	// Duty must not exceed period at any point, so zero it first.
	if err := writeAttr(filepath.Join(dir, "duty_cycle"), 0); err != nil {
		return fmt.Errorf("pwm%d duty: %w", d.cfg.Channels[i], err)
	}
	if err := writeAttr(filepath.Join(dir, "period"), d.periods); err != nil {
		return fmt.Errorf("pwm%d period: %w", d.cfg.Channels[i], err)
	}
	if err := writeAttr(filepath.Join(dir, "enable"), 1); err != nil {
		return fmt.Errorf("pwm%d enable: %w", d.cfg.Channels[i], err)
	}
	return nil
}

// DutyFor converts a drive ratio to a duty cycle in nanoseconds.
func (d *SysfsDriver) DutyFor(ratio uint16) int64 {
	if ratio > d.cfg.MaxRatio {
		ratio = d.cfg.MaxRatio
	}
	return d.periods * int64(ratio) / math.MaxUint16
}

// SetRatio implements ports.Actuator. Unchanged duty cycles are not rewritten.
func (d *SysfsDriver) SetRatio(id domain.MotorID, ratio uint16) {
	if !id.Valid() {
		return
	}
	i := id.Index()
	duty := d.DutyFor(ratio)
	if duty == d.duty[i] {
		return
	}
	if err := writeAttr(filepath.Join(d.channelDir(i), "duty_cycle"), duty); err != nil {
		if d.limiter.Allow() {
			d.logger.Error("pwm write failed", log.String("motor", id.String()), log.Err(err))
		}
		return
	}
	d.duty[i] = duty
}

// Close zeroes and disables every channel.
func (d *SysfsDriver) Close() error {
	var errs []error
	for i := range d.cfg.Channels {
		dir := d.channelDir(i)
		errs = append(errs,
			writeAttr(filepath.Join(dir, "duty_cycle"), 0),
			writeAttr(filepath.Join(dir, "enable"), 0),
		)
		d.duty[i] = 0
	}
	return errors.Join(errs...)
}

func writeAttr(path string, v int64) error {
	return os.WriteFile(path, []byte(strconv.FormatInt(v, 10)), 0o644)
}
