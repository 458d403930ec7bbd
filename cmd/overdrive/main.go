package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/bft-labs/overdrive/internal/adapters/motors"
	"github.com/bft-labs/overdrive/internal/cliconfig"
	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/pkg/log"
	"github.com/bft-labs/overdrive/pkg/overdrive"
)

const longHelp = `Direct-actuation override channel.

An external controller streams raw four-motor commands over UDP. While they
keep arriving within timeout-ms they are forwarded to the motors unchanged;
when they stop, or the channel is disabled, every motor is driven to zero.

The channel starts disabled. Enable it with --enable, the config file, or
at runtime:  overdrive params set override.enable 1`

var exampleUsage = strings.TrimSpace(`
  overdrive --enable --listen 0.0.0.0:7450 --http-addr 127.0.0.1:8470
  overdrive --driver sysfs --pwm-chip 0 --pwm-channels 0,1,2,3
  overdrive send 1000 2000 3000 4000 --repeat 0 --interval 20ms
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		logger := cliconfig.Logger("info")
		logger.Error().Err(err).Msg("overdrive")
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:           "overdrive",
		Short:         "Forward raw motor commands with a staleness cutoff",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile, err := resolveConfig(cmd.Flags(), cfgPath, &cfg)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, cfgFile)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.overdrive/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "UDP address to receive commands on")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "link port of the override channel (0-15)")
	root.Flags().DurationVar(&cfg.StepPeriod, "step-period", cfg.StepPeriod, "actuation step interval")
	root.Flags().BoolVar(&cfg.Enable, "enable", cfg.Enable, "start with the override channel enabled")
	root.Flags().IntVar(&cfg.TimeoutMs, "timeout-ms", cfg.TimeoutMs, "commands older than this are replaced by zeros")

	root.Flags().StringVar(&cfg.Driver, "driver", cfg.Driver, "motor driver: log or sysfs")
	root.Flags().StringVar(&cfg.PWMRoot, "pwm-root", cfg.PWMRoot, "sysfs PWM class directory")
	root.Flags().IntVar(&cfg.PWMChip, "pwm-chip", cfg.PWMChip, "PWM chip number")
	root.Flags().DurationVar(&cfg.PWMPeriod, "pwm-period", cfg.PWMPeriod, "PWM period")
	root.Flags().IntSliceVar(&cfg.PWMChannels, "pwm-channels", cfg.PWMChannels, "PWM channel for M1..M4")

	root.Flags().StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "serve the param API and /metrics on this address")
	root.Flags().StringVar(&cfg.StatusDir, "status-dir", cfg.StatusDir, "write status.json into this directory")
	root.Flags().DurationVar(&cfg.StatusInterval, "status-interval", cfg.StatusInterval, "status.json refresh interval")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")

	root.AddCommand(newSendCmd(), newParamsCmd())
	return root
}

// resolveConfig layers file < env < flags into cfg and returns the config
// file in use, or "" when there is none.
func resolveConfig(flags *pflag.FlagSet, cfgPath string, cfg *cliconfig.Config) (string, error) {
	cfgFile := cfgPath
	if cfgFile == "" {
		cfgFile = cliconfig.DefaultConfigPath()
	}

	changed := map[string]bool{}
	flags.Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	if cfgFile != "" && cliconfig.FileExists(cfgFile) {
		fc, err := cliconfig.LoadFileConfig(cfgFile)
		if err != nil {
			return "", fmt.Errorf("load config: %w", err)
		}
		if err := cliconfig.ApplyFileConfig(cfg, fc, changed); err != nil {
			return "", err
		}
	} else {
		cfgFile = ""
	}

	// OVERDRIVE_* override the file but not explicit flags.
	if err := cliconfig.ApplyEnvConfig(cfg, changed); err != nil {
		return "", err
	}
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return cfgFile, nil
}

func run(ctx context.Context, cfg cliconfig.Config, cfgFile string) error {
	zl := cliconfig.Logger(cfg.LogLevel)
	zl.Info().Interface("config", cfg).Str("config_file", cfgFile).Msg("configuration")
	logger := log.NewZerologAdapterWithLogger(zl)

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	act, closeAct, err := openActuator(cfg, logger)
	if err != nil {
		return err
	}
	defer closeAct()

	svc, err := overdrive.New(overdrive.Config{
		ListenAddr:     cfg.ListenAddr,
		Port:           uint8(cfg.Port),
		StepPeriod:     cfg.StepPeriod,
		Enable:         cfg.Enable,
		TimeoutMs:      uint16(cfg.TimeoutMs),
		HTTPAddr:       cfg.HTTPAddr,
		StatusDir:      cfg.StatusDir,
		StatusInterval: cfg.StatusInterval,
		ConfigPath:     cfgFile,
	},
		overdrive.WithLogger(logger),
		overdrive.WithActuator(act),
		overdrive.WithEventHandler(newEventLogger(ctx, zl)),
	)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("start: %w", err)
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
wait:
	for {
		select {
		case <-ctx.Done():
			zl.Info().Msg("received signal, stopping...")
			break wait
		case <-ticker.C:
			if svc.Status() == overdrive.StateCrashed {
				zl.Error().Msg("service crashed")
				break wait
			}
		}
	}

	if err := svc.Stop(); err != nil && !errors.Is(err, domain.ErrNotRunning) {
		return fmt.Errorf("stop: %w", err)
	}
	return nil
}

func openActuator(cfg cliconfig.Config, logger log.Logger) (overdrive.Actuator, func(), error) {
	if cfg.Driver != cliconfig.DriverSysfs {
		return motors.NewLogDriver(logger), func() {}, nil
	}

	var channels [domain.NumMotors]int
	copy(channels[:], cfg.PWMChannels)
	drv, err := motors.OpenSysfs(motors.SysfsConfig{
		Root:     cfg.PWMRoot,
		Chip:     cfg.PWMChip,
		Channels: channels,
		Period:   cfg.PWMPeriod,
	}, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("open pwm: %w", err)
	}
	closeFn := func() {
		if err := drv.Close(); err != nil {
			logger.Error("close pwm", log.Err(err))
		}
	}
	// Log changes too so a bench run shows what the hardware received.
	return motors.Multi{drv, motors.NewLogDriver(logger)}, closeFn, nil
}

// eventLogger reports service events on the CLI log. Mode changes arrive on
// the step goroutine, so they are queued and written from a separate one.
type eventLogger struct {
	overdrive.BaseEventHandler
	logger zerolog.Logger
	modes  chan overdrive.ModeChangeEvent
}

func newEventLogger(ctx context.Context, logger zerolog.Logger) *eventLogger {
	e := &eventLogger{logger: logger, modes: make(chan overdrive.ModeChangeEvent, 16)}
	go e.drain(ctx)
	return e
}

func (e *eventLogger) OnModeChange(ev overdrive.ModeChangeEvent) {
	select {
	case e.modes <- ev:
	default:
	}
}

func (e *eventLogger) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-e.modes:
			lvl := zerolog.InfoLevel
			if ev.Current == overdrive.ModeStale {
				lvl = zerolog.WarnLevel
			}
			e.logger.WithLevel(lvl).
				Str("from", ev.Previous.String()).
				Str("to", ev.Current.String()).
				Msg("override mode")
		}
	}
}
