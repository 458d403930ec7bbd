package overdrive

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/bft-labs/overdrive/internal/adapters/configwatch"
	"github.com/bft-labs/overdrive/internal/adapters/fs"
	httpAdapter "github.com/bft-labs/overdrive/internal/adapters/http"
	"github.com/bft-labs/overdrive/internal/adapters/motors"
	"github.com/bft-labs/overdrive/internal/adapters/udp"
	"github.com/bft-labs/overdrive/internal/app"
	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/metrics"
	"github.com/bft-labs/overdrive/internal/override"
	"github.com/bft-labs/overdrive/internal/registry"
	"github.com/bft-labs/overdrive/internal/tick"
	"github.com/bft-labs/overdrive/pkg/log"
)

const httpShutdownTimeout = 2 * time.Second

// Service runs the override channel: a UDP receiver, the periodic stepper,
// and the optional HTTP API, status file and config watcher around them.
type Service struct {
	config    Config
	opts      options
	logger    log.Logger
	clock     clockwork.Clock
	lifecycle *app.Lifecycle

	module   *override.Module
	registry *registry.Registry
	router   *udp.Router
	gatherer prometheus.Gatherer

	mu       sync.RWMutex
	listener *udp.Listener
	ownConn  net.PacketConn
}

// New creates a Service in StateStopped; call Start to begin.
func New(cfg Config, opts ...Option) (*Service, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.NewNoopLogger()
	}
	if o.clock == nil {
		o.clock = clockwork.NewRealClock()
	}
	if o.actuator == nil {
		o.actuator = motors.NewLogDriver(o.logger)
	}

	emitter := &eventEmitter{handler: o.eventHandler}

	ocfg := override.NewConfig()
	ocfg.SetEnabled(cfg.Enable)
	ocfg.SetTimeoutMs(cfg.TimeoutMs)

	ticks := tick.NewSource(o.clock, 0)
	mod := override.New(ticks, o.actuator, ocfg, override.Observers{metrics.Observer{}, emitter})

	reg := registry.New()
	mod.Register(reg)

	router := udp.NewRouter()
	router.Register(domain.Port(cfg.Port), mod.Receiver)

	promReg := prometheus.NewRegistry()
	if err := promReg.Register(registry.NewCollector(reg, "overdrive")); err != nil {
		return nil, fmt.Errorf("register collector: %w", err)
	}

	return &Service{
		config:    cfg,
		opts:      o,
		logger:    o.logger,
		clock:     o.clock,
		lifecycle: app.NewLifecycle(o.logger, emitter, o.clock),
		module:    mod,
		registry:  reg,
		router:    router,
		gatherer:  prometheus.Gatherers{prometheus.DefaultGatherer, promReg},
	}, nil
}

// Start binds the command connection and starts the workers. It returns once
// everything is running; the workers live until Stop or until ctx is done.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	conn := s.opts.conn
	if conn == nil {
		c, err := net.ListenPacket("udp", s.config.ListenAddr)
		if err != nil {
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "listen failed")
			return fmt.Errorf("listen %s: %w", s.config.ListenAddr, err)
		}
		conn = c
		s.ownConn = c
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	s.listener = udp.NewListener(conn, s.router, s.logger, s.clock)
	s.lifecycle.Go("listener", func() error { return s.listener.Run(runCtx) })

	scheduler := app.NewScheduler(s.clock, s.config.StepPeriod, s.module.Stepper.Step)
	s.lifecycle.Go("stepper", func() error {
		err := scheduler.Run(runCtx)
		// Same goroutine as Step, so the actuators keep a single writer.
		s.module.Stepper.Cutoff()
		s.logger.Info("actuators cut off")
		return err
	})

	if s.config.HTTPAddr != "" {
		s.startHTTP(runCtx)
	}
	if s.config.StatusDir != "" {
		repo := fs.NewSnapshotFileRepository(s.config.StatusDir)
		snap := app.NewSnapshotter(s.registry, repo, s.config.StatusInterval, s.clock, s.logger)
		s.lifecycle.Go("snapshot", func() error { return snap.Run(runCtx) })
	}
	if s.config.ConfigPath != "" {
		w := configwatch.New(configwatch.Config{Path: s.config.ConfigPath}, s.registry, s.logger)
		s.lifecycle.Go("configwatch", func() error { return w.Run(runCtx) })
	}

	s.logger.Info("override channel listening",
		log.String("addr", conn.LocalAddr().String()),
		log.Uint("port", s.config.Port),
		log.Duration("step", s.config.StepPeriod),
	)
	return s.lifecycle.TransitionTo(app.StateRunning, "workers started")
}

func (s *Service) startHTTP(ctx context.Context) {
	srv := httpAdapter.NewServer(s.config.HTTPAddr, s.registry, s.gatherer, s.logger)
	s.lifecycle.Go("http", srv.Start)
	s.lifecycle.Go("http-shutdown", func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
}

// Stop cancels the workers and waits for them. The actuators are driven to
// zero exactly once on the way out. Stopping a crashed service reports the
// error that crashed it.
func (s *Service) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lifecycle.State() == app.StateCrashed {
		s.lifecycle.Cancel()
		_ = s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
		s.closeConn()
		return s.lifecycle.Err()
	}
	if !s.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	s.lifecycle.Cancel()
	err := s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
	s.closeConn()

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
		return err
	}
	if werr := s.lifecycle.Err(); werr != nil {
		return werr
	}
	return s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
}

func (s *Service) closeConn() {
	if s.ownConn != nil {
		_ = s.ownConn.Close()
		s.ownConn = nil
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Service) Status() State {
	return s.lifecycle.State()
}

// Addr returns the bound command address, or nil before Start.
func (s *Service) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Mode returns the decision of the most recent step.
func (s *Service) Mode() Mode {
	return s.module.Stepper.Mode()
}

// Output returns the values last sent to the four actuators.
func (s *Service) Output() Command {
	return s.module.Stepper.Output()
}

// Param reads a registered param or log variable by "group.name".
func (s *Service) Param(name string) (uint32, error) {
	return s.registry.Get(name)
}

// SetParam writes a runtime param such as "override.enable".
func (s *Service) SetParam(name string, v uint32) error {
	return s.registry.SetParam(name, v)
}

// Params returns every param and log variable keyed by "group.name".
func (s *Service) Params() (params, logs map[string]uint32) {
	return s.registry.Snapshot()
}
