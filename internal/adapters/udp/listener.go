// Package udp carries command-link packets over UDP datagrams.
//
// Each datagram holds one packet: a header byte (port in the high nibble,
// channel in the low two bits) followed by up to domain.MaxPayload bytes.
package udp

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/time/rate"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/metrics"
	"github.com/bft-labs/overdrive/pkg/log"
)

// Listener reads datagrams from a PacketConn and dispatches them through a Router.
type Listener struct {
	conn    net.PacketConn
	router  *Router
	logger  log.Logger
	clock   clockwork.Clock
	limiter *rate.Limiter
}

// NewListener creates a Listener. logger and clock may be nil.
func NewListener(conn net.PacketConn, router *Router, logger log.Logger, clock clockwork.Clock) *Listener {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Listener{
		conn:    conn,
		router:  router,
		logger:  logger,
		clock:   clock,
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
	}
}

// Addr returns the local address the listener is bound to.
func (l *Listener) Addr() net.Addr {
	return l.conn.LocalAddr()
}

// Run reads until ctx is canceled or the connection is closed. Handlers run
// on this goroutine and must not retain the packet's Data slice.
func (l *Listener) Run(ctx context.Context) error {
	// Clear a deadline left by a previous run on the same connection.
	_ = l.conn.SetReadDeadline(time.Time{})
	stop := context.AfterFunc(ctx, func() {
		_ = l.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	// One spare byte so oversized datagrams are detectable after truncation.
	buf := make([]byte, 1+domain.MaxPayload+1)
	back := newBackoff(l.clock, DefaultBackoffInitial, DefaultBackoffMax)

	for {
		n, _, err := l.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, net.ErrClosed) {
				return err
			}
			metrics.ReadErrorsTotal.Inc()
			l.logger.Warn("read error", log.Err(err), log.Duration("retry_in", back.Current()))
			if werr := back.Wait(ctx); werr != nil {
				return werr
			}
			continue
		}
		back.Reset()
		l.handle(buf[:n])
	}
}

func (l *Listener) handle(raw []byte) {
	p, ok := domain.ParsePacket(raw)
	if !ok {
		reason := "oversized"
		if len(raw) == 0 {
			reason = "empty"
		}
		metrics.DatagramsDroppedTotal.WithLabelValues(reason).Inc()
		return
	}
	if !l.router.Dispatch(p) {
		metrics.DatagramsDroppedTotal.WithLabelValues("unknown_port").Inc()
		if l.limiter.Allow() {
			l.logger.Warn("packet for unregistered port", log.Uint("port", uint8(p.Port)))
		}
	}
}
