package udp

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/overdrive/internal/domain"
	"github.com/bft-labs/overdrive/internal/metrics"
	"github.com/bft-labs/overdrive/internal/ports"
)

func startListener(t *testing.T, router *Router) (*Listener, context.CancelFunc, <-chan error) {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	l := NewListener(conn, router, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()
	return l, cancel, done
}

func TestListener_DispatchesByPort(t *testing.T) {
	got := make(chan domain.Packet, 4)
	router := NewRouter()
	router.Register(domain.PortOverride, ports.PacketHandlerFunc(func(p domain.Packet) {
		// Data aliases the read buffer; copy before handing off.
		p.Data = append([]byte(nil), p.Data...)
		got <- p
	}))

	l, cancel, done := startListener(t, router)
	defer cancel()

	client, err := Dial(l.Addr().String())
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.SendCommand(domain.PortOverride, domain.Command{10, 20, 30, 40}))

	select {
	case p := <-got:
		assert.Equal(t, domain.PortOverride, p.Port)
		cmd, ok := domain.DecodeCommand(p.Data)
		require.True(t, ok)
		assert.Equal(t, domain.Command{10, 20, 30, 40}, cmd)
	case <-time.After(2 * time.Second):
		t.Fatal("packet not dispatched")
	}

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop on cancel")
	}
}

func TestListener_DropsUnroutable(t *testing.T) {
	router := NewRouter()
	delivered := make(chan struct{}, 1)
	router.Register(domain.PortOverride, ports.PacketHandlerFunc(func(domain.Packet) {
		delivered <- struct{}{}
	}))

	l, cancel, _ := startListener(t, router)
	defer cancel()

	conn, err := net.Dial("udp", l.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	unknown := testutil.ToFloat64(metrics.DatagramsDroppedTotal.WithLabelValues("unknown_port"))
	oversized := testutil.ToFloat64(metrics.DatagramsDroppedTotal.WithLabelValues("oversized"))

	_, err = conn.Write([]byte{0x20, 1, 2})
	require.NoError(t, err)
	_, err = conn.Write(make([]byte, 64))
	require.NoError(t, err)
	// A routable packet afterwards proves the earlier ones were processed.
	_, err = conn.Write([]byte{byte(domain.PortOverride) << 4})
	require.NoError(t, err)

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("routable packet not delivered")
	}
	assert.Equal(t, unknown+1, testutil.ToFloat64(metrics.DatagramsDroppedTotal.WithLabelValues("unknown_port")))
	assert.Equal(t, oversized+1, testutil.ToFloat64(metrics.DatagramsDroppedTotal.WithLabelValues("oversized")))
}

func TestRouter_Dispatch(t *testing.T) {
	r := NewRouter()
	var hits int
	r.Register(3, ports.PacketHandlerFunc(func(domain.Packet) { hits++ }))

	assert.True(t, r.Dispatch(domain.Packet{Port: 3}))
	assert.False(t, r.Dispatch(domain.Packet{Port: 4}))
	assert.Equal(t, 1, hits)
}

func TestBackoff_Wait(t *testing.T) {
	clock := clockwork.NewFakeClock()
	b := newBackoff(clock, 100*time.Millisecond, 300*time.Millisecond)

	wait := func(advance time.Duration) {
		t.Helper()
		done := make(chan error, 1)
		go func() { done <- b.Wait(context.Background()) }()
		clock.BlockUntil(1)
		clock.Advance(advance)
		require.NoError(t, <-done)
	}

	wait(200 * time.Millisecond)
	assert.Equal(t, 200*time.Millisecond, b.Current())

	wait(300 * time.Millisecond)
	assert.Equal(t, 300*time.Millisecond, b.Current(), "capped at max")

	b.Reset()
	assert.Equal(t, 100*time.Millisecond, b.Current())
}

func TestBackoff_WaitCanceled(t *testing.T) {
	b := newBackoff(clockwork.NewFakeClock(), time.Hour, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}
