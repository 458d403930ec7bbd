package overdrive

import (
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/overdrive/internal/adapters/udp"
	"github.com/bft-labs/overdrive/internal/domain"
)

type recordingActuator struct {
	mu    sync.Mutex
	last  Command
	calls int
}

func (a *recordingActuator) SetRatio(id MotorID, ratio uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.last[id.Index()] = ratio
	a.calls++
}

func (a *recordingActuator) snapshot() (Command, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.last, a.calls
}

type recordingHandler struct {
	BaseEventHandler
	mu     sync.Mutex
	states []State
	modes  []Mode
}

func (h *recordingHandler) OnStateChange(e StateChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.states = append(h.states, e.Current)
}

func (h *recordingHandler) OnModeChange(e ModeChangeEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.modes = append(h.modes, e.Current)
}

func (h *recordingHandler) seen() ([]State, []Mode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]State(nil), h.states...), append([]Mode(nil), h.modes...)
}

type harness struct {
	svc    *Service
	clock  *clockwork.FakeClock
	act    *recordingActuator
	client *udp.Client
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	clock := clockwork.NewFakeClock()
	act := &recordingActuator{}
	opts = append([]Option{WithClock(clock), WithActuator(act), WithPacketConn(conn)}, opts...)

	svc, err := New(cfg, opts...)
	require.NoError(t, err)

	client, err := udp.Dial(conn.LocalAddr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return &harness{svc: svc, clock: clock, act: act, client: client}
}

func (h *harness) step(t *testing.T, d time.Duration, want Mode) {
	t.Helper()
	h.clock.Advance(d)
	require.Eventually(t, func() bool { return h.svc.Mode() == want }, time.Second, time.Millisecond)
}

func TestService_ForwardsThenTimesOutThenCutsOff(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enable = true
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.Start(context.Background()))
	assert.Equal(t, StateRunning, h.svc.Status())
	h.clock.BlockUntil(1)

	cmd := Command{1000, 2000, 3000, 4000}
	require.NoError(t, h.client.SendCommand(domain.PortOverride, cmd))
	require.Eventually(t, func() bool {
		seq, _ := h.svc.Param("override.seq")
		return seq == 1
	}, time.Second, time.Millisecond)

	h.step(t, 2*time.Millisecond, ModeFresh)
	assert.Equal(t, cmd, h.svc.Output())
	last, _ := h.act.snapshot()
	assert.Equal(t, cmd, last)

	h.step(t, 60*time.Millisecond, ModeStale)
	assert.Equal(t, Command{}, h.svc.Output())

	require.NoError(t, h.svc.Stop())
	assert.Equal(t, StateStopped, h.svc.Status())
	assert.Equal(t, ModeDisabled, h.svc.Mode())
	last, _ = h.act.snapshot()
	assert.Equal(t, Command{}, last)
}

func TestService_DisablingCutsOffOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enable = true
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.Start(context.Background()))
	defer h.svc.Stop()
	h.clock.BlockUntil(1)

	require.NoError(t, h.client.SendCommand(domain.PortOverride, Command{5, 6, 7, 8}))
	require.Eventually(t, func() bool {
		m1, _ := h.svc.Param("override.m1")
		return m1 == 5
	}, time.Second, time.Millisecond)
	h.step(t, 2*time.Millisecond, ModeFresh)

	require.NoError(t, h.svc.SetParam("override.enable", 0))
	h.step(t, 2*time.Millisecond, ModeDisabled)
	last, calls := h.act.snapshot()
	assert.Equal(t, Command{}, last)

	h.clock.Advance(2 * time.Millisecond)
	time.Sleep(10 * time.Millisecond)
	_, after := h.act.snapshot()
	assert.Equal(t, calls, after, "no driver calls while staying disabled")
}

func TestService_StartsDisabledByDefault(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	enable, err := h.svc.Param("override.enable")
	require.NoError(t, err)
	assert.Equal(t, uint32(0), enable)
	timeout, err := h.svc.Param("override.timeoutMs")
	require.NoError(t, err)
	assert.Equal(t, uint32(50), timeout)
}

func TestService_LifecycleErrors(t *testing.T) {
	h := newHarness(t, DefaultConfig())

	assert.ErrorIs(t, h.svc.Stop(), domain.ErrNotRunning)

	require.NoError(t, h.svc.Start(context.Background()))
	assert.ErrorIs(t, h.svc.Start(context.Background()), domain.ErrAlreadyRunning)
	require.NoError(t, h.svc.Stop())
	assert.ErrorIs(t, h.svc.Stop(), domain.ErrNotRunning)
}

func TestService_EmitsEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enable = true
	handler := &recordingHandler{}
	h := newHarness(t, cfg, WithEventHandler(handler))

	require.NoError(t, h.svc.Start(context.Background()))
	h.clock.BlockUntil(1)
	h.step(t, 2*time.Millisecond, ModeStale)
	require.NoError(t, h.svc.Stop())

	states, modes := handler.seen()
	assert.Equal(t, []State{StateStarting, StateRunning, StateStopping, StateStopped}, states)
	assert.Equal(t, []Mode{ModeStale, ModeDisabled}, modes)
}

func TestService_WritesStatusFileOnStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StatusDir = t.TempDir()
	h := newHarness(t, cfg)

	require.NoError(t, h.svc.Start(context.Background()))
	require.NoError(t, h.svc.Stop())

	data, err := os.ReadFile(filepath.Join(cfg.StatusDir, "status.json"))
	require.NoError(t, err)

	var doc struct {
		Params map[string]uint32 `json:"params"`
		Logs   map[string]uint32 `json:"logs"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, uint32(50), doc.Params["override.timeoutMs"])
	assert.Contains(t, doc.Logs, "override.seq")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 0x10
	_, err := New(cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}
