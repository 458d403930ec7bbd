package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/overdrive/internal/ports"
)

type staticSource struct {
	mu  sync.Mutex
	seq  uint32
}

func (s *staticSource) Snapshot() (map[string]uint32, map[string]uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return map[string]uint32{"override.enable": 1}, map[string]uint32{"override.seq": s.seq}
}

type memoryRepo struct {
	mu    sync.Mutex
	saved []ports.Snapshot
	err   error
}

func (r *memoryRepo) Save(_ context.Context, s ports.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.saved = append(r.saved, s)
	return nil
}

func (r *memoryRepo) Load(context.Context) (ports.Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.saved) == 0 {
		return ports.Snapshot{}, nil
	}
	return r.saved[len(r.saved)-1], nil
}

func (r *memoryRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.saved)
}

func TestSnapshotter_SaveNow(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	repo := &memoryRepo{}
	s := NewSnapshotter(&staticSource{}, repo, time.Second, clock, nil)

	require.NoError(t, s.SaveNow(context.Background()))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, clock.Now().UTC(), got.CapturedAt)
	assert.Equal(t, uint32(1), got.Params["override.enable"])
	assert.Equal(t, uint32(1), got.Logs["override.seq"])
}

func TestSnapshotter_RunSavesPeriodicallyAndOnExit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	repo := &memoryRepo{}
	s := NewSnapshotter(&staticSource{}, repo, time.Second, clock, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	clock.BlockUntil(1)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return repo.count() == 1 }, time.Second, time.Millisecond)
	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return repo.count() == 2 }, time.Second, time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 3, repo.count(), "final snapshot on shutdown")

	last, _ := repo.Load(context.Background())
	assert.Equal(t, uint32(3), last.Logs["override.seq"])
}

func TestSnapshotter_SaveErrorIsReturned(t *testing.T) {
	repo := &memoryRepo{err: errors.New("disk full")}
	s := NewSnapshotter(&staticSource{}, repo, time.Second, nil, nil)
	assert.EqualError(t, s.SaveNow(context.Background()), "disk full")
}
