package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bft-labs/overdrive/internal/ports"
)

func TestSnapshotFileRepository_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	repo := NewSnapshotFileRepository(dir)
	ctx := context.Background()

	empty, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() on missing file error = %v", err)
	}
	if empty.Params != nil || empty.Logs != nil {
		t.Errorf("Load() on missing file = %+v, want empty", empty)
	}

	want := ports.Snapshot{
		CapturedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Params:     map[string]uint32{"override.enable": 1, "override.timeoutMs": 50},
		Logs:       map[string]uint32{"override.m1": 10, "override.seq": 7},
	}
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !got.CapturedAt.Equal(want.CapturedAt) {
		t.Errorf("CapturedAt = %v, want %v", got.CapturedAt, want.CapturedAt)
	}
	if got.Params["override.timeoutMs"] != 50 || got.Logs["override.seq"] != 7 {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}

	if _, err := os.Stat(repo.Path() + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}
}

func TestSnapshotFileRepository_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	repo := NewSnapshotFileRepository(dir)
	if err := os.WriteFile(repo.Path(), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Load(context.Background()); err == nil {
		t.Error("Load() of corrupt file returned nil error")
	}
}
