package ports

import (
	"context"
	"time"
)

// Snapshot is a point-in-time copy of every registered value.
type Snapshot struct {
	CapturedAt time.Time         `json:"captured_at"`
	Params     map[string]uint32 `json:"params"`
	Logs       map[string]uint32 `json:"logs"`
}

// SnapshotRepository persists snapshots. Implementations write atomically so
// readers never observe a partial file.
type SnapshotRepository interface {
	Save(ctx context.Context, s Snapshot) error
	Load(ctx context.Context) (Snapshot, error)
}
