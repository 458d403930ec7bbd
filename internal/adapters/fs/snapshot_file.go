package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/bft-labs/overdrive/internal/ports"
)

const snapshotFileName = "status.json"

// SnapshotFileRepository implements ports.SnapshotRepository using a JSON file.
type SnapshotFileRepository struct {
	dir string
}

// NewSnapshotFileRepository creates a repository writing into dir.
func NewSnapshotFileRepository(dir string) *SnapshotFileRepository {
	return &SnapshotFileRepository{dir: dir}
}

// Load reads the last snapshot. A missing file yields an empty snapshot.
func (r *SnapshotFileRepository) Load(ctx context.Context) (ports.Snapshot, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return ports.Snapshot{}, nil
		}
		return ports.Snapshot{}, err
	}

	var s ports.Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return ports.Snapshot{}, err
	}
	return s, nil
}

// Save writes s to a temp file and renames it into place.
func (r *SnapshotFileRepository) Save(ctx context.Context, s ports.Snapshot) error {
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Path returns the full path to the snapshot file.
func (r *SnapshotFileRepository) Path() string {
	return filepath.Join(r.dir, snapshotFileName)
}
