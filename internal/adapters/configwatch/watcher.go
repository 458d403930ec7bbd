// Package configwatch reapplies runtime parameters when the config file
// changes on disk.
package configwatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/overdrive/internal/registry"
	"github.com/bft-labs/overdrive/pkg/log"
)

// DefaultDebounceDelay coalesces the burst of events editors produce on save.
const DefaultDebounceDelay = 100 * time.Millisecond

// DefaultBindings maps config file keys to registry params.
var DefaultBindings = map[string]string{
	"enable":     "override.enable",
	"timeout_ms": "override.timeoutMs",
}

// Applier receives reloaded values. *registry.Registry satisfies it.
type Applier interface {
	SetParam(key string, v uint32) error
}

// Config holds configuration options for the Watcher.
type Config struct {
	// Path is the TOML file to watch.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// Bindings maps file keys to registry keys. Default: DefaultBindings.
	Bindings map[string]string
}

// Watcher monitors one config file via fsnotify.
type Watcher struct {
	path          string
	debounceDelay time.Duration
	bindings      map[string]string
	applier       Applier
	logger        log.Logger

	mu       sync.Mutex
	debounce *time.Timer
}

// New creates a Watcher that applies changes through applier.
func New(cfg Config, applier Applier, logger log.Logger) *Watcher {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = DefaultDebounceDelay
	}
	if cfg.Bindings == nil {
		cfg.Bindings = DefaultBindings
	}
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &Watcher{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		bindings:      cfg.Bindings,
		applier:       applier,
		logger:        logger,
	}
}

// Run watches the file's directory until ctx is cancelled. Watching the
// directory keeps working across editors that replace the file on save.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.logger.Info("config watcher started", log.String("path", w.path))

	name := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			w.stopDebounce()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.debounceReload()

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", log.Err(err))
		}
	}
}

func (w *Watcher) debounceReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		if _, err := w.Reload(); err != nil {
			w.logger.Error("config reload failed", log.Err(err))
		}
	})
}

func (w *Watcher) stopDebounce() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounce != nil {
		w.debounce.Stop()
	}
}

// Reload reads the file and applies every bound key it contains. Keys absent
// from the file are left alone. It returns the registry keys applied.
func (w *Watcher) Reload() ([]string, error) {
	b, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var doc map[string]any
	if err := toml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	fileKeys := make([]string, 0, len(w.bindings))
	for k := range w.bindings {
		fileKeys = append(fileKeys, k)
	}
	sort.Strings(fileKeys)

	var applied []string
	var errs []error
	for _, fileKey := range fileKeys {
		raw, ok := doc[fileKey]
		if !ok {
			continue
		}
		key := w.bindings[fileKey]
		v, err := toUint32(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", fileKey, err))
			continue
		}
		if err := w.applier.SetParam(key, v); err != nil {
			errs = append(errs, err)
			continue
		}
		applied = append(applied, key)
		w.logger.Info("param reloaded", log.String("name", key), log.Uint("value", v))
	}
	return applied, errors.Join(errs...)
}

func toUint32(raw any) (uint32, error) {
	switch v := raw.(type) {
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	case int64:
		if v < 0 || v > int64(^uint32(0)) {
			return 0, fmt.Errorf("value %d out of range", v)
		}
		return uint32(v), nil
	case string:
		return registry.ParseValue(v)
	default:
		return 0, fmt.Errorf("unsupported value type %T", raw)
	}
}
