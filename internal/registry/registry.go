// Package registry holds named, typed accessors for runtime parameters and
// telemetry variables.
//
// Components register getters (and setters for params) once at startup; the
// HTTP API, config watcher, status snapshots and Prometheus collector then
// read and write values by their "group.name" key.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bft-labs/overdrive/internal/ports"
)

// Registry errors.
var (
	ErrUnknownName = errors.New("registry: unknown name")
	ErrReadOnly    = errors.New("registry: read-only value")
	ErrOutOfRange  = errors.New("registry: value out of range")
	ErrDuplicate   = errors.New("registry: duplicate name")
)

// Kind distinguishes writable params from read-only log variables.
type Kind int

const (
	KindParam Kind = iota
	KindLog
)

func (k Kind) String() string {
	if k == KindParam {
		return "param"
	}
	return "log"
}

type entry struct {
	group string
	name  string
	kind  Kind
	typ   ports.ValueType
	get   func() uint32
	set   func(uint32)
}

// Value is a read-out of one registered entry.
type Value struct {
	Group string `json:"group"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value uint32 `json:"value"`
}

// Key returns the "group.name" form.
func (v Value) Key() string {
	return v.Group + "." + v.Name
}

// Registry implements ports.Registry. Registration is expected at startup;
// lookups are safe from any goroutine.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// AddParam registers a writable value. It panics on a duplicate key, which is
// a wiring bug.
func (r *Registry) AddParam(group, name string, typ ports.ValueType, get func() uint32, set func(uint32)) {
	r.add(&entry{group: group, name: name, kind: KindParam, typ: typ, get: get, set: set})
}

// AddLog registers a read-only telemetry value.
func (r *Registry) AddLog(group, name string, typ ports.ValueType, get func() uint32) {
	r.add(&entry{group: group, name: name, kind: KindLog, typ: typ, get: get})
}

func (r *Registry) add(e *entry) {
	key := e.group + "." + e.name
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[key]; ok {
		panic(fmt.Errorf("%w: %s", ErrDuplicate, key))
	}
	r.entries[key] = e
}

func (r *Registry) lookup(key string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownName, key)
	}
	return e, nil
}

// Get reads any registered value by key.
func (r *Registry) Get(key string) (uint32, error) {
	e, err := r.lookup(key)
	if err != nil {
		return 0, err
	}
	return e.get(), nil
}

// SetParam writes a param after checking it fits the declared width.
func (r *Registry) SetParam(key string, v uint32) error {
	e, err := r.lookup(key)
	if err != nil {
		return err
	}
	if e.kind != KindParam {
		return fmt.Errorf("%w: %s", ErrReadOnly, key)
	}
	if v > e.typ.Max() {
		return fmt.Errorf("%w: %s=%d exceeds %s", ErrOutOfRange, key, v, e.typ)
	}
	e.set(v)
	return nil
}

// SetParamString parses s as an unsigned decimal (or 0x-prefixed hex) value
// and writes it. "true" and "false" are accepted as 1 and 0.
func (r *Registry) SetParamString(key, s string) error {
	v, err := ParseValue(s)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return r.SetParam(key, v)
}

// ParseValue parses the textual forms accepted by SetParamString.
func ParseValue(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "true", "on":
		return 1, nil
	case "false", "off":
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("parse value %q: %w", s, err)
	}
	return uint32(v), nil
}

// Params returns all params sorted by key.
func (r *Registry) Params() []Value {
	return r.values(KindParam)
}

// Logs returns all log variables sorted by key.
func (r *Registry) Logs() []Value {
	return r.values(KindLog)
}

func (r *Registry) values(kind Kind) []Value {
	r.mu.RLock()
	out := make([]Value, 0, len(r.entries))
	for _, e := range r.entries {
		if e.kind != kind {
			continue
		}
		out = append(out, Value{Group: e.group, Name: e.name, Type: e.typ.String(), Value: e.get()})
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// Snapshot returns every value keyed by "group.name".
func (r *Registry) Snapshot() (params, logs map[string]uint32) {
	params = make(map[string]uint32)
	logs = make(map[string]uint32)
	for _, v := range r.Params() {
		params[v.Key()] = v.Value
	}
	for _, v := range r.Logs() {
		logs[v.Key()] = v.Value
	}
	return params, logs
}
