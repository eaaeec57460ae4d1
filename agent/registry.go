package agent

import (
	"errors"
	"fmt"
	"regexp"
	"sync"
)

var (
	// ErrNotFound is returned when no entrypoint is registered for a key.
	ErrNotFound = errors.New("entrypoint not found")
	// ErrDuplicateKey is returned when registering a key twice.
	// Re-registration is rejected rather than allowed to shadow: a
	// duplicate key is almost always a wiring mistake.
	ErrDuplicateKey = errors.New("entrypoint key already registered")
)

// Keys must be URL-path-safe since they appear verbatim in routes.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Registry holds the entrypoints an agent exposes, in registration
// order. Add may be called while concurrent reads are in flight;
// snapshots returned by List are copies and never reflect later
// registrations.
type Registry struct {
	mu    sync.RWMutex
	order []string
	defs  map[string]*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Add registers a definition. The key must be non-empty, URL-path-safe
// and not yet registered.
func (r *Registry) Add(def *Definition) error {
	if def == nil {
		return errors.New("nil entrypoint definition")
	}
	if !keyPattern.MatchString(def.Key) {
		return fmt.Errorf("entrypoint key %q is not URL-path-safe", def.Key)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[def.Key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateKey, def.Key)
	}
	r.defs[def.Key] = def
	r.order = append(r.order, def.Key)
	return nil
}

// Get returns the definition for a key, or ErrNotFound.
func (r *Registry) Get(key string) (*Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return def, nil
}

// List returns a snapshot of all definitions in registration order.
// The returned slice is owned by the caller.
func (r *Registry) List() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snapshot := make([]*Definition, 0, len(r.order))
	for _, key := range r.order {
		snapshot = append(snapshot, r.defs[key])
	}
	return snapshot
}

// Len returns the number of registered entrypoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
