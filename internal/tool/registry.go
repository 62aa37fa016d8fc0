package tool

import (
	"sync"

	"github.com/wagiedev/wstools-go/internal/errors"
)

// Registry maps tool names to descriptors.
//
// Tools are registered during startup; Freeze ends that phase and from then
// on the registry is read-only. Lookups are safe for concurrent callers.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Descriptor
	order  []string
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]*Descriptor, 16),
	}
}

// Register adds a descriptor under its name.
//
// A second registration under the same name fails with a DuplicateToolError;
// registrations never overwrite. Registering after Freeze fails with
// ErrRegistryFrozen.
func (r *Registry) Register(d *Descriptor) error {
	if d == nil || d.name == "" {
		return errors.ErrEmptyToolName
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return errors.ErrRegistryFrozen
	}

	if _, exists := r.tools[d.name]; exists {
		return &errors.DuplicateToolError{Name: d.name}
	}

	r.tools[d.name] = d
	r.order = append(r.order, d.name)

	return nil
}

// RegisterFunc declares and registers a tool in one step.
func (r *Registry) RegisterFunc(name, description string, params []Param, handler Handler) error {
	d, err := New(name, description, params, handler)
	if err != nil {
		return err
	}

	return r.Register(d)
}

// Lookup returns the descriptor registered under name, or an UnknownToolError.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	r.mu.RLock()
	d, exists := r.tools[name]
	r.mu.RUnlock()

	if !exists {
		return nil, &errors.UnknownToolError{Name: name}
	}

	return d, nil
}

// Freeze ends the registration phase. It is idempotent.
func (r *Registry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frozen = true
}

// Frozen reports whether Freeze has been called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.frozen
}

// List returns all descriptors in registration order.
func (r *Registry) List() []*Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Descriptor, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}

	return out
}

// Names returns all tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
