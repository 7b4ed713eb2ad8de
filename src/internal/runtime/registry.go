package runtime

import (
	"fmt"
	"sync"
)

// Registry holds the runtimes rtvm knows how to manage
type Registry struct {
	mu       sync.RWMutex
	runtimes map[string]Runtime
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		runtimes: make(map[string]Runtime),
	}
}

// Register adds a runtime, failing if the name is already taken
func (r *Registry) Register(rt Runtime) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rt.Name()
	if _, exists := r.runtimes[name]; exists {
		return fmt.Errorf("runtime %q is already registered", name)
	}
	r.runtimes[name] = rt
	return nil
}

// Get returns the runtime registered under name
func (r *Registry) Get(name string) (Runtime, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rt, ok := r.runtimes[name]
	if !ok {
		return nil, fmt.Errorf("unknown runtime: %s", name)
	}
	return rt, nil
}

var globalRegistry = NewRegistry()

// Register adds a runtime to the global registry
func Register(rt Runtime) error {
	return globalRegistry.Register(rt)
}

// Get returns a runtime from the global registry
func Get(name string) (Runtime, error) {
	return globalRegistry.Get(name)
}
