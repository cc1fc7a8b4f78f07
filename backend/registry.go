package backend

import (
	"fmt"
	"sort"
	"sync"
)

// HandlerFactory creates a handler instance.
type HandlerFactory func() (SurfaceHandler, error)

// Standard priorities. Higher is preferred by Default.
const (
	PriorityGPU      = 100
	PrioritySoftware = 10
)

type entry struct {
	priority int
	factory  HandlerFactory
}

// registry holds registered handlers.
var (
	registryMu sync.RWMutex
	handlers   = make(map[string]entry)
)

// Register registers a handler factory with the given name and priority.
// This is typically called from init() functions in backend packages.
// If a handler with the same name is already registered, it is replaced.
func Register(name string, priority int, factory HandlerFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	handlers[name] = entry{priority: priority, factory: factory}
}

// Unregister removes a handler from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(handlers, name)
}

// Available returns registered handler names, highest priority first.
// Names with equal priority are sorted alphabetically.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return sortedNames()
}

// IsRegistered checks if a handler with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := handlers[name]
	return ok
}

// Get constructs the handler registered under name.
func Get(name string) (SurfaceHandler, error) {
	registryMu.RLock()
	e, ok := handlers[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q not registered", ErrNotAvailable, name)
	}
	h, err := e.factory()
	if err != nil {
		return nil, fmt.Errorf("backend: create %q: %w", name, err)
	}
	if h == nil {
		return nil, fmt.Errorf("%w: %q returned no handler", ErrNotAvailable, name)
	}
	return h, nil
}

// Default constructs the highest-priority handler whose factory succeeds.
func Default() (SurfaceHandler, error) {
	registryMu.RLock()
	names := sortedNames()
	registryMu.RUnlock()

	var lastErr error
	for _, name := range names {
		h, err := Get(name)
		if err == nil {
			return h, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNotAvailable
}

// sortedNames must be called with registryMu held.
func sortedNames() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		pi, pj := handlers[names[i]].priority, handlers[names[j]].priority
		if pi != pj {
			return pi > pj
		}
		return names[i] < names[j]
	})
	return names
}
