// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package resource

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/gogpu/ggtk/internal/logging"
)

// Errors returned by RegisterResource.
var (
	// ErrNilResource is returned when registering a nil resource.
	ErrNilResource = errors.New("resource: nil resource")

	// ErrNilDispose is returned when registering a nil dispose callback.
	ErrNilDispose = errors.New("resource: nil dispose callback")

	// ErrAlreadyRegistered is returned when a resource is registered twice.
	ErrAlreadyRegistered = errors.New("resource: already registered")

	// ErrNotComparable is returned for handles that cannot be map keys.
	ErrNotComparable = errors.New("resource: handle is not comparable")
)

// DisposeFunc frees a native resource. It receives the registered handle.
type DisposeFunc func(res any)

// Dispatcher runs functions on the thread that owns the native resources.
type Dispatcher interface {
	// Post schedules f to run on the dispatcher's thread. It must not block.
	Post(f func())

	// OnThread reports whether the caller is running on the dispatcher's thread.
	OnThread() bool
}

// Inline is a Dispatcher that runs every function immediately on the
// calling goroutine. It suits backends without thread affinity and tests.
type Inline struct{}

// Post runs f immediately.
func (Inline) Post(f func()) { f() }

// OnThread always returns true.
func (Inline) OnThread() bool { return true }

// Option configures a Manager.
type Option func(*Manager)

// WithName sets the name used in log records.
func WithName(name string) Option {
	return func(m *Manager) {
		m.name = name
	}
}

// Manager pairs native resources with dispose callbacks and frees them on
// the dispatcher's thread.
//
// Manager is safe for concurrent use.
type Manager struct {
	name       string
	dispatcher Dispatcher

	mu      sync.Mutex
	entries map[any]DisposeFunc
}

// NewManager creates a manager that frees resources through d.
// A nil dispatcher runs callbacks inline.
func NewManager(d Dispatcher, opts ...Option) *Manager {
	if d == nil {
		d = Inline{}
	}
	m := &Manager{
		name:       "default",
		dispatcher: d,
		entries:    make(map[any]DisposeFunc),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RegisterResource records dispose as the callback that frees res.
// Callers register each resource at most once; a second registration of the
// same handle fails with ErrAlreadyRegistered and leaves the first in place.
func (m *Manager) RegisterResource(res any, dispose DisposeFunc) error {
	if res == nil {
		return ErrNilResource
	}
	if dispose == nil {
		return ErrNilDispose
	}
	if !reflect.TypeOf(res).Comparable() {
		return fmt.Errorf("%w: %T", ErrNotComparable, res)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[res]; ok {
		return fmt.Errorf("%w: %T", ErrAlreadyRegistered, res)
	}
	m.entries[res] = dispose
	return nil
}

// FreeResource removes res and runs its dispose callback on the dispatcher's
// thread: inline if the caller is already there, posted otherwise. It never
// waits for a posted callback.
//
// It reports whether a callback was scheduled. Unknown handles are ignored.
func (m *Manager) FreeResource(res any) bool {
	if res == nil || !reflect.TypeOf(res).Comparable() {
		return false
	}

	m.mu.Lock()
	dispose, ok := m.entries[res]
	if ok {
		delete(m.entries, res)
	}
	m.mu.Unlock()

	if !ok {
		return false
	}
	m.run(res, dispose)
	return true
}

// Registered reports whether res is waiting to be freed.
func (m *Manager) Registered(res any) bool {
	if res == nil || !reflect.TypeOf(res).Comparable() {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entries[res]
	return ok
}

// Len returns the number of registered resources.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// FreeAll frees every outstanding resource and returns how many there were.
// Each one is logged as a leak: anything still registered at shutdown was
// never closed by its owner.
func (m *Manager) FreeAll() int {
	m.mu.Lock()
	pending := m.entries
	m.entries = make(map[any]DisposeFunc)
	m.mu.Unlock()

	log := logging.Logger()
	for res, dispose := range pending {
		log.Warn("resource: freeing leaked resource",
			"manager", m.name,
			"type", fmt.Sprintf("%T", res))
		m.run(res, dispose)
	}
	return len(pending)
}

func (m *Manager) run(res any, dispose DisposeFunc) {
	if m.dispatcher.OnThread() {
		dispose(res)
		return
	}
	logging.Logger().Debug("resource: deferring dispose to owner thread",
		"manager", m.name,
		"type", fmt.Sprintf("%T", res))
	m.dispatcher.Post(func() { dispose(res) })
}
