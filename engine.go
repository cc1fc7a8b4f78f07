package ggtk

import (
	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/resource"
)

// Engine binds a backend surface handler to the resource manager that frees
// its thread-affine resources. Surfaces are created through an Engine.
//
// Engine is safe for concurrent use; the surfaces it creates follow the
// threading rules of Surface.
type Engine struct {
	handler backend.SurfaceHandler
	manager *resource.Manager
}

// NewEngine creates an engine for handler.
//
// A handler whose DisposeHandleOnUIThread is true needs WithDispatcher or
// WithManager; without one NewEngine fails with ErrNoDispatcher. Pass
// resource.Inline{} to free in place on purpose.
func NewEngine(handler backend.SurfaceHandler, opts ...EngineOption) (*Engine, error) {
	if handler == nil {
		return nil, ErrNilHandler
	}
	var o engineOptions
	for _, opt := range opts {
		opt(&o)
	}
	m := o.manager
	if m == nil {
		if o.dispatcher == nil && handler.DisposeHandleOnUIThread() {
			return nil, ErrNoDispatcher
		}
		m = resource.NewManager(o.dispatcher)
	}
	return &Engine{handler: handler, manager: m}, nil
}

// NewEngineByName creates an engine for the handler registered under name.
func NewEngineByName(name string, opts ...EngineOption) (*Engine, error) {
	h, err := backend.Get(name)
	if err != nil {
		return nil, err
	}
	return NewEngine(h, opts...)
}

// NewDefaultEngine creates an engine for the highest-priority registered handler.
func NewDefaultEngine(opts ...EngineOption) (*Engine, error) {
	h, err := backend.Default()
	if err != nil {
		return nil, err
	}
	return NewEngine(h, opts...)
}

// Handler returns the engine's surface handler.
func (e *Engine) Handler() backend.SurfaceHandler { return e.handler }

// Manager returns the engine's resource manager.
func (e *Engine) Manager() *resource.Manager { return e.manager }

// Shutdown frees every resource still registered with the manager and
// returns how many there were. Each is logged as a leak.
func (e *Engine) Shutdown() int {
	return e.manager.FreeAll()
}
