package ggtk

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/internal/logging"
)

// Surface is an offscreen drawing buffer with a lazily bound drawing context.
//
// A Surface exclusively owns one native resource from its engine's handler.
// Create it, draw through Context, and Close it when done:
//
//	s, err := engine.NewSurface(ggtk.Sz(200, 100), ggtk.Default(1))
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	ctx, err := s.Context()
//	...
//
// Construction and Context are meant for the UI goroutine. Close may be
// called from any goroutine: handlers with thread-affine resources have the
// free marshalled onto the UI thread by the engine's resource manager.
//
// A Surface that becomes unreachable without Close is freed by a runtime
// cleanup and logged as a leak.
type Surface struct {
	size      Size
	res       backend.Resource
	engine    *Engine
	uiDispose bool

	mu       sync.Mutex
	ctx      *Context
	disposed bool

	rel     *releaser
	cleanup runtime.Cleanup
}

// releaser frees one resource exactly once. It is shared between a Surface
// and its leak cleanup, so it must not point back at the Surface.
type releaser struct {
	done      atomic.Bool
	engine    *Engine
	res       backend.Resource
	uiDispose bool
	size      Size
}

func (r *releaser) free() bool {
	if !r.done.CompareAndSwap(false, true) {
		return false
	}
	if r.uiDispose {
		r.engine.manager.FreeResource(r.res)
	} else {
		r.engine.handler.Dispose(r.res)
	}
	return true
}

func freeLeaked(r *releaser) {
	if r.free() {
		logging.Logger().Warn("ggtk: surface leaked, freed by cleanup",
			"size", r.size.String(),
			"deferred", r.uiDispose)
	}
}

// NewSurface creates a surface of the given size, compatible with compat.
// A nil compat is Default(1).
//
// It fails with *BackendError when the size is not positive, when the
// compatibility source is nil, disposed or foreign to the handler, or when
// the handler cannot allocate the resource. A failed call leaves nothing
// registered.
func (e *Engine) NewSurface(size Size, compat Compat) (*Surface, error) {
	if compat == nil {
		compat = Default(1)
	}
	if size.Empty() {
		return nil, &BackendError{
			Op:  compat.op(),
			Err: fmt.Errorf("%w: %s", backend.ErrInvalidSize, size),
		}
	}

	res, err := compat.create(e.handler, size)
	if err != nil {
		return nil, &BackendError{Op: compat.op(), Err: err}
	}
	if res == nil {
		return nil, &BackendError{Op: compat.op(), Err: ErrNilResource}
	}
	return e.adopt(size, res, compat)
}

// NewSurfaceWH is NewSurface(Sz(width, height), compat).
func (e *Engine) NewSurfaceWH(width, height float64, compat Compat) (*Surface, error) {
	return e.NewSurface(Sz(width, height), compat)
}

// adopt takes ownership of a freshly created resource.
func (e *Engine) adopt(size Size, res backend.Resource, compat Compat) (*Surface, error) {
	ui := e.handler.DisposeHandleOnUIThread()
	if ui {
		if err := e.manager.RegisterResource(res, e.handler.Dispose); err != nil {
			// Construction runs on the UI thread, so freeing here is safe.
			e.handler.Dispose(res)
			return nil, &BackendError{Op: compat.op(), Err: err}
		}
	}

	rel := &releaser{engine: e, res: res, uiDispose: ui, size: size}
	s := &Surface{
		size:      size,
		res:       res,
		engine:    e,
		uiDispose: ui,
		rel:       rel,
	}
	s.cleanup = runtime.AddCleanup(s, freeLeaked, rel)

	logging.Logger().Debug("ggtk: surface created",
		"op", compat.op(),
		"size", size.String(),
		"deferred", ui)
	return s, nil
}

// Width returns the logical width.
func (s *Surface) Width() float64 { return s.size.Width }

// Height returns the logical height.
func (s *Surface) Height() float64 { return s.size.Height }

// Size returns the logical size.
func (s *Surface) Size() Size { return s.size }

// Engine returns the engine that created the surface.
func (s *Surface) Engine() *Engine { return s.engine }

// Backend returns the native resource. It stays owned by the surface.
func (s *Surface) Backend() backend.Resource { return s.res }

// Disposed reports whether Close was called.
func (s *Surface) Disposed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.disposed
}

// whileLive calls f with the native resource while holding the surface lock,
// so a concurrent Close waits for f and cannot free the resource under it.
func (s *Surface) whileLive(f func(backend.Resource) (backend.Resource, error)) (backend.Resource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, fmt.Errorf("%w: source surface", backend.ErrDisposed)
	}
	return f(s.res)
}

// Context returns the drawing context bound to the surface, creating it on
// first use. Later calls return the same *Context.
//
// It fails with *InvalidStateError after Close and with *BackendError when
// the handler cannot bind a context.
func (s *Surface) Context() (*Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return nil, &InvalidStateError{Op: "context"}
	}
	if s.ctx != nil {
		return s.ctx, nil
	}

	cb, err := s.engine.handler.CreateContext(s.res)
	if err != nil {
		return nil, &BackendError{Op: "create context", Err: err}
	}
	s.ctx = &Context{cb: cb, owner: s}
	logging.Logger().Debug("ggtk: context bound", "size", s.size.String())
	return s.ctx, nil
}

// Close disposes the surface. Handlers that free on the UI thread get the
// free posted there; others free before Close returns.
//
// Close is idempotent and always returns nil.
func (s *Surface) Close() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return nil
	}
	s.disposed = true
	ctx := s.ctx
	s.mu.Unlock()

	s.cleanup.Stop()
	if ctx != nil {
		ctx.closed.Store(true)
	}
	s.rel.free()

	logging.Logger().Debug("ggtk: surface closed",
		"size", s.size.String(),
		"deferred", s.uiDispose)
	return nil
}
