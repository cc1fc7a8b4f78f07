package ggtk

import (
	"context"
	"errors"
	"math"
	"runtime"
	"sync"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/resource"
	"github.com/gogpu/ggtk/uithread"
)

func TestNewEngineNilHandler(t *testing.T) {
	if _, err := NewEngine(nil); !errors.Is(err, ErrNilHandler) {
		t.Errorf("NewEngine(nil) error = %v, want ErrNilHandler", err)
	}
}

func TestNewEngineRequiresDispatcher(t *testing.T) {
	tests := []struct {
		name    string
		ui      bool
		opts    []EngineOption
		wantErr error
	}{
		{name: "ui handler alone", ui: true, wantErr: ErrNoDispatcher},
		{name: "ui handler with dispatcher", ui: true, opts: []EngineOption{WithDispatcher(uithread.New())}},
		{name: "ui handler with manager", ui: true, opts: []EngineOption{WithManager(resource.NewManager(resource.Inline{}))}},
		{name: "ui handler freeing inline", ui: true, opts: []EngineOption{WithDispatcher(resource.Inline{})}},
		{name: "immediate handler alone", ui: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(newFakeHandler(tt.ui), tt.opts...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewEngine() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && e == nil {
				t.Fatal("NewEngine() returned nil engine")
			}
		})
	}
}

func TestNewEngineSharedManager(t *testing.T) {
	m := resource.NewManager(nil)
	e := newTestEngine(t, true, WithManager(m), WithDispatcher(uithread.New()))
	if e.Manager() != m {
		t.Error("WithManager should take precedence over WithDispatcher")
	}
}

func TestSurfaceSize(t *testing.T) {
	sizes := []Size{Sz(1, 1), Sz(100, 50), Sz(0.5, 2.25), Sz(4096, 16)}

	for _, size := range sizes {
		t.Run(size.String(), func(t *testing.T) {
			e := newTestEngine(t, false)
			s, err := e.NewSurface(size, Default(1))
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			defer s.Close()

			if s.Size() != size {
				t.Errorf("Size() = %v, want %v", s.Size(), size)
			}
			if s.Width() != size.Width || s.Height() != size.Height {
				t.Errorf("Width/Height = %v/%v, want %v/%v", s.Width(), s.Height(), size.Width, size.Height)
			}
			if s.Backend() == nil {
				t.Error("Backend() is nil on a live surface")
			}
			if s.ctx != nil {
				t.Error("context must not exist before first access")
			}
		})
	}
}

func TestNewSurfaceWH(t *testing.T) {
	e := newTestEngine(t, false)
	s, err := e.NewSurfaceWH(30, 40, nil)
	if err != nil {
		t.Fatalf("NewSurfaceWH() error = %v", err)
	}
	defer s.Close()
	if s.Size() != Sz(30, 40) {
		t.Errorf("Size() = %v, want 30x40", s.Size())
	}
	if got := s.Backend().(*fakeResource); got.mode != "default" || got.scale != 1 {
		t.Errorf("nil compat created %q at scale %v, want default at 1", got.mode, got.scale)
	}
}

func TestCompatibilityModes(t *testing.T) {
	e := newTestEngine(t, false)
	base, err := e.NewSurface(Sz(10, 10), Default(2))
	if err != nil {
		t.Fatalf("base surface: %v", err)
	}
	defer base.Close()
	baseCtx, err := base.Context()
	if err != nil {
		t.Fatalf("base context: %v", err)
	}

	tests := []struct {
		name      string
		compat    Compat
		wantMode  string
		wantScale float64
	}{
		{"default", Default(1.5), "default", 1.5},
		{"widget", CompatibleWithWidget(fakeWidget{fakeWidgetBackend{scale: 3}}), "widget", 3},
		{"surface", CompatibleWithSurface(base), "surface", 2},
		{"context", CompatibleWithContext(baseCtx), "context", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := e.NewSurface(Sz(200, 100), tt.compat)
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			defer s.Close()

			r := s.Backend().(*fakeResource)
			if r.mode != tt.wantMode {
				t.Errorf("mode = %q, want %q", r.mode, tt.wantMode)
			}
			if r.scale != tt.wantScale {
				t.Errorf("scale = %v, want %v", r.scale, tt.wantScale)
			}
			if s.Size() != Sz(200, 100) {
				t.Errorf("Size() = %v, want 200x100", s.Size())
			}
		})
	}
}

func TestNewSurfaceErrors(t *testing.T) {
	e := newTestEngine(t, true)

	closed, _ := e.NewSurface(Sz(5, 5), nil)
	closedCtx, _ := closed.Context()
	_ = closed.Close()

	tests := []struct {
		name   string
		size   Size
		compat Compat
		want   error
	}{
		{"zero width", Sz(0, 10), nil, backend.ErrInvalidSize},
		{"zero height", Sz(10, 0), nil, backend.ErrInvalidSize},
		{"negative", Sz(-1, -1), Default(1), backend.ErrInvalidSize},
		{"zero scale", Sz(10, 10), Default(0), backend.ErrInvalidSize},
		{"infinite width", Sz(math.Inf(1), 10), nil, backend.ErrInvalidSize},
		{"NaN height", Sz(10, math.NaN()), nil, backend.ErrInvalidSize},
		{"infinite scale", Sz(10, 10), Default(math.Inf(1)), backend.ErrInvalidSize},
		{"nil widget", Sz(10, 10), CompatibleWithWidget(nil), ErrNilSource},
		{"widget without backend", Sz(10, 10), CompatibleWithWidget(fakeWidget{}), backend.ErrIncompatible},
		{"nil surface", Sz(10, 10), CompatibleWithSurface(nil), ErrNilSource},
		{"disposed surface", Sz(10, 10), CompatibleWithSurface(closed), backend.ErrDisposed},
		{"nil context", Sz(10, 10), CompatibleWithContext(nil), ErrNilSource},
		{"context of disposed surface", Sz(10, 10), CompatibleWithContext(closedCtx), backend.ErrDisposed},
		{"foreign context", Sz(10, 10), CompatibleWithContext(NewContext(nil)), backend.ErrDisposed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := fakeOf(e).createdCount()
			s, err := e.NewSurface(tt.size, tt.compat)
			if err == nil {
				_ = s.Close()
				t.Fatal("NewSurface() succeeded, want error")
			}
			var be *BackendError
			if !errors.As(err, &be) {
				t.Fatalf("error type = %T, want *BackendError", err)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if e.Manager().Len() != 0 {
				t.Errorf("manager holds %d resources after failed construction", e.Manager().Len())
			}
			if got := fakeOf(e).createdCount(); got != before {
				t.Errorf("handler allocated %d resources on failure", got-before)
			}
		})
	}
}

func TestNewSurfaceBackendFailure(t *testing.T) {
	e := newTestEngine(t, true)
	fakeOf(e).failCreate = true

	_, err := e.NewSurface(Sz(10, 10), nil)
	if !errors.Is(err, errExhausted) {
		t.Fatalf("error = %v, want errExhausted", err)
	}
	if e.Manager().Len() != 0 {
		t.Errorf("manager Len() = %d, want 0", e.Manager().Len())
	}
}

func TestContextCached(t *testing.T) {
	e := newTestEngine(t, false)
	s, _ := e.NewSurface(Sz(10, 10), nil)
	defer s.Close()

	c1, err := s.Context()
	if err != nil {
		t.Fatalf("Context() error = %v", err)
	}
	c2, err := s.Context()
	if err != nil {
		t.Fatalf("second Context() error = %v", err)
	}
	if c1 != c2 {
		t.Error("Context() returned different instances")
	}
	if fakeOf(e).contexts != 1 {
		t.Errorf("handler created %d contexts, want 1", fakeOf(e).contexts)
	}
	if c1.Surface() != s {
		t.Error("Context().Surface() should be the owning surface")
	}
	if s.Size() != Sz(10, 10) {
		t.Error("Context() changed the size")
	}
}

func TestContextBackendFailure(t *testing.T) {
	e := newTestEngine(t, false)
	s, _ := e.NewSurface(Sz(10, 10), nil)
	defer s.Close()
	fakeOf(e).failContext = true

	_, err := s.Context()
	var be *BackendError
	if !errors.As(err, &be) {
		t.Fatalf("Context() error = %v, want *BackendError", err)
	}
	if !errors.Is(err, backend.ErrDisposed) {
		t.Errorf("Context() error = %v, want wrapped ErrDisposed", err)
	}
}

func TestContextAfterClose(t *testing.T) {
	e := newTestEngine(t, false)
	s, _ := e.NewSurface(Sz(10, 10), nil)
	_ = s.Close()

	_, err := s.Context()
	var ise *InvalidStateError
	if !errors.As(err, &ise) {
		t.Fatalf("Context() error = %v, want *InvalidStateError", err)
	}
	if !errors.Is(err, ErrSurfaceDisposed) {
		t.Error("InvalidStateError should wrap ErrSurfaceDisposed")
	}
}

func TestCloseImmediate(t *testing.T) {
	e := newTestEngine(t, false)
	s, err := e.NewSurface(Sz(100, 50), Default(1))
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if e.Manager().Len() != 0 {
		t.Error("immediate-dispose surfaces must not be registered with the manager")
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
		t.Fatalf("Dispose called %d times before Close returned, want 1", got)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
		t.Errorf("Dispose called %d times after double close, want 1", got)
	}
	if !s.Disposed() {
		t.Error("Disposed() = false after Close")
	}
}

func TestCloseDeferredToUIThread(t *testing.T) {
	loop := uithread.New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	runErr := make(chan error, 1)
	go func() { runErr <- loop.Run(ctx) }()

	h := newFakeHandler(true)
	disposed := make(chan bool, 4)
	h.onDispose = func(*fakeResource) { disposed <- loop.OnThread() }

	e, err := NewEngine(h, WithDispatcher(loop))
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	var s *Surface
	loop.Call(func() {
		s, err = e.NewSurface(Sz(64, 64), nil)
	})
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	if !e.Manager().Registered(s.Backend()) {
		t.Fatal("UI-thread surface must be registered with the manager")
	}

	// Close from this goroutine, which is not the loop thread.
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	_ = s.Close()

	select {
	case onThread := <-disposed:
		if (runtime.GOOS == "linux" || runtime.GOOS == "windows") && !onThread {
			t.Error("Dispose ran off the UI thread")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Dispose never ran on the UI loop")
	}

	loop.Call(func() {}) // flush anything else queued
	if got := h.disposeCount(s.Backend()); got != 1 {
		t.Errorf("Dispose called %d times, want 1", got)
	}
	if e.Manager().Len() != 0 {
		t.Errorf("manager Len() = %d, want 0", e.Manager().Len())
	}

	cancel()
	<-runErr
}

func TestCloseDeferredDoesNotBlock(t *testing.T) {
	// No loop is running: Close must still return.
	loop := uithread.New()
	e := newTestEngine(t, true, WithDispatcher(loop))

	s, err := e.NewSurface(Sz(8, 8), nil)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close blocked waiting for the UI thread")
	}
	if got := fakeOf(e).disposeCount(s.Backend()); got != 0 {
		t.Fatalf("Dispose ran %d times without the loop", got)
	}

	loop.Stop()
	if err := loop.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
		t.Errorf("Dispose called %d times after loop drained, want 1", got)
	}
}

func TestConcurrentClose(t *testing.T) {
	for _, ui := range []bool{false, true} {
		e := newTestEngine(t, ui)
		s, _ := e.NewSurface(Sz(10, 10), nil)

		var g errgroup.Group
		for i := 0; i < 16; i++ {
			g.Go(s.Close)
		}
		if err := g.Wait(); err != nil {
			t.Fatalf("Close() error = %v", err)
		}
		if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
			t.Errorf("ui=%v: Dispose called %d times, want 1", ui, got)
		}
	}
}

func TestSourceCloseWaitsForCompatibleCreate(t *testing.T) {
	for _, mode := range []string{"surface", "context"} {
		t.Run(mode, func(t *testing.T) {
			e := newTestEngine(t, false)
			h := fakeOf(e)
			src, _ := e.NewSurface(Sz(10, 10), nil)
			srcCtx, _ := src.Context()

			compat := CompatibleWithSurface(src)
			if mode == "context" {
				compat = CompatibleWithContext(srcCtx)
			}

			closed := make(chan struct{})
			var freedDuringCreate int
			h.beforeCreate = func() {
				go func() {
					_ = src.Close()
					close(closed)
				}()
				time.Sleep(20 * time.Millisecond)
				freedDuringCreate = h.disposeCount(src.Backend())
			}

			s, err := e.NewSurface(Sz(20, 20), compat)
			h.beforeCreate = nil
			if err != nil {
				t.Fatalf("NewSurface() error = %v", err)
			}
			defer s.Close()

			if freedDuringCreate != 0 {
				t.Error("source resource was freed while a compatible surface was being created")
			}
			<-closed
			if got := h.disposeCount(src.Backend()); got != 1 {
				t.Errorf("source disposed %d times, want 1", got)
			}
		})
	}
}

func TestIndependentOwnership(t *testing.T) {
	e := newTestEngine(t, false)
	orig, _ := e.NewSurface(Sz(100, 100), nil)
	derived, err := e.NewSurface(Sz(200, 200), CompatibleWithSurface(orig))
	if err != nil {
		t.Fatalf("derived surface: %v", err)
	}
	defer derived.Close()

	ctx, err := derived.Context()
	if err != nil {
		t.Fatalf("derived Context() error = %v", err)
	}

	_ = orig.Close()

	if derived.Disposed() {
		t.Error("closing the original disposed the derived surface")
	}
	if got := fakeOf(e).disposeCount(derived.Backend()); got != 0 {
		t.Errorf("derived resource disposed %d times", got)
	}
	if err := ctx.Stroke(); err != nil {
		t.Errorf("drawing on derived surface failed: %v", err)
	}
}

func TestContextInvalidatedByClose(t *testing.T) {
	e := newTestEngine(t, false)
	s, _ := e.NewSurface(Sz(10, 10), nil)
	ctx, _ := s.Context()
	fc := ctx.Backend().(*fakeContext)

	_ = s.Close()
	ctx.Rectangle(0, 0, 1, 1)
	if len(fc.calls) != 0 {
		t.Errorf("drawing after close reached the backend: %v", fc.calls)
	}
	for name, err := range map[string]error{
		"stroke": ctx.Stroke(),
		"fill":   ctx.Fill(),
	} {
		if !errors.Is(err, ErrSurfaceDisposed) {
			t.Errorf("%s error = %v, want ErrSurfaceDisposed", name, err)
		}
	}
}

func leakSurface(t *testing.T, e *Engine) backend.Resource {
	t.Helper()
	s, err := e.NewSurface(Sz(16, 16), nil)
	if err != nil {
		t.Fatalf("NewSurface() error = %v", err)
	}
	return s.Backend()
}

func TestLeakedSurfaceFreedOnce(t *testing.T) {
	for _, ui := range []bool{false, true} {
		e := newTestEngine(t, ui)
		res := leakSurface(t, e)

		deadline := time.Now().Add(5 * time.Second)
		for fakeOf(e).disposeCount(res) == 0 && time.Now().Before(deadline) {
			runtime.GC()
			time.Sleep(10 * time.Millisecond)
		}
		if got := fakeOf(e).disposeCount(res); got != 1 {
			t.Errorf("ui=%v: leaked resource disposed %d times, want 1", ui, got)
		}
		if e.Manager().Registered(res) {
			t.Errorf("ui=%v: leaked resource still registered", ui)
		}
	}
}

func TestEngineShutdown(t *testing.T) {
	e := newTestEngine(t, true)
	var kept []*Surface
	for i := 0; i < 3; i++ {
		s, _ := e.NewSurface(Sz(4, 4), nil)
		kept = append(kept, s)
	}
	_ = kept[0].Close()

	if n := e.Shutdown(); n != 2 {
		t.Errorf("Shutdown() = %d, want 2", n)
	}
	for i, s := range kept {
		if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
			t.Errorf("surface %d disposed %d times, want 1", i, got)
		}
	}

	// Closing after shutdown is harmless.
	var wg sync.WaitGroup
	for _, s := range kept {
		wg.Add(1)
		go func(s *Surface) {
			defer wg.Done()
			_ = s.Close()
		}(s)
	}
	wg.Wait()
	for i, s := range kept {
		if got := fakeOf(e).disposeCount(s.Backend()); got != 1 {
			t.Errorf("surface %d disposed %d times after close, want 1", i, got)
		}
	}
}
