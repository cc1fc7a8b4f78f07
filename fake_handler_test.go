package ggtk

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/resource"
)

// fakeResource is the native resource of fakeHandler.
type fakeResource struct {
	id     int
	width  float64
	height float64
	scale  float64
	mode   string
}

// fakeContext records drawing calls.
type fakeContext struct {
	target *fakeResource
	calls  []string
}

func (c *fakeContext) record(format string, args ...any) {
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *fakeContext) Save()                                   { c.record("save") }
func (c *fakeContext) Restore()                                { c.record("restore") }
func (c *fakeContext) Scale(sx, sy float64)                    { c.record("scale %v %v", sx, sy) }
func (c *fakeContext) SetLineWidth(w float64)                  { c.record("linewidth %v", w) }
func (c *fakeContext) SetColor(color.Color)                    { c.record("color") }
func (c *fakeContext) Rectangle(x, y, w, h float64)            { c.record("rect %v %v %v %v", x, y, w, h) }
func (c *fakeContext) Arc(x, y, r, a1, a2 float64)             { c.record("arc %v %v %v %v %v", x, y, r, a1, a2) }
func (c *fakeContext) Stroke() error                           { c.record("stroke"); return nil }
func (c *fakeContext) Fill() error                             { c.record("fill"); return nil }
func (c *fakeContext) DrawImage(image.Image, float64, float64) { c.record("image") }
func (c *fakeContext) DrawText(s string, x, y float64)         { c.record("text %s", s) }

func (c *fakeContext) DrawSurface(res backend.Resource, x, y float64) error {
	r, ok := res.(*fakeResource)
	if !ok {
		return backend.ErrIncompatible
	}
	c.record("surface %d", r.id)
	return nil
}

type fakeWidget struct {
	wb backend.WidgetBackend
}

func (w fakeWidget) Backend() backend.WidgetBackend { return w.wb }

type fakeWidgetBackend struct{ scale float64 }

func (w fakeWidgetBackend) ScaleFactor() float64           { return w.scale }
func (w fakeWidgetBackend) Format() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

var errExhausted = errors.New("fake: out of native memory")

// fakeHandler counts creations and disposals per resource.
type fakeHandler struct {
	ui bool
	// onDispose, when set, is called at the start of every Dispose.
	onDispose func(res *fakeResource)
	// beforeCreate, when set, is called at the start of every allocation.
	beforeCreate func()

	mu          sync.Mutex
	nextID      int
	created     []*fakeResource
	disposed    map[*fakeResource]int
	contexts    int
	failCreate  bool
	failContext bool
}

func newFakeHandler(ui bool) *fakeHandler {
	return &fakeHandler{ui: ui, disposed: make(map[*fakeResource]int)}
}

func (h *fakeHandler) alloc(w, ht, scale float64, mode string) (backend.Resource, error) {
	if h.beforeCreate != nil {
		h.beforeCreate()
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.failCreate {
		return nil, errExhausted
	}
	if !backend.ValidSize(w, ht) {
		return nil, backend.ErrInvalidSize
	}
	h.nextID++
	r := &fakeResource{id: h.nextID, width: w, height: ht, scale: scale, mode: mode}
	h.created = append(h.created, r)
	return r, nil
}

func (h *fakeHandler) CreateSurface(w, ht, scale float64) (backend.Resource, error) {
	return h.alloc(w, ht, scale, "default")
}

func (h *fakeHandler) CreateSurfaceCompatibleWithWidget(wb backend.WidgetBackend, w, ht float64) (backend.Resource, error) {
	return h.alloc(w, ht, wb.ScaleFactor(), "widget")
}

func (h *fakeHandler) CreateSurfaceCompatibleWithSurface(res backend.Resource, w, ht float64) (backend.Resource, error) {
	src, ok := res.(*fakeResource)
	if !ok {
		return nil, backend.ErrIncompatible
	}
	return h.alloc(w, ht, src.scale, "surface")
}

func (h *fakeHandler) CreateSurfaceCompatibleWithContext(cb backend.ContextBackend, w, ht float64) (backend.Resource, error) {
	c, ok := cb.(*fakeContext)
	if !ok {
		return nil, backend.ErrIncompatible
	}
	return h.alloc(w, ht, c.target.scale, "context")
}

func (h *fakeHandler) CreateContext(res backend.Resource) (backend.ContextBackend, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := res.(*fakeResource)
	if !ok {
		return nil, backend.ErrIncompatible
	}
	if h.failContext || h.disposed[r] > 0 {
		return nil, backend.ErrDisposed
	}
	h.contexts++
	return &fakeContext{target: r}, nil
}

func (h *fakeHandler) Dispose(res backend.Resource) {
	r := res.(*fakeResource)
	if h.onDispose != nil {
		h.onDispose(r)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.disposed[r]++
}

func (h *fakeHandler) DisposeHandleOnUIThread() bool { return h.ui }

func (h *fakeHandler) disposeCount(res backend.Resource) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.disposed[res.(*fakeResource)]
}

func (h *fakeHandler) createdCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.created)
}

// newTestEngine frees UI-thread resources inline unless opts pick a dispatcher.
func newTestEngine(t *testing.T, ui bool, opts ...EngineOption) *Engine {
	t.Helper()
	if ui {
		opts = append([]EngineOption{WithDispatcher(resource.Inline{})}, opts...)
	}
	e, err := NewEngine(newFakeHandler(ui), opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return e
}

func fakeOf(e *Engine) *fakeHandler { return e.Handler().(*fakeHandler) }
