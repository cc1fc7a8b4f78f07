package ggtk

import (
	"fmt"

	"github.com/gogpu/ggtk/backend"
)

// Widget is a toolkit widget whose native rendering context a surface can
// be made compatible with.
type Widget interface {
	// Backend returns the widget's native side, or nil if it has none.
	Backend() backend.WidgetBackend
}

// Compat selects what a new surface is compatible with. It is one of
// DefaultCompat, WidgetCompat, SurfaceCompat or ContextCompat.
type Compat interface {
	create(h backend.SurfaceHandler, size Size) (backend.Resource, error)
	op() string
}

// DefaultCompat asks for a default surface at a device scale.
type DefaultCompat struct {
	ScaleFactor float64
}

// WidgetCompat asks for a surface matching a widget's format and scale.
type WidgetCompat struct {
	Widget Widget
}

// SurfaceCompat asks for a surface matching another surface.
type SurfaceCompat struct {
	Surface *Surface
}

// ContextCompat asks for a surface matching the surface a context draws into.
type ContextCompat struct {
	Context *Context
}

// Default returns a DefaultCompat with the given scale factor.
func Default(scaleFactor float64) Compat { return DefaultCompat{ScaleFactor: scaleFactor} }

// CompatibleWithWidget returns a WidgetCompat for w.
func CompatibleWithWidget(w Widget) Compat { return WidgetCompat{Widget: w} }

// CompatibleWithSurface returns a SurfaceCompat for s.
func CompatibleWithSurface(s *Surface) Compat { return SurfaceCompat{Surface: s} }

// CompatibleWithContext returns a ContextCompat for c.
func CompatibleWithContext(c *Context) Compat { return ContextCompat{Context: c} }

func (c DefaultCompat) op() string { return "create surface" }

func (c DefaultCompat) create(h backend.SurfaceHandler, size Size) (backend.Resource, error) {
	if !backend.ValidScale(c.ScaleFactor) {
		return nil, fmt.Errorf("%w: scale factor %v", backend.ErrInvalidSize, c.ScaleFactor)
	}
	return h.CreateSurface(size.Width, size.Height, c.ScaleFactor)
}

func (c WidgetCompat) op() string { return "create widget-compatible surface" }

func (c WidgetCompat) create(h backend.SurfaceHandler, size Size) (backend.Resource, error) {
	if c.Widget == nil {
		return nil, ErrNilSource
	}
	wb := c.Widget.Backend()
	if wb == nil {
		return nil, fmt.Errorf("%w: widget has no backend", backend.ErrIncompatible)
	}
	return h.CreateSurfaceCompatibleWithWidget(wb, size.Width, size.Height)
}

func (c SurfaceCompat) op() string { return "create surface-compatible surface" }

func (c SurfaceCompat) create(h backend.SurfaceHandler, size Size) (backend.Resource, error) {
	if c.Surface == nil {
		return nil, ErrNilSource
	}
	return c.Surface.whileLive(func(res backend.Resource) (backend.Resource, error) {
		return h.CreateSurfaceCompatibleWithSurface(res, size.Width, size.Height)
	})
}

func (c ContextCompat) op() string { return "create context-compatible surface" }

func (c ContextCompat) create(h backend.SurfaceHandler, size Size) (backend.Resource, error) {
	if c.Context == nil {
		return nil, ErrNilSource
	}
	if c.Context.invalid() {
		return nil, fmt.Errorf("%w: source context", backend.ErrDisposed)
	}
	create := func(backend.Resource) (backend.Resource, error) {
		return h.CreateSurfaceCompatibleWithContext(c.Context.cb, size.Width, size.Height)
	}
	if c.Context.owner != nil {
		return c.Context.owner.whileLive(create)
	}
	return create(nil)
}
