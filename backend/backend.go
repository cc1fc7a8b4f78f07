package backend

import (
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gputypes"
)

// Common backend errors. Handlers wrap them with detail using %w.
var (
	// ErrInvalidSize is returned when a width, height or scale factor is not positive.
	ErrInvalidSize = errors.New("backend: invalid surface size")

	// ErrDisposed is returned when a resource was already disposed.
	ErrDisposed = errors.New("backend: resource disposed")

	// ErrIncompatible is returned when a compatibility source does not
	// belong to the handler (foreign resource, nil widget backend, ...).
	ErrIncompatible = errors.New("backend: incompatible source")

	// ErrTooLarge is returned when a surface would exceed the handler's
	// pixel or memory limits.
	ErrTooLarge = errors.New("backend: surface too large")

	// ErrNotAvailable is returned when a requested handler is not registered
	// or cannot be constructed.
	ErrNotAvailable = errors.New("backend: not available")
)

// Resource is an opaque native offscreen buffer. Only the handler that
// created it knows its concrete type.
type Resource = any

// WidgetBackend is the native side of a widget that surfaces can be made
// compatible with.
type WidgetBackend interface {
	// ScaleFactor is the device scale of the widget's rendering context.
	ScaleFactor() float64

	// Format is the pixel format of the widget's rendering context.
	Format() gputypes.TextureFormat
}

// ContextBackend is the native drawing context bound to one resource.
//
// Arc angles are in degrees, measured clockwise from the positive x axis.
type ContextBackend interface {
	Save()
	Restore()
	Scale(sx, sy float64)
	SetLineWidth(width float64)
	SetColor(c color.Color)
	Rectangle(x, y, width, height float64)
	Arc(xc, yc, radius, angle1, angle2 float64)
	Stroke() error
	Fill() error

	// DrawSurface copies a resource of the same handler at (x, y), scaled
	// to the resource's logical size.
	DrawSurface(surface Resource, x, y float64) error

	// DrawImage draws img with its top-left corner at (x, y).
	DrawImage(img image.Image, x, y float64)

	// DrawText draws s with its baseline starting at (x, y).
	DrawText(s string, x, y float64)
}

// SurfaceHandler allocates, binds and frees native offscreen buffers.
//
// Sizes are logical units; handlers apply the scale factor themselves.
type SurfaceHandler interface {
	// CreateSurface allocates a default resource at the given device scale.
	CreateSurface(width, height, scaleFactor float64) (Resource, error)

	// CreateSurfaceCompatibleWithWidget allocates a resource matching the
	// widget's format and scale.
	CreateSurfaceCompatibleWithWidget(widget WidgetBackend, width, height float64) (Resource, error)

	// CreateSurfaceCompatibleWithSurface allocates a resource matching another resource.
	CreateSurfaceCompatibleWithSurface(surface Resource, width, height float64) (Resource, error)

	// CreateSurfaceCompatibleWithContext allocates a resource matching the
	// resource a context draws into.
	CreateSurfaceCompatibleWithContext(ctx ContextBackend, width, height float64) (Resource, error)

	// CreateContext binds a new drawing context to surface.
	CreateContext(surface Resource) (ContextBackend, error)

	// Dispose frees surface. Handlers that report DisposeHandleOnUIThread
	// must only be called here from the UI thread.
	Dispose(surface Resource)

	// DisposeHandleOnUIThread reports whether Dispose is thread-affine.
	DisposeHandleOnUIThread() bool
}

// ValidSize reports whether width and height are both positive and finite.
func ValidSize(width, height float64) bool {
	return width > 0 && height > 0 && !math.IsInf(width, 1) && !math.IsInf(height, 1)
}

// ValidScale reports whether a scale factor is positive and finite.
func ValidScale(scale float64) bool {
	return scale > 0 && !math.IsInf(scale, 1)
}

// PixelSize converts a logical size to device pixels, rounding up.
func PixelSize(width, height, scale float64) image.Point {
	return image.Pt(ceilInt(width*scale), ceilInt(height*scale))
}

func ceilInt(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}
