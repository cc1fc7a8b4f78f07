package ggtk

import (
	"image"
	"image/color"
	"sync/atomic"

	"github.com/gogpu/ggtk/backend"
)

// Context is a drawing context. Contexts obtained from Surface.Context are
// owned by their surface and stop drawing once it is closed; contexts
// wrapping a widget's paint context come from NewContext.
//
// Angles are in degrees. Context is not safe for concurrent use.
type Context struct {
	cb     backend.ContextBackend
	owner  *Surface
	closed atomic.Bool
}

// NewContext wraps a native context, typically the one a widget receives
// while painting.
func NewContext(cb backend.ContextBackend) *Context {
	return &Context{cb: cb}
}

// Backend returns the native context.
func (c *Context) Backend() backend.ContextBackend { return c.cb }

// Surface returns the owning surface, or nil for widget contexts.
func (c *Context) Surface() *Surface { return c.owner }

func (c *Context) invalid() bool {
	return c.cb == nil || c.closed.Load()
}

// Save pushes the current transform and clip.
func (c *Context) Save() {
	if !c.invalid() {
		c.cb.Save()
	}
}

// Restore pops the state pushed by the matching Save.
func (c *Context) Restore() {
	if !c.invalid() {
		c.cb.Restore()
	}
}

// Scale scales the user space.
func (c *Context) Scale(sx, sy float64) {
	if !c.invalid() {
		c.cb.Scale(sx, sy)
	}
}

// SetLineWidth sets the stroke width in user units.
func (c *Context) SetLineWidth(width float64) {
	if !c.invalid() {
		c.cb.SetLineWidth(width)
	}
}

// SetColor sets the source color.
func (c *Context) SetColor(col color.Color) {
	if !c.invalid() {
		c.cb.SetColor(col)
	}
}

// Rectangle adds a rectangle to the current path.
func (c *Context) Rectangle(x, y, width, height float64) {
	if !c.invalid() {
		c.cb.Rectangle(x, y, width, height)
	}
}

// Arc adds a circular arc centred on (xc, yc) from angle1 to angle2 degrees.
func (c *Context) Arc(xc, yc, radius, angle1, angle2 float64) {
	if !c.invalid() {
		c.cb.Arc(xc, yc, radius, angle1, angle2)
	}
}

// Stroke strokes and clears the current path.
func (c *Context) Stroke() error {
	if c.invalid() {
		return &InvalidStateError{Op: "stroke"}
	}
	if err := c.cb.Stroke(); err != nil {
		return &BackendError{Op: "stroke", Err: err}
	}
	return nil
}

// Fill fills and clears the current path.
func (c *Context) Fill() error {
	if c.invalid() {
		return &InvalidStateError{Op: "fill"}
	}
	if err := c.cb.Fill(); err != nil {
		return &BackendError{Op: "fill", Err: err}
	}
	return nil
}

// DrawSurface draws src with its top-left corner at (x, y).
func (c *Context) DrawSurface(src *Surface, x, y float64) error {
	if c.invalid() {
		return &InvalidStateError{Op: "draw surface"}
	}
	if src == nil {
		return &BackendError{Op: "draw surface", Err: ErrNilSource}
	}
	if src.Disposed() {
		return &InvalidStateError{Op: "draw surface"}
	}
	if err := c.cb.DrawSurface(src.res, x, y); err != nil {
		return &BackendError{Op: "draw surface", Err: err}
	}
	return nil
}

// DrawImage draws img with its top-left corner at (x, y).
func (c *Context) DrawImage(img image.Image, x, y float64) {
	if !c.invalid() && img != nil {
		c.cb.DrawImage(img, x, y)
	}
}

// DrawText draws s with its baseline starting at (x, y).
func (c *Context) DrawText(s string, x, y float64) {
	if !c.invalid() {
		c.cb.DrawText(s, x, y)
	}
}
