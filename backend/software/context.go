// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/gogpu/ggtk/backend"
)

// Context is the drawing context bound to a software Surface.
// Like gg.Context it is not safe for concurrent use.
type Context struct {
	target *Surface
	dc     *gg.Context
	face   text.Face
}

var _ backend.ContextBackend = (*Context)(nil)

// Target returns the surface the context draws into.
func (c *Context) Target() *Surface { return c.target }

func (c *Context) Save()    { c.dc.Push() }
func (c *Context) Restore() { c.dc.Pop() }

func (c *Context) Scale(sx, sy float64) { c.dc.Scale(sx, sy) }

func (c *Context) SetLineWidth(width float64) { c.dc.SetLineWidth(width) }

func (c *Context) SetColor(col color.Color) { c.dc.SetColor(col) }

func (c *Context) Rectangle(x, y, width, height float64) {
	c.dc.DrawRectangle(x, y, width, height)
}

// Arc adds a circular arc. Angles are in degrees.
func (c *Context) Arc(xc, yc, radius, angle1, angle2 float64) {
	c.dc.DrawArc(xc, yc, radius, radians(angle1), radians(angle2))
}

func (c *Context) Stroke() error {
	if c.target.Disposed() {
		return fmt.Errorf("%w: stroke", backend.ErrDisposed)
	}
	return c.dc.Stroke()
}

func (c *Context) Fill() error {
	if c.target.Disposed() {
		return fmt.Errorf("%w: fill", backend.ErrDisposed)
	}
	return c.dc.Fill()
}

// DrawSurface blits another software-backed surface at its logical size.
func (c *Context) DrawSurface(surface backend.Resource, x, y float64) error {
	src, err := Unwrap(surface)
	if err != nil {
		return err
	}
	if src.Disposed() || c.target.Disposed() {
		return fmt.Errorf("%w: draw surface", backend.ErrDisposed)
	}
	c.dc.DrawImageEx(gg.ImageBufFromImage(src.dc.Image()), gg.DrawImageOptions{
		X:             x,
		Y:             y,
		DstWidth:      src.width,
		DstHeight:     src.height,
		Interpolation: gg.InterpBilinear,
		Opacity:       1.0,
		BlendMode:     gg.BlendNormal,
	})
	return nil
}

func (c *Context) DrawImage(img image.Image, x, y float64) {
	if img == nil {
		return
	}
	c.dc.DrawImage(gg.ImageBufFromImage(img), x, y)
}

// DrawText draws s at (x, y) in user space. Without a font it does nothing.
func (c *Context) DrawText(s string, x, y float64) {
	if c.face == nil {
		return
	}
	c.dc.SetFont(c.face)
	// gg draws text in device space.
	dx, dy := c.dc.TransformPoint(x, y)
	c.dc.DrawString(s, dx, dy)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
