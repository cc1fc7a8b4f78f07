// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"image"
	"io"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/internal/logging"
)

// Surface is the native resource of the software handler.
type Surface struct {
	dc       *gg.Context
	width    float64
	height   float64
	scale    float64
	format   gputypes.TextureFormat
	disposed atomic.Bool
}

// Backed is implemented by resources that draw through a software surface.
// Handlers layered on top of this one implement it on their own resources.
type Backed interface {
	SoftwareSurface() *Surface
}

// Unwrap returns the software surface behind a resource.
func Unwrap(res backend.Resource) (*Surface, error) {
	b, ok := res.(Backed)
	if !ok || b == nil {
		return nil, fmt.Errorf("%w: resource %T", backend.ErrIncompatible, res)
	}
	s := b.SoftwareSurface()
	if s == nil {
		return nil, fmt.Errorf("%w: resource %T", backend.ErrIncompatible, res)
	}
	return s, nil
}

func newSurface(width, height, scale float64, format gputypes.TextureFormat) *Surface {
	px := backend.PixelSize(width, height, scale)
	dc := gg.NewContext(px.X, px.Y)
	dc.Scale(scale, scale)
	return &Surface{
		dc:     dc,
		width:  width,
		height: height,
		scale:  scale,
		format: format,
	}
}

// SoftwareSurface implements Backed.
func (s *Surface) SoftwareSurface() *Surface { return s }

// Width returns the logical width.
func (s *Surface) Width() float64 { return s.width }

// Height returns the logical height.
func (s *Surface) Height() float64 { return s.height }

// Scale returns the device scale factor.
func (s *Surface) Scale() float64 { return s.scale }

// Format returns the pixel format.
func (s *Surface) Format() gputypes.TextureFormat { return s.format }

// PixelSize returns the size of the backing pixmap.
func (s *Surface) PixelSize() image.Point {
	return image.Pt(s.dc.Width(), s.dc.Height())
}

// Disposed reports whether the surface was disposed.
func (s *Surface) Disposed() bool { return s.disposed.Load() }

// Image returns a copy of the surface pixels, or nil once disposed.
func (s *Surface) Image() image.Image {
	if s.Disposed() {
		return nil
	}
	return s.dc.Image()
}

// Pixels returns the premultiplied RGBA bytes of the backing pixmap.
// The slice aliases the pixmap and must not be retained past Dispose.
func (s *Surface) Pixels() []byte {
	if s.Disposed() {
		return nil
	}
	return s.dc.ResizeTarget().Data()
}

// SavePNG writes the surface to a PNG file.
func (s *Surface) SavePNG(path string) error {
	if s.Disposed() {
		return fmt.Errorf("%w: save png", backend.ErrDisposed)
	}
	return s.dc.SavePNG(path)
}

// release marks the surface disposed and frees the context.
// It reports whether this call did the work.
func (s *Surface) release() bool {
	if !s.disposed.CompareAndSwap(false, true) {
		return false
	}
	closeLogged(s.dc, s.PixelSize())
	return true
}

// closeLogged closes c and logs a failure at Debug.
func closeLogged(c io.Closer, pixels image.Point) {
	if err := c.Close(); err != nil {
		logging.Logger().Debug("software: pixmap close failed", "pixels", pixels, "err", err)
	}
}
