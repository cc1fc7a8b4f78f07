// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg/text"
	"github.com/gogpu/gputypes"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/internal/logging"
)

// Name is the registry name of the software handler.
const Name = "software"

// Allocation limits. Larger surfaces fail with backend.ErrTooLarge.
const (
	// MaxDimension is the largest pixmap side in device pixels.
	MaxDimension = 16384

	// DefaultMaxBytes is the default pixmap memory budget per surface.
	DefaultMaxBytes = 256 << 20
)

func init() {
	backend.Register(Name, backend.PrioritySoftware, func() (backend.SurfaceHandler, error) {
		return New(), nil
	})
}

// Option configures a Handler.
type Option func(*Handler)

// WithFormat sets the pixel format of default surfaces.
func WithFormat(f gputypes.TextureFormat) Option {
	return func(h *Handler) {
		h.format = f
	}
}

// WithMaxBytes sets the pixmap memory budget per surface.
func WithMaxBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBytes = n
		}
	}
}

// WithFontSize sets the size in points of the face used by DrawText.
func WithFontSize(points float64) Option {
	return func(h *Handler) {
		if points > 0 {
			h.fontSize = points
		}
	}
}

// Handler allocates gg-backed surfaces.
//
// Handler is safe for concurrent use.
type Handler struct {
	format   gputypes.TextureFormat
	fontSize float64
	maxBytes int64

	faceOnce sync.Once
	face     text.Face

	live atomic.Int64
}

var _ backend.SurfaceHandler = (*Handler)(nil)

// New creates a software handler.
func New(opts ...Option) *Handler {
	h := &Handler{
		format:   gputypes.TextureFormatRGBA8Unorm,
		fontSize: 12,
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Live returns the number of surfaces created and not yet disposed.
func (h *Handler) Live() int {
	return int(h.live.Load())
}

// CreateSurface allocates a surface at the given device scale.
func (h *Handler) CreateSurface(width, height, scaleFactor float64) (backend.Resource, error) {
	return h.NewSurface(width, height, scaleFactor, h.format)
}

// CreateSurfaceCompatibleWithWidget matches the widget's scale and format.
func (h *Handler) CreateSurfaceCompatibleWithWidget(widget backend.WidgetBackend, width, height float64) (backend.Resource, error) {
	if widget == nil {
		return nil, fmt.Errorf("%w: nil widget backend", backend.ErrIncompatible)
	}
	return h.NewSurface(width, height, widget.ScaleFactor(), widget.Format())
}

// CreateSurfaceCompatibleWithSurface matches another surface's scale and format.
func (h *Handler) CreateSurfaceCompatibleWithSurface(surface backend.Resource, width, height float64) (backend.Resource, error) {
	src, err := Unwrap(surface)
	if err != nil {
		return nil, err
	}
	if src.Disposed() {
		return nil, fmt.Errorf("%w: source surface", backend.ErrDisposed)
	}
	return h.NewSurface(width, height, src.scale, src.format)
}

// CreateSurfaceCompatibleWithContext matches the surface ctx draws into.
func (h *Handler) CreateSurfaceCompatibleWithContext(ctx backend.ContextBackend, width, height float64) (backend.Resource, error) {
	c, ok := ctx.(*Context)
	if !ok || c == nil {
		return nil, fmt.Errorf("%w: context %T", backend.ErrIncompatible, ctx)
	}
	if c.target.Disposed() {
		return nil, fmt.Errorf("%w: context target", backend.ErrDisposed)
	}
	return h.NewSurface(width, height, c.target.scale, c.target.format)
}

// CreateContext binds a drawing context to surface.
func (h *Handler) CreateContext(surface backend.Resource) (backend.ContextBackend, error) {
	s, err := Unwrap(surface)
	if err != nil {
		return nil, err
	}
	if s.Disposed() {
		return nil, fmt.Errorf("%w: create context", backend.ErrDisposed)
	}
	return &Context{target: s, dc: s.dc, face: h.fontFace()}, nil
}

// Dispose releases the surface's pixmap. Disposing twice is a no-op.
func (h *Handler) Dispose(surface backend.Resource) {
	s, err := Unwrap(surface)
	if err != nil {
		logging.Logger().Warn("software: dispose of foreign resource", "type", fmt.Sprintf("%T", surface))
		return
	}
	if s.release() {
		h.live.Add(-1)
	}
}

// DisposeHandleOnUIThread returns false: pixmaps may be freed anywhere.
func (h *Handler) DisposeHandleOnUIThread() bool { return false }

// NewSurface allocates a surface with an explicit scale and format.
// Other handlers build on it.
func (h *Handler) NewSurface(width, height, scale float64, format gputypes.TextureFormat) (*Surface, error) {
	if !backend.ValidSize(width, height) {
		return nil, fmt.Errorf("%w: %vx%v", backend.ErrInvalidSize, width, height)
	}
	if !backend.ValidScale(scale) {
		return nil, fmt.Errorf("%w: scale factor %v", backend.ErrInvalidSize, scale)
	}
	pw, ph := math.Ceil(width*scale), math.Ceil(height*scale)
	if pw > MaxDimension || ph > MaxDimension {
		return nil, fmt.Errorf("%w: %vx%v pixels, limit %d per side", backend.ErrTooLarge, pw, ph, MaxDimension)
	}
	if bytes := int64(pw) * int64(ph) * 4; bytes > h.maxBytes {
		return nil, fmt.Errorf("%w: %d bytes, budget %d", backend.ErrTooLarge, bytes, h.maxBytes)
	}
	s := newSurface(width, height, scale, format)
	h.live.Add(1)
	logging.Logger().Debug("software: surface allocated",
		"width", width, "height", height, "scale", scale,
		"pixels", s.PixelSize())
	return s, nil
}

func (h *Handler) fontFace() text.Face {
	h.faceOnce.Do(func() {
		src, err := text.NewFontSource(goregular.TTF)
		if err != nil {
			logging.Logger().Warn("software: font unavailable, DrawText disabled", "err", err)
			return
		}
		h.face = src.Face(h.fontSize)
	})
	return h.face
}
