// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"fmt"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/backend/software"
)

// Surface is the native resource of the GPU handler: a software surface
// plus the texture it is presented through.
//
// Surface is used from the UI thread only.
type Surface struct {
	sw        *software.Surface
	texture   any // lazily created (*gogpu.Texture)
	destroyed bool
}

// SoftwareSurface implements software.Backed.
func (s *Surface) SoftwareSurface() *software.Surface { return s.sw }

// Texture returns the current texture, or nil before the first Present.
func (s *Surface) Texture() any { return s.texture }

// Present uploads the surface pixels and draws them at (x, y).
// The texture is created on the first call and updated afterwards.
func (s *Surface) Present(dc gpucontext.TextureDrawer, x, y float32) error {
	if s.destroyed || s.sw.Disposed() {
		return fmt.Errorf("%w: present", backend.ErrDisposed)
	}
	if dc == nil {
		return ErrNilDrawer
	}

	px := s.sw.PixelSize()
	data := s.sw.Pixels()

	if s.texture == nil {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrNoTextureCreator
		}
		tex, err := creator.NewTextureFromRGBA(px.X, px.Y, data)
		if err != nil {
			return fmt.Errorf("gpu: NewTextureFromRGBA failed: %w", err)
		}
		// gg pixmaps hold premultiplied alpha.
		if pt, ok := tex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}
		s.texture = tex
	} else if updater, ok := s.texture.(gpucontext.TextureUpdater); ok {
		if err := updater.UpdateData(data); err != nil {
			return fmt.Errorf("gpu: texture update failed: %w", err)
		}
	}

	gpuTex, ok := s.texture.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return dc.DrawTexture(gpuTex, x, y)
}

// destroy releases the texture and reports whether this call did the work.
func (s *Surface) destroy() bool {
	if s.destroyed {
		return false
	}
	s.destroyed = true
	if d, ok := s.texture.(textureDestroyer); ok {
		d.Destroy()
	}
	s.texture = nil
	return true
}
