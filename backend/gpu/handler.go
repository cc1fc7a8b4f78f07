// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/backend/software"
	"github.com/gogpu/ggtk/internal/logging"
)

// Name is the registry name of the GPU handler.
const Name = "gpu"

// Errors returned by Present.
var (
	// ErrNilDrawer is returned when Present gets a nil texture drawer.
	ErrNilDrawer = errors.New("gpu: nil texture drawer")

	// ErrNoTextureCreator is returned when the drawer cannot create textures.
	ErrNoTextureCreator = errors.New("gpu: drawer has no texture creator")

	// ErrInvalidTexture is returned when a created texture cannot be drawn.
	ErrInvalidTexture = errors.New("gpu: texture does not implement gpucontext.Texture")
)

// textureDestroyer matches the Destroy method of gogpu textures.
type textureDestroyer interface {
	Destroy()
}

// Option configures a Handler.
type Option func(*Handler)

// WithThreadCheck installs a predicate that reports whether the caller is on
// the UI thread. Dispose logs an error when it is called elsewhere.
// uithread.Loop.OnThread fits.
func WithThreadCheck(onUIThread func() bool) Option {
	return func(h *Handler) {
		h.onUIThread = onUIThread
	}
}

// WithSoftwareOptions configures the software handler used for drawing.
func WithSoftwareOptions(opts ...software.Option) Option {
	return func(h *Handler) {
		h.swOpts = append(h.swOpts, opts...)
	}
}

// Handler allocates gg surfaces that present through GPU textures.
type Handler struct {
	sw         *software.Handler
	swOpts     []software.Option
	provider   gpucontext.DeviceProvider
	onUIThread func() bool

	live          atomic.Int64
	offThreadFree atomic.Int64
}

var _ backend.SurfaceHandler = (*Handler)(nil)

// New creates a GPU handler. The provider, when not nil, is shared with the
// gg accelerator so CPU-side drawing can use the same device.
func New(provider gpucontext.DeviceProvider, opts ...Option) *Handler {
	h := &Handler{provider: provider}
	for _, opt := range opts {
		opt(h)
	}
	h.swOpts = append([]software.Option{software.WithFormat(gputypes.TextureFormatBGRA8Unorm)}, h.swOpts...)
	h.sw = software.New(h.swOpts...)

	if provider != nil {
		// Non-fatal: the accelerator may not support device sharing.
		if err := gg.SetAcceleratorDeviceProvider(provider); err != nil {
			logging.Logger().Debug("gpu: accelerator did not accept device provider", "err", err)
		}
	}
	return h
}

// Register registers a GPU handler factory bound to provider.
func Register(provider gpucontext.DeviceProvider, opts ...Option) {
	backend.Register(Name, backend.PriorityGPU, func() (backend.SurfaceHandler, error) {
		return New(provider, opts...), nil
	})
}

// Provider returns the device provider, which may be nil.
func (h *Handler) Provider() gpucontext.DeviceProvider { return h.provider }

// Live returns the number of surfaces created and not yet disposed.
func (h *Handler) Live() int { return int(h.live.Load()) }

// OffThreadDisposals returns how many Dispose calls failed the thread check.
func (h *Handler) OffThreadDisposals() int { return int(h.offThreadFree.Load()) }

func (h *Handler) CreateSurface(width, height, scaleFactor float64) (backend.Resource, error) {
	return h.wrap(h.sw.CreateSurface(width, height, scaleFactor))
}

func (h *Handler) CreateSurfaceCompatibleWithWidget(widget backend.WidgetBackend, width, height float64) (backend.Resource, error) {
	return h.wrap(h.sw.CreateSurfaceCompatibleWithWidget(widget, width, height))
}

func (h *Handler) CreateSurfaceCompatibleWithSurface(surface backend.Resource, width, height float64) (backend.Resource, error) {
	if _, ok := surface.(*Surface); !ok {
		return nil, fmt.Errorf("%w: resource %T", backend.ErrIncompatible, surface)
	}
	return h.wrap(h.sw.CreateSurfaceCompatibleWithSurface(surface, width, height))
}

func (h *Handler) CreateSurfaceCompatibleWithContext(ctx backend.ContextBackend, width, height float64) (backend.Resource, error) {
	return h.wrap(h.sw.CreateSurfaceCompatibleWithContext(ctx, width, height))
}

func (h *Handler) CreateContext(surface backend.Resource) (backend.ContextBackend, error) {
	if _, ok := surface.(*Surface); !ok {
		return nil, fmt.Errorf("%w: resource %T", backend.ErrIncompatible, surface)
	}
	return h.sw.CreateContext(surface)
}

// Dispose destroys the surface's texture and pixmap. It must run on the UI
// thread. Disposing twice is a no-op.
func (h *Handler) Dispose(surface backend.Resource) {
	s, ok := surface.(*Surface)
	if !ok {
		logging.Logger().Warn("gpu: dispose of foreign resource", "type", fmt.Sprintf("%T", surface))
		return
	}
	if h.onUIThread != nil && !h.onUIThread() {
		h.offThreadFree.Add(1)
		logging.Logger().Error("gpu: texture disposed off the UI thread")
	}
	if s.destroy() {
		h.sw.Dispose(s.sw)
		h.live.Add(-1)
	}
}

// DisposeHandleOnUIThread returns true: textures belong to the UI thread.
func (h *Handler) DisposeHandleOnUIThread() bool { return true }

func (h *Handler) wrap(res backend.Resource, err error) (backend.Resource, error) {
	if err != nil {
		return nil, err
	}
	sw, err := software.Unwrap(res)
	if err != nil {
		return nil, err
	}
	h.live.Add(1)
	return &Surface{sw: sw}, nil
}
