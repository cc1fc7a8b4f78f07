// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpu is a surface handler that renders with gg on the CPU and
// presents through a GPU texture.
//
// Each surface lazily creates its texture the first time it is presented to
// a gpucontext.TextureDrawer and re-uploads pixels on later presents. GPU
// textures may only be destroyed on the thread that owns the device, so the
// handler reports DisposeHandleOnUIThread() == true and ggtk routes its
// disposal through a resource.Manager.
//
//	h, err := gpu.New(app.GPUContextProvider())
//	engine := ggtk.NewEngine(h, ggtk.WithDispatcher(loop))
//
// The handler is not registered on import because it needs a device
// provider; call Register once the provider exists.
package gpu
