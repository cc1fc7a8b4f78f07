// Package ggtk provides offscreen drawing surfaces for a toolkit with
// pluggable native rendering backends.
//
// # Overview
//
// A Surface wraps a native offscreen buffer allocated by a backend
// SurfaceHandler, binds a drawing Context to it on first use, and frees the
// buffer exactly once when closed. Some backends only allow their buffers to
// be freed on the UI thread; for those the Engine's resource.Manager posts
// the free to that thread.
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/ggtk"
//	    _ "github.com/gogpu/ggtk/backend/software"
//	)
//
//	engine, err := ggtk.NewEngineByName("software")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cache, err := engine.NewSurface(ggtk.Sz(400, 300), ggtk.Default(1))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
//	ctx, _ := cache.Context()
//	ctx.SetColor(color.RGBA{0, 0, 255, 255})
//	ctx.Rectangle(10, 10, 100, 100)
//	_ = ctx.Stroke()
//
// # Compatibility
//
// A new surface is compatible with exactly one source, which decides its
// pixel format and device scale:
//
//   - Default(scale): a default buffer at the given device scale
//   - CompatibleWithWidget(w): matches a widget's rendering context
//   - CompatibleWithSurface(s): matches another surface
//   - CompatibleWithContext(c): matches the surface a context draws into
//
// The new surface owns its own buffer; closing the source later does not
// affect it.
//
// # Threading
//
// Create surfaces and draw on the UI goroutine (see package uithread).
// Close is safe from any goroutine. Surfaces that are never closed are
// freed by a runtime cleanup and reported at slog.LevelWarn.
package ggtk
