package main

import (
	"fmt"
	"image/color"
	"path/filepath"
	"strings"
	"time"

	"github.com/gogpu/ggtk"
	"github.com/gogpu/ggtk/backend"
	"github.com/gogpu/ggtk/backend/gpu"
	"github.com/gogpu/ggtk/backend/software"
)

var (
	blue  = color.RGBA{B: 255, A: 255}
	green = color.RGBA{G: 128, A: 255}
)

// drawScene draws a fairly complicated background: nested rectangles and
// circles, scaled so that the width drives both axes.
func drawScene(ctx *ggtk.Context, width, height float64) error {
	const iterations = 15

	ctx.Save()
	defer ctx.Restore()

	ctx.Scale(1, height/width)
	centre := width / 2
	ctx.SetLineWidth(1) // scaled too

	for n := 1; n <= iterations; n++ {
		ctx.SetColor(blue)
		wn := width * float64(n) / iterations
		ctx.Rectangle(0, 0, wn, wn)
		if err := ctx.Stroke(); err != nil {
			return err
		}

		ctx.SetColor(green)
		ctx.Arc(centre, centre, wn/2, 0, 360)
		if err := ctx.Stroke(); err != nil {
			return err
		}
	}
	return nil
}

// timedDraw calls draw n times and returns the elapsed time.
func timedDraw(n int, draw func() error) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < n; i++ {
		if err := draw(); err != nil {
			return time.Since(start), err
		}
	}
	return time.Since(start), nil
}

// canvas is the demo widget: a window-sized surface standing in for the
// toolkit's paint target.
type canvas struct {
	widget gpu.Widget
}

func (c canvas) Backend() backend.WidgetBackend { return c.widget }

// result is what one cache mode measured.
type result struct {
	Mode      string
	DrawCalls int
	CacheTime time.Duration
	DrawTime  time.Duration
	Output    string
}

func cacheCompat(mode string, cv canvas, window *ggtk.Surface, wctx *ggtk.Context, scale float64) ggtk.Compat {
	switch mode {
	case modeWidget:
		return ggtk.CompatibleWithWidget(cv)
	case modeSurface:
		return ggtk.CompatibleWithSurface(window)
	case modeContext:
		return ggtk.CompatibleWithContext(wctx)
	}
	return ggtk.Default(scale)
}

// runMode paints the canvas once through a cache surface created in mode,
// then times direct scene draws. It must run on the UI thread.
func runMode(e *ggtk.Engine, cfg config, mode, output string) (result, error) {
	res := result{Mode: mode, DrawCalls: cfg.DrawCalls, Output: output}
	size := ggtk.Sz(cfg.Width, cfg.Height)
	cv := canvas{widget: gpu.Widget{Scale: cfg.Scale}}

	window, err := e.NewSurface(size, ggtk.CompatibleWithWidget(cv))
	if err != nil {
		return res, err
	}
	defer window.Close()
	wctx, err := window.Context()
	if err != nil {
		return res, err
	}

	start := time.Now()
	cache, err := e.NewSurface(size, cacheCompat(mode, cv, window, wctx, cfg.Scale))
	if err != nil {
		return res, err
	}
	defer cache.Close()
	cctx, err := cache.Context()
	if err != nil {
		return res, err
	}
	if err := drawScene(cctx, cfg.Width, cfg.Height); err != nil {
		return res, err
	}
	if err := wctx.DrawSurface(cache, 0, 0); err != nil {
		return res, err
	}
	res.CacheTime = time.Since(start)

	res.DrawTime, err = timedDraw(cfg.DrawCalls, func() error {
		return drawScene(wctx, cfg.Width, cfg.Height)
	})
	if err != nil {
		return res, err
	}
	wctx.DrawText(fmt.Sprintf("%s: %d draw calls", mode, cfg.DrawCalls), 8, cfg.Height-8)

	if output == "" {
		return res, nil
	}
	sw, err := software.Unwrap(window.Backend())
	if err != nil {
		return res, err
	}
	return res, sw.SavePNG(output)
}

// outputFor names the PNG of one mode. With several modes the mode is
// appended to the base name.
func outputFor(output, mode string, several bool) string {
	if output == "" || !several {
		return output
	}
	ext := filepath.Ext(output)
	return strings.TrimSuffix(output, ext) + "-" + mode + ext
}
