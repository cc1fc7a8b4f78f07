// Command surfacedemo draws a background scene through a cached offscreen
// surface and times direct scene draws, once per compatibility mode.
//
// Usage:
//
//	surfacedemo -mode context -draws 1000 -output demo.png
//	surfacedemo -mode all -config demo.toml
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"golang.org/x/sync/errgroup"

	"github.com/gogpu/ggtk"
	"github.com/gogpu/ggtk/backend/gpu"
	"github.com/gogpu/ggtk/uithread"
)

func main() {
	var (
		configPath = flag.String("config", "", "optional TOML config file")
		width      = flag.Float64("width", 0, "canvas width")
		height     = flag.Float64("height", 0, "canvas height")
		scale      = flag.Float64("scale", 0, "device scale factor")
		mode       = flag.String("mode", "", "cache mode: default, widget, surface, context or all")
		draws      = flag.Int("draws", 0, "number of timed scene draws")
		backendArg = flag.String("backend", "", "surface backend: software or gpu (default: best available)")
		output     = flag.String("output", "", "output PNG")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			log.Fatal(err)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "width":
			cfg.Width = *width
		case "height":
			cfg.Height = *height
		case "scale":
			cfg.Scale = *scale
		case "mode":
			cfg.Mode = *mode
		case "draws":
			cfg.DrawCalls = *draws
		case "backend":
			cfg.Backend = *backendArg
		case "output":
			cfg.Output = *output
		case "v":
			cfg.Verbose = *verbose
		}
	})
	if err := cfg.validate(); err != nil {
		log.Fatal(err)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	ggtk.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	loop := uithread.New()
	errc := make(chan error, 1)
	go func() {
		defer loop.Stop()
		errc <- run(ctx, loop, cfg, logger)
	}()

	// The loop owns the main goroutine's thread, like a toolkit main loop.
	if err := loop.Run(ctx); err != nil {
		logger.Warn("interrupted", "err", err)
		return
	}
	if err := <-errc; err != nil {
		log.Fatal(err)
	}
}

func newEngine(loop *uithread.Loop, cfg config) (*ggtk.Engine, error) {
	opts := []ggtk.EngineOption{ggtk.WithDispatcher(loop)}
	switch cfg.Backend {
	case "":
		return ggtk.NewDefaultEngine(opts...)
	case gpu.Name:
		// No window system here: the handler draws in software and would
		// present through a device provider if one were attached.
		return ggtk.NewEngine(gpu.New(nil, gpu.WithThreadCheck(loop.OnThread)), opts...)
	default:
		return ggtk.NewEngineByName(cfg.Backend, opts...)
	}
}

// run drives every configured mode, each from its own goroutine, with all
// drawing marshalled onto the loop.
func run(ctx context.Context, loop *uithread.Loop, cfg config, logger *slog.Logger) error {
	e, err := newEngine(loop, cfg)
	if err != nil {
		return err
	}
	defer func() {
		loop.Call(func() {
			if n := e.Shutdown(); n > 0 {
				logger.Warn("surfaces still alive at exit", "count", n)
			}
		})
	}()

	modes, _ := cfg.modes()
	results := make([]result, len(modes))

	g, gctx := errgroup.WithContext(ctx)
	for i, mode := range modes {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var err error
			loop.Call(func() {
				results[i], err = runMode(e, cfg, mode, outputFor(cfg.Output, mode, len(modes) > 1))
			})
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range results {
		logger.Info("surface test finished",
			"mode", r.Mode,
			"draw_calls", r.DrawCalls,
			"cache_ms", r.CacheTime.Milliseconds(),
			"draw_ms", r.DrawTime.Milliseconds(),
			"output", r.Output)
	}
	return nil
}
