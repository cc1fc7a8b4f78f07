package ggtk

import (
	"log/slog"

	"github.com/gogpu/ggtk/internal/logging"
)

// SetLogger configures the logger for ggtk and all its sub-packages.
// By default, ggtk produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use. Pass nil to restore the silent default.
//
// Log levels used by ggtk:
//   - [slog.LevelDebug]: surface lifecycle, context binding, deferred disposal
//   - [slog.LevelWarn]: leaked surfaces, leftover resources at shutdown
//   - [slog.LevelError]: thread-affine resources freed on the wrong thread
//
// Example:
//
//	ggtk.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by ggtk.
func Logger() *slog.Logger {
	return logging.Logger()
}
