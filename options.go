package ggtk

import "github.com/gogpu/ggtk/resource"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Software surfaces, no UI thread needed
//	e, _ := ggtk.NewEngineByName("software")
//
//	// GPU surfaces whose textures are freed on the UI loop
//	e, _ := ggtk.NewEngine(gpuHandler, ggtk.WithDispatcher(loop))
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	manager    *resource.Manager
	dispatcher resource.Dispatcher
}

// WithManager shares an existing resource manager. It takes precedence
// over WithDispatcher.
func WithManager(m *resource.Manager) EngineOption {
	return func(o *engineOptions) {
		o.manager = m
	}
}

// WithDispatcher sets the dispatcher of the engine's own resource manager.
// Deferred disposals run through it. It is required for handlers that free
// on the UI thread.
func WithDispatcher(d resource.Dispatcher) EngineOption {
	return func(o *engineOptions) {
		o.dispatcher = d
	}
}
