package ggtk

import (
	"errors"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	// ErrSurfaceDisposed is wrapped by every InvalidStateError.
	ErrSurfaceDisposed = errors.New("ggtk: surface disposed")

	// ErrNilHandler is returned when an engine is created without a handler.
	ErrNilHandler = errors.New("ggtk: nil surface handler")

	// ErrNoDispatcher is returned when a handler that frees on the UI thread
	// is given neither a dispatcher nor a manager.
	ErrNoDispatcher = errors.New("ggtk: handler frees on the UI thread but no dispatcher was given")

	// ErrNilSource is wrapped by BackendError when a compatibility source is nil.
	ErrNilSource = errors.New("ggtk: nil compatibility source")

	// ErrNilResource is wrapped by BackendError when a handler returns no resource.
	ErrNilResource = errors.New("ggtk: handler returned nil resource")
)

// BackendError reports that the native backend could not allocate or adapt
// a drawing resource: bad size, an incompatible or disposed compatibility
// source, or exhausted native resources. The cause is available via Unwrap.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return "ggtk: " + e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// InvalidStateError reports an operation on a disposed surface or on a
// context whose surface was disposed.
type InvalidStateError struct {
	Op string
}

func (e *InvalidStateError) Error() string {
	return "ggtk: " + e.Op + ": surface disposed"
}

func (e *InvalidStateError) Unwrap() error { return ErrSurfaceDisposed }
