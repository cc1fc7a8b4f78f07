// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software is the CPU surface handler. Every resource is a gg
// drawing context over an RGBA pixmap sized in device pixels and pre-scaled
// so callers draw in logical units.
//
// Resources have no thread affinity: Dispose may run on any goroutine and
// the handler reports DisposeHandleOnUIThread() == false.
//
// The handler registers itself as "software" on import:
//
//	import _ "github.com/gogpu/ggtk/backend/software"
package software
