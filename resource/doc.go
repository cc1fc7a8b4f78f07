// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package resource tracks native resources whose disposal must run on a
// specific thread.
//
// Some rendering backends only allow a native buffer to be destroyed on the
// thread that owns the rendering context, usually the UI thread. A Manager
// records a dispose callback per resource at registration time and, when the
// resource is freed, runs that callback through a Dispatcher: inline when the
// caller is already on the dispatcher's thread, otherwise posted to it.
//
//	m := resource.NewManager(loop)
//	_ = m.RegisterResource(tex, func(r any) { r.(*Texture).Destroy() })
//	...
//	m.FreeResource(tex) // safe from any goroutine, any number of times
//
// Every registered resource is freed at most once. Freeing an unknown or
// already freed resource is a no-op, which makes redundant disposal safe.
//
// Managers are independent values; tests construct isolated ones.
package resource
