// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpu

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/ggtk/backend"
)

// Widget is the native side of a GPU-presented widget: the device it renders
// with, its surface format and its device scale.
type Widget struct {
	Provider    gpucontext.DeviceProvider
	PixelFormat gputypes.TextureFormat
	Scale       float64
}

var _ backend.WidgetBackend = Widget{}

// ScaleFactor returns the widget's device scale, defaulting to 1.
func (w Widget) ScaleFactor() float64 {
	if w.Scale <= 0 {
		return 1
	}
	return w.Scale
}

// Format returns the widget's surface format, defaulting to BGRA8Unorm.
func (w Widget) Format() gputypes.TextureFormat {
	if w.PixelFormat == gputypes.TextureFormatUndefined {
		return gputypes.TextureFormatBGRA8Unorm
	}
	return w.PixelFormat
}
