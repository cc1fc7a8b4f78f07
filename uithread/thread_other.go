// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !linux && !windows

package uithread

// No portable thread id here. Returning 0 keeps OnThread false.
func threadID() int64 { return 0 }
