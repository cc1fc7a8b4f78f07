// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build linux

package uithread

import "golang.org/x/sys/unix"

func threadID() int64 { return int64(unix.Gettid()) }
