// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package uithread runs functions on a single OS thread.
//
// A Loop is the "UI thread" of the toolkit: Run locks its goroutine to the
// current OS thread and executes posted functions one at a time, in order.
// Other goroutines hand work to it with Post (fire-and-forget) or Call
// (post and wait).
//
//	loop := uithread.New()
//	go func() {
//	    loop.Call(func() { /* create surfaces, draw */ })
//	    loop.Stop()
//	}()
//	_ = loop.Run(ctx) // usually from main
//
// Loop implements resource.Dispatcher.
package uithread

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/gogpu/ggtk/internal/logging"
)

// ErrAlreadyRunning is returned when Run is called on a loop that is running.
var ErrAlreadyRunning = errors.New("uithread: loop already running")

// Loop executes posted functions on one locked OS thread.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool

	running atomic.Bool
	tid     atomic.Int64
}

// New creates a loop. Nothing runs until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Run locks the calling goroutine to its OS thread and executes posted
// functions until ctx is cancelled or Stop is called. Functions still queued
// at that point are executed before Run returns.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer l.running.Store(false)

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	l.tid.Store(threadID())
	defer l.tid.Store(0)

	logging.Logger().Debug("uithread: loop started")
	defer logging.Logger().Debug("uithread: loop stopped")

	for {
		l.drain()
		select {
		case <-ctx.Done():
			l.drain()
			return ctx.Err()
		case <-l.done:
			l.drain()
			return nil
		case <-l.wake:
		}
	}
}

// Stop makes Run return after draining the queue. Stop is idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.closed {
		l.closed = true
		close(l.done)
	}
}

// Post queues f for execution on the loop thread. It never blocks.
// Functions posted after Run returns wait for the next Run.
func (l *Loop) Post(f func()) {
	if f == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs f on the loop thread and waits for it to return.
// Called from the loop thread itself, f runs immediately. On platforms where
// OnThread is always false, calling Call from the loop deadlocks.
func (l *Loop) Call(f func()) {
	if l.OnThread() {
		f()
		return
	}
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		f()
	})
	<-done
}

// OnThread reports whether the caller is running on the loop's OS thread.
// On platforms without a thread identity it always returns false, so work
// is always posted.
func (l *Loop) OnThread() bool {
	tid := l.tid.Load()
	return tid != 0 && tid == threadID()
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) drain() {
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()

		if len(q) == 0 {
			return
		}
		for _, f := range q {
			f()
		}
	}
}
