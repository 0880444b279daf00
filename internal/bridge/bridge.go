// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package bridge hands values from background goroutines to the single
// goroutine that owns the tray UI.
//
// A Bridge couples an unbounded FIFO queue with a wake signal. Producers call
// Send from any goroutine; the owner selects on Wake and calls Drain. Neither
// side ever blocks on the other.
package bridge

import (
	"errors"
	"sync"
)

// ErrClosed is returned by Send after Close.
var ErrClosed = errors.New("bridge is closed")

// Bridge is a multi-producer, single-consumer queue with a wake signal.
type Bridge[T any] struct {
	mu     sync.Mutex
	queue  []T
	closed bool
	wake   chan struct{}
}

// New creates an empty bridge.
func New[T any]() *Bridge[T] {
	return &Bridge[T]{
		wake: make(chan struct{}, 1),
	}
}

// Send enqueues v and signals the consumer. It never blocks.
func (b *Bridge[T]) Send(v T) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.queue = append(b.queue, v)
	b.mu.Unlock()

	b.notify()
	return nil
}

// Wake returns the channel that receives a value whenever the queue may hold
// new data. Several sends between two receives produce a single wake.
func (b *Bridge[T]) Wake() <-chan struct{} {
	return b.wake
}

// Drain removes and returns every queued value in FIFO order. It returns nil
// immediately when nothing is queued.
func (b *Bridge[T]) Drain() []T {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return nil
	}
	out := b.queue
	b.queue = nil
	return out
}

// Len reports the number of queued values.
func (b *Bridge[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Close rejects further sends. Values already queued can still be drained.
func (b *Bridge[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *Bridge[T]) notify() {
	select {
	case b.wake <- struct{}{}:
	default:
		// A wake is already pending
	}
}
