// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package events provides the in-process event bus for scripttray.
//
// The bus records what the tray did (rebuilds, runs, terminations) so the
// control API can report history and stream activity. It is never used to
// carry work into the dispatch loop; that is the job of package bridge.
package events

import (
	"context"
	"time"
)

// Event represents an immutable event record.
type Event struct {
	ID        string                 `json:"id"`
	Version   string                 `json:"version"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Script    string                 `json:"script,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}

// EventHandler processes received events.
type EventHandler func(ctx context.Context, event Event) error

// SubscriptionID uniquely identifies a subscription.
type SubscriptionID string

// EventFilter for querying event history.
type EventFilter struct {
	Types  []string  // Event types to match (supports wildcards)
	Script string    // Filter by script name
	Since  time.Time // Events after this time
	Until  time.Time // Events before this time
	Limit  int       // Maximum events to return
}

// EventBus is the core event pub/sub system.
type EventBus interface {
	// Publish emits an event to all matching subscribers.
	Publish(ctx context.Context, event Event) error

	// Subscribe registers a synchronous handler for events matching pattern.
	Subscribe(pattern string, handler EventHandler) (SubscriptionID, error)

	// SubscribeAsync registers an async handler with buffered channel.
	SubscribeAsync(pattern string, handler EventHandler, bufferSize int) (SubscriptionID, error)

	// Unsubscribe removes a subscription.
	Unsubscribe(id SubscriptionID) error

	// History retrieves past events matching filter.
	History(filter EventFilter) ([]Event, error)

	// Close shuts down the event bus gracefully.
	Close() error
}

// Event types
const (
	// Menu events
	EventScriptsChanged = "scripts.changed"

	// Script lifecycle events
	EventScriptStarted    = "script.started"
	EventScriptCompleted  = "script.completed"
	EventScriptFailed     = "script.failed"
	EventScriptTerminated = "script.terminated"
	EventScriptNotFound   = "script.not_found"

	// Stop-then-run decisions
	EventStopDeclined = "session.stop_declined"
	EventStopFailed   = "session.stop_failed"

	// Watcher events
	EventWatcherError = "watcher.error"
)
