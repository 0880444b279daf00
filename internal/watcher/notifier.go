// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package watcher observes the scripts folder and reports that something in
// it changed.
package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/wingedpig/scripttray/internal/events"
	"pkt.systems/pslog"
)

const defaultBufferSize = 100

// ChangeSignal tells the dispatch loop to re-derive the menu from disk.
// Path and Op describe the event that caused it and are informational only.
type ChangeSignal struct {
	Path string
	Op   fsnotify.Op
}

// Sink receives change signals. *bridge.Bridge[ChangeSignal] satisfies it.
type Sink interface {
	Send(ChangeSignal) error
}

// Options configures a ChangeNotifier.
type Options struct {
	Dir        string
	BufferSize int           // Relay channel capacity, 100 when zero
	Debounce   time.Duration // Zero disables debouncing
	Bus        events.EventBus
	Logger     pslog.Logger
}

// ChangeNotifier watches a directory tree and forwards a ChangeSignal to its
// sink for every filesystem event.
type ChangeNotifier struct {
	mu        sync.Mutex
	dir       string
	sink      Sink
	bus       events.EventBus
	logger    pslog.Logger
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	relay     chan ChangeSignal
	closed    bool
	closeCh   chan struct{}
	wg        sync.WaitGroup
}

// EnsureDir creates dir and its parents if they do not exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scripts dir %s: %w", dir, err)
	}
	return nil
}

// NewChangeNotifier creates dir if needed, watches it recursively and starts
// relaying events to sink. A failure to establish the watch is returned.
func NewChangeNotifier(opts Options, sink Sink) (*ChangeNotifier, error) {
	if err := EnsureDir(opts.Dir); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	size := opts.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	n := &ChangeNotifier{
		dir:     opts.Dir,
		sink:    sink,
		bus:     opts.Bus,
		logger:  logger.With("component", "watcher"),
		watcher: fsWatcher,
		relay:   make(chan ChangeSignal, size),
		closeCh: make(chan struct{}),
	}

	if err := n.addTree(opts.Dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", opts.Dir, err)
	}

	if opts.Debounce > 0 {
		n.debouncer = NewDebouncer(opts.Debounce, func() {
			n.forward(ChangeSignal{Path: n.dir})
		})
	}

	n.wg.Add(2)
	go n.processEvents()
	go n.relayLoop()

	n.logger.Info("watching scripts", "dir", opts.Dir, "buffer", size, "debounce", opts.Debounce)
	return n, nil
}

// Dir returns the watched root.
func (n *ChangeNotifier) Dir() string {
	return n.dir
}

// Close stops the relay and releases the watch. It is safe to call twice.
func (n *ChangeNotifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	close(n.closeCh)
	n.mu.Unlock()

	if n.debouncer != nil {
		n.debouncer.Stop()
	}
	err := n.watcher.Close()
	n.wg.Wait()
	return err
}

// addTree adds root and every directory below it.
func (n *ChangeNotifier) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// A subdirectory vanishing mid-walk is not fatal; the root is.
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := n.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			n.logger.Debug("skip subdirectory", "path", path, "error", err)
		}
		return nil
	})
}

func (n *ChangeNotifier) processEvents() {
	defer n.wg.Done()

	for {
		select {
		case <-n.closeCh:
			return

		case event, ok := <-n.watcher.Events:
			if !ok {
				return
			}
			n.handleEvent(event)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return
			}
			n.logger.Warn("watch error", "error", err)
			n.publishError(err)
		}
	}
}

func (n *ChangeNotifier) handleEvent(event fsnotify.Event) {
	n.logger.Trace("fs event", "path", event.Name, "op", event.Op.String())

	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := n.addTree(event.Name); err != nil {
				n.logger.Debug("watch new directory", "path", event.Name, "error", err)
			}
		}
	}

	if n.debouncer != nil {
		n.debouncer.Trigger()
		return
	}
	n.forward(ChangeSignal{Path: event.Name, Op: event.Op})
}

// forward hands sig to the relay without blocking the fsnotify reader.
func (n *ChangeNotifier) forward(sig ChangeSignal) {
	select {
	case n.relay <- sig:
	default:
		// A change is already queued for the loop
		n.logger.Debug("relay full, dropping event", "path", sig.Path)
	}
}

func (n *ChangeNotifier) relayLoop() {
	defer n.wg.Done()

	for {
		select {
		case <-n.closeCh:
			return
		case sig := <-n.relay:
			if err := n.sink.Send(sig); err != nil {
				n.logger.Debug("change not delivered", "error", err)
			}
		}
	}
}

func (n *ChangeNotifier) publishError(err error) {
	if n.bus == nil {
		return
	}
	_ = n.bus.Publish(context.Background(), events.Event{
		Type: events.EventWatcherError,
		Payload: map[string]interface{}{
			"dir":   n.dir,
			"error": err.Error(),
		},
	})
}
