// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package script executes JavaScript files with goja.
//
// Every run gets a fresh runtime on its own goroutine. Scripts see a single
// host function, simple_message(title, body), which shows a modal message.
package script

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dop251/goja"
	"github.com/wingedpig/scripttray/internal/logx"
	"github.com/wingedpig/scripttray/internal/session"
	"pkt.systems/pslog"
)

// ErrInterrupted is the result of a run stopped by Terminate.
var ErrInterrupted = errors.New("script interrupted")

// HostFunction is the name scripts call to show a message.
const HostFunction = "simple_message"

// Host displays messages on behalf of scripts. SimpleMessage may block until
// the user dismisses the message.
type Host interface {
	SimpleMessage(title, body string)
}

// Runner launches scripts. It implements session.Launcher.
type Runner struct {
	host   Host
	logger pslog.Logger
}

// NewRunner creates a runner that routes simple_message to host.
func NewRunner(host Host, logger pslog.Logger) *Runner {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Runner{host: host, logger: logger.With("component", "script")}
}

// Launch starts name on a new goroutine and returns immediately.
func (r *Runner) Launch(ctx context.Context, name, path string) (session.Handle, error) {
	h := &handle{done: make(chan struct{})}
	go h.run(ctx, r, name, path)
	return h, nil
}

type handle struct {
	mu         sync.Mutex
	vm         *goja.Runtime
	terminated bool
	err        error
	done       chan struct{}
}

func (h *handle) Done() <-chan struct{} { return h.done }

func (h *handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Terminate interrupts the runtime. A runtime that has not been created yet
// is interrupted as soon as it is.
func (h *handle) Terminate() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.terminated = true
	if h.vm != nil {
		h.vm.Interrupt(ErrInterrupted)
	}
	return nil
}

func (h *handle) run(ctx context.Context, r *Runner, name, path string) {
	logger := logx.WithScript(r.logger, name)
	var err error
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script panicked: %v", p)
		}
		if err != nil {
			logger.Debug("script returned error", "error", err)
		}
		h.mu.Lock()
		h.err = err
		h.mu.Unlock()
		close(h.done)
	}()

	src, readErr := os.ReadFile(path)
	if readErr != nil {
		err = fmt.Errorf("read %s: %w", name, readErr)
		return
	}

	vm := goja.New()
	if setErr := vm.Set(HostFunction, simpleMessage(ctx, vm, r.host)); setErr != nil {
		err = fmt.Errorf("register %s: %w", HostFunction, setErr)
		return
	}

	h.mu.Lock()
	h.vm = vm
	if h.terminated {
		vm.Interrupt(ErrInterrupted)
	}
	h.mu.Unlock()

	logger.Trace("executing", "path", path, "bytes", len(src))
	_, err = vm.RunScript(name, string(src))
	err = convertError(err)
}

// simpleMessage builds the host function. It refuses to run once ctx is
// cancelled so a terminated script cannot open new dialogs.
func simpleMessage(ctx context.Context, vm *goja.Runtime, host Host) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := ctx.Err(); err != nil {
			panic(vm.NewGoError(fmt.Errorf("%w: %v", ErrInterrupted, err)))
		}
		title := call.Argument(0).String()
		body := call.Argument(1).String()
		if host != nil {
			host.SimpleMessage(title, body)
		}
		return goja.Undefined()
	}
}

func convertError(err error) error {
	if err == nil {
		return nil
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		return ErrInterrupted
	}
	var exception *goja.Exception
	if errors.As(err, &exception) {
		if errors.Is(exception.Unwrap(), ErrInterrupted) {
			return ErrInterrupted
		}
		return errors.New(exception.Error())
	}
	return err
}
