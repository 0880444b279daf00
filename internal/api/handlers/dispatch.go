// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/wingedpig/scripttray/internal/bridge"
	"github.com/wingedpig/scripttray/internal/session"
	"github.com/wingedpig/scripttray/internal/tray"
)

// DefaultTimeout bounds how long a request waits for the dispatch loop.
// A run that prompts the user holds the loop until the prompt is answered.
const DefaultTimeout = 2 * time.Minute

var (
	errLoopBusy = errors.New("tray did not answer in time")
	errLoopGone = errors.New("tray is not running")
)

// Dispatcher queues commands for the dispatch loop.
// *bridge.Bridge[tray.Command] satisfies it.
type Dispatcher interface {
	Send(tray.Command) error
}

// request sends the command built around a fresh reply channel and waits for
// the loop to answer. The channel is buffered so a late answer never blocks
// the loop after the caller gave up.
func request[T any](ctx context.Context, d Dispatcher, timeout time.Duration, build func(chan<- T) tray.Command) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if err := d.Send(build(reply)); err != nil {
		if errors.Is(err, bridge.ErrClosed) {
			return zero, errLoopGone
		}
		return zero, err
	}

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case v := <-reply:
		return v, nil
	case <-timer.C:
		return zero, errLoopBusy
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// writeDispatchError maps loop and session errors onto HTTP statuses.
func writeDispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrScriptNotFound):
		WriteError(w, http.StatusNotFound, ErrNotFound, err.Error())
	case errors.Is(err, session.ErrNoSelection):
		WriteError(w, http.StatusConflict, ErrConflict, err.Error())
	case errors.Is(err, session.ErrTerminateFailed):
		WriteError(w, http.StatusInternalServerError, ErrSessionError, err.Error())
	case errors.Is(err, errLoopGone):
		WriteError(w, http.StatusServiceUnavailable, ErrUnavailable, err.Error())
	case errors.Is(err, errLoopBusy), errors.Is(err, context.DeadlineExceeded):
		WriteError(w, http.StatusGatewayTimeout, ErrTimeout, err.Error())
	default:
		WriteError(w, http.StatusInternalServerError, ErrInternalError, fmt.Sprint(err))
	}
}
