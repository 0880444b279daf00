// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"time"

	"github.com/wingedpig/scripttray/internal/tray"
)

// SessionHandler handles the tracked session and tray status.
type SessionHandler struct {
	dispatcher Dispatcher
	timeout    time.Duration
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(d Dispatcher, timeout time.Duration) *SessionHandler {
	return &SessionHandler{dispatcher: d, timeout: timeout}
}

// Stop terminates the tracked session.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	err := h.await(r, func(reply chan<- error) tray.Command {
		return tray.StopScript{Reply: reply}
	})
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	h.Status(w, r)
}

// Reload runs the selected script again.
func (h *SessionHandler) Reload(w http.ResponseWriter, r *http.Request) {
	err := h.await(r, func(reply chan<- error) tray.Command {
		return tray.ReloadScript{Reply: reply}
	})
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	h.Status(w, r)
}

// Status returns the selected script, the tracked session and the session
// table.
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	status, err := request(r.Context(), h.dispatcher, h.timeout, func(reply chan<- tray.Status) tray.Command {
		return tray.Snapshot{Reply: reply}
	})
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, status)
}

func (h *SessionHandler) await(r *http.Request, build func(chan<- error) tray.Command) error {
	res, err := request(r.Context(), h.dispatcher, h.timeout, build)
	if err != nil {
		return err
	}
	return res
}
