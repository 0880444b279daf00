// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"time"
)

// Script is a file in the scripts folder that appears in the tray menu.
type Script struct {
	// Name is the file name, which is also the menu label.
	Name string `json:"name"`

	// Path is the absolute path of the file.
	Path string `json:"path"`

	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`

	// Selected is set for the script the tray last ran.
	Selected bool `json:"selected"`
}

// ScriptList is the listing of the scripts folder.
type ScriptList struct {
	Dir      string   `json:"dir"`
	Selected string   `json:"selected"`
	Scripts  []Script `json:"scripts"`
}

// Outcomes of a run request.
const (
	OutcomeStarted  = "started"
	OutcomeDeclined = "declined"
)

// RunResult answers a run request.
type RunResult struct {
	Name string `json:"name"`

	// Outcome is [OutcomeStarted], or [OutcomeDeclined] when the user kept
	// the running script.
	Outcome string `json:"outcome"`
}

// Started reports whether the script was started.
func (r RunResult) Started() bool {
	return r.Outcome == OutcomeStarted
}

// Session states.
const (
	StateStarting   = "starting"
	StateRunning    = "running"
	StateCompleted  = "completed"
	StateFailed     = "failed"
	StateTerminated = "terminated"
)

// Session is one execution of a script.
type Session struct {
	Generation uint64    `json:"generation"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	State      string    `json:"state"`
	Tracked    bool      `json:"tracked"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty"`

	// Error is the script error of a failed session.
	Error string `json:"error,omitempty"`
}

// MenuEntry is one item of the tray's script submenu.
type MenuEntry struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// Status is the state of the tray.
type Status struct {
	// Selected is the script the tray last ran, if any.
	Selected string `json:"selected"`

	// Running reports whether the tracked session is still executing.
	Running bool   `json:"running"`
	Tooltip string `json:"tooltip"`

	// Generation counts menu rebuilds.
	Generation uint64      `json:"generation"`
	Entries    []MenuEntry `json:"entries"`

	// Tracked is the most recently started session.
	Tracked *Session `json:"tracked,omitempty"`

	// Sessions holds the tracked session and recent finished ones, newest
	// first.
	Sessions []Session `json:"sessions"`
}

// Event is an entry of the tray's event log.
type Event struct {
	ID        string                 `json:"id"`
	Version   string                 `json:"version"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Script    string                 `json:"script,omitempty"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
}
