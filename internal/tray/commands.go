// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package tray

import (
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/session"
)

// Command is a request handled by the dispatch loop. Menu clicks and control
// API calls both arrive as Commands on the selections bridge.
type Command interface {
	command()
}

// OpenFolder opens the scripts folder in the file browser.
type OpenFolder struct{}

// NewScript opens the text editor with no file.
type NewScript struct{}

// EditScript opens the selected script in the text editor.
type EditScript struct{}

// ReloadScript runs the selected script again.
type ReloadScript struct {
	Reply chan<- error
}

// Exit stops every session and quits.
type Exit struct{}

// RunScript asks to run a script, stopping the current one first. ID and
// Generation identify the menu entry that was clicked; an id outside the
// current listing is rejected. When Generation is stale, or ID is zero, the
// script is resolved by Name instead.
type RunScript struct {
	Name       string
	ID         int
	Generation uint64
	Force      bool // Answer the stop prompt with yes
	Reply      chan<- RunResult
}

// StopScript terminates the tracked session.
type StopScript struct {
	Reply chan<- error
}

// Snapshot asks the loop for its current state.
type Snapshot struct {
	Reply chan<- Status
}

func (OpenFolder) command()   {}
func (NewScript) command()    {}
func (EditScript) command()   {}
func (ReloadScript) command() {}
func (Exit) command()         {}
func (RunScript) command()    {}
func (StopScript) command()   {}
func (Snapshot) command()     {}

// RunResult answers a RunScript.
type RunResult struct {
	Outcome session.Outcome
	Err     error
}

// Status is the loop state reported to the control API.
type Status struct {
	Selected   string         `json:"selected"`
	Running    bool           `json:"running"`
	Tooltip    string         `json:"tooltip"`
	Generation uint64         `json:"generation"`
	Entries    []menu.Entry   `json:"entries"`
	Tracked    *session.Info  `json:"tracked,omitempty"`
	Sessions   []session.Info `json:"sessions"`
}
