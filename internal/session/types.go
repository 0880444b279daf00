// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package session tracks the script that is currently executing and the
// runs that came before it.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Sentinel errors
var (
	ErrScriptNotFound  = errors.New("script file not found")
	ErrNoSelection     = errors.New("no script selected")
	ErrTerminateFailed = errors.New("failed to terminate the running script")
)

// User-facing text
const (
	StopPrompt         = "Script is running, are you sure to stop it?"
	TooltipIdle        = "Running"
	MsgScriptNotFound  = "Script file not found!"
	MsgNoSelection     = "No script selected!"
	MsgTerminateFailed = "Failed to stop the running script."
	TitleError         = "Error"
	TitleScriptError   = "Script error"
)

// State represents a session's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateStarting
	StateRunning
	StateCompleted
	StateFailed
	StateTerminated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// Finished reports whether the state is terminal.
func (s State) Finished() bool {
	return s == StateCompleted || s == StateFailed || s == StateTerminated
}

// MarshalText lets State appear as a string in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses the names produced by MarshalText.
func (s *State) UnmarshalText(text []byte) error {
	for st := StateIdle; st <= StateTerminated; st++ {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", text)
}

// Outcome is the result of a stop-then-run request that did not fail.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeStarted
	OutcomeDeclined
)

func (o Outcome) String() string {
	switch o {
	case OutcomeStarted:
		return "started"
	case OutcomeDeclined:
		return "declined"
	default:
		return "none"
	}
}

// Handle is a running script as seen by the controller.
type Handle interface {
	// Done is closed by the execution goroutine when it returns.
	Done() <-chan struct{}
	// Err is the execution result, valid after Done is closed.
	Err() error
	// Terminate forcibly stops execution without waiting for it to unwind.
	Terminate() error
}

// Launcher starts a script on its own goroutine. ctx is cancelled when the
// session is terminated.
type Launcher interface {
	Launch(ctx context.Context, name, path string) (Handle, error)
}

// UI is the part of the tray the controller drives. Notify must not block.
type UI interface {
	SetTooltip(text string)
	Notify(title, message string)
	Confirm(message string) bool
}

// Exit reports that a session's execution goroutine returned.
type Exit struct {
	Generation uint64
	Name       string
	Err        error
}

// ExitSink receives exit notices. *bridge.Bridge[Exit] satisfies it.
type ExitSink interface {
	Send(Exit) error
}

// Info is a snapshot of one session.
type Info struct {
	Generation uint64    `json:"generation"`
	RunID      string    `json:"run_id"`
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	State      State     `json:"state"`
	Tracked    bool      `json:"tracked"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty"`
	Error      string    `json:"error,omitempty"`
}
