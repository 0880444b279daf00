// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/wingedpig/scripttray/internal/events"
	"github.com/wingedpig/scripttray/internal/logx"
	"pkt.systems/pslog"
)

const defaultHistory = 20

// Config configures a Controller.
type Config struct {
	Dir      string
	History  int // Finished sessions kept in the table
	Launcher Launcher
	UI       UI
	Exits    ExitSink
	Bus      events.EventBus
	Logger   pslog.Logger
}

type entry struct {
	Info
	handle      Handle
	cancel      context.CancelFunc
	terminating bool
}

// Controller owns the tracked session. It is not safe for concurrent use;
// every method must be called from the dispatch goroutine.
type Controller struct {
	dir      string
	history  int
	launcher Launcher
	ui       UI
	exits    ExitSink
	bus      events.EventBus
	logger   pslog.Logger

	ctx      context.Context
	sessions map[uint64]*entry
	tracked  uint64
	lastGen  uint64
	selected string
}

// NewController creates a controller. ctx is the parent of every run context.
func NewController(ctx context.Context, cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	history := cfg.History
	if history <= 0 {
		history = defaultHistory
	}
	return &Controller{
		dir:      cfg.Dir,
		history:  history,
		launcher: cfg.Launcher,
		ui:       cfg.UI,
		exits:    cfg.Exits,
		bus:      cfg.Bus,
		logger:   logger.With("component", "session"),
		ctx:      ctx,
		sessions: make(map[uint64]*entry),
	}
}

// Selected returns the name of the last script that was started.
func (c *Controller) Selected() string {
	return c.selected
}

// Run starts name. A missing file is reported to the user and returned as
// ErrScriptNotFound without touching any state.
func (c *Controller) Run(name string) error {
	path, ok := c.resolve(name)
	if !ok {
		c.ui.Notify(TitleError, MsgScriptNotFound)
		c.publish(events.EventScriptNotFound, name, nil)
		return fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}

	gen := c.lastGen + 1
	e := &entry{Info: Info{
		Generation: gen,
		RunID:      uuid.New().String(),
		Name:       name,
		Path:       path,
		State:      StateStarting,
	}}
	logger := logx.WithSession(logx.WithScript(c.logger, name), gen, e.RunID)

	runCtx, cancel := context.WithCancel(c.ctx)
	handle, err := c.launcher.Launch(runCtx, name, path)
	if err != nil {
		cancel()
		logger.Error("launch failed", "error", err)
		c.ui.Notify(TitleScriptError, err.Error())
		return fmt.Errorf("launch %s: %w", name, err)
	}

	c.lastGen = gen
	e.handle = handle
	e.cancel = cancel
	e.State = StateRunning
	e.StartedAt = time.Now()
	c.sessions[gen] = e
	c.tracked = gen
	c.selected = name

	go c.awaitExit(gen, name, handle)

	c.ui.SetTooltip(TooltipIdle + " " + name)
	c.publish(events.EventScriptStarted, name, map[string]interface{}{
		"generation": gen,
		"run_id":     e.RunID,
	})
	logger.Info("script started")
	return nil
}

// IsRunning reports whether the tracked session's goroutine has not returned.
func (c *Controller) IsRunning() bool {
	e, ok := c.sessions[c.tracked]
	if !ok {
		return false
	}
	return alive(e.handle)
}

// RequestStopThenRun runs name, first asking the user to stop the tracked
// session if one is running.
func (c *Controller) RequestStopThenRun(name string) (Outcome, error) {
	return c.stopThenRun(name, c.ui.Confirm)
}

// ForceStopThenRun is RequestStopThenRun with the confirmation answered yes.
func (c *Controller) ForceStopThenRun(name string) (Outcome, error) {
	return c.stopThenRun(name, func(string) bool { return true })
}

func (c *Controller) stopThenRun(name string, confirm func(string) bool) (Outcome, error) {
	if c.IsRunning() {
		if !confirm(StopPrompt) {
			c.logger.Info("stop declined", "running", c.sessions[c.tracked].Name, "requested", name)
			c.publish(events.EventStopDeclined, name, map[string]interface{}{
				"running": c.sessions[c.tracked].Name,
			})
			return OutcomeDeclined, nil
		}
		if err := c.Terminate(); err != nil {
			return OutcomeNone, err
		}
	}
	if err := c.Run(name); err != nil {
		return OutcomeNone, err
	}
	return OutcomeStarted, nil
}

// Reload runs the selected script again. With nothing selected it returns
// ErrNoSelection and changes nothing.
func (c *Controller) Reload() error {
	if c.selected == "" {
		return ErrNoSelection
	}
	return c.Run(c.selected)
}

// Terminate forcibly stops the tracked session. It does not wait for the
// goroutine to unwind; the exit notice arrives later through Observe.
func (c *Controller) Terminate() error {
	e, ok := c.sessions[c.tracked]
	if !ok || !alive(e.handle) {
		return nil
	}
	return c.terminate(e)
}

func (c *Controller) terminate(e *entry) error {
	logger := logx.WithSession(logx.WithScript(c.logger, e.Name), e.Generation, e.RunID)

	e.terminating = true
	e.cancel()
	if err := e.handle.Terminate(); err != nil {
		e.terminating = false
		logger.Error("terminate failed", "error", err)
		c.ui.Notify(TitleError, MsgTerminateFailed)
		c.publish(events.EventStopFailed, e.Name, map[string]interface{}{
			"generation": e.Generation,
			"error":      err.Error(),
		})
		return fmt.Errorf("%w: %s: %v", ErrTerminateFailed, e.Name, err)
	}
	logger.Info("terminate requested")
	return nil
}

// Observe records an exit notice drained from the exits bridge.
func (c *Controller) Observe(exit Exit) {
	e, ok := c.sessions[exit.Generation]
	if !ok || e.State.Finished() {
		return
	}
	logger := logx.WithSession(logx.WithScript(c.logger, e.Name), e.Generation, e.RunID)

	e.EndedAt = time.Now()
	e.cancel()

	switch {
	case e.terminating:
		e.State = StateTerminated
		logger.Info("script terminated")
		c.publish(events.EventScriptTerminated, e.Name, map[string]interface{}{"generation": e.Generation})
	case exit.Err != nil:
		e.State = StateFailed
		e.Error = exit.Err.Error()
		logger.Warn("script failed", "error", exit.Err)
		c.ui.Notify(TitleScriptError, exit.Err.Error())
		c.publish(events.EventScriptFailed, e.Name, map[string]interface{}{
			"generation": e.Generation,
			"error":      e.Error,
		})
	default:
		e.State = StateCompleted
		logger.Info("script completed")
		c.publish(events.EventScriptCompleted, e.Name, map[string]interface{}{"generation": e.Generation})
	}

	if exit.Generation == c.tracked {
		c.ui.SetTooltip(TooltipIdle)
	}
	c.prune()
}

// StopAll terminates every session that is still running.
func (c *Controller) StopAll() error {
	var errs []error
	for _, e := range c.sessions {
		if e.State.Finished() || !alive(e.handle) {
			continue
		}
		if err := c.terminate(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sessions returns the session table, newest first.
func (c *Controller) Sessions() []Info {
	out := make([]Info, 0, len(c.sessions))
	for _, e := range c.sessions {
		info := e.Info
		info.Tracked = e.Generation == c.tracked
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Generation > out[j].Generation })
	return out
}

// Tracked returns the tracked session, if any.
func (c *Controller) Tracked() (Info, bool) {
	e, ok := c.sessions[c.tracked]
	if !ok {
		return Info{}, false
	}
	info := e.Info
	info.Tracked = true
	return info, true
}

// resolve maps a script name to its path when it names a regular file
// directly inside the scripts folder.
func (c *Controller) resolve(name string) (string, bool) {
	if name == "" || filepath.Base(name) != name {
		return "", false
	}
	path := filepath.Join(c.dir, name)
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return path, true
}

// awaitExit runs on its own goroutine and reports when the handle finishes.
func (c *Controller) awaitExit(gen uint64, name string, h Handle) {
	<-h.Done()
	if err := c.exits.Send(Exit{Generation: gen, Name: name, Err: h.Err()}); err != nil {
		c.logger.Debug("exit not delivered", "generation", gen, "error", err)
	}
}

// prune drops the oldest finished sessions beyond the history limit.
func (c *Controller) prune() {
	var finished []uint64
	for gen, e := range c.sessions {
		if e.State.Finished() && gen != c.tracked {
			finished = append(finished, gen)
		}
	}
	if len(finished) <= c.history {
		return
	}
	sort.Slice(finished, func(i, j int) bool { return finished[i] < finished[j] })
	for _, gen := range finished[:len(finished)-c.history] {
		delete(c.sessions, gen)
	}
}

func (c *Controller) publish(eventType, script string, payload map[string]interface{}) {
	if c.bus == nil {
		return
	}
	if err := c.bus.Publish(c.ctx, events.Event{
		Type:    eventType,
		Script:  script,
		Payload: payload,
	}); err != nil {
		c.logger.Debug("publish failed", "type", eventType, "error", err)
	}
}

func alive(h Handle) bool {
	select {
	case <-h.Done():
		return false
	default:
		return true
	}
}
