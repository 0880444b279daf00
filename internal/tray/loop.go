// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package tray is the dispatch loop: the single goroutine that owns the menu,
// the session controller and the visible surface.
package tray

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/wingedpig/scripttray/internal/bridge"
	"github.com/wingedpig/scripttray/internal/events"
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/session"
	"github.com/wingedpig/scripttray/internal/watcher"
	"pkt.systems/pslog"
)

// Config configures a Loop.
type Config struct {
	Dir        string
	Extension  string
	History    int
	Surface    Surface
	Shell      Shell
	Launcher   session.Launcher
	Changes    *bridge.Bridge[watcher.ChangeSignal]
	Selections *bridge.Bridge[Command]
	Exits      *bridge.Bridge[session.Exit]
	Bus        events.EventBus
	Logger     pslog.Logger
}

// Loop reacts to changes, commands and exit notices. Every field is owned by
// the goroutine running Run.
type Loop struct {
	dir        string
	surface    Surface
	shell      Shell
	changes    *bridge.Bridge[watcher.ChangeSignal]
	selections *bridge.Bridge[Command]
	exits      *bridge.Bridge[session.Exit]
	bus        events.EventBus
	logger     pslog.Logger

	ctx  context.Context
	menu *menu.Synchronizer
	ctrl *session.Controller
	quit bool
}

// New creates a loop. Nothing is rendered until Run.
func New(ctx context.Context, cfg Config) *Loop {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(ctx)
	}
	l := &Loop{
		dir:        cfg.Dir,
		surface:    cfg.Surface,
		shell:      cfg.Shell,
		changes:    cfg.Changes,
		selections: cfg.Selections,
		exits:      cfg.Exits,
		bus:        cfg.Bus,
		logger:     logger.With("component", "tray"),
		ctx:        ctx,
		menu:       menu.NewSynchronizer(cfg.Dir, cfg.Extension, cfg.Surface.Section()),
	}
	l.ctrl = session.NewController(ctx, session.Config{
		Dir:      cfg.Dir,
		History:  cfg.History,
		Launcher: cfg.Launcher,
		UI:       cfg.Surface,
		Exits:    cfg.Exits,
		Bus:      cfg.Bus,
		Logger:   logger,
	})
	return l
}

// Run renders the menu and dispatches until an Exit command arrives or ctx
// is cancelled. Either way every live session is terminated before it
// returns.
func (l *Loop) Run(ctx context.Context) error {
	l.surface.SetTooltip(session.TooltipIdle)
	l.rebuild()

	for !l.quit {
		select {
		case <-ctx.Done():
			l.shutdown()
			return ctx.Err()
		case <-l.changes.Wake():
		case <-l.selections.Wake():
		case <-l.exits.Wake():
		}
		l.Cycle()
	}
	return nil
}

// Cycle drains all three bridges once. Exit notices go first so the
// liveness of a finished session is settled before commands see it; any
// number of change signals yields one rebuild.
func (l *Loop) Cycle() {
	for _, exit := range l.exits.Drain() {
		l.ctrl.Observe(exit)
	}

	if changes := l.changes.Drain(); len(changes) > 0 {
		l.logger.Debug("rebuilding menu", "signals", len(changes))
		l.rebuild()
	}

	for _, cmd := range l.selections.Drain() {
		if l.quit {
			l.reject(cmd)
			continue
		}
		l.dispatch(cmd)
	}
}

func (l *Loop) dispatch(cmd Command) {
	switch c := cmd.(type) {
	case OpenFolder:
		if err := l.shell.OpenFolder(l.dir); err != nil {
			l.logger.Warn("open folder failed", "error", err)
			l.surface.Notify(session.TitleError, err.Error())
		}
	case NewScript:
		if err := l.shell.OpenEditor(""); err != nil {
			l.logger.Warn("open editor failed", "error", err)
			l.surface.Notify(session.TitleError, err.Error())
		}
	case EditScript:
		l.editSelected()
	case ReloadScript:
		err := l.ctrl.Reload()
		switch {
		case err == nil:
			l.checkSelected()
		case errors.Is(err, session.ErrNoSelection):
			l.logger.Debug("reload with no script selected")
		}
		reply(c.Reply, err)
	case RunScript:
		res := l.runScript(c)
		if c.Reply != nil {
			c.Reply <- res
		}
	case StopScript:
		reply(c.Reply, l.ctrl.Terminate())
	case Snapshot:
		if c.Reply != nil {
			c.Reply <- l.status()
		}
	case Exit:
		l.shutdown()
	default:
		l.logger.Warn("unknown command", "type", fmt.Sprintf("%T", cmd))
	}
}

// runScript resolves the clicked entry and asks the controller to run it.
// An entry id of the current generation is authoritative and must lie in the
// reserved range. A click from an older generation, or a request without an
// id, is resolved by name against the current listing.
func (l *Loop) runScript(c RunScript) RunResult {
	name := c.Name
	var (
		id int
		ok bool
	)
	if c.ID != 0 && c.Generation == l.menu.Generation() {
		if label, found := l.menu.Lookup(c.ID); found {
			name, id, ok = label, c.ID, true
		}
	} else if name != "" {
		id, ok = l.menu.Find(name)
	}
	if !ok {
		l.logger.Info("selection not in listing", "script", name, "generation", c.Generation)
		l.surface.Notify(session.TitleError, session.MsgScriptNotFound)
		return RunResult{Err: fmt.Errorf("%w: %s", session.ErrScriptNotFound, name)}
	}

	var (
		outcome session.Outcome
		err     error
	)
	if c.Force {
		outcome, err = l.ctrl.ForceStopThenRun(name)
	} else {
		outcome, err = l.ctrl.RequestStopThenRun(name)
	}
	if err == nil && outcome == session.OutcomeStarted {
		if cerr := l.menu.SetChecked(id); cerr != nil {
			l.logger.Warn("check entry failed", "id", id, "error", cerr)
		}
	}
	return RunResult{Outcome: outcome, Err: err}
}

func (l *Loop) editSelected() {
	selected := l.ctrl.Selected()
	if selected == "" {
		l.surface.Notify(session.TitleError, session.MsgNoSelection)
		return
	}
	if err := l.shell.OpenEditor(filepath.Join(l.dir, selected)); err != nil {
		l.logger.Warn("open editor failed", "script", selected, "error", err)
		l.surface.Notify(session.TitleError, err.Error())
	}
}

func (l *Loop) checkSelected() {
	if id, ok := l.menu.Find(l.ctrl.Selected()); ok {
		if err := l.menu.SetChecked(id); err != nil {
			l.logger.Warn("check entry failed", "id", id, "error", err)
		}
	}
}

func (l *Loop) rebuild() {
	gen, err := l.menu.Rebuild(l.ctrl.Selected())
	if err != nil {
		l.logger.Error("menu rebuild failed", "error", err)
	}
	if l.bus == nil {
		return
	}
	_ = l.bus.Publish(l.ctx, events.Event{
		Type: events.EventScriptsChanged,
		Payload: map[string]interface{}{
			"generation": gen,
			"count":      len(l.menu.Entries()),
		},
	})
}

func (l *Loop) status() Status {
	st := Status{
		Selected:   l.ctrl.Selected(),
		Running:    l.ctrl.IsRunning(),
		Tooltip:    l.surface.Tooltip(),
		Generation: l.menu.Generation(),
		Entries:    l.menu.Entries(),
		Sessions:   l.ctrl.Sessions(),
	}
	if info, ok := l.ctrl.Tracked(); ok {
		st.Tracked = &info
	}
	return st
}

func (l *Loop) shutdown() {
	if l.quit {
		return
	}
	l.quit = true
	if err := l.ctrl.StopAll(); err != nil {
		l.logger.Error("stop on exit", "error", err)
	}
	l.logger.Info("exiting")
	l.surface.Quit()
}

// reject answers commands that arrive after Exit.
func (l *Loop) reject(cmd Command) {
	err := errors.New("tray is shutting down")
	switch c := cmd.(type) {
	case RunScript:
		if c.Reply != nil {
			c.Reply <- RunResult{Err: err}
		}
	case StopScript:
		reply(c.Reply, err)
	case ReloadScript:
		reply(c.Reply, err)
	case Snapshot:
		if c.Reply != nil {
			c.Reply <- l.status()
		}
	}
}

func reply(ch chan<- error, err error) {
	if ch != nil {
		ch <- err
	}
}
