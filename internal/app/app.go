// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app wires the tray together: configuration, the event bus, the
// three bridges, the change notifier, the script runner, the dispatch loop
// and the control API.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/wingedpig/scripttray/internal/api"
	"github.com/wingedpig/scripttray/internal/bridge"
	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/events"
	"github.com/wingedpig/scripttray/internal/logx"
	"github.com/wingedpig/scripttray/internal/platform"
	"github.com/wingedpig/scripttray/internal/script"
	"github.com/wingedpig/scripttray/internal/session"
	"github.com/wingedpig/scripttray/internal/tray"
	"github.com/wingedpig/scripttray/internal/watcher"
	"golang.org/x/sync/errgroup"
	"pkt.systems/pslog"
)

// App is the main application container.
type App struct {
	configPath string
	version    string
	config     *config.Config
	dir        string
	logger     pslog.Logger

	eventBus   *events.MemoryEventBus
	changes    *bridge.Bridge[watcher.ChangeSignal]
	selections *bridge.Bridge[tray.Command]
	exits      *bridge.Bridge[session.Exit]
	apiServer  *api.Server

	// newShell is replaced by tests.
	newShell func(editor []string, logger pslog.Logger) tray.Shell
}

// Options holds configuration options for the app.
type Options struct {
	ConfigPath string // Empty searches the working directory
	ScriptsDir string // Overrides scripts.dir
	Headless   bool   // Overrides ui.headless
	Debug      bool   // Forces debug logging
	Host       string // Overrides control.host
	Port       int    // Overrides control.port when non-zero; negative picks a free port
	Version    string
	LogWriter  io.Writer // Defaults to stderr
}

// New loads configuration and creates the shared plumbing. Nothing runs
// until Run.
func New(opts Options) (*App, error) {
	loader := config.NewLoader()

	configPath := opts.ConfigPath
	if configPath == "" {
		if found, err := loader.FindConfig(); err == nil {
			configPath = found
		}
	}

	cfg, err := loader.LoadWithDefaults(context.Background(), configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if opts.ScriptsDir != "" {
		cfg.Scripts.Dir = opts.ScriptsDir
	}
	if opts.Headless {
		cfg.UI.Headless = true
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	if opts.Host != "" {
		cfg.Control.Host = opts.Host
	}
	switch {
	case opts.Port > 0:
		cfg.Control.Port = opts.Port
	case opts.Port < 0:
		cfg.Control.Port = 0
	}

	w := opts.LogWriter
	if w == nil {
		w = os.Stderr
	}
	logger := logx.New(w, cfg.Logging.Level)

	dir, err := resolveDir(cfg.Scripts.Dir, configPath)
	if err != nil {
		return nil, err
	}

	app := &App{
		configPath: configPath,
		version:    opts.Version,
		config:     cfg,
		dir:        dir,
		logger:     logger,
		eventBus: events.NewMemoryEventBus(events.MemoryBusConfig{
			HistoryMaxEvents: cfg.Events.History.MaxEvents,
			HistoryMaxAge:    config.ParseDuration(cfg.Events.History.MaxAge, time.Hour),
			Logger:           logger,
		}),
		changes:    bridge.New[watcher.ChangeSignal](),
		selections: bridge.New[tray.Command](),
		exits:      bridge.New[session.Exit](),
		newShell: func(editor []string, logger pslog.Logger) tray.Shell {
			return platform.NewShell(editor, logger)
		},
	}

	if cfg.Control.IsEnabled() {
		app.apiServer = api.NewServer(api.ServerConfig{
			Host: cfg.Control.Host,
			Port: cfg.Control.Port,
		}, api.Dependencies{
			EventBus:   app.eventBus,
			Dispatcher: app.selections,
			Dir:        dir,
			Extension:  cfg.Scripts.Extension,
			Logger:     logger,
			Version:    opts.Version,
		})
	}

	return app, nil
}

// resolveDir makes a relative scripts folder relative to the config file, or
// to the executable when there is no config file.
func resolveDir(dir, configPath string) (string, error) {
	if filepath.IsAbs(dir) {
		return filepath.Clean(dir), nil
	}
	base := ""
	if configPath != "" {
		base = filepath.Dir(configPath)
	} else if exe, err := os.Executable(); err == nil {
		base = filepath.Dir(exe)
	}
	abs, err := filepath.Abs(filepath.Join(base, dir))
	if err != nil {
		return "", fmt.Errorf("resolve scripts folder %q: %w", dir, err)
	}
	return abs, nil
}

// Config returns the loaded configuration.
func (app *App) Config() *config.Config { return app.config }

// ConfigPath returns the config file in use, or "" for built-in defaults.
func (app *App) ConfigPath() string { return app.configPath }

// Dir returns the absolute scripts folder.
func (app *App) Dir() string { return app.dir }

// Logger returns the process logger.
func (app *App) Logger() pslog.Logger { return app.logger }

// Selections is where menu clicks are sent.
func (app *App) Selections() *bridge.Bridge[tray.Command] { return app.selections }

// APIAddr returns the control API address once it is listening.
func (app *App) APIAddr() net.Addr {
	if app.apiServer == nil {
		return nil
	}
	return app.apiServer.Addr()
}

// NewHeadlessSurface creates the surface used without a tray icon.
func (app *App) NewHeadlessSurface() *tray.HeadlessSurface {
	return tray.NewHeadlessSurface(app.config.UI.ConfirmStop, app.logger)
}

// Run drives the tray on surface until an Exit command arrives or ctx is
// cancelled. Setup failures of the watcher and the control API are reported
// on the surface and the tray keeps running without them. Run may be called
// once.
func (app *App) Run(ctx context.Context, surface tray.Surface) error {
	ctx = logx.Install(ctx, app.logger)
	defer app.close()

	app.logger.Info("scripttray starting",
		"version", app.version,
		"config", app.configPath,
		"dir", app.dir,
	)

	notifier, err := watcher.NewChangeNotifier(watcher.Options{
		Dir:        app.dir,
		BufferSize: app.config.Watch.BufferSize,
		Debounce:   config.ParseDuration(app.config.Watch.Debounce, 0),
		Bus:        app.eventBus,
		Logger:     app.logger,
	}, app.changes)
	if err != nil {
		app.logger.Error("scripts folder is not watched", "dir", app.dir, "error", err)
		surface.Notify(session.TitleError, fmt.Sprintf("Cannot watch the scripts folder: %v", err))
		_ = app.eventBus.Publish(ctx, events.Event{
			Type:    events.EventWatcherError,
			Payload: map[string]interface{}{"dir": app.dir, "error": err.Error()},
		})
	} else {
		defer notifier.Close()
	}

	loop := tray.New(ctx, tray.Config{
		Dir:        app.dir,
		Extension:  app.config.Scripts.Extension,
		History:    app.config.Session.History,
		Surface:    surface,
		Shell:      app.newShell(app.config.Editor.GetCommand(), app.logger),
		Launcher:   script.NewRunner(surface, app.logger),
		Changes:    app.changes,
		Selections: app.selections,
		Exits:      app.exits,
		Bus:        app.eventBus,
		Logger:     app.logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		err := loop.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	if app.apiServer != nil {
		if err := app.apiServer.Listen(); err != nil {
			app.logger.Error("control API disabled", "addr", app.config.Control.Address(), "error", err)
			surface.Notify(session.TitleError, fmt.Sprintf("Control API unavailable: %v", err))
		} else {
			g.Go(app.apiServer.ListenAndServe)
			g.Go(func() error {
				<-gctx.Done()
				return app.apiServer.Shutdown(context.Background())
			})
		}
	}

	err = g.Wait()
	app.logger.Info("scripttray stopped")
	return err
}

func (app *App) close() {
	app.changes.Close()
	app.selections.Close()
	app.exits.Close()
	if err := app.eventBus.Close(); err != nil {
		app.logger.Warn("event bus close", "error", err)
	}
}
