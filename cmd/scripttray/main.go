// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// scripttray keeps a folder of JavaScript files in the system tray and runs
// them on demand.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"fyne.io/systray"
	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/internal/app"
	"github.com/wingedpig/scripttray/internal/tray/desktop"
)

var version = "0.1.0"

// The tray event loop must own the main thread on macOS.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type runOptions struct {
	configPath string
	scriptsDir string
	headless   bool
	debug      bool
	host       string
	port       int
}

func newRootCmd() *cobra.Command {
	opts := &runOptions{}
	root := &cobra.Command{
		Use:           "scripttray",
		Short:         "Run scripts from the system tray",
		Long:          "scripttray lists the scripts folder in a tray menu and runs the script you pick,\nstopping the previous one first.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTray(cmd.Context(), opts)
		},
	}

	flags := root.Flags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Path to config file (default: scripttray.hjson in the working directory)")
	flags.StringVarP(&opts.scriptsDir, "dir", "d", "", "Scripts folder (overrides scripts.dir)")
	flags.BoolVar(&opts.headless, "headless", false, "Run without a tray icon, controlled through the API only")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&opts.host, "host", "", "Control API host (overrides control.host)")
	flags.IntVar(&opts.port, "port", 0, "Control API port (overrides control.port)")

	root.AddCommand(newInitCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func runTray(parent context.Context, opts *runOptions) error {
	if parent == nil {
		parent = context.Background()
	}
	a, err := app.New(app.Options{
		ConfigPath: opts.configPath,
		ScriptsDir: opts.scriptsDir,
		Headless:   opts.headless,
		Debug:      opts.debug,
		Host:       opts.host,
		Port:       opts.port,
		Version:    version,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := a.Config()
	if cfg.UI.Headless {
		return a.Run(ctx, a.NewHeadlessSurface())
	}

	var runErr error
	ready := make(chan struct{})
	done := make(chan struct{})
	onReady := func() {
		close(ready)
		surface := desktop.New(desktop.Options{
			IconPath:    cfg.UI.Icon,
			ConfirmStop: cfg.UI.ConfirmStop,
			Selections:  a.Selections(),
			Logger:      a.Logger(),
		})
		go func() {
			defer close(done)
			runErr = a.Run(ctx, surface)
			// Ends systray.Run when the loop stopped without an Exit click
			surface.Quit()
		}()
	}
	// Quitting the tray from outside cancels the loop
	systray.Run(onReady, stop)

	select {
	case <-ready:
	default:
		return errors.New("system tray exited before it was ready")
	}
	<-done
	return runErr
}
