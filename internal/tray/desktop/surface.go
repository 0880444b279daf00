// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package desktop renders the tray with fyne.io/systray and shows dialogs
// with github.com/sqweek/dialog.
package desktop

import (
	"context"
	_ "embed"
	"os"
	"runtime"
	"sync"

	"fyne.io/systray"
	"github.com/sqweek/dialog"
	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/tray"
	"pkt.systems/pslog"
)

const appTitle = "scripttray"

//go:embed assets/icon.png
var iconPNG []byte

//go:embed assets/icon.ico
var iconICO []byte

// Sink receives menu clicks. *bridge.Bridge[tray.Command] satisfies it.
type Sink interface {
	Send(tray.Command) error
}

// Options configures the desktop surface.
type Options struct {
	IconPath    string
	ConfirmStop string
	Selections  Sink
	Logger      pslog.Logger
}

// Surface is the system tray. New must be called from systray's onReady.
type Surface struct {
	mu       sync.Mutex
	tooltip  string
	policy   string
	sink     Sink
	logger   pslog.Logger
	section  *section
	stop     chan struct{}
	stopOnce sync.Once
}

// New builds the tray menu and starts forwarding clicks of the fixed items.
func New(opts Options) *Surface {
	logger := opts.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &Surface{
		policy: opts.ConfirmStop,
		sink:   opts.Selections,
		logger: logger.With("component", "surface"),
		stop:   make(chan struct{}),
	}

	systray.SetIcon(s.icon(opts.IconPath))
	systray.SetTitle("")
	systray.SetTooltip(appTitle)

	scripts := systray.AddMenuItem("Scripts", "Scripts in the scripts folder")
	s.section = newSection(scripts, s.sink, s.stop, s.logger)
	systray.AddSeparator()
	s.forward(systray.AddMenuItem("Open Script Folder", ""), tray.OpenFolder{})
	s.forward(systray.AddMenuItem("New Script", ""), tray.NewScript{})
	s.forward(systray.AddMenuItem("Edit This Script", ""), tray.EditScript{})
	s.forward(systray.AddMenuItem("Reload This Script", ""), tray.ReloadScript{})
	systray.AddSeparator()
	s.forward(systray.AddMenuItem("Exit", ""), tray.Exit{})

	return s
}

func (s *Surface) icon(path string) []byte {
	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			return data
		}
		s.logger.Warn("tray icon not loaded, using default", "path", path, "error", err)
	}
	if runtime.GOOS == "windows" {
		return iconICO
	}
	return iconPNG
}

// forward relays clicks on item to the dispatch loop until Quit.
func (s *Surface) forward(item *systray.MenuItem, cmd tray.Command) {
	go func() {
		for {
			select {
			case <-s.stop:
				return
			case <-item.ClickedCh:
				if err := s.sink.Send(cmd); err != nil {
					s.logger.Debug("click dropped", "error", err)
				}
			}
		}
	}()
}

func (s *Surface) SetTooltip(text string) {
	s.mu.Lock()
	s.tooltip = text
	s.mu.Unlock()
	systray.SetTooltip(text)
}

func (s *Surface) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

// Notify shows an error dialog without waiting for it to be dismissed.
func (s *Surface) Notify(title, message string) {
	s.logger.Warn(message, "title", title)
	go dialog.Message("%s", message).Title(title).Error()
}

// Confirm asks the user unless the policy answers for them.
func (s *Surface) Confirm(message string) bool {
	switch s.policy {
	case config.ConfirmAlways:
		return true
	case config.ConfirmNever:
		return false
	}
	return dialog.Message("%s", message).Title(appTitle).YesNo()
}

// SimpleMessage blocks the calling script until the message is dismissed.
func (s *Surface) SimpleMessage(title, body string) {
	dialog.Message("%s", body).Title(title).Info()
}

func (s *Surface) Section() menu.Section { return s.section }

var _ tray.Surface = (*Surface)(nil)

// Quit stops the forwarders and ends systray.Run.
func (s *Surface) Quit() {
	s.stopOnce.Do(func() {
		close(s.stop)
		systray.Quit()
	})
}
