// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package tray

import (
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/session"
)

// Surface is everything visible: tray tooltip, dialogs and the Scripts
// submenu. SimpleMessage is called from script goroutines; the rest only from
// the dispatch goroutine.
type Surface interface {
	session.UI
	SimpleMessage(title, body string)
	Section() menu.Section
	Tooltip() string
	Quit()
}

// Shell launches external programs.
type Shell interface {
	OpenFolder(dir string) error
	OpenEditor(path string) error
}
