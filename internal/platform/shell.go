// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package platform starts the file browser and text editor.
package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"pkt.systems/pslog"
)

// Sentinel errors
var (
	ErrFolderNotFound = errors.New("scripts folder not found")
	ErrNoEditor       = errors.New("no text editor found; set editor.command in scripttray.hjson")
)

// Editor is a resolved text editor command.
type Editor struct {
	Command []string
	// RequiresFile is set for openers that cannot start without a file,
	// such as xdg-open.
	RequiresFile bool
}

// Shell launches external programs detached from scripttray.
type Shell struct {
	override []string
	logger   pslog.Logger
	start    func(*exec.Cmd) error
}

// NewShell creates a shell. editor overrides the platform default when set.
func NewShell(editor []string, logger pslog.Logger) *Shell {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Shell{
		override: editor,
		logger:   logger.With("component", "shell"),
		start:    startDetached,
	}
}

// OpenFolder opens dir in the platform file browser.
func (s *Shell) OpenFolder(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ErrFolderNotFound
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("explorer", dir)
	case "darwin":
		cmd = exec.Command("open", dir)
	default:
		cmd = exec.Command("xdg-open", dir)
	}
	return s.run(cmd)
}

// OpenEditor opens path in the text editor. An empty path opens the editor
// with no file.
func (s *Shell) OpenEditor(path string) error {
	editor, err := DefaultEditor(s.override)
	if err != nil {
		return err
	}
	args := append([]string(nil), editor.Command...)
	if path != "" {
		args = append(args, path)
	} else if editor.RequiresFile {
		return fmt.Errorf("%w (%s needs a file)", ErrNoEditor, editor.Command[0])
	}
	return s.run(exec.Command(args[0], args[1:]...))
}

// DefaultEditor resolves the editor: the override when set, else the
// platform's registered handler for plain text.
func DefaultEditor(override []string) (Editor, error) {
	if len(override) > 0 {
		return Editor{Command: override}, nil
	}
	return systemEditor()
}

func (s *Shell) run(cmd *exec.Cmd) error {
	s.logger.Debug("launch", "command", strings.Join(cmd.Args, " "))
	if err := s.start(cmd); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Args[0], err)
	}
	return nil
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	// Reap the child whenever it exits
	go cmd.Wait()
	return nil
}

// firstToken returns the program of a registry-style command line such as
// `"C:\Program Files\app.exe" "%1"` or `%SystemRoot%\notepad.exe %1`.
func firstToken(commandLine string) string {
	commandLine = strings.TrimSpace(commandLine)
	if strings.HasPrefix(commandLine, `"`) {
		if end := strings.Index(commandLine[1:], `"`); end >= 0 {
			return commandLine[1 : end+1]
		}
		return strings.Trim(commandLine, `"`)
	}
	if fields := strings.Fields(commandLine); len(fields) > 0 {
		return fields[0]
	}
	return ""
}
