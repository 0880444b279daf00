// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config handles HJSON configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure for scripttray.
type Config struct {
	Version string        `json:"version"`
	Scripts ScriptsConfig `json:"scripts"`
	Watch   WatchConfig   `json:"watch"`
	Session SessionConfig `json:"session"`
	Events  EventsConfig  `json:"events"`
	Editor  EditorConfig  `json:"editor"`
	Control ControlConfig `json:"control"`
	Logging LoggingConfig `json:"logging"`
	UI      UIConfig      `json:"ui"`
}

// ScriptsConfig locates the scripts folder.
type ScriptsConfig struct {
	Dir       string `json:"dir"`       // Folder listed in the menu, created if absent
	Extension string `json:"extension"` // Eligible file extension including the dot
}

// WatchConfig configures the change notifier.
type WatchConfig struct {
	Debounce   string `json:"debounce"`    // "0" disables debouncing
	BufferSize int    `json:"buffer_size"` // Relay channel capacity
}

// SessionConfig configures the session table.
type SessionConfig struct {
	History int `json:"history"` // Finished sessions kept for status reporting
}

// EventsConfig configures the event bus.
type EventsConfig struct {
	History EventHistoryConfig `json:"history"`
}

// EventHistoryConfig configures event retention.
type EventHistoryConfig struct {
	MaxEvents int    `json:"max_events"`
	MaxAge    string `json:"max_age"`
}

// EditorConfig overrides the platform text editor.
type EditorConfig struct {
	Command interface{} `json:"command"` // string or []string
}

// ControlConfig configures the local control API.
type ControlConfig struct {
	Enabled *bool  `json:"enabled"`
	Host    string `json:"host"`
	Port    int    `json:"port"`
}

// LoggingConfig configures process logging.
type LoggingConfig struct {
	Level string `json:"level"` // "trace", "debug", "info", "error"
}

// UIConfig configures the tray surface.
type UIConfig struct {
	Icon        string `json:"icon"`         // Optional path to a tray icon
	Headless    bool   `json:"headless"`     // Run without a tray icon
	ConfirmStop string `json:"confirm_stop"` // "prompt", "always" or "never"
}

// Stop confirmation policies.
const (
	ConfirmPrompt = "prompt"
	ConfirmAlways = "always"
	ConfirmNever  = "never"
)

// ParseDuration parses a duration string with a default value.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	if s == "0" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

// IsEnabled reports whether the control API should be served.
func (c *ControlConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// Address returns the host:port the control API listens on.
func (c *ControlConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetCommand returns the editor command as a slice, or nil when unset.
func (e *EditorConfig) GetCommand() []string {
	switch cmd := e.Command.(type) {
	case string:
		return strings.Fields(cmd)
	case []interface{}:
		result := make([]string, 0, len(cmd))
		for _, c := range cmd {
			if s, ok := c.(string); ok {
				result = append(result, s)
			}
		}
		return result
	case []string:
		return cmd
	default:
		return nil
	}
}
