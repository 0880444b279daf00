// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"strconv"
	"strings"
)

// TemplateOptions are the answers used to render a starter config.
type TemplateOptions struct {
	ScriptsDir string
	Port       int
	Editor     string
}

// escapeHJSONValue escapes a string for safe inclusion in an HJSON double-quoted value.
func escapeHJSONValue(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// RenderTemplate produces a fully commented scripttray.hjson.
func RenderTemplate(opts TemplateOptions) string {
	if opts.ScriptsDir == "" {
		opts.ScriptsDir = "scripts"
	}
	if opts.Port == 0 {
		opts.Port = 4711
	}

	var sb strings.Builder
	sb.WriteString(`{
  // =============================================================================
  // scripttray configuration
  // =============================================================================
  //
  // This is an HJSON file (JSON with comments and relaxed syntax).
  //
  version: "1"

  scripts: {
    // Folder shown in the Scripts submenu. Created on startup if missing.
    dir: "` + escapeHJSONValue(opts.ScriptsDir) + `"
    // Only regular files with this extension are listed.
    extension: ".js"
  }

  watch: {
    // Collapse bursts of filesystem events. "0" rebuilds on every wake.
    debounce: "0"
    buffer_size: 100
  }

  session: {
    // Finished runs kept for "scripttray-ctl status".
    history: 20
  }

  events: {
    history: {
      max_events: 1000
      max_age: "1h"
    }
  }
`)

	if opts.Editor != "" {
		sb.WriteString(`
  editor: {
    // Overrides the platform default text editor.
    command: "` + escapeHJSONValue(opts.Editor) + `"
  }
`)
	}

	sb.WriteString(`
  control: {
    // Local API used by scripttray-ctl. Bound to loopback only.
    enabled: true
    host: "127.0.0.1"
    port: ` + strconv.Itoa(opts.Port) + `
  }

  logging: {
    level: "info"
  }

  ui: {
    // icon: "assets/app.ico"
    headless: false
    // What to do when a run is requested while another script is running:
    // "prompt" asks, "always" stops without asking, "never" refuses.
    confirm_stop: "prompt"
  }
}
`)
	return sb.String()
}
