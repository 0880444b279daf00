// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/internal/config"
)

const (
	configFile    = "scripttray.hjson"
	exampleScript = "hello.js"
	exampleSource = `// Pick this script from the tray menu to run it.
simple_message("scripttray", "Hello from hello.js");
`
)

func newInitCmd() *cobra.Command {
	var (
		yes bool
		dir string
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a scripttray.hjson in the current directory",
		Long: "Create a commented scripttray.hjson configuration file and the scripts folder.\n" +
			"Press Enter to accept the defaults shown in [brackets], or pass --yes.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("failed to get current directory: %w", err)
				}
				dir = cwd
			}
			return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), dir, yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Accept all defaults without prompting")
	cmd.Flags().StringVar(&dir, "in", "", "Directory to initialize (default: current directory)")
	return cmd
}

func runInit(in io.Reader, out io.Writer, dir string, yes bool) error {
	path := filepath.Join(dir, configFile)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use a different directory", path)
	}

	opts := config.TemplateOptions{ScriptsDir: "scripts", Port: 4711}
	if !yes {
		reader := bufio.NewReader(in)
		fmt.Fprintln(out, "scripttray Configuration Setup")
		fmt.Fprintln(out, "==============================")
		fmt.Fprintln(out)

		opts.ScriptsDir = prompt(reader, out, "Scripts folder", opts.ScriptsDir)
		if port, err := strconv.Atoi(prompt(reader, out, "Control API port", strconv.Itoa(opts.Port))); err == nil && port > 0 && port < 65536 {
			opts.Port = port
		}
		opts.Editor = prompt(reader, out, "Text editor command (empty for the system default)", "")
	}

	if err := os.WriteFile(path, []byte(config.RenderTemplate(opts)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	fmt.Fprintf(out, "Created %s\n", path)

	scripts := opts.ScriptsDir
	if !filepath.IsAbs(scripts) {
		scripts = filepath.Join(dir, scripts)
	}
	if err := os.MkdirAll(scripts, 0755); err != nil {
		return fmt.Errorf("failed to create scripts folder: %w", err)
	}
	entries, err := os.ReadDir(scripts)
	if err != nil {
		return fmt.Errorf("failed to read scripts folder: %w", err)
	}
	if len(entries) == 0 {
		if err := os.WriteFile(filepath.Join(scripts, exampleScript), []byte(exampleSource), 0644); err != nil {
			return fmt.Errorf("failed to write example script: %w", err)
		}
		fmt.Fprintf(out, "Created %s\n", filepath.Join(scripts, exampleScript))
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next: run scripttray in this directory.")
	return nil
}

func prompt(reader *bufio.Reader, out io.Writer, question, defaultVal string) string {
	if defaultVal != "" {
		fmt.Fprintf(out, "%s [%s]: ", question, defaultVal)
	} else {
		fmt.Fprintf(out, "%s: ", question)
	}
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return defaultVal
	}
	return line
}
