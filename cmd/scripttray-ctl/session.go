// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/pkg/client"
)

func newStopCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Terminate the running script",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionAction(cmd, opts, opts.client().Session.Stop, "Stop requested")
		},
	}
}

func newReloadCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Run the selected script again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sessionAction(cmd, opts, opts.client().Session.Reload, "Reloaded")
		},
	}
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the selected script and recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().Session.Status(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(cmd.OutOrStdout(), st)
			}
			printStatus(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func sessionAction(cmd *cobra.Command, opts *options, call func(context.Context) (*client.Status, error), done string) error {
	st, err := call(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if opts.jsonOutput {
		return printJSON(out, st)
	}
	fmt.Fprintln(out, done)
	printStatus(out, st)
	return nil
}

func printStatus(out io.Writer, st *client.Status) {
	selected := st.Selected
	if selected == "" {
		selected = "-"
	}
	state := "idle"
	if st.Running {
		state = "running"
	}
	fmt.Fprintf(out, "Selected: %s\n", selected)
	fmt.Fprintf(out, "State:    %s\n", state)
	fmt.Fprintf(out, "Tooltip:  %s\n", st.Tooltip)

	if len(st.Sessions) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%-5s %-25s %-11s %-10s %s\n", "GEN", "SCRIPT", "STATE", "DURATION", "ERROR")
	fmt.Fprintln(out, strings.Repeat("-", 70))
	for _, s := range st.Sessions {
		errMsg := s.Error
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(out, "%-5d %-25s %-11s %-10s %s\n", s.Generation, s.Name, s.State, duration(s), errMsg)
	}
}

func duration(s client.Session) string {
	if s.StartedAt.IsZero() {
		return "-"
	}
	end := s.EndedAt
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartedAt).Round(100 * time.Millisecond).String()
}
