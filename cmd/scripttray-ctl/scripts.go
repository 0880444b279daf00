// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/pkg/client"
)

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List scripts in the scripts folder",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := opts.client().Scripts.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, list)
			}

			fmt.Fprintf(out, "Folder: %s\n\n", list.Dir)
			fmt.Fprintf(out, "  %-30s %10s  %s\n", "SCRIPT", "SIZE", "MODIFIED")
			fmt.Fprintln(out, "  "+strings.Repeat("-", 60))
			for _, s := range list.Scripts {
				mark := " "
				if s.Selected {
					mark = "*"
				}
				fmt.Fprintf(out, "%s %-30s %10d  %s\n", mark, s.Name, s.Size, s.Modified.Local().Format("2006-01-02 15:04:05"))
			}
			if len(list.Scripts) == 0 {
				fmt.Fprintln(out, "  (no scripts)")
			}
			return nil
		},
	}
}

func newRunCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Stop the running script and run another",
		Long: "Run a script as if it was picked from the tray menu. When a script is\n" +
			"already running the tray asks whether to stop it; --force answers yes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := opts.client().Scripts.Run(cmd.Context(), args[0], &client.RunOptions{Force: force})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return printJSON(out, res)
			}
			if res.Started() {
				fmt.Fprintf(out, "Started %s\n", res.Name)
			} else {
				fmt.Fprintf(out, "Kept the running script; %s was not started\n", res.Name)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Stop the running script without asking")
	return cmd
}
