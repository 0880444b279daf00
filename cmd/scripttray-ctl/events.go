// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/pkg/client"
)

func newEventsCmd(opts *options) *cobra.Command {
	var (
		limit  int
		types  []string
		script string
		follow bool
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show recent tray events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := opts.client()
			out := cmd.OutOrStdout()

			if follow {
				pattern := ""
				if len(types) > 0 {
					pattern = types[0]
				}
				if !opts.jsonOutput {
					printEventHeader(out)
				}
				return c.Events.Stream(cmd.Context(), pattern, func(e client.Event) error {
					if script != "" && e.Script != script {
						return nil
					}
					if opts.jsonOutput {
						return json.NewEncoder(out).Encode(e)
					}
					printEvent(out, e)
					return nil
				})
			}

			events, err := c.Events.List(cmd.Context(), &client.ListOptions{
				Limit:  limit,
				Types:  types,
				Script: script,
			})
			if err != nil {
				return err
			}
			if opts.jsonOutput {
				return printJSON(out, events)
			}
			printEventHeader(out)
			for _, e := range events {
				printEvent(out, e)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum number of events")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Event types to show, such as script.* (repeatable)")
	cmd.Flags().StringVar(&script, "script", "", "Only events about this script")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Stream new events; with --type only the first pattern is used")
	return cmd
}

func printEventHeader(out io.Writer) {
	fmt.Fprintf(out, "%-20s %-24s %-20s %s\n", "TIME", "TYPE", "SCRIPT", "DETAILS")
	fmt.Fprintln(out, strings.Repeat("-", 90))
}

func printEvent(out io.Writer, e client.Event) {
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, e.Payload[k]))
	}
	script := e.Script
	if script == "" {
		script = "-"
	}
	fmt.Fprintf(out, "%-20s %-24s %-20s %s\n",
		e.Timestamp.Local().Format("2006-01-02 15:04:05"),
		e.Type,
		script,
		strings.Join(parts, " "),
	)
}
