// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// scripttray-ctl is a command-line tool for controlling a running scripttray.
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wingedpig/scripttray/pkg/client"
	"pkt.systems/psi"
	"pkt.systems/pslog"
)

var version = "0.1.0"

// apiEnv overrides the default API base URL.
const apiEnv = "SCRIPTTRAY_API"

type options struct {
	apiURL     string
	jsonOutput bool
}

func (o *options) client() *client.Client {
	return client.New(o.apiURL)
}

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	root := newRootCmd()
	root.SetArgs(os.Args[1:])
	if err := root.ExecuteContext(ctx); err != nil {
		pslog.Ctx(ctx).With("err", err).Error("scripttray-ctl failed")
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &options{apiURL: client.DefaultURL}
	if env := os.Getenv(apiEnv); env != "" {
		opts.apiURL = strings.TrimSuffix(env, "/")
	}

	root := &cobra.Command{
		Use:           "scripttray-ctl",
		Short:         "Control a running scripttray",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", opts.apiURL, "Base URL of the scripttray API (env "+apiEnv+")")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Output in JSON format")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newRunCmd(opts))
	root.AddCommand(newStopCmd(opts))
	root.AddCommand(newReloadCmd(opts))
	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newEventsCmd(opts))
	root.AddCommand(newVersionCmd(opts))

	return root
}
