// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package logx wires pslog into scripttray and adds field helpers.
package logx

import (
	"context"
	"io"
	"log"
	"strings"

	"pkt.systems/pslog"
)

// New builds the process logger. Environment variables understood by pslog
// take precedence over the configured level.
func New(w io.Writer, level string) pslog.Logger {
	opts := pslog.Options{Mode: pslog.ModeConsole}
	applyLevel(&opts, level)
	return pslog.LoggerFromEnv(
		pslog.WithEnvWriter(w),
		pslog.WithEnvOptions(opts),
	)
}

// NewStructured builds a JSON logger without color, used by tests.
func NewStructured(w io.Writer, level string) pslog.Logger {
	opts := pslog.Options{
		Mode:          pslog.ModeStructured,
		NoColor:       true,
		VerboseFields: true,
	}
	applyLevel(&opts, level)
	return pslog.NewWithOptions(w, opts)
}

// Install stores logger in ctx and routes the stdlib log package through it.
func Install(ctx context.Context, logger pslog.Logger) context.Context {
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)
	return pslog.ContextWithLogger(ctx, logger)
}

// Ctx returns the logger bound to ctx.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithScript annotates the logger with a script name.
func WithScript(logger pslog.Logger, name string) pslog.Logger {
	if name == "" {
		return logger
	}
	return logger.With("script", name)
}

// WithSession annotates the logger with a session generation and run id.
func WithSession(logger pslog.Logger, generation uint64, runID string) pslog.Logger {
	logger = logger.With("generation", generation)
	if runID != "" {
		logger = logger.With("run", runID)
	}
	return logger
}

func applyLevel(opts *pslog.Options, level string) {
	switch strings.ToLower(level) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	default:
		opts.MinLevel = pslog.InfoLevel
	}
}
