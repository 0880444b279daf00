// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package events

import (
	"errors"
	"strings"
)

// ErrEmptyPattern is returned when compiling an empty pattern.
var ErrEmptyPattern = errors.New("empty pattern")

// Pattern is a compiled event type pattern.
//
//	"*"          matches everything
//	"script.*"   matches "script.started", "script.failed", ...
//	"*.failed"   matches "script.failed" but not "session.stop_failed"
//	"script.started" matches only itself
type Pattern struct {
	raw    string
	prefix string
	suffix string
	all    bool
}

// CompilePattern validates and compiles a pattern.
func CompilePattern(raw string) (Pattern, error) {
	if raw == "" {
		return Pattern{}, ErrEmptyPattern
	}
	p := Pattern{raw: raw}
	switch {
	case raw == "*":
		p.all = true
	case strings.HasSuffix(raw, ".*"):
		p.prefix = strings.TrimSuffix(raw, "*")
	case strings.HasPrefix(raw, "*."):
		p.suffix = strings.TrimPrefix(raw, "*")
	}
	return p, nil
}

// Match reports whether eventType matches the pattern.
func (p Pattern) Match(eventType string) bool {
	if eventType == "" || p.raw == "" {
		return false
	}
	switch {
	case p.all:
		return true
	case p.prefix != "":
		return strings.HasPrefix(eventType, p.prefix)
	case p.suffix != "":
		return strings.HasSuffix(eventType, p.suffix)
	default:
		return eventType == p.raw
	}
}

// String returns the pattern as written.
func (p Pattern) String() string {
	return p.raw
}

// MatchType is a convenience for one-off matches.
func MatchType(eventType, pattern string) bool {
	p, err := CompilePattern(pattern)
	if err != nil {
		return false
	}
	return p.Match(eventType)
}
