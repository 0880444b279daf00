// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package logx

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithScriptAddsField(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured(&buf, "info")

	WithScript(logger, "hello.js").Info("run")

	entry := firstEntry(t, &buf)
	assert.Equal(t, "hello.js", entry["script"])
}

func TestWithScriptEmptyName(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured(&buf, "info")

	WithScript(logger, "").Info("run")

	entry := firstEntry(t, &buf)
	_, ok := entry["script"]
	assert.False(t, ok)
}

func TestWithSessionAddsFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured(&buf, "info")

	WithSession(logger, 7, "abc").Info("started")

	entry := firstEntry(t, &buf)
	assert.EqualValues(t, 7, entry["generation"])
	assert.Equal(t, "abc", entry["run"])
}

func TestDebugSuppressedAtInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured(&buf, "info")

	logger.Debug("hidden")
	assert.Zero(t, buf.Len())
}

func TestCtxRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStructured(&buf, "debug")
	ctx := Install(context.Background(), logger)

	Ctx(ctx).Debug("visible")
	assert.NotZero(t, buf.Len())
}

func firstEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	data := buf.Bytes()
	idx := bytes.IndexByte(data, '\n')
	if idx == -1 {
		idx = len(data)
	}
	entry := map[string]any{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(data[:idx]), &entry))
	return entry
}
