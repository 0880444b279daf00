// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// SessionClient controls the tracked session. Access it through
// [Client.Session].
type SessionClient struct {
	c *Client
}

// Status returns the selected script, the tracked session and the recent
// sessions.
func (s *SessionClient) Status(ctx context.Context) (*Status, error) {
	return s.status(ctx, s.c.get, "/api/v1/status")
}

// Stop terminates the tracked session. Stopping when nothing runs is not an
// error. The returned status may still show the session running until its
// goroutine has unwound.
func (s *SessionClient) Stop(ctx context.Context) (*Status, error) {
	return s.status(ctx, s.c.post, "/api/v1/session/stop")
}

// Reload runs the selected script again. It fails with a CONFLICT APIError
// when no script has been selected.
func (s *SessionClient) Reload(ctx context.Context) (*Status, error) {
	return s.status(ctx, s.c.post, "/api/v1/session/reload")
}

func (s *SessionClient) status(ctx context.Context, call func(context.Context, string) (json.RawMessage, error), path string) (*Status, error) {
	data, err := call(ctx, path)
	if err != nil {
		return nil, err
	}

	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse status: %w", err)
	}
	return &st, nil
}
