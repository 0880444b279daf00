// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// ScriptClient lists and runs scripts. Access it through [Client.Scripts].
type ScriptClient struct {
	c *Client
}

// RunOptions configures a run request.
type RunOptions struct {
	// Force answers the "stop the running script?" prompt with yes.
	Force bool
}

// List returns the eligible scripts in the scripts folder, sorted by name.
func (s *ScriptClient) List(ctx context.Context) (*ScriptList, error) {
	data, err := s.c.get(ctx, "/api/v1/scripts")
	if err != nil {
		return nil, err
	}

	var list ScriptList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse scripts: %w", err)
	}
	return &list, nil
}

// Run stops the running script and runs name, as if it was clicked in the
// menu. Without Force the tray asks the user first, and the request waits
// for the answer.
func (s *ScriptClient) Run(ctx context.Context, name string, opts *RunOptions) (*RunResult, error) {
	path := "/api/v1/scripts/" + url.PathEscape(name) + "/run"
	if opts != nil && opts.Force {
		path += "?force=true"
	}

	data, err := s.c.post(ctx, path)
	if err != nil {
		return nil, err
	}

	var res RunResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse run result: %w", err)
	}
	return &res, nil
}
