// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package client provides a Go client library for the scripttray control API.
//
// scripttray runs JavaScript files from a scripts folder out of the system
// tray. The control API exposes the same actions as the tray menu so that
// scripts can be listed, run and stopped from other programs.
//
// # Getting Started
//
// Create a client pointing to a running tray:
//
//	c := client.New("http://127.0.0.1:4711")
//
//	// List the scripts folder
//	list, err := c.Scripts.List(ctx)
//
//	// Stop whatever is running and run hello.js
//	res, err := c.Scripts.Run(ctx, "hello.js", &client.RunOptions{Force: true})
//
//	// Inspect the tracked session
//	status, err := c.Session.Status(ctx)
//
// # Error Handling
//
// API errors are returned as *APIError values:
//
//	_, err := c.Scripts.Run(ctx, "missing.js", nil)
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Code == client.CodeNotFound {
//	    ...
//	}
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultURL is where the tray listens unless configured otherwise.
const DefaultURL = "http://127.0.0.1:4711"

// Error codes returned by the API.
const (
	CodeNotFound    = "NOT_FOUND"
	CodeBadRequest  = "BAD_REQUEST"
	CodeConflict    = "CONFLICT"
	CodeSession     = "SESSION_ERROR"
	CodeUnavailable = "UNAVAILABLE"
	CodeTimeout     = "TIMEOUT"
	CodeInternal    = "INTERNAL_ERROR"
)

// Client is a scripttray API client. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	dialer     Dialer

	// Scripts lists and runs scripts in the scripts folder.
	Scripts *ScriptClient

	// Session stops and reloads the tracked session and reports status.
	Session *SessionClient

	// Events reads the event history and follows the live stream.
	Events *EventClient
}

// Option configures a [Client].
type Option func(*Client)

// New creates a client for the tray at baseURL. A trailing slash is removed.
// The default HTTP timeout is long enough for a run request to wait on the
// stop prompt.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 3 * time.Minute,
		},
		dialer: defaultDialer,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.Scripts = &ScriptClient{c: c}
	c.Session = &SessionClient{c: c}
	c.Events = &EventClient{c: c}

	return c
}

// WithHTTPClient sets a custom HTTP client for making requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the HTTP client timeout for all requests.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// BaseURL returns the base URL of the API.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ServerVersion returns the version reported by the tray.
func (c *Client) ServerVersion(ctx context.Context) (string, error) {
	data, err := c.get(ctx, "/api/v1/version")
	if err != nil {
		return "", err
	}
	var v struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return "", fmt.Errorf("failed to parse version: %w", err)
	}
	return v.Version, nil
}

// apiResponse is the standard API response envelope.
type apiResponse struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

// APIError represents an error response from the API.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"-"`

	// Code is a machine-readable error code such as [CodeNotFound].
	Code string `json:"code"`

	// Message is a human-readable description of the error.
	Message string `json:"message"`

	// Details contains additional error information, if available.
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path)
}

func (c *Client) post(ctx context.Context, path string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path)
}

// do performs an HTTP request and parses the response.
func (c *Client) do(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	return parseResponse(resp)
}

// parseResponse reads and parses an API response.
func parseResponse(resp *http.Response) (json.RawMessage, error) {
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
		}
		return respBody, nil
	}

	if apiResp.Error != nil {
		apiResp.Error.StatusCode = resp.StatusCode
		return nil, apiResp.Error
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	return apiResp.Data, nil
}
