// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// mockServer creates a test server that returns the given response.
func mockServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	return httptest.NewServer(handler)
}

// apiHandler creates a handler that returns a standard API response.
func apiHandler(data interface{}, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		resp := map[string]interface{}{
			"data": data,
		}
		json.NewEncoder(w).Encode(resp)
	}
}

// apiErrorHandler creates a handler that returns an API error.
func apiErrorHandler(code, message string, statusCode int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)

		resp := map[string]interface{}{
			"error": map[string]string{
				"code":    code,
				"message": message,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}
}

func TestNew(t *testing.T) {
	c := New("http://localhost:4711")

	if c.BaseURL() != "http://localhost:4711" {
		t.Errorf("BaseURL() = %q, want %q", c.BaseURL(), "http://localhost:4711")
	}
	if c.Scripts == nil {
		t.Error("Scripts client is nil")
	}
	if c.Session == nil {
		t.Error("Session client is nil")
	}
	if c.Events == nil {
		t.Error("Events client is nil")
	}
}

func TestNewWithOptions(t *testing.T) {
	t.Run("WithTimeout", func(t *testing.T) {
		c := New("http://localhost:4711", WithTimeout(60*time.Second))
		if c.httpClient.Timeout != 60*time.Second {
			t.Errorf("Timeout = %v, want 60s", c.httpClient.Timeout)
		}
	})

	t.Run("WithHTTPClient", func(t *testing.T) {
		customClient := &http.Client{Timeout: 10 * time.Second}
		c := New("http://localhost:4711", WithHTTPClient(customClient))
		if c.httpClient != customClient {
			t.Error("custom HTTP client not used")
		}
	})

	t.Run("trailing slash removed", func(t *testing.T) {
		c := New("http://localhost:4711/")
		if c.BaseURL() != "http://localhost:4711" {
			t.Errorf("BaseURL() = %q, want trailing slash removed", c.BaseURL())
		}
	})
}

func TestAPIError(t *testing.T) {
	err := &APIError{
		Code:    CodeNotFound,
		Message: "script file not found: a.js",
	}

	expected := "NOT_FOUND: script file not found: a.js"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}

	err2 := &APIError{
		Message: "Something went wrong",
	}
	if err2.Error() != "Something went wrong" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "Something went wrong")
	}
}

func TestParseResponse_NonEnvelopeError(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no route", http.StatusNotFound)
	})
	defer server.Close()

	_, err := New(server.URL).Scripts.List(context.Background())
	if err == nil {
		t.Fatal("List() error = nil, want error")
	}
}

func TestServerVersion(t *testing.T) {
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/version" {
			t.Errorf("path = %q", r.URL.Path)
		}
		apiHandler(map[string]string{"version": "1.4.0"}, http.StatusOK)(w, r)
	})
	defer server.Close()

	v, err := New(server.URL).ServerVersion(context.Background())
	if err != nil {
		t.Fatalf("ServerVersion() error = %v", err)
	}
	if v != "1.4.0" {
		t.Errorf("ServerVersion() = %q, want %q", v, "1.4.0")
	}
}

func TestScriptClient_List(t *testing.T) {
	list := ScriptList{
		Dir:      "/home/me/scripts",
		Selected: "b.js",
		Scripts: []Script{
			{Name: "a.js", Path: "/home/me/scripts/a.js", Size: 10},
			{Name: "b.js", Path: "/home/me/scripts/b.js", Size: 20, Selected: true},
		},
	}

	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/v1/scripts" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		apiHandler(list, http.StatusOK)(w, r)
	})
	defer server.Close()

	result, err := New(server.URL).Scripts.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(result.Scripts) != 2 {
		t.Fatalf("List() returned %d scripts, want 2", len(result.Scripts))
	}
	if result.Selected != "b.js" || !result.Scripts[1].Selected {
		t.Errorf("selected = %q, want b.js", result.Selected)
	}
}

func TestScriptClient_Run(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		opts      *RunOptions
		wantPath  string
		wantForce string
	}{
		{"plain", "hello.js", nil, "/api/v1/scripts/hello.js/run", ""},
		{"forced", "hello.js", &RunOptions{Force: true}, "/api/v1/scripts/hello.js/run", "true"},
		{"escaped", "my script.js", nil, "/api/v1/scripts/my script.js/run", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("method = %s, want POST", r.Method)
				}
				if r.URL.Path != tt.wantPath {
					t.Errorf("path = %q, want %q", r.URL.Path, tt.wantPath)
				}
				if got := r.URL.Query().Get("force"); got != tt.wantForce {
					t.Errorf("force = %q, want %q", got, tt.wantForce)
				}
				apiHandler(RunResult{Name: tt.script, Outcome: OutcomeStarted}, http.StatusOK)(w, r)
			})
			defer server.Close()

			res, err := New(server.URL).Scripts.Run(context.Background(), tt.script, tt.opts)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !res.Started() {
				t.Errorf("Outcome = %q, want started", res.Outcome)
			}
		})
	}
}

func TestScriptClient_RunNotFound(t *testing.T) {
	server := mockServer(t, apiErrorHandler(CodeNotFound, "script file not found: x.js", http.StatusNotFound))
	defer server.Close()

	_, err := New(server.URL).Scripts.Run(context.Background(), "x.js", nil)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Run() error = %v, want *APIError", err)
	}
	if apiErr.Code != CodeNotFound || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestSessionClient(t *testing.T) {
	status := Status{
		Selected: "a.js",
		Running:  true,
		Tracked:  &Session{Name: "a.js", State: StateRunning, Generation: 3},
		Sessions: []Session{{Name: "a.js", State: StateRunning, Generation: 3}},
	}

	tests := []struct {
		name       string
		call       func(*SessionClient) (*Status, error)
		wantMethod string
		wantPath   string
	}{
		{"status", func(s *SessionClient) (*Status, error) { return s.Status(context.Background()) }, http.MethodGet, "/api/v1/status"},
		{"stop", func(s *SessionClient) (*Status, error) { return s.Stop(context.Background()) }, http.MethodPost, "/api/v1/session/stop"},
		{"reload", func(s *SessionClient) (*Status, error) { return s.Reload(context.Background()) }, http.MethodPost, "/api/v1/session/reload"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.Method != tt.wantMethod || r.URL.Path != tt.wantPath {
					t.Errorf("request = %s %s, want %s %s", r.Method, r.URL.Path, tt.wantMethod, tt.wantPath)
				}
				apiHandler(status, http.StatusOK)(w, r)
			})
			defer server.Close()

			st, err := tt.call(New(server.URL).Session)
			if err != nil {
				t.Fatalf("error = %v", err)
			}
			if st.Tracked == nil || st.Tracked.Generation != 3 {
				t.Errorf("Tracked = %+v", st.Tracked)
			}
		})
	}
}

func TestEventClient_List(t *testing.T) {
	events := []Event{
		{ID: "evt-1", Type: "script.started", Timestamp: time.Now(), Script: "a.js"},
		{ID: "evt-2", Type: "script.completed", Timestamp: time.Now(), Script: "a.js"},
	}

	t.Run("with limit", func(t *testing.T) {
		server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("limit") != "50" {
				t.Errorf("limit = %q, want %q", r.URL.Query().Get("limit"), "50")
			}
			apiHandler(events, http.StatusOK)(w, r)
		})
		defer server.Close()

		result, err := New(server.URL).Events.List(context.Background(), &ListOptions{Limit: 50})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(result) != 2 {
			t.Errorf("List() returned %d events, want 2", len(result))
		}
	})

	t.Run("with filters", func(t *testing.T) {
		since := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("script") != "a.js" {
				t.Errorf("script = %q, want %q", q.Get("script"), "a.js")
			}
			if got := q["type"]; len(got) != 2 || got[0] != "script.*" {
				t.Errorf("type = %v", got)
			}
			if q.Get("since") != "2026-01-02T03:04:05Z" {
				t.Errorf("since = %q", q.Get("since"))
			}
			apiHandler(events, http.StatusOK)(w, r)
		})
		defer server.Close()

		_, err := New(server.URL).Events.List(context.Background(), &ListOptions{
			Script: "a.js",
			Types:  []string{"script.*", "session.*"},
			Since:  since,
		})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
	})
}

func TestEventClient_Stream(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/events/ws" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("pattern") != "script.*" {
			t.Errorf("pattern = %q", r.URL.Query().Get("pattern"))
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, typ := range []string{"script.started", "script.completed", "script.started"} {
			if err := conn.WriteJSON(Event{Type: typ, Script: "a.js"}); err != nil {
				return
			}
		}
		// Hold the connection open until the client leaves
		conn.ReadMessage()
	})
	defer server.Close()

	var got []string
	err := New(server.URL).Events.Stream(context.Background(), "script.*", func(e Event) error {
		got = append(got, e.Type)
		if len(got) == 2 {
			return ErrStopStream
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	if len(got) != 2 || got[1] != "script.completed" {
		t.Errorf("events = %v", got)
	}
}

func TestEventClient_StreamCancel(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := mockServer(t, func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.ReadMessage()
	})
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := New(server.URL).Events.Stream(ctx, "", func(Event) error { return nil })
	if err != nil {
		t.Errorf("Stream() error = %v, want nil on cancel", err)
	}
}

func TestEventClient_StreamURL(t *testing.T) {
	e := New("https://tray.local:4711/").Events
	got, err := e.streamURL("")
	if err != nil {
		t.Fatal(err)
	}
	if got != "wss://tray.local:4711/api/v1/events/ws" {
		t.Errorf("streamURL = %q", got)
	}
}
