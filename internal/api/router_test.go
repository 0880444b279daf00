// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/scripttray/internal/api/handlers"
	"github.com/wingedpig/scripttray/internal/api/middleware"
	"github.com/wingedpig/scripttray/internal/bridge"
	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/events"
	"github.com/wingedpig/scripttray/internal/logx"
	"github.com/wingedpig/scripttray/internal/script"
	"github.com/wingedpig/scripttray/internal/session"
	"github.com/wingedpig/scripttray/internal/tray"
	"github.com/wingedpig/scripttray/internal/watcher"
)

const (
	busyScript  = "while (true) {}"
	quickScript = "var x = 1 + 1;"
)

type nopShell struct{}

func (nopShell) OpenFolder(string) error { return nil }
func (nopShell) OpenEditor(string) error { return nil }

type envelope struct {
	Data  json.RawMessage     `json:"data"`
	Error *handlers.ErrorInfo `json:"error"`
}

type fixture struct {
	dir        string
	server     *httptest.Server
	bus        *events.MemoryEventBus
	selections *bridge.Bridge[tray.Command]
}

// newFixture runs a real dispatch loop with the goja runner behind the router.
func newFixture(t *testing.T, scripts map[string]string) *fixture {
	t.Helper()
	dir := t.TempDir()
	for name, src := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}

	logger := logx.NewStructured(io.Discard, "error")
	surface := tray.NewHeadlessSurface(config.ConfirmNever, logger)
	bus := events.NewMemoryEventBus(events.MemoryBusConfig{Logger: logger})
	selections := bridge.New[tray.Command]()

	loop := tray.New(context.Background(), tray.Config{
		Dir:        dir,
		Extension:  ".js",
		History:    10,
		Surface:    surface,
		Shell:      nopShell{},
		Launcher:   script.NewRunner(surface, logger),
		Changes:    bridge.New[watcher.ChangeSignal](),
		Selections: selections,
		Exits:      bridge.New[session.Exit](),
		Bus:        bus,
		Logger:     logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	server := httptest.NewServer(NewRouter(Dependencies{
		EventBus:   bus,
		Dispatcher: selections,
		Dir:        dir,
		Extension:  ".js",
		Timeout:    5 * time.Second,
		Logger:     logger,
		Version:    "test",
	}))

	t.Cleanup(func() {
		server.Close()
		cancel()
		<-done
		bus.Close()
	})
	return &fixture{dir: dir, server: server, bus: bus, selections: selections}
}

func (f *fixture) do(t *testing.T, method, path string) (int, envelope) {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+"/api/v1"+path, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp.StatusCode, env
}

func (f *fixture) status(t *testing.T) tray.Status {
	t.Helper()
	code, env := f.do(t, "GET", "/status")
	require.Equal(t, http.StatusOK, code)
	var st tray.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	return st
}

func TestScripts_List(t *testing.T) {
	f := newFixture(t, map[string]string{
		"b.js":      quickScript,
		"a.js":      quickScript,
		"notes.txt": "skip",
	})

	resp, err := http.Get(f.server.URL + "/api/v1/scripts")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "test", resp.Header.Get(middleware.VersionHeader))

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	var list handlers.ScriptList
	require.NoError(t, json.Unmarshal(env.Data, &list))

	require.Len(t, list.Scripts, 2)
	assert.Equal(t, "a.js", list.Scripts[0].Name)
	assert.Equal(t, "b.js", list.Scripts[1].Name)
	assert.Empty(t, list.Selected)
	assert.Equal(t, f.dir, list.Dir)
}

func TestScripts_RunUnknown(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": quickScript})

	code, env := f.do(t, "POST", "/scripts/missing.js/run")
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, handlers.ErrNotFound, env.Error.Code)
}

func TestScripts_RunBadForce(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": quickScript})

	code, env := f.do(t, "POST", "/scripts/a.js/run?force=maybe")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, handlers.ErrBadRequest, env.Error.Code)
}

func TestScripts_RunStopAndForce(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": busyScript, "b.js": busyScript})

	code, env := f.do(t, "POST", "/scripts/a.js/run")
	require.Equal(t, http.StatusOK, code)
	var run handlers.RunResponse
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "started", run.Outcome)

	st := f.status(t)
	assert.True(t, st.Running)
	assert.Equal(t, "a.js", st.Selected)
	require.NotNil(t, st.Tracked)
	assert.Equal(t, "a.js", st.Tracked.Name)

	// The headless surface declines the stop prompt under the "never" policy
	code, env = f.do(t, "POST", "/scripts/b.js/run")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "declined", run.Outcome)
	assert.Equal(t, "a.js", f.status(t).Selected)

	code, env = f.do(t, "POST", "/scripts/b.js/run?force=true")
	require.Equal(t, http.StatusOK, code)
	require.NoError(t, json.Unmarshal(env.Data, &run))
	assert.Equal(t, "started", run.Outcome)
	assert.Equal(t, "b.js", f.status(t).Selected)

	code, _ = f.do(t, "POST", "/session/stop")
	require.Equal(t, http.StatusOK, code)
	require.Eventually(t, func() bool { return !f.status(t).Running }, 2*time.Second, 10*time.Millisecond)

	st = f.status(t)
	require.NotNil(t, st.Tracked)
	assert.Equal(t, session.StateTerminated, st.Tracked.State)
	assert.Equal(t, session.TooltipIdle, st.Tooltip)
}

func TestSession_Reload(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": quickScript})

	// Nothing selected yet
	code, env := f.do(t, "POST", "/session/reload")
	assert.Equal(t, http.StatusConflict, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, handlers.ErrConflict, env.Error.Code)
	assert.Empty(t, f.status(t).Sessions)

	code, _ = f.do(t, "POST", "/scripts/a.js/run")
	require.Equal(t, http.StatusOK, code)
	require.Eventually(t, func() bool { return !f.status(t).Running }, 2*time.Second, 10*time.Millisecond)

	code, env = f.do(t, "POST", "/session/reload")
	require.Equal(t, http.StatusOK, code)
	var st tray.Status
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Len(t, st.Sessions, 2)
}

func TestEvents_History(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": quickScript, "b.js": quickScript})

	f.do(t, "POST", "/scripts/a.js/run")
	require.Eventually(t, func() bool { return !f.status(t).Running }, 2*time.Second, 10*time.Millisecond)

	code, env := f.do(t, "GET", "/events?type=script.*&script=a.js")
	require.Equal(t, http.StatusOK, code)
	var list []events.Event
	require.NoError(t, json.Unmarshal(env.Data, &list))

	var types []string
	for _, e := range list {
		assert.Equal(t, "a.js", e.Script)
		types = append(types, e.Type)
	}
	assert.Contains(t, types, events.EventScriptStarted)
	assert.Contains(t, types, events.EventScriptCompleted)

	code, env = f.do(t, "GET", "/events?type=nothing.matches")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, "[]", string(env.Data))
}

func TestEvents_HistoryBadQuery(t *testing.T) {
	f := newFixture(t, nil)

	for _, q := range []string{"limit=x", "limit=-1", "since=yesterday", "until=1"} {
		code, env := f.do(t, "GET", "/events?"+q)
		assert.Equal(t, http.StatusBadRequest, code, q)
		require.NotNil(t, env.Error, q)
	}
}

func TestEvents_WebSocket(t *testing.T) {
	f := newFixture(t, map[string]string{"a.js": quickScript})

	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/api/v1/events/ws?pattern=script.started"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// The subscription is registered after the upgrade; retry until seen.
	received := make(chan events.Event, 1)
	go func() {
		var e events.Event
		if conn.ReadJSON(&e) == nil {
			received <- e
		}
	}()

	require.Eventually(t, func() bool {
		f.do(t, "POST", "/scripts/a.js/run")
		select {
		case e := <-received:
			assert.Equal(t, events.EventScriptStarted, e.Type)
			assert.Equal(t, "a.js", e.Script)
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 3*time.Second, 10*time.Millisecond)
}

type silentDispatcher struct{}

func (silentDispatcher) Send(tray.Command) error { return nil }

type failingDispatcher struct{ err error }

func (d failingDispatcher) Send(tray.Command) error { return d.err }

func TestDispatch_Errors(t *testing.T) {
	logger := logx.NewStructured(io.Discard, "error")
	closed := bridge.New[tray.Command]()
	closed.Close()

	tests := []struct {
		name       string
		dispatcher handlers.Dispatcher
		wantStatus int
		wantCode   string
	}{
		{"loop gone", closed, http.StatusServiceUnavailable, handlers.ErrUnavailable},
		{"no answer", silentDispatcher{}, http.StatusGatewayTimeout, handlers.ErrTimeout},
		{"send error", failingDispatcher{errors.New("boom")}, http.StatusInternalServerError, handlers.ErrInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := NewRouter(Dependencies{
				Dispatcher: tt.dispatcher,
				Dir:        t.TempDir(),
				Extension:  ".js",
				Timeout:    20 * time.Millisecond,
				Logger:     logger,
			})
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/status", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var env envelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
			require.NotNil(t, env.Error)
			assert.Equal(t, tt.wantCode, env.Error.Code)
		})
	}
}

func TestServer_ListenAndShutdown(t *testing.T) {
	logger := logx.NewStructured(io.Discard, "error")
	srv := NewServer(ServerConfig{Host: "127.0.0.1", Port: 0}, Dependencies{
		Dispatcher: silentDispatcher{},
		Logger:     logger,
		Version:    "1.0.0",
	})
	assert.Nil(t, srv.Addr())
	require.NoError(t, srv.Listen())

	served := make(chan error, 1)
	go func() { served <- srv.ListenAndServe() }()

	resp, err := http.Get("http://" + srv.Addr().String() + "/api/v1/version")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, <-served)
}
