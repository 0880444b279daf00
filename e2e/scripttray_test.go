// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package e2e drives a headless scripttray through its control API.
package e2e

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/scripttray/internal/app"
	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/session"
	"github.com/wingedpig/scripttray/internal/tray"
	"github.com/wingedpig/scripttray/pkg/client"
)

const (
	busyScript  = "while (true) {}"
	quickScript = "var done = true;"
)

type trayFixture struct {
	dir     string
	surface *tray.HeadlessSurface
	client  *client.Client
	app     *app.App
}

// startTray runs a headless tray on a free port until the test ends.
func startTray(t *testing.T, policy string, scripts map[string]string) *trayFixture {
	t.Helper()
	dir := t.TempDir()
	for name, src := range scripts {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0644))
	}
	cfgPath := filepath.Join(t.TempDir(), "scripttray.hjson")
	require.NoError(t, os.WriteFile(cfgPath, []byte(fmt.Sprintf(`{
		ui: { confirm_stop: %q }
		watch: { debounce: "20ms" }
	}`, policy)), 0644))

	a, err := app.New(app.Options{
		ConfigPath: cfgPath,
		ScriptsDir: dir,
		Headless:   true,
		Host:       "127.0.0.1",
		Port:       -1,
		Version:    "e2e",
		LogWriter:  io.Discard,
	})
	require.NoError(t, err)
	surface := a.NewHeadlessSurface()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, surface) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("tray did not stop")
		}
	})

	require.Eventually(t, func() bool { return a.APIAddr() != nil }, 2*time.Second, 10*time.Millisecond)
	return &trayFixture{
		dir:     dir,
		surface: surface,
		client:  client.New("http://" + a.APIAddr().String()),
		app:     a,
	}
}

func (f *trayFixture) status(t *testing.T) *client.Status {
	t.Helper()
	st, err := f.client.Session.Status(context.Background())
	require.NoError(t, err)
	return st
}

func (f *trayFixture) session(t *testing.T, name string) (client.Session, bool) {
	t.Helper()
	for _, s := range f.status(t).Sessions {
		if s.Name == name {
			return s, true
		}
	}
	return client.Session{}, false
}

func TestStopThenRun(t *testing.T) {
	f := startTray(t, config.ConfirmAlways, map[string]string{"a.js": busyScript, "b.js": busyScript})
	ctx := context.Background()

	res, err := f.client.Scripts.Run(ctx, "a.js", nil)
	require.NoError(t, err)
	require.True(t, res.Started())
	assert.Equal(t, session.TooltipIdle+" a.js", f.status(t).Tooltip)

	res, err = f.client.Scripts.Run(ctx, "b.js", nil)
	require.NoError(t, err)
	require.True(t, res.Started())
	assert.Equal(t, 1, f.surface.Prompts())

	require.Eventually(t, func() bool {
		a, ok := f.session(t, "a.js")
		return ok && a.State == client.StateTerminated
	}, 2*time.Second, 20*time.Millisecond)

	st := f.status(t)
	assert.True(t, st.Running)
	assert.Equal(t, "b.js", st.Selected)
	require.NotNil(t, st.Tracked)
	assert.Equal(t, "b.js", st.Tracked.Name)
	// Only the tracked entry is checked
	for _, e := range st.Entries {
		assert.Equal(t, e.Label == "b.js", e.Checked, e.Label)
	}

	_, err = f.client.Session.Stop(ctx)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !f.status(t).Running }, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, session.TooltipIdle, f.status(t).Tooltip)
}

func TestDeclinedStopKeepsRunningScript(t *testing.T) {
	f := startTray(t, config.ConfirmPrompt, map[string]string{"a.js": busyScript, "b.js": quickScript})
	ctx := context.Background()

	_, err := f.client.Scripts.Run(ctx, "a.js", nil)
	require.NoError(t, err)

	res, err := f.client.Scripts.Run(ctx, "b.js", nil)
	require.NoError(t, err)
	assert.Equal(t, client.OutcomeDeclined, res.Outcome)

	st := f.status(t)
	assert.True(t, st.Running)
	assert.Equal(t, "a.js", st.Selected)
	_, ran := f.session(t, "b.js")
	assert.False(t, ran)

	res, err = f.client.Scripts.Run(ctx, "b.js", &client.RunOptions{Force: true})
	require.NoError(t, err)
	assert.True(t, res.Started())
}

func TestMenuFollowsFolder(t *testing.T) {
	f := startTray(t, config.ConfirmAlways, nil)
	assert.Empty(t, f.status(t).Entries)

	for _, name := range []string{"e.js", "c.js", "a.js", "d.js", "b.js", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(f.dir, name), []byte(quickScript), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(f.dir, "sub.js"), 0755))

	require.Eventually(t, func() bool { return len(f.status(t).Entries) == 5 }, 3*time.Second, 20*time.Millisecond)
	st := f.status(t)
	for i, e := range st.Entries {
		assert.Equal(t, menu.Base+i, e.ID)
		assert.Equal(t, string(rune('a'+i))+".js", e.Label)
	}

	_, err := f.client.Scripts.Run(context.Background(), "c.js", nil)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(f.dir, "c.js")))

	require.Eventually(t, func() bool { return len(f.status(t).Entries) == 4 }, 3*time.Second, 20*time.Millisecond)
	st = f.status(t)
	assert.Equal(t, "c.js", st.Selected)
	for _, e := range st.Entries {
		assert.False(t, e.Checked, e.Label)
	}

	_, err = f.client.Scripts.Run(context.Background(), "c.js", nil)
	var apiErr *client.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, client.CodeNotFound, apiErr.Code)
}

func TestScriptErrorIsReported(t *testing.T) {
	f := startTray(t, config.ConfirmAlways, map[string]string{"bad.js": `throw new Error("boom")`})

	_, err := f.client.Scripts.Run(context.Background(), "bad.js", nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		s, ok := f.session(t, "bad.js")
		return ok && s.State == client.StateFailed
	}, 2*time.Second, 20*time.Millisecond)

	s, _ := f.session(t, "bad.js")
	assert.Contains(t, s.Error, "boom")
	require.NotEmpty(t, f.surface.Notices())
	assert.Equal(t, session.TitleScriptError, f.surface.Notices()[0].Title)

	evs, err := f.client.Events.List(context.Background(), &client.ListOptions{Types: []string{"script.failed"}, Script: "bad.js"})
	require.NoError(t, err)
	assert.Len(t, evs, 1)
}

func TestEventStream(t *testing.T) {
	f := startTray(t, config.ConfirmAlways, map[string]string{"a.js": quickScript})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan client.Event, 1)
	go f.client.Events.Stream(ctx, "script.completed", func(e client.Event) error {
		got <- e
		return client.ErrStopStream
	})

	// Keep running until the stream has subscribed and seen a completion
	require.Eventually(t, func() bool {
		if _, err := f.client.Scripts.Run(ctx, "a.js", nil); err != nil {
			return false
		}
		select {
		case e := <-got:
			return e.Script == "a.js"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 4*time.Second, 10*time.Millisecond)
}

func TestReloadRunsSelectedAgain(t *testing.T) {
	f := startTray(t, config.ConfirmAlways, map[string]string{"a.js": quickScript})
	ctx := context.Background()

	_, err := f.client.Scripts.Run(ctx, "a.js", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !f.status(t).Running }, 2*time.Second, 20*time.Millisecond)

	st, err := f.client.Session.Reload(ctx)
	require.NoError(t, err)
	require.Len(t, st.Sessions, 2)
	assert.Equal(t, uint64(2), st.Sessions[0].Generation)
	assert.Equal(t, "a.js", st.Sessions[0].Name)
}
