// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/tray"
	"github.com/wingedpig/scripttray/pkg/client"
	"pkt.systems/pslog"
)

type nopShell struct{}

func (nopShell) OpenFolder(string) error { return nil }
func (nopShell) OpenEditor(string) error { return nil }

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scripttray.hjson")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func newTestApp(t *testing.T, body string) *App {
	t.Helper()
	a, err := New(Options{
		ConfigPath: writeConfig(t, body),
		Host:       "127.0.0.1",
		Port:       -1,
		Version:    "test",
		LogWriter:  io.Discard,
	})
	require.NoError(t, err)
	a.newShell = func([]string, pslog.Logger) tray.Shell { return nopShell{} }
	return a
}

func TestNew_RelativeDirFollowsConfig(t *testing.T) {
	a := newTestApp(t, `{ scripts: { dir: "my-scripts" }, control: { enabled: false } }`)

	assert.Equal(t, filepath.Join(filepath.Dir(a.ConfigPath()), "my-scripts"), a.Dir())
	assert.Nil(t, a.APIAddr())
}

func TestNew_Overrides(t *testing.T) {
	dir := t.TempDir()
	a, err := New(Options{
		ConfigPath: writeConfig(t, `{ logging: { level: "error" } }`),
		ScriptsDir: dir,
		Headless:   true,
		Debug:      true,
		LogWriter:  io.Discard,
	})
	require.NoError(t, err)

	assert.Equal(t, dir, a.Dir())
	assert.True(t, a.Config().UI.Headless)
	assert.Equal(t, "debug", a.Config().Logging.Level)
}

func TestNew_InvalidConfig(t *testing.T) {
	_, err := New(Options{
		ConfigPath: writeConfig(t, `{ ui: { confirm_stop: "sometimes" } }`),
		LogWriter:  io.Discard,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "confirm_stop")
}

func TestNew_MissingConfig(t *testing.T) {
	_, err := New(Options{
		ConfigPath: filepath.Join(t.TempDir(), "nope.hjson"),
		LogWriter:  io.Discard,
	})
	assert.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "hello.js"), []byte(`simple_message("hi", "there")`), 0644))

	a := newTestApp(t, `{
		scripts: { dir: "`+filepath.ToSlash(dir)+`" }
		ui: { confirm_stop: "always" }
	}`)
	surface := a.NewHeadlessSurface()

	done := make(chan error, 1)
	go func() { done <- a.Run(context.Background(), surface) }()

	require.Eventually(t, func() bool { return a.APIAddr() != nil }, 2*time.Second, 10*time.Millisecond)
	c := client.New("http://" + a.APIAddr().String())
	ctx := context.Background()

	list, err := c.Scripts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list.Scripts, 1)

	res, err := c.Scripts.Run(ctx, "hello.js", nil)
	require.NoError(t, err)
	assert.True(t, res.Started())

	require.Eventually(t, func() bool { return len(surface.Messages()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, tray.Notice{Title: "hi", Message: "there"}, surface.Messages()[0])

	// A new file shows up in the menu without a restart
	require.NoError(t, os.WriteFile(filepath.Join(dir, "second.js"), nil, 0644))
	require.Eventually(t, func() bool {
		st, err := c.Session.Status(ctx)
		return err == nil && len(st.Entries) == 2
	}, 3*time.Second, 20*time.Millisecond)

	require.NoError(t, a.Selections().Send(tray.Exit{}))
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Exit")
	}
	<-surface.Done()
}

func TestRun_WatchFailureIsReported(t *testing.T) {
	parent := t.TempDir()
	notADir := filepath.Join(parent, "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0644))

	a := newTestApp(t, `{ control: { enabled: false } }`)
	a.dir = notADir
	surface := a.NewHeadlessSurface()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, surface) }()

	require.Eventually(t, func() bool { return len(surface.Notices()) > 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, surface.Notices()[0].Message, "Cannot watch the scripts folder")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
