// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/wingedpig/scripttray/internal/menu"
	"github.com/wingedpig/scripttray/internal/tray"
)

// ScriptInfo is one eligible script in the scripts folder.
type ScriptInfo struct {
	menu.ScriptFile
	Selected bool `json:"selected"`
}

// ScriptList is the response of GET /scripts.
type ScriptList struct {
	Dir      string       `json:"dir"`
	Selected string       `json:"selected"`
	Scripts  []ScriptInfo `json:"scripts"`
}

// RunResponse is the response of POST /scripts/{name}/run.
type RunResponse struct {
	Name    string `json:"name"`
	Outcome string `json:"outcome"`
}

// ScriptHandler handles script-related API requests.
type ScriptHandler struct {
	dir        string
	ext        string
	dispatcher Dispatcher
	timeout    time.Duration
}

// NewScriptHandler creates a new script handler.
func NewScriptHandler(dir, ext string, d Dispatcher, timeout time.Duration) *ScriptHandler {
	return &ScriptHandler{dir: dir, ext: ext, dispatcher: d, timeout: timeout}
}

// List returns the eligible scripts and the selected one.
func (h *ScriptHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := menu.ListScripts(h.dir, h.ext)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, ErrInternalError, err.Error())
		return
	}

	status, err := request(r.Context(), h.dispatcher, h.timeout, func(reply chan<- tray.Status) tray.Command {
		return tray.Snapshot{Reply: reply}
	})
	if err != nil {
		writeDispatchError(w, err)
		return
	}

	list := ScriptList{
		Dir:      h.dir,
		Selected: status.Selected,
		Scripts:  make([]ScriptInfo, 0, len(files)),
	}
	for _, f := range files {
		list.Scripts = append(list.Scripts, ScriptInfo{ScriptFile: f, Selected: f.Name == status.Selected})
	}
	WriteJSON(w, http.StatusOK, list)
}

// Run stops the current script and runs the named one. With force=true the
// stop prompt is answered with yes.
func (h *ScriptHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	force := false
	if raw := r.URL.Query().Get("force"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, ErrBadRequest, "force must be true or false")
			return
		}
		force = v
	}

	res, err := request(r.Context(), h.dispatcher, h.timeout, func(reply chan<- tray.RunResult) tray.Command {
		return tray.RunScript{Name: name, Force: force, Reply: reply}
	})
	if err == nil {
		err = res.Err
	}
	if err != nil {
		writeDispatchError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, RunResponse{Name: name, Outcome: res.Outcome.String()})
}
