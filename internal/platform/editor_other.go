// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build !windows

package platform

import (
	"os"
	"runtime"
	"strings"
)

func systemEditor() (Editor, error) {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if fields := strings.Fields(os.Getenv(env)); len(fields) > 0 {
			return Editor{Command: fields}, nil
		}
	}
	if runtime.GOOS == "darwin" {
		return Editor{Command: []string{"open", "-t"}, RequiresFile: true}, nil
	}
	return Editor{Command: []string{"xdg-open"}, RequiresFile: true}, nil
}
