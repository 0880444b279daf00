// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

//go:build windows

package platform

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// systemEditor reads the program associated with .txt files:
// HKCR\.txt names a file type whose shell\open\command holds the command line.
func systemEditor() (Editor, error) {
	program, err := txtHandler()
	if err != nil {
		return Editor{Command: []string{"notepad.exe"}}, nil
	}
	return Editor{Command: []string{program}}, nil
}

func txtHandler() (string, error) {
	ext, err := registry.OpenKey(registry.CLASSES_ROOT, ".txt", registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open HKCR\\.txt: %w", err)
	}
	defer ext.Close()

	fileType, _, err := ext.GetStringValue("")
	if err != nil {
		return "", fmt.Errorf("read .txt file type: %w", err)
	}

	cmdKey, err := registry.OpenKey(registry.CLASSES_ROOT, fileType+`\shell\open\command`, registry.QUERY_VALUE)
	if err != nil {
		return "", fmt.Errorf("open %s command: %w", fileType, err)
	}
	defer cmdKey.Close()

	commandLine, _, err := cmdKey.GetStringValue("")
	if err != nil {
		return "", fmt.Errorf("read %s command: %w", fileType, err)
	}

	program, err := registry.ExpandString(firstToken(commandLine))
	if err != nil {
		return "", fmt.Errorf("expand %q: %w", commandLine, err)
	}
	if program == "" {
		return "", fmt.Errorf("empty command for %s", fileType)
	}
	return program, nil
}
