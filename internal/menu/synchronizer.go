// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package menu keeps the Scripts submenu in step with the scripts folder.
package menu

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Base is the first id of the reserved dynamic range.
const Base = 1100

// ErrUnknownID is returned for an id outside the current reserved range.
var ErrUnknownID = errors.New("menu id outside the script range")

// Entry is one rendered script item.
type Entry struct {
	ID      int    `json:"id"`
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

// ScriptFile describes an eligible file in the scripts folder.
type ScriptFile struct {
	Name     string    `json:"name"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// ListScripts returns the regular files directly inside dir whose extension
// is ext, sorted by name. Subdirectories are not descended into.
func ListScripts(dir, ext string) ([]ScriptFile, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var files []ScriptFile
	for _, de := range dirEntries {
		if !de.Type().IsRegular() || filepath.Ext(de.Name()) != ext {
			continue
		}
		info, err := de.Info()
		if err != nil {
			// Removed between ReadDir and Info
			continue
		}
		files = append(files, ScriptFile{
			Name:     de.Name(),
			Path:     filepath.Join(dir, de.Name()),
			Size:     info.Size(),
			Modified: info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// Synchronizer rebuilds a Section from the scripts folder and tracks which
// entry is checked. It is not safe for concurrent use.
type Synchronizer struct {
	dir        string
	ext        string
	section    Section
	entries    []Entry
	generation uint64
}

// NewSynchronizer creates a synchronizer over section. Nothing is rendered
// until the first Rebuild.
func NewSynchronizer(dir, ext string, section Section) *Synchronizer {
	return &Synchronizer{
		dir:     dir,
		ext:     ext,
		section: section,
	}
}

// Rebuild replaces every entry with the current listing. The entry whose
// label equals selected is checked. It returns the new generation.
func (s *Synchronizer) Rebuild(selected string) (uint64, error) {
	for i := s.section.Len() - 1; i >= 0; i-- {
		if err := s.section.RemoveAt(i); err != nil {
			return s.generation, fmt.Errorf("remove entry %d: %w", i, err)
		}
	}
	s.entries = nil
	s.generation++
	if g, ok := s.section.(Generational); ok {
		g.BeginGeneration(s.generation)
	}

	files, err := ListScripts(s.dir, s.ext)
	if err != nil {
		return s.generation, err
	}

	entries := make([]Entry, 0, len(files))
	for i, f := range files {
		e := Entry{ID: Base + i, Label: f.Name, Checked: f.Name == selected}
		if err := s.section.Append(e.ID, e.Label, e.Checked); err != nil {
			s.entries = entries
			return s.generation, fmt.Errorf("append %s: %w", f.Name, err)
		}
		entries = append(entries, e)
	}
	s.entries = entries
	return s.generation, nil
}

// SetChecked unchecks every entry, then checks exactly id.
func (s *Synchronizer) SetChecked(id int) error {
	if _, ok := s.Lookup(id); !ok {
		return fmt.Errorf("%w: %d", ErrUnknownID, id)
	}
	for i := range s.entries {
		want := s.entries[i].ID == id
		if err := s.section.SetChecked(s.entries[i].ID, want); err != nil {
			return fmt.Errorf("check %d: %w", s.entries[i].ID, err)
		}
		s.entries[i].Checked = want
	}
	return nil
}

// Lookup resolves id to a label when it lies in [Base, Base+N).
func (s *Synchronizer) Lookup(id int) (string, bool) {
	i := id - Base
	if i < 0 || i >= len(s.entries) {
		return "", false
	}
	return s.entries[i].Label, true
}

// Find resolves a label to its current id.
func (s *Synchronizer) Find(label string) (int, bool) {
	for _, e := range s.entries {
		if e.Label == label {
			return e.ID, true
		}
	}
	return 0, false
}

// Entries returns a copy of the current entries.
func (s *Synchronizer) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Generation returns the number of rebuilds performed.
func (s *Synchronizer) Generation() uint64 {
	return s.generation
}

// Dir returns the listed folder.
func (s *Synchronizer) Dir() string {
	return s.dir
}
