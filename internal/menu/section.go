// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package menu

import "fmt"

// Section is the dynamic part of the tray menu that lists scripts.
// Implementations are driven from the dispatch goroutine only.
type Section interface {
	Len() int
	RemoveAt(i int) error
	Append(id int, label string, checked bool) error
	SetChecked(id int, checked bool) error
}

// Generational is implemented by sections that stamp clicks with the
// generation their entries were appended in.
type Generational interface {
	BeginGeneration(gen uint64)
}

// MemorySection is a Section kept entirely in memory. It backs headless mode
// and records every mutation for inspection.
type MemorySection struct {
	entries    []Entry
	generation uint64
	Removes    int
	Appends    int
}

// NewMemorySection returns an empty section.
func NewMemorySection() *MemorySection {
	return &MemorySection{}
}

func (s *MemorySection) Len() int { return len(s.entries) }

func (s *MemorySection) RemoveAt(i int) error {
	if i < 0 || i >= len(s.entries) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(s.entries))
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	s.Removes++
	return nil
}

func (s *MemorySection) Append(id int, label string, checked bool) error {
	s.entries = append(s.entries, Entry{ID: id, Label: label, Checked: checked})
	s.Appends++
	return nil
}

func (s *MemorySection) SetChecked(id int, checked bool) error {
	for i := range s.entries {
		if s.entries[i].ID == id {
			s.entries[i].Checked = checked
			return nil
		}
	}
	return fmt.Errorf("no entry with id %d", id)
}

func (s *MemorySection) BeginGeneration(gen uint64) { s.generation = gen }

// Generation returns the generation of the current entries.
func (s *MemorySection) Generation() uint64 { return s.generation }

// Items returns a copy of the rendered entries.
func (s *MemorySection) Items() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
