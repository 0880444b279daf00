// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package desktop

import (
	"fmt"

	"fyne.io/systray"
	"github.com/wingedpig/scripttray/internal/tray"
	"pkt.systems/pslog"
)

type sectionItem struct {
	id   int
	item *systray.MenuItem
	stop chan struct{}
}

// section is the Scripts submenu. Each item has a forwarder goroutine that
// turns its clicks into tray.RunScript commands stamped with the generation
// the item was appended in.
type section struct {
	parent     *systray.MenuItem
	sink       Sink
	quit       <-chan struct{}
	logger     pslog.Logger
	items      []sectionItem
	generation uint64
}

func newSection(parent *systray.MenuItem, sink Sink, quit <-chan struct{}, logger pslog.Logger) *section {
	return &section{parent: parent, sink: sink, quit: quit, logger: logger}
}

func (s *section) BeginGeneration(gen uint64) { s.generation = gen }

func (s *section) Len() int { return len(s.items) }

func (s *section) RemoveAt(i int) error {
	if i < 0 || i >= len(s.items) {
		return fmt.Errorf("remove index %d out of range [0,%d)", i, len(s.items))
	}
	it := s.items[i]
	close(it.stop)
	it.item.Remove()
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *section) Append(id int, label string, checked bool) error {
	item := s.parent.AddSubMenuItemCheckbox(label, "", checked)
	it := sectionItem{id: id, item: item, stop: make(chan struct{})}
	s.items = append(s.items, it)

	cmd := tray.RunScript{Name: label, ID: id, Generation: s.generation}
	go func() {
		for {
			select {
			case <-it.stop:
				return
			case <-s.quit:
				return
			case <-item.ClickedCh:
				if err := s.sink.Send(cmd); err != nil {
					s.logger.Debug("click dropped", "script", label, "error", err)
				}
			}
		}
	}()
	return nil
}

func (s *section) SetChecked(id int, checked bool) error {
	for _, it := range s.items {
		if it.id != id {
			continue
		}
		if checked {
			it.item.Check()
		} else {
			it.item.Uncheck()
		}
		return nil
	}
	return fmt.Errorf("no entry with id %d", id)
}
