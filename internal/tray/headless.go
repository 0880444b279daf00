// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package tray

import (
	"context"
	"sync"

	"github.com/wingedpig/scripttray/internal/config"
	"github.com/wingedpig/scripttray/internal/menu"
	"pkt.systems/pslog"
)

// Notice is a message shown by a surface.
type Notice struct {
	Title   string
	Message string
}

// HeadlessSurface renders nothing. Messages go to the log, the menu lives in
// memory and the stop prompt is answered by policy.
type HeadlessSurface struct {
	mu       sync.Mutex
	section  *menu.MemorySection
	policy   string
	tooltip  string
	notices  []Notice
	messages []Notice
	prompts  int
	logger   pslog.Logger
	quit     chan struct{}
	quitOnce sync.Once
}

// NewHeadlessSurface creates a surface. policy is one of the config
// ConfirmPrompt, ConfirmAlways or ConfirmNever values; with nobody to ask,
// ConfirmPrompt declines.
func NewHeadlessSurface(policy string, logger pslog.Logger) *HeadlessSurface {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &HeadlessSurface{
		section: menu.NewMemorySection(),
		policy:  policy,
		logger:  logger.With("component", "surface"),
		quit:    make(chan struct{}),
	}
}

func (s *HeadlessSurface) SetTooltip(text string) {
	s.mu.Lock()
	s.tooltip = text
	s.mu.Unlock()
	s.logger.Debug("tooltip", "text", text)
}

func (s *HeadlessSurface) Tooltip() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tooltip
}

func (s *HeadlessSurface) Notify(title, message string) {
	s.mu.Lock()
	s.notices = append(s.notices, Notice{Title: title, Message: message})
	s.mu.Unlock()
	s.logger.Warn(message, "title", title)
}

func (s *HeadlessSurface) Confirm(message string) bool {
	s.mu.Lock()
	s.prompts++
	s.mu.Unlock()

	answer := s.policy == config.ConfirmAlways
	s.logger.Info("confirmation", "prompt", message, "policy", s.policy, "answer", answer)
	return answer
}

func (s *HeadlessSurface) SimpleMessage(title, body string) {
	s.mu.Lock()
	s.messages = append(s.messages, Notice{Title: title, Message: body})
	s.mu.Unlock()
	s.logger.Info(body, "title", title, "source", "script")
}

func (s *HeadlessSurface) Section() menu.Section { return s.section }

// Entries returns the rendered Scripts submenu.
func (s *HeadlessSurface) Entries() []menu.Entry { return s.section.Items() }

func (s *HeadlessSurface) Quit() {
	s.quitOnce.Do(func() { close(s.quit) })
}

// Done is closed by Quit.
func (s *HeadlessSurface) Done() <-chan struct{} { return s.quit }

// Notices returns the notifications shown so far.
func (s *HeadlessSurface) Notices() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.notices...)
}

// Messages returns what scripts displayed through simple_message.
func (s *HeadlessSurface) Messages() []Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Notice(nil), s.messages...)
}

// Prompts returns how many confirmations were requested.
func (s *HeadlessSurface) Prompts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prompts
}
