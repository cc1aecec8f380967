// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	// ErrNoAction is returned when no entry is registered under a label.
	ErrNoAction = errors.New("no such action")

	// ErrFiltered is returned when a post menu filter rejects the post.
	ErrFiltered = errors.New("action not available for post")
)

type postMenuEntry struct {
	action func(string)
	filter func(string) bool
}

// TerminalHost is a host for command line front ends. It implements every
// registrar and lets callers trigger entries by label.
type TerminalHost struct {
	mu            sync.Mutex
	postMenu      map[string]postMenuEntry
	channelHeader map[string]func(string)
	sidebarTitle  string
	panel         *SummaryPanel
	visible       bool
}

// NewTerminalHost creates an empty host.
func NewTerminalHost() *TerminalHost {
	return &TerminalHost{
		postMenu:      make(map[string]postMenuEntry),
		channelHeader: make(map[string]func(string)),
	}
}

// RegisterPostMenuAction implements PostMenuRegistrar.
func (h *TerminalHost) RegisterPostMenuAction(label string, action func(string), filter func(string) bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.postMenu[label] = postMenuEntry{action: action, filter: filter}
}

// RegisterChannelHeaderAction implements ChannelHeaderRegistrar.
func (h *TerminalHost) RegisterChannelHeaderAction(label string, action func(string)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.channelHeader[label] = action
}

// RegisterSidebar implements SidebarRegistrar.
func (h *TerminalHost) RegisterSidebar(title string, panel *SummaryPanel) (show, hide func()) {
	h.mu.Lock()
	h.sidebarTitle = title
	h.panel = panel
	h.visible = false
	h.mu.Unlock()

	return func() { h.setVisible(true) }, func() { h.setVisible(false) }
}

func (h *TerminalHost) setVisible(v bool) {
	h.mu.Lock()
	h.visible = v
	h.mu.Unlock()
}

// ClickPostMenu runs the post menu entry label for postID.
func (h *TerminalHost) ClickPostMenu(label, postID string) error {
	h.mu.Lock()
	entry, ok := h.postMenu[label]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoAction, label)
	}
	if entry.filter != nil && !entry.filter(postID) {
		return fmt.Errorf("%w: %q", ErrFiltered, postID)
	}
	entry.action(postID)
	return nil
}

// ClickChannelHeader runs the channel header entry label for channelID.
func (h *TerminalHost) ClickChannelHeader(label, channelID string) error {
	h.mu.Lock()
	action, ok := h.channelHeader[label]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoAction, label)
	}
	action(channelID)
	return nil
}

// Actions lists the registered labels, post menu entries first.
func (h *TerminalHost) Actions() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	post := make([]string, 0, len(h.postMenu))
	for label := range h.postMenu {
		post = append(post, label)
	}
	sort.Strings(post)

	header := make([]string, 0, len(h.channelHeader))
	for label := range h.channelHeader {
		header = append(header, label)
	}
	sort.Strings(header)

	return append(post, header...)
}

// SidebarTitle returns the registered sidebar title.
func (h *TerminalHost) SidebarTitle() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sidebarTitle
}

// Panel returns the mounted panel, or nil.
func (h *TerminalHost) Panel() *SummaryPanel {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.panel
}

// Visible reports whether the sidebar is shown.
func (h *TerminalHost) Visible() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.visible
}
