// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plugin

import (
	"strings"
	"sync"

	"github.com/jeranaias/aisuite/internal/model"
)

// Target is what the user asked to summarize.
type Target struct {
	Type       model.SummaryType
	ChannelID  string
	RootPostID string
	PostID     string
	TimeRange  string
	Since      int64
	Until      int64
	Label      string
}

// Request converts the target into a summary request. It returns nil when
// the target lacks the ids its type needs. A channel target without a range
// uses defaultRange.
func (t *Target) Request(defaultRange string) *model.SummaryRequest {
	if t == nil {
		return nil
	}
	switch t.Type {
	case model.SummaryThread:
		root := t.RootPostID
		if root == "" {
			root = t.PostID
		}
		if strings.TrimSpace(root) == "" {
			return nil
		}
		return &model.SummaryRequest{
			Type:       model.SummaryThread,
			ChannelID:  t.ChannelID,
			RootPostID: root,
			PostID:     t.PostID,
		}
	case model.SummaryChannel:
		if strings.TrimSpace(t.ChannelID) == "" {
			return nil
		}
		req := &model.SummaryRequest{
			Type:      model.SummaryChannel,
			ChannelID: t.ChannelID,
			TimeRange: t.TimeRange,
			Since:     t.Since,
			Until:     t.Until,
		}
		if req.TimeRange == "" && req.Since == 0 && req.Until == 0 {
			req.TimeRange = defaultRange
		}
		return req
	}
	return nil
}

// Bridge publishes the current target. Subscribers are called
// synchronously, in no particular order.
type Bridge struct {
	mu        sync.Mutex
	target    *Target
	listeners map[int]func(*Target)
	nextID    int
}

// NewBridge returns a bridge with no target.
func NewBridge() *Bridge {
	return &Bridge{listeners: make(map[int]func(*Target))}
}

// SetTarget replaces the target, nil clearing it, and notifies every
// subscriber.
func (b *Bridge) SetTarget(t *Target) {
	b.mu.Lock()
	if t != nil {
		c := *t
		t = &c
	}
	b.target = t
	listeners := make([]func(*Target), 0, len(b.listeners))
	for _, fn := range b.listeners {
		listeners = append(listeners, fn)
	}
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(t)
	}
}

// Subscribe registers fn, calls it once with the current target, and
// returns a function that removes it.
func (b *Bridge) Subscribe(fn func(*Target)) func() {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[id] = fn
	current := b.target
	b.mu.Unlock()

	fn(current)

	return func() {
		b.mu.Lock()
		delete(b.listeners, id)
		b.mu.Unlock()
	}
}

// Target returns the current target, or nil.
func (b *Bridge) Target() *Target {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.target
}
