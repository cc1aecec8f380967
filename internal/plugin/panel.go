// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plugin

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/blocks"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/reqcache"
	"github.com/jeranaias/aisuite/internal/state"
)

// Panel display text.
const (
	EmptyText         = "Select “Summarize Thread” or “Summarize Channel” to get started."
	SummaryFailedText = "Unable to load summary"
	DefaultPanelTitle = "AI Summary"
	ThreadPanelTitle  = "Thread Summary"
	ChannelPanelTitle = "Channel Summary"
	limitNoticeFormat = "Limited to %d messages"
	metaFormat        = "%d messages • %d participants"
)

var (
	// ErrUnknownRange is returned by SetRange for presets the server does
	// not accept.
	ErrUnknownRange = errors.New("unknown time range")

	// ErrInvalidRange is returned by SetCustomRange when since is not
	// before until.
	ErrInvalidRange = errors.New("invalid time range")
)

// PanelView is what the summary panel shows.
type PanelView struct {
	Title        string
	Meta         string
	RangeLabel   string
	Participants []string
	Cached       bool
	Loading      bool
	Error        string
	Summary      *model.SummaryResponse
	Blocks       blocks.Blocks
	LimitNotice  string

	// Empty is set when there is nothing to summarize.
	Empty string
}

// =============================================================================
// SUMMARY PANEL
// =============================================================================

// SummaryPanel follows the bridge target and loads summaries through a
// request cache. Loads run in the background; Wait blocks until they
// finish.
type SummaryPanel struct {
	loader *reqcache.Loader[model.SummaryRequest, *model.SummaryResponse]
	logger *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	unsub  func()

	mu         sync.Mutex
	target     *Target
	preset     string
	lastDone   chan struct{}
	loadCancel context.CancelFunc
	closed     bool
}

// NewSummaryPanel creates a panel that follows bridge.
func NewSummaryPanel(api state.SummaryAPI, bridge *Bridge, logger *zap.Logger) *SummaryPanel {
	if logger == nil {
		logger = zap.NewNop()
	}
	fetch := func(ctx context.Context, req model.SummaryRequest, force bool) (*model.SummaryResponse, error) {
		req.Force = force
		return api.Summarize(ctx, req)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &SummaryPanel{
		loader: reqcache.New(fetch).
			WithFallback(SummaryFailedText).
			WithLogger(logger.Named("summaries")),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		preset: DefaultRange,
	}
	p.unsub = bridge.Subscribe(p.setTarget)
	return p
}

func (p *SummaryPanel) setTarget(t *Target) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if t != nil {
		c := *t
		t = &c
	}
	p.target = t
	req := p.requestLocked()
	p.mu.Unlock()

	p.load(req, false)
}

func (p *SummaryPanel) requestLocked() *model.SummaryRequest {
	return p.target.Request(p.preset)
}

// load starts a background load. A newer load cancels an older one, and
// loads are applied to the cache in the order they were started.
func (p *SummaryPanel) load(req *model.SummaryRequest, refresh bool) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.loadCancel != nil {
		p.loadCancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.loadCancel = cancel
	prev := p.lastDone
	done := make(chan struct{})
	p.lastDone = done
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer close(done)
		defer cancel()

		if prev != nil {
			<-prev
		}
		if ctx.Err() != nil {
			return
		}

		var err error
		if refresh {
			_, err = p.loader.Refresh(ctx)
		} else {
			_, err = p.loader.SetRequest(ctx, req)
		}
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, reqcache.ErrClosed) {
			p.logger.Debug("summary load failed", zap.Error(err))
		}
	}()
}

// Refresh refetches the current summary, bypassing both caches.
func (p *SummaryPanel) Refresh() {
	p.load(nil, true)
}

// SetRange selects a preset range for channel summaries.
func (p *SummaryPanel) SetRange(preset string) error {
	if !slices.Contains(model.RangePresets, preset) {
		return fmt.Errorf("%w: %s", ErrUnknownRange, preset)
	}

	p.mu.Lock()
	p.preset = preset
	if p.target == nil || p.target.Type != model.SummaryChannel {
		p.mu.Unlock()
		return nil
	}
	p.target.TimeRange = preset
	p.target.Since, p.target.Until = 0, 0
	req := p.requestLocked()
	p.mu.Unlock()

	p.load(req, false)
	return nil
}

// SetCustomRange selects an explicit window for channel summaries.
func (p *SummaryPanel) SetCustomRange(since, until time.Time) error {
	if !since.Before(until) {
		return fmt.Errorf("%w: since must be before until", ErrInvalidRange)
	}

	p.mu.Lock()
	if p.target == nil || p.target.Type != model.SummaryChannel {
		p.mu.Unlock()
		return nil
	}
	p.target.TimeRange = ""
	p.target.Since = since.UnixMilli()
	p.target.Until = until.UnixMilli()
	req := p.requestLocked()
	p.mu.Unlock()

	p.load(req, false)
	return nil
}

// Range returns the selected preset.
func (p *SummaryPanel) Range() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.preset
}

// Target returns a copy of the target the panel follows, or nil.
func (p *SummaryPanel) Target() *Target {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.target == nil {
		return nil
	}
	t := *p.target
	return &t
}

// Request returns the request the panel is showing, or nil.
func (p *SummaryPanel) Request() *model.SummaryRequest {
	return p.loader.Current()
}

// Stats returns the panel's cache statistics.
func (p *SummaryPanel) Stats() reqcache.Stats {
	return p.loader.Stats()
}

// Wait blocks until every started load has finished.
func (p *SummaryPanel) Wait() {
	p.wg.Wait()
}

// View returns the current display state.
func (p *SummaryPanel) View() PanelView {
	p.mu.Lock()
	t := p.target
	p.mu.Unlock()
	return buildView(t, p.loader.Snapshot())
}

// Subscribe calls fn with a fresh view on every change. The returned
// function removes it.
func (p *SummaryPanel) Subscribe(fn func(PanelView)) func() {
	return p.loader.Subscribe(func(snap reqcache.Snapshot[*model.SummaryResponse]) {
		p.mu.Lock()
		t := p.target
		p.mu.Unlock()
		fn(buildView(t, snap))
	})
}

// Close stops following the bridge, cancels loads and drops the cache.
func (p *SummaryPanel) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.target = nil
	p.mu.Unlock()

	p.unsub()
	p.cancel()
	p.wg.Wait()
	p.loader.Close()
}

func buildView(t *Target, snap reqcache.Snapshot[*model.SummaryResponse]) PanelView {
	v := PanelView{
		Title:   DefaultPanelTitle,
		Loading: snap.Loading,
		Error:   snap.Error,
	}
	if t != nil {
		switch t.Type {
		case model.SummaryThread:
			v.Title = ThreadPanelTitle
		case model.SummaryChannel:
			v.Title = ChannelPanelTitle
		}
	}

	if !snap.HasResponse || snap.Response == nil {
		if t == nil && !snap.Loading && snap.Error == "" {
			v.Empty = EmptyText
		}
		return v
	}

	s := snap.Response
	v.Summary = s
	if s.Title != "" {
		v.Title = s.Title
	}
	v.Meta = fmt.Sprintf(metaFormat, s.MessageCount, s.ParticipantCount)
	v.RangeLabel = s.Range.Label
	v.Cached = s.Cached
	v.Blocks = blocks.Parse(s.Summary)
	for _, pt := range s.Participants {
		v.Participants = append(v.Participants, pt.Name())
	}
	if s.LimitReached {
		v.LimitNotice = fmt.Sprintf(limitNoticeFormat, s.Context.MessageLimit)
	}
	return v
}
