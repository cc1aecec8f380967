// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package plugin

import (
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/state"
)

// Registration constants.
const (
	ID                     = "com.mattermost.ai-suite"
	ActionSummarizeThread  = "Summarize Thread"
	ActionSummarizeChannel = "Summarize Channel"
	SidebarTitle           = "AI Summaries"
	DefaultRange           = model.Range24h
)

// Manifest describes the plugin to its host.
type Manifest struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Version          string `json:"version"`
	MinServerVersion string `json:"min_server_version"`
}

// DefaultManifest returns the AI suite manifest.
func DefaultManifest() Manifest {
	return Manifest{
		ID:               ID,
		Name:             "AI Productivity Suite",
		Description:      "Thread and channel summaries, action items and message formatting.",
		Version:          "0.1.0",
		MinServerVersion: "9.8.0",
	}
}

// =============================================================================
// HOST CAPABILITIES
// =============================================================================

// PostMenuRegistrar adds entries to a post's context menu. filter decides
// per post whether the entry is shown.
type PostMenuRegistrar interface {
	RegisterPostMenuAction(label string, action func(postID string), filter func(postID string) bool)
}

// ChannelHeaderRegistrar adds buttons to the channel header.
type ChannelHeaderRegistrar interface {
	RegisterChannelHeaderAction(label string, action func(channelID string))
}

// SidebarRegistrar mounts the summary panel in a sidebar. It returns
// functions that show and hide it.
type SidebarRegistrar interface {
	RegisterSidebar(title string, panel *SummaryPanel) (show, hide func())
}

// Capabilities records which registrars a host provided.
type Capabilities struct {
	PostMenu      bool
	ChannelHeader bool
	Sidebar       bool
}

// =============================================================================
// PLUGIN
// =============================================================================

// Plugin wires the summary entry points into a host.
type Plugin struct {
	api      state.SummaryAPI
	bridge   *Bridge
	manifest Manifest
	logger   *zap.Logger

	mu    sync.Mutex
	panel *SummaryPanel
	caps  Capabilities
	show  func()
	hide  func()
}

// New creates a plugin that fetches summaries through api.
func New(api state.SummaryAPI) *Plugin {
	return &Plugin{
		api:      api,
		bridge:   NewBridge(),
		manifest: DefaultManifest(),
		logger:   zap.NewNop(),
	}
}

// WithLogger sets the logger.
func (p *Plugin) WithLogger(logger *zap.Logger) *Plugin {
	if logger != nil {
		p.logger = logger.Named("plugin")
	}
	return p
}

// Initialize registers every entry point host supports. Calling it again
// replaces the previous registration's panel.
func (p *Plugin) Initialize(host any) Capabilities {
	p.mu.Lock()
	old := p.panel
	p.panel = NewSummaryPanel(p.api, p.bridge, p.logger)
	p.caps = Capabilities{}
	p.show, p.hide = nil, nil
	panel := p.panel
	p.mu.Unlock()

	if old != nil {
		old.Close()
	}

	var caps Capabilities
	var show, hide func()

	if r, ok := host.(SidebarRegistrar); ok {
		show, hide = r.RegisterSidebar(SidebarTitle, panel)
		caps.Sidebar = true
	}

	if r, ok := host.(PostMenuRegistrar); ok {
		r.RegisterPostMenuAction(ActionSummarizeThread, p.summarizeThread, func(postID string) bool {
			return strings.TrimSpace(postID) != ""
		})
		caps.PostMenu = true
	}

	if r, ok := host.(ChannelHeaderRegistrar); ok {
		r.RegisterChannelHeaderAction(ActionSummarizeChannel, p.summarizeChannel)
		caps.ChannelHeader = true
	}

	p.mu.Lock()
	p.caps = caps
	p.show, p.hide = show, hide
	p.mu.Unlock()

	p.logger.Info("initialized",
		zap.String("id", p.manifest.ID),
		zap.String("version", p.manifest.Version),
		zap.Bool("post_menu", caps.PostMenu),
		zap.Bool("channel_header", caps.ChannelHeader),
		zap.Bool("sidebar", caps.Sidebar),
	)
	return caps
}

func (p *Plugin) summarizeThread(postID string) {
	p.bridge.SetTarget(&Target{Type: model.SummaryThread, PostID: postID})
	p.open()
}

func (p *Plugin) summarizeChannel(channelID string) {
	p.bridge.SetTarget(&Target{Type: model.SummaryChannel, ChannelID: channelID, TimeRange: DefaultRange})
	p.open()
}

func (p *Plugin) open() {
	p.mu.Lock()
	show := p.show
	p.mu.Unlock()
	if show != nil {
		show()
	}
}

// Uninitialize clears the target, hides the sidebar and closes the panel.
func (p *Plugin) Uninitialize() {
	p.bridge.SetTarget(nil)

	p.mu.Lock()
	hide := p.hide
	panel := p.panel
	p.panel = nil
	p.show, p.hide = nil, nil
	p.caps = Capabilities{}
	p.mu.Unlock()

	if hide != nil {
		hide()
	}
	if panel != nil {
		panel.Close()
	}
}

// Bridge returns the target bridge.
func (p *Plugin) Bridge() *Bridge { return p.bridge }

// Manifest returns the plugin manifest.
func (p *Plugin) Manifest() Manifest { return p.manifest }

// Panel returns the summary panel, or nil before Initialize.
func (p *Plugin) Panel() *SummaryPanel {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.panel
}

// Capabilities returns what the last Initialize registered.
func (p *Plugin) Capabilities() Capabilities {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.caps
}
