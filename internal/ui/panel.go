// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/plugin"
	"github.com/jeranaias/aisuite/internal/render"
)

// Status line text.
const (
	loadingText      = "Loading summary..."
	refreshingText   = "Refreshing..."
	threadRangeHint  = "Time ranges apply to channel summaries"
	rangeStatusFmt   = "Range: %s"
	cachedMetaSuffix = " • cached"
)

// Panel is the part of plugin.SummaryPanel the view drives.
type Panel interface {
	View() plugin.PanelView
	Target() *plugin.Target
	Range() string
	SetRange(preset string) error
	Refresh()
}

// ViewMsg delivers a new panel view to the program.
type ViewMsg plugin.PanelView

// =============================================================================
// MODEL
// =============================================================================

// Model is the bubbletea model of the summary panel.
type Model struct {
	panel    Panel
	renderer *render.Renderer
	keys     KeyMap
	help     help.Model
	spinner  spinner.Model

	view   plugin.PanelView
	status string
}

// New creates a model showing panel's current view.
func New(panel Panel, r *render.Renderer) Model {
	s := spinner.New()
	s.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	h := help.New()
	h.Width = r.Options().Width

	return Model{
		panel:    panel,
		renderer: r,
		keys:     DefaultKeyMap(),
		help:     h,
		spinner:  s,
		view:     panel.View(),
	}
}

// Init starts the spinner and rereads the panel, which may have changed
// before the program subscribed to it.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.currentView)
}

func (m Model) currentView() tea.Msg {
	return ViewMsg(m.panel.View())
}

// Update handles panel views, keys, resizes and spinner ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ViewMsg:
		m.view = plugin.PanelView(msg)
		return m, nil

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Refresh):
		m.status = ""
		m.panel.Refresh()
	case key.Matches(msg, m.keys.NextRange):
		m.shiftRange(1)
	case key.Matches(msg, m.keys.PrevRange):
		m.shiftRange(-1)
	}
	return m, nil
}

// shiftRange moves through the presets, wrapping at either end.
func (m *Model) shiftRange(delta int) {
	if t := m.panel.Target(); t == nil || t.Type != model.SummaryChannel {
		m.status = threadRangeHint
		return
	}

	presets := model.RangePresets
	i := slices.Index(presets, m.panel.Range())
	if i < 0 {
		i = 0
	}
	next := presets[(i+delta+len(presets))%len(presets)]
	if err := m.panel.SetRange(next); err != nil {
		m.status = err.Error()
		return
	}
	m.status = fmt.Sprintf(rangeStatusFmt, next)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel.
func (m Model) View() string {
	r := m.renderer
	v := m.view
	var sections []string

	header := r.Heading(v.Title)
	if v.Meta != "" {
		meta := v.Meta
		if v.Cached {
			meta += cachedMetaSuffix
		}
		header += "\n" + r.Muted(meta)
	}
	if v.RangeLabel != "" {
		header += "\n" + r.Muted(v.RangeLabel)
	}
	if line := m.rangeLine(); line != "" {
		header += "\n" + line
	}
	sections = append(sections, header)

	switch {
	case v.Error != "":
		sections = append(sections, r.Error(v.Error))
	case v.Summary == nil && v.Loading:
		sections = append(sections, m.spinner.View()+" "+loadingText)
	case v.Summary == nil:
		sections = append(sections, v.Empty)
	default:
		if v.Loading {
			sections = append(sections, m.spinner.View()+" "+refreshingText)
		}
		sections = append(sections, r.Blocks(v.Blocks))
		if len(v.Participants) > 0 {
			sections = append(sections, r.Muted("Participants: "+strings.Join(v.Participants, ", ")))
		}
		if v.LimitNotice != "" {
			sections = append(sections, r.Muted(v.LimitNotice))
		}
	}

	if m.status != "" {
		sections = append(sections, r.Muted(m.status))
	}
	sections = append(sections, m.help.View(m.keys))
	return strings.Join(sections, "\n\n") + "\n"
}

// rangeLine lists the presets with the selected one bracketed. Threads have
// no range line.
func (m Model) rangeLine() string {
	t := m.panel.Target()
	if t == nil || t.Type != model.SummaryChannel {
		return ""
	}
	current := m.panel.Range()
	parts := make([]string, len(model.RangePresets))
	for i, p := range model.RangePresets {
		if p == current {
			parts[i] = "[" + p + "]"
		} else {
			parts[i] = p
		}
	}
	return strings.Join(parts, " ")
}
