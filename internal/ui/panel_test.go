// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"bytes"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/aisuite/internal/blocks"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/plugin"
	"github.com/jeranaias/aisuite/internal/render"
)

type fakePanel struct {
	view      plugin.PanelView
	target    *plugin.Target
	preset    string
	refreshes int
	setRanges []string
}

func (f *fakePanel) View() plugin.PanelView { return f.view }
func (f *fakePanel) Target() *plugin.Target { return f.target }
func (f *fakePanel) Range() string          { return f.preset }
func (f *fakePanel) Refresh()               { f.refreshes++ }

func (f *fakePanel) SetRange(preset string) error {
	f.setRanges = append(f.setRanges, preset)
	f.preset = preset
	return nil
}

func channelPanel() *fakePanel {
	return &fakePanel{
		view:   plugin.PanelView{Title: plugin.ChannelPanelTitle, Loading: true},
		target: &plugin.Target{Type: model.SummaryChannel, ChannelID: "release", TimeRange: model.Range24h},
		preset: model.Range24h,
	}
}

func newTestModel(p Panel) Model {
	return New(p, render.New(&bytes.Buffer{}, render.Plain()))
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	got, ok := next.(Model)
	require.True(t, ok)
	return got, cmd
}

func TestView_Loading(t *testing.T) {
	m := newTestModel(channelPanel())

	out := m.View()
	assert.Contains(t, out, plugin.ChannelPanelTitle)
	assert.Contains(t, out, loadingText)
	assert.Contains(t, out, "[24h] 3d 7d 30d today")
	assert.NotNil(t, m.Init())
}

func TestView_Summary(t *testing.T) {
	m := newTestModel(channelPanel())

	m, cmd := update(t, m, ViewMsg(plugin.PanelView{
		Title:        plugin.ChannelPanelTitle,
		Meta:         "3 messages • 2 participants",
		RangeLabel:   "Last 24 hours",
		Cached:       true,
		Summary:      &model.SummaryResponse{ID: "s-1", Summary: "Release ships Thursday."},
		Blocks:       blocks.Blocks{blocks.NewParagraph("Release ships Thursday.")},
		Participants: []string{"Grace", "linus"},
		LimitNotice:  "Only the most recent 200 messages were summarized.",
	}))
	assert.Nil(t, cmd)

	out := m.View()
	assert.NotContains(t, out, loadingText)
	assert.Contains(t, out, "3 messages • 2 participants • cached")
	assert.Contains(t, out, "Last 24 hours")
	assert.Contains(t, out, "Release ships Thursday.")
	assert.Contains(t, out, "Participants: Grace, linus")
	assert.Contains(t, out, "Only the most recent 200 messages")
}

func TestView_RefreshingKeepsSummary(t *testing.T) {
	m := newTestModel(channelPanel())
	m, _ = update(t, m, ViewMsg(plugin.PanelView{
		Title:   plugin.ChannelPanelTitle,
		Loading: true,
		Summary: &model.SummaryResponse{ID: "s-1"},
		Blocks:  blocks.Blocks{blocks.NewParagraph("Old summary")},
	}))

	out := m.View()
	assert.Contains(t, out, refreshingText)
	assert.Contains(t, out, "Old summary")
}

func TestView_Error(t *testing.T) {
	m := newTestModel(channelPanel())
	m, _ = update(t, m, ViewMsg(plugin.PanelView{
		Title: plugin.ChannelPanelTitle,
		Error: plugin.SummaryFailedText,
	}))

	out := m.View()
	assert.Contains(t, out, "Error: "+plugin.SummaryFailedText)
	assert.NotContains(t, out, loadingText)
}

func TestView_Empty(t *testing.T) {
	m := newTestModel(&fakePanel{view: plugin.PanelView{
		Title: plugin.DefaultPanelTitle,
		Empty: plugin.EmptyText,
	}})

	out := m.View()
	assert.Contains(t, out, plugin.EmptyText)
	assert.NotContains(t, out, "[24h]")
}

func TestUpdate_Refresh(t *testing.T) {
	p := channelPanel()
	m := newTestModel(p)

	_, cmd := update(t, m, runes("r"))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, p.refreshes)
}

func TestUpdate_RangeKeysWrap(t *testing.T) {
	p := channelPanel()
	m := newTestModel(p)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, []string{model.Range3d}, p.setRanges)
	assert.Contains(t, m.View(), "24h [3d] 7d")
	assert.Contains(t, m.View(), "Range: 3d")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.Equal(t, []string{model.Range3d, model.Range24h, model.RangeToday}, p.setRanges)

	_, _ = update(t, m, runes("l"))
	assert.Equal(t, model.Range24h, p.preset)
}

func TestUpdate_RangeKeysIgnoredForThreads(t *testing.T) {
	p := &fakePanel{
		view:   plugin.PanelView{Title: plugin.ThreadPanelTitle, Loading: true},
		target: &plugin.Target{Type: model.SummaryThread, PostID: "p-release"},
		preset: model.Range24h,
	}
	m := newTestModel(p)

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Empty(t, p.setRanges)
	assert.Contains(t, m.View(), threadRangeHint)
}

func TestUpdate_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		_, cmd := update(t, newTestModel(channelPanel()), msg)
		require.NotNil(t, cmd, msg.String())
		assert.Equal(t, tea.QuitMsg{}, cmd(), msg.String())
	}
}

func TestUpdate_HelpToggles(t *testing.T) {
	m := newTestModel(channelPanel())
	assert.NotContains(t, m.View(), "previous range")

	m, _ = update(t, m, runes("?"))
	assert.Contains(t, m.View(), "previous range")

	m, _ = update(t, m, runes("?"))
	assert.NotContains(t, m.View(), "previous range")
}

func TestUpdate_WindowSize(t *testing.T) {
	m := newTestModel(channelPanel())
	m, cmd := update(t, m, tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Nil(t, cmd)
	assert.Equal(t, 40, m.help.Width)
}
