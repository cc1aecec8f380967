// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"maps"

	"github.com/jeranaias/aisuite/internal/model"
)

// Default error texts used when a failure action carries none.
const (
	ErrPreviewFailed  = "Failed to preview formatting"
	ErrApplyFailed    = "Failed to apply formatting"
	ErrProfilesFailed = "Failed to load formatting profiles"
)

// SummariesState holds fetched summaries.
type SummariesState struct {
	ByID map[string]*model.SummaryResponse
	// ByChannel lists summary ids per channel, oldest first.
	ByChannel map[string][]string
	Loading   bool
	Error     string
}

// ActionItemsState holds fetched action items.
type ActionItemsState struct {
	Items   map[string]*model.ActionItem
	Stats   *model.ActionItemStats
	Loading bool
	Error   string
}

// FormatterState holds the formatter preview and profiles.
type FormatterState struct {
	Preview    *model.FormatResponse
	Profiles   []model.FormattingProfile
	Loading    bool
	Formatting bool
	Error      string
}

// AppState is the complete client state.
type AppState struct {
	Summaries   SummariesState
	ActionItems ActionItemsState
	Formatter   FormatterState
}

// New returns an empty state.
func New() *AppState {
	return &AppState{
		Summaries: SummariesState{
			ByID:      map[string]*model.SummaryResponse{},
			ByChannel: map[string][]string{},
		},
		ActionItems: ActionItemsState{
			Items: map[string]*model.ActionItem{},
		},
	}
}

// Reduce returns the state after applying a. prev is never modified; an
// action that changes nothing returns prev itself.
func Reduce(prev *AppState, a Action) *AppState {
	if prev == nil {
		prev = New()
	}

	switch a := a.(type) {
	// Summaries
	case SummaryRequested:
		next := *prev
		next.Summaries.Loading = true
		next.Summaries.Error = ""
		return &next

	case SummaryReceived:
		if a.Summary == nil {
			return prev
		}
		next := *prev
		next.Summaries = reduceSummaryReceived(prev.Summaries, a.Summary)
		return &next

	case SummaryFailed:
		next := *prev
		next.Summaries.Loading = false
		next.Summaries.Error = a.Err
		return &next

	case SummaryCleared:
		next := *prev
		next.Summaries = New().Summaries
		return &next

	// Action items
	case ActionItemsRequested:
		next := *prev
		next.ActionItems.Loading = true
		next.ActionItems.Error = ""
		return &next

	case ActionItemsReceived:
		next := *prev
		items := maps.Clone(prev.ActionItems.Items)
		if items == nil {
			items = map[string]*model.ActionItem{}
		}
		for _, item := range a.Items {
			if item != nil {
				items[item.ID] = item
			}
		}
		next.ActionItems.Items = items
		next.ActionItems.Loading = false
		next.ActionItems.Error = ""
		return &next

	case ActionItemReceived:
		if a.Item == nil {
			return prev
		}
		next := *prev
		items := maps.Clone(prev.ActionItems.Items)
		if items == nil {
			items = map[string]*model.ActionItem{}
		}
		items[a.Item.ID] = a.Item
		next.ActionItems.Items = items
		next.ActionItems.Loading = false
		next.ActionItems.Error = ""
		return &next

	case ActionItemDeleted:
		next := *prev
		items := maps.Clone(prev.ActionItems.Items)
		delete(items, a.ID)
		next.ActionItems.Items = items
		next.ActionItems.Loading = false
		next.ActionItems.Error = ""
		return &next

	case ActionItemStatsReceived:
		next := *prev
		next.ActionItems.Stats = a.Stats
		next.ActionItems.Loading = false
		next.ActionItems.Error = ""
		return &next

	case ActionItemsFailed:
		next := *prev
		next.ActionItems.Loading = false
		next.ActionItems.Error = a.Err
		return &next

	// Formatter
	case FormatPreviewRequested, FormatApplyRequested:
		next := *prev
		next.Formatter.Loading = true
		next.Formatter.Formatting = true
		next.Formatter.Error = ""
		return &next

	case FormatPreviewReceived:
		next := *prev
		next.Formatter.Preview = a.Response
		next.Formatter.Loading = false
		next.Formatter.Formatting = false
		next.Formatter.Error = ""
		return &next

	case FormatPreviewFailed:
		next := *prev
		next.Formatter.Loading = false
		next.Formatter.Formatting = false
		next.Formatter.Error = orDefault(a.Err, ErrPreviewFailed)
		return &next

	case FormatApplied:
		next := *prev
		next.Formatter.Preview = nil
		next.Formatter.Loading = false
		next.Formatter.Formatting = false
		next.Formatter.Error = ""
		return &next

	case FormatApplyFailed:
		next := *prev
		next.Formatter.Loading = false
		next.Formatter.Formatting = false
		next.Formatter.Error = orDefault(a.Err, ErrApplyFailed)
		return &next

	case ProfilesRequested:
		next := *prev
		next.Formatter.Loading = true
		next.Formatter.Error = ""
		return &next

	case ProfilesReceived:
		next := *prev
		next.Formatter.Profiles = append([]model.FormattingProfile(nil), a.Profiles...)
		next.Formatter.Loading = false
		next.Formatter.Error = ""
		return &next

	case ProfilesFailed:
		next := *prev
		next.Formatter.Loading = false
		next.Formatter.Error = orDefault(a.Err, ErrProfilesFailed)
		return &next

	case FormatPreviewCleared:
		next := *prev
		next.Formatter.Preview = nil
		next.Formatter.Error = ""
		return &next
	}

	return prev
}

func reduceSummaryReceived(prev SummariesState, summary *model.SummaryResponse) SummariesState {
	next := prev
	next.ByID = maps.Clone(prev.ByID)
	if next.ByID == nil {
		next.ByID = map[string]*model.SummaryResponse{}
	}
	next.ByID[summary.ID] = summary

	next.ByChannel = maps.Clone(prev.ByChannel)
	if next.ByChannel == nil {
		next.ByChannel = map[string][]string{}
	}
	ids := make([]string, 0, len(prev.ByChannel[summary.ChannelID])+1)
	for _, id := range prev.ByChannel[summary.ChannelID] {
		if id != summary.ID {
			ids = append(ids, id)
		}
	}
	next.ByChannel[summary.ChannelID] = append(ids, summary.ID)

	next.Loading = false
	next.Error = ""
	return next
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
