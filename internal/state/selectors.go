// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"sort"
	"time"

	"github.com/jeranaias/aisuite/internal/model"
)

// =============================================================================
// SUMMARY SELECTORS
// =============================================================================

// Summary returns a summary by id, or nil.
func Summary(s *AppState, id string) *model.SummaryResponse {
	return s.Summaries.ByID[id]
}

// SummariesForChannel returns a channel's summaries, newest first.
func SummariesForChannel(s *AppState, channelID string) []*model.SummaryResponse {
	ids := s.Summaries.ByChannel[channelID]
	out := make([]*model.SummaryResponse, 0, len(ids))
	for i := len(ids) - 1; i >= 0; i-- {
		if sum, ok := s.Summaries.ByID[ids[i]]; ok {
			out = append(out, sum)
		}
	}
	return out
}

// LatestSummary returns the most recent summary for a channel, or nil.
func LatestSummary(s *AppState, channelID string) *model.SummaryResponse {
	sums := SummariesForChannel(s, channelID)
	if len(sums) == 0 {
		return nil
	}
	return sums[0]
}

// =============================================================================
// ACTION ITEM SELECTORS
// =============================================================================

// ActionItem returns an item by id, or nil.
func ActionItem(s *AppState, id string) *model.ActionItem {
	return s.ActionItems.Items[id]
}

// ActionItems returns every item, newest first.
func ActionItems(s *AppState) []*model.ActionItem {
	return filterItems(s, func(*model.ActionItem) bool { return true })
}

// ActiveActionItems returns items that are neither completed nor dismissed.
func ActiveActionItems(s *AppState) []*model.ActionItem {
	return filterItems(s, func(it *model.ActionItem) bool { return !it.Status.Closed() })
}

// CompletedActionItems returns completed items.
func CompletedActionItems(s *AppState) []*model.ActionItem {
	return filterItems(s, func(it *model.ActionItem) bool { return it.Status == model.StatusCompleted })
}

// OverdueActionItems returns open items past their due date.
func OverdueActionItems(s *AppState, now time.Time) []*model.ActionItem {
	return filterItems(s, func(it *model.ActionItem) bool { return it.IsOverdue(now) })
}

// DueSoonActionItems returns open items due within the next seven days.
func DueSoonActionItems(s *AppState, now time.Time) []*model.ActionItem {
	return filterItems(s, func(it *model.ActionItem) bool { return it.IsDueSoon(now) })
}

// ActionItemsForChannel returns a channel's items.
func ActionItemsForChannel(s *AppState, channelID string) []*model.ActionItem {
	return filterItems(s, func(it *model.ActionItem) bool { return it.ChannelID == channelID })
}

// ActionItemsByPriority groups active items by priority. Every priority
// has an entry, possibly empty.
func ActionItemsByPriority(s *AppState) map[model.Priority][]*model.ActionItem {
	groups := make(map[model.Priority][]*model.ActionItem, len(model.Priorities))
	for _, p := range model.Priorities {
		groups[p] = []*model.ActionItem{}
	}
	for _, it := range ActiveActionItems(s) {
		groups[it.Priority] = append(groups[it.Priority], it)
	}
	return groups
}

// ActionItemStats returns the last fetched stats, or nil.
func ActionItemStats(s *AppState) *model.ActionItemStats {
	return s.ActionItems.Stats
}

func filterItems(s *AppState, keep func(*model.ActionItem) bool) []*model.ActionItem {
	out := make([]*model.ActionItem, 0, len(s.ActionItems.Items))
	for _, it := range s.ActionItems.Items {
		if keep(it) {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreateAt != out[j].CreateAt {
			return out[i].CreateAt > out[j].CreateAt
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// =============================================================================
// FORMATTER SELECTORS
// =============================================================================

// FormatPreview returns the pending preview, or nil.
func FormatPreview(s *AppState) *model.FormatResponse {
	return s.Formatter.Preview
}

// FormattingProfiles returns the fetched profiles.
func FormattingProfiles(s *AppState) []model.FormattingProfile {
	return s.Formatter.Profiles
}

// IsFormatting reports whether any formatter request is in flight.
func IsFormatting(s *AppState) bool {
	return s.Formatter.Formatting || s.Formatter.Loading
}

// FormatterError returns the last formatter error, or "".
func FormatterError(s *AppState) string {
	return s.Formatter.Error
}
