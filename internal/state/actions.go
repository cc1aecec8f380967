// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import "github.com/jeranaias/aisuite/internal/model"

// Action is an event that Reduce applies to the state. The set is closed:
// only types in this package implement it.
type Action interface {
	isAction()
}

// =============================================================================
// SUMMARY ACTIONS
// =============================================================================

// SummaryRequested marks a summary fetch in flight.
type SummaryRequested struct {
	Request model.SummaryRequest
}

// SummaryReceived stores a summary and indexes it by channel.
type SummaryReceived struct {
	Summary *model.SummaryResponse
}

// SummaryFailed records a summary fetch error.
type SummaryFailed struct {
	Err string
}

// SummaryCleared resets all summary state.
type SummaryCleared struct{}

// =============================================================================
// ACTION ITEM ACTIONS
// =============================================================================

// ActionItemsRequested marks an action item request in flight.
type ActionItemsRequested struct{}

// ActionItemsReceived merges a fetched list into the item set.
type ActionItemsReceived struct {
	Items []*model.ActionItem
}

// ActionItemReceived stores one created, fetched or updated item.
type ActionItemReceived struct {
	Item *model.ActionItem
}

// ActionItemDeleted removes an item.
type ActionItemDeleted struct {
	ID string
}

// ActionItemStatsReceived stores the latest stats.
type ActionItemStatsReceived struct {
	Stats *model.ActionItemStats
}

// ActionItemsFailed records an action item request error.
type ActionItemsFailed struct {
	Err string
}

// =============================================================================
// FORMATTER ACTIONS
// =============================================================================

// FormatPreviewRequested marks a preview in flight.
type FormatPreviewRequested struct{}

// FormatPreviewReceived stores the preview response.
type FormatPreviewReceived struct {
	Response *model.FormatResponse
}

// FormatPreviewFailed records a preview error.
type FormatPreviewFailed struct {
	Err string
}

// FormatApplyRequested marks an apply in flight.
type FormatApplyRequested struct{}

// FormatApplied clears the preview after a successful apply.
type FormatApplied struct {
	Response *model.FormatResponse
}

// FormatApplyFailed records an apply error.
type FormatApplyFailed struct {
	Err string
}

// ProfilesRequested marks a profile list fetch in flight.
type ProfilesRequested struct{}

// ProfilesReceived stores the profile list.
type ProfilesReceived struct {
	Profiles []model.FormattingProfile
}

// ProfilesFailed records a profile list error.
type ProfilesFailed struct {
	Err string
}

// FormatPreviewCleared drops the preview and any error.
type FormatPreviewCleared struct{}

func (SummaryRequested) isAction()        {}
func (SummaryReceived) isAction()         {}
func (SummaryFailed) isAction()           {}
func (SummaryCleared) isAction()          {}
func (ActionItemsRequested) isAction()    {}
func (ActionItemsReceived) isAction()     {}
func (ActionItemReceived) isAction()      {}
func (ActionItemDeleted) isAction()       {}
func (ActionItemStatsReceived) isAction() {}
func (ActionItemsFailed) isAction()       {}
func (FormatPreviewRequested) isAction()  {}
func (FormatPreviewReceived) isAction()   {}
func (FormatPreviewFailed) isAction()     {}
func (FormatApplyRequested) isAction()    {}
func (FormatApplied) isAction()           {}
func (FormatApplyFailed) isAction()       {}
func (ProfilesRequested) isAction()       {}
func (ProfilesReceived) isAction()        {}
func (ProfilesFailed) isAction()          {}
func (FormatPreviewCleared) isAction()    {}
