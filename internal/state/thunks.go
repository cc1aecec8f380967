// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"context"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/reqcache"
)

// SummaryAPI fetches summaries. *client.Client implements it.
type SummaryAPI interface {
	Summarize(ctx context.Context, req model.SummaryRequest) (*model.SummaryResponse, error)
}

// ActionItemAPI manages action items. *client.Client implements it.
type ActionItemAPI interface {
	ListActionItems(ctx context.Context, filters model.ActionItemFilters) ([]*model.ActionItem, error)
	CreateActionItem(ctx context.Context, req model.ActionItemCreateRequest) (*model.ActionItem, error)
	GetActionItem(ctx context.Context, id string) (*model.ActionItem, error)
	UpdateActionItem(ctx context.Context, id string, req model.ActionItemUpdateRequest) (*model.ActionItem, error)
	DeleteActionItem(ctx context.Context, id string) error
	CompleteActionItem(ctx context.Context, id string) (*model.ActionItem, error)
	ActionItemStats(ctx context.Context, userID string) (*model.ActionItemStats, error)
}

// FormatterAPI formats messages. *client.Client implements it.
type FormatterAPI interface {
	FormatPreview(ctx context.Context, req model.FormatRequest) (*model.FormatResponse, error)
	FormatApply(ctx context.Context, req model.FormatRequest) (*model.FormatResponse, error)
	FormatProfiles(ctx context.Context) ([]model.FormattingProfile, error)
}

// Fallback messages for failures that carry no server message.
const (
	msgSummaryFailed     = "Unable to load summary"
	msgActionItemsFailed = "Unable to load action items"
)

// Each operation below dispatches a requested action, calls the API, then
// dispatches the received or failed action. The API error is returned
// unchanged.

// FetchSummary requests a summary.
func FetchSummary(ctx context.Context, st *Store, api SummaryAPI, req model.SummaryRequest) (*model.SummaryResponse, error) {
	st.Dispatch(SummaryRequested{Request: req})
	resp, err := api.Summarize(ctx, req)
	if err != nil {
		st.Dispatch(SummaryFailed{Err: reqcache.ErrorMessage(err, msgSummaryFailed)})
		return nil, err
	}
	st.Dispatch(SummaryReceived{Summary: resp})
	return resp, nil
}

// FetchActionItems lists items matching filters.
func FetchActionItems(ctx context.Context, st *Store, api ActionItemAPI, filters model.ActionItemFilters) ([]*model.ActionItem, error) {
	st.Dispatch(ActionItemsRequested{})
	items, err := api.ListActionItems(ctx, filters)
	if err != nil {
		st.Dispatch(actionItemsFailed(err))
		return nil, err
	}
	st.Dispatch(ActionItemsReceived{Items: items})
	return items, nil
}

// FetchActionItem loads one item.
func FetchActionItem(ctx context.Context, st *Store, api ActionItemAPI, id string) (*model.ActionItem, error) {
	return itemThunk(st, func() (*model.ActionItem, error) { return api.GetActionItem(ctx, id) })
}

// CreateActionItem creates an item.
func CreateActionItem(ctx context.Context, st *Store, api ActionItemAPI, req model.ActionItemCreateRequest) (*model.ActionItem, error) {
	return itemThunk(st, func() (*model.ActionItem, error) { return api.CreateActionItem(ctx, req) })
}

// UpdateActionItem applies a partial update.
func UpdateActionItem(ctx context.Context, st *Store, api ActionItemAPI, id string, req model.ActionItemUpdateRequest) (*model.ActionItem, error) {
	return itemThunk(st, func() (*model.ActionItem, error) { return api.UpdateActionItem(ctx, id, req) })
}

// CompleteActionItem marks an item completed.
func CompleteActionItem(ctx context.Context, st *Store, api ActionItemAPI, id string) (*model.ActionItem, error) {
	return itemThunk(st, func() (*model.ActionItem, error) { return api.CompleteActionItem(ctx, id) })
}

// DeleteActionItem removes an item.
func DeleteActionItem(ctx context.Context, st *Store, api ActionItemAPI, id string) error {
	st.Dispatch(ActionItemsRequested{})
	if err := api.DeleteActionItem(ctx, id); err != nil {
		st.Dispatch(actionItemsFailed(err))
		return err
	}
	st.Dispatch(ActionItemDeleted{ID: id})
	return nil
}

// FetchActionItemStats loads stats for userID.
func FetchActionItemStats(ctx context.Context, st *Store, api ActionItemAPI, userID string) (*model.ActionItemStats, error) {
	st.Dispatch(ActionItemsRequested{})
	stats, err := api.ActionItemStats(ctx, userID)
	if err != nil {
		st.Dispatch(actionItemsFailed(err))
		return nil, err
	}
	st.Dispatch(ActionItemStatsReceived{Stats: stats})
	return stats, nil
}

func itemThunk(st *Store, call func() (*model.ActionItem, error)) (*model.ActionItem, error) {
	st.Dispatch(ActionItemsRequested{})
	item, err := call()
	if err != nil {
		st.Dispatch(actionItemsFailed(err))
		return nil, err
	}
	st.Dispatch(ActionItemReceived{Item: item})
	return item, nil
}

func actionItemsFailed(err error) ActionItemsFailed {
	return ActionItemsFailed{Err: reqcache.ErrorMessage(err, msgActionItemsFailed)}
}

// PreviewFormat requests a formatting preview.
func PreviewFormat(ctx context.Context, st *Store, api FormatterAPI, req model.FormatRequest) (*model.FormatResponse, error) {
	st.Dispatch(FormatPreviewRequested{})
	resp, err := api.FormatPreview(ctx, req)
	if err != nil {
		st.Dispatch(FormatPreviewFailed{Err: reqcache.ErrorMessage(err, ErrPreviewFailed)})
		return nil, err
	}
	st.Dispatch(FormatPreviewReceived{Response: resp})
	return resp, nil
}

// ApplyFormat formats a message for sending.
func ApplyFormat(ctx context.Context, st *Store, api FormatterAPI, req model.FormatRequest) (*model.FormatResponse, error) {
	st.Dispatch(FormatApplyRequested{})
	resp, err := api.FormatApply(ctx, req)
	if err != nil {
		st.Dispatch(FormatApplyFailed{Err: reqcache.ErrorMessage(err, ErrApplyFailed)})
		return nil, err
	}
	st.Dispatch(FormatApplied{Response: resp})
	return resp, nil
}

// FetchProfiles loads the formatting profiles.
func FetchProfiles(ctx context.Context, st *Store, api FormatterAPI) ([]model.FormattingProfile, error) {
	st.Dispatch(ProfilesRequested{})
	profiles, err := api.FormatProfiles(ctx)
	if err != nil {
		st.Dispatch(ProfilesFailed{Err: reqcache.ErrorMessage(err, ErrProfilesFailed)})
		return nil, err
	}
	st.Dispatch(ProfilesReceived{Profiles: profiles})
	return profiles, nil
}
