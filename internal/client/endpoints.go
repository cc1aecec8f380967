// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/jeranaias/aisuite/internal/model"
)

// Health is the body of GET /health.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Health checks that the plugin API is reachable.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.do(ctx, http.MethodGet, "/health", nil, nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// =============================================================================
// SUMMARIES
// =============================================================================

// Summarize requests a thread or channel summary.
func (c *Client) Summarize(ctx context.Context, req model.SummaryRequest) (*model.SummaryResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp model.SummaryResponse
	if err := c.do(ctx, http.MethodPost, "/summarize", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// =============================================================================
// FORMATTING
// =============================================================================

// FormatPreview returns the formatted text and diff without side effects.
func (c *Client) FormatPreview(ctx context.Context, req model.FormatRequest) (*model.FormatResponse, error) {
	return c.format(ctx, "/format/preview", req)
}

// FormatApply formats the message for sending.
func (c *Client) FormatApply(ctx context.Context, req model.FormatRequest) (*model.FormatResponse, error) {
	return c.format(ctx, "/format/apply", req)
}

func (c *Client) format(ctx context.Context, p string, req model.FormatRequest) (*model.FormatResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var resp model.FormatResponse
	if err := c.do(ctx, http.MethodPost, p, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FormatProfiles lists the formatting profiles the server offers.
func (c *Client) FormatProfiles(ctx context.Context) ([]model.FormattingProfile, error) {
	var profiles []model.FormattingProfile
	if err := c.do(ctx, http.MethodGet, "/format/profiles", nil, nil, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// =============================================================================
// ACTION ITEMS
// =============================================================================

// ListActionItems returns the items matching filters.
func (c *Client) ListActionItems(ctx context.Context, filters model.ActionItemFilters) ([]*model.ActionItem, error) {
	var items []*model.ActionItem
	if err := c.do(ctx, http.MethodGet, "/actionitems", filters.Query(), nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// CreateActionItem creates an item; the server applies defaults.
func (c *Client) CreateActionItem(ctx context.Context, req model.ActionItemCreateRequest) (*model.ActionItem, error) {
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", model.ErrInvalidRequest)
	}
	var item model.ActionItem
	if err := c.do(ctx, http.MethodPost, "/actionitems", nil, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// GetActionItem fetches one item.
func (c *Client) GetActionItem(ctx context.Context, id string) (*model.ActionItem, error) {
	p, err := itemPath(id, "")
	if err != nil {
		return nil, err
	}
	var item model.ActionItem
	if err := c.do(ctx, http.MethodGet, p, nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateActionItem applies a partial update.
func (c *Client) UpdateActionItem(ctx context.Context, id string, req model.ActionItemUpdateRequest) (*model.ActionItem, error) {
	p, err := itemPath(id, "")
	if err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", model.ErrInvalidRequest)
	}
	var item model.ActionItem
	if err := c.do(ctx, http.MethodPatch, p, nil, req, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// DeleteActionItem removes an item.
func (c *Client) DeleteActionItem(ctx context.Context, id string) error {
	p, err := itemPath(id, "")
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, p, nil, nil, nil)
}

// CompleteActionItem marks an item completed.
func (c *Client) CompleteActionItem(ctx context.Context, id string) (*model.ActionItem, error) {
	p, err := itemPath(id, "/complete")
	if err != nil {
		return nil, err
	}
	var item model.ActionItem
	if err := c.do(ctx, http.MethodPost, p, nil, nil, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

// ActionItemStats returns counts for userID, or for the session user when
// userID is empty.
func (c *Client) ActionItemStats(ctx context.Context, userID string) (*model.ActionItemStats, error) {
	var q url.Values
	if userID != "" {
		q = url.Values{"user_id": {userID}}
	}
	var stats model.ActionItemStats
	if err := c.do(ctx, http.MethodGet, "/actionitems/stats", q, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func itemPath(id, suffix string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: action item id required", model.ErrInvalidRequest)
	}
	return "/actionitems/" + url.PathEscape(id) + suffix, nil
}
