// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jeranaias/aisuite/internal/model"
)

// MaxSummaries is how many summaries the history keeps.
const MaxSummaries = 200

// SummaryRecord is a history row without the full summary text.
type SummaryRecord struct {
	ID           string
	Type         model.SummaryType
	ChannelID    string
	ChannelName  string
	RootPostID   string
	Title        string
	MessageCount int
	GeneratedAt  int64
	SavedAt      int64
}

// SaveSummary stores resp in the history, replacing any row with the same
// id. A response without an id gets one. The oldest rows beyond
// MaxSummaries are dropped.
func (s *Store) SaveSummary(ctx context.Context, resp *model.SummaryResponse) error {
	if resp == nil {
		return fmt.Errorf("%w: nil summary", model.ErrInvalidRequest)
	}
	if resp.ID == "" {
		resp.ID = newID()
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO summaries
			(id, type, channel_id, channel_name, root_post_id, title, message_count, generated_at, saved_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		resp.ID, string(resp.Type), resp.ChannelID, resp.ChannelName, resp.RootPostID,
		resp.Title, resp.MessageCount, resp.GeneratedAt, s.now().UnixMilli(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	return s.enforceSummaryLimit(ctx)
}

func (s *Store) enforceSummaryLimit(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM summaries WHERE id NOT IN (
			SELECT id FROM summaries ORDER BY saved_at DESC, rowid DESC LIMIT ?
		)`, MaxSummaries)
	if err != nil {
		return fmt.Errorf("failed to prune summaries: %w", err)
	}
	return nil
}

// RecentSummaries lists up to limit history rows, newest first.
func (s *Store) RecentSummaries(ctx context.Context, limit int) ([]SummaryRecord, error) {
	if limit <= 0 || limit > MaxSummaries {
		limit = MaxSummaries
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, channel_id, channel_name, root_post_id, title, message_count, generated_at, saved_at
		FROM summaries
		ORDER BY saved_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list summaries: %w", err)
	}
	defer rows.Close()

	var records []SummaryRecord
	for rows.Next() {
		var r SummaryRecord
		var typ string
		if err := rows.Scan(&r.ID, &typ, &r.ChannelID, &r.ChannelName, &r.RootPostID,
			&r.Title, &r.MessageCount, &r.GeneratedAt, &r.SavedAt); err != nil {
			return nil, fmt.Errorf("failed to scan summary: %w", err)
		}
		r.Type = model.SummaryType(typ)
		records = append(records, r)
	}
	return records, rows.Err()
}

// Summary loads a full summary from the history.
func (s *Store) Summary(ctx context.Context, id string) (*model.SummaryResponse, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT payload FROM summaries WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("summary %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load summary: %w", err)
	}

	var resp model.SummaryResponse
	if err := json.Unmarshal([]byte(payload), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return &resp, nil
}

// ClearSummaries removes the whole history.
func (s *Store) ClearSummaries(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM summaries")
	return err
}
