// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aisuite/internal/model"
)

// MaxPerPage caps a page of action items.
const MaxPerPage = 200

// statsLimit bounds how many items feed a stats computation.
const statsLimit = 1000

const actionItemColumns = `id, channel_id, post_id, created_by, assignee_id, description,
	due_date, priority, status, completed_at, create_at, update_at, delete_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanActionItem(row scanner) (*model.ActionItem, error) {
	var item model.ActionItem
	var priority, status string
	err := row.Scan(&item.ID, &item.ChannelID, &item.PostID, &item.CreatedBy, &item.AssigneeID,
		&item.Description, &item.DueDate, &priority, &status, &item.CompletedAt,
		&item.CreateAt, &item.UpdateAt, &item.DeleteAt)
	if err != nil {
		return nil, err
	}
	item.Priority = model.Priority(priority)
	item.Status = model.Status(status)
	return &item, nil
}

func (s *Store) queryActionItems(ctx context.Context, query string, args ...any) ([]*model.ActionItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query action items: %w", err)
	}
	defer rows.Close()

	items := make([]*model.ActionItem, 0)
	for rows.Next() {
		item, err := scanActionItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan action item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// CreateActionItem validates item, fills defaults, assigns an id and
// timestamps, and stores it.
func (s *Store) CreateActionItem(ctx context.Context, item *model.ActionItem) (*model.ActionItem, error) {
	if item == nil {
		return nil, fmt.Errorf("%w: nil action item", model.ErrInvalidRequest)
	}
	created := *item
	created.Description = strings.TrimSpace(created.Description)
	if err := created.Validate(); err != nil {
		return nil, err
	}
	if created.Status == "" {
		created.Status = model.StatusOpen
	}
	if created.Priority == "" {
		created.Priority = model.PriorityMedium
	}
	created.ID = newID()
	created.CreateAt = s.now().UnixMilli()
	created.UpdateAt = created.CreateAt
	created.DeleteAt = 0

	_, err := s.db.ExecContext(ctx, `INSERT INTO action_items (`+actionItemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		created.ID, created.ChannelID, created.PostID, created.CreatedBy, created.AssigneeID,
		created.Description, created.DueDate, string(created.Priority), string(created.Status),
		created.CompletedAt, created.CreateAt, created.UpdateAt, created.DeleteAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save action item: %w", err)
	}
	return &created, nil
}

// ActionItem loads one item. Deleted items are not found.
func (s *Store) ActionItem(ctx context.Context, id string) (*model.ActionItem, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+actionItemColumns+" FROM action_items WHERE id = ? AND delete_at = 0", id)
	item, err := scanActionItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("action item %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load action item: %w", err)
	}
	return item, nil
}

// ListActionItems returns one page of items, newest first. A channel filter
// scopes to the channel; otherwise a user filter scopes to items the user
// is assigned or created. The remaining filters are applied to the page.
func (s *Store) ListActionItems(ctx context.Context, f model.ActionItemFilters) ([]*model.ActionItem, error) {
	var where []string
	var args []any
	where = append(where, "delete_at = 0")

	switch {
	case f.ChannelID != "":
		where = append(where, "channel_id = ?")
		args = append(args, f.ChannelID)
	case f.UserID != "":
		where = append(where, "(assignee_id = ? OR created_by = ?)")
		args = append(args, f.UserID, f.UserID)
	}
	if !f.IncludeCompleted && f.Status == "" {
		where = append(where, "status <> ?")
		args = append(args, string(model.StatusCompleted))
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = model.DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	page := f.Page
	if page < 0 {
		page = 0
	}
	args = append(args, perPage, page*perPage)

	items, err := s.queryActionItems(ctx, "SELECT "+actionItemColumns+
		" FROM action_items WHERE "+strings.Join(where, " AND ")+
		" ORDER BY create_at DESC, rowid DESC LIMIT ? OFFSET ?", args...)
	if err != nil {
		return nil, err
	}

	filtered := items[:0]
	for _, item := range items {
		if f.Match(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered, nil
}

// UpdateActionItem applies a partial update and returns the stored item.
func (s *Store) UpdateActionItem(ctx context.Context, id string, upd model.ActionItemUpdateRequest) (*model.ActionItem, error) {
	item, err := s.ActionItem(ctx, id)
	if err != nil {
		return nil, err
	}
	upd.Apply(item, s.now())
	if err := item.Validate(); err != nil {
		return nil, err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE action_items SET
			assignee_id = ?, description = ?, due_date = ?, priority = ?, status = ?,
			completed_at = ?, update_at = ?
		WHERE id = ? AND delete_at = 0`,
		item.AssigneeID, item.Description, item.DueDate, string(item.Priority), string(item.Status),
		item.CompletedAt, item.UpdateAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update action item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("action item %s: %w", id, ErrNotFound)
	}
	return item, nil
}

// CompleteActionItem marks an item completed now.
func (s *Store) CompleteActionItem(ctx context.Context, id string) (*model.ActionItem, error) {
	status := model.StatusCompleted
	now := s.now()
	return s.UpdateActionItem(ctx, id, model.ActionItemUpdateRequest{
		Status:      &status,
		CompletedAt: &now,
	})
}

// DeleteActionItem soft-deletes an item.
func (s *Store) DeleteActionItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE action_items SET delete_at = ?, update_at = ? WHERE id = ? AND delete_at = 0",
		s.now().UnixMilli(), s.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to delete action item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("action item %s: %w", id, ErrNotFound)
	}
	return nil
}

// ActionItemStats computes stats over the items userID is assigned or
// created, completed ones included.
func (s *Store) ActionItemStats(ctx context.Context, userID string, now time.Time) (model.ActionItemStats, error) {
	items, err := s.queryActionItems(ctx, "SELECT "+actionItemColumns+
		" FROM action_items WHERE delete_at = 0 AND (assignee_id = ? OR created_by = ?)"+
		" ORDER BY create_at DESC LIMIT ?", userID, userID, statsLimit)
	if err != nil {
		return model.ActionItemStats{}, err
	}
	return model.ComputeStats(items, now), nil
}

// OverdueActionItems returns open items whose due date has passed.
func (s *Store) OverdueActionItems(ctx context.Context, now time.Time) ([]*model.ActionItem, error) {
	return s.queryActionItems(ctx, "SELECT "+actionItemColumns+`
		FROM action_items
		WHERE delete_at = 0 AND due_date > 0 AND due_date < ? AND status NOT IN (?, ?)
		ORDER BY due_date ASC`,
		now.UnixMilli(), string(model.StatusCompleted), string(model.StatusDismissed))
}

// DueSoonActionItems returns open items due between now and until.
func (s *Store) DueSoonActionItems(ctx context.Context, now, until time.Time) ([]*model.ActionItem, error) {
	return s.queryActionItems(ctx, "SELECT "+actionItemColumns+`
		FROM action_items
		WHERE delete_at = 0 AND due_date >= ? AND due_date <= ? AND status NOT IN (?, ?)
		ORDER BY due_date ASC`,
		now.UnixMilli(), until.UnixMilli(), string(model.StatusCompleted), string(model.StatusDismissed))
}
