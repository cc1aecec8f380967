// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// ENUMS
// =============================================================================

// Priority of an action item.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Priorities lists priorities from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Rank orders priorities; unknown values rank -1.
func (p Priority) Rank() int {
	for i, known := range Priorities {
		if p == known {
			return i
		}
	}
	return -1
}

// Status of an action item.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDismissed  Status = "dismissed"
)

// Statuses lists every status.
var Statuses = []Status{StatusOpen, StatusInProgress, StatusCompleted, StatusDismissed}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Closed reports whether the item no longer needs attention.
func (s Status) Closed() bool {
	return s == StatusCompleted || s == StatusDismissed
}

// =============================================================================
// ACTION ITEM
// =============================================================================

// MaxDescriptionLength bounds action item descriptions.
const MaxDescriptionLength = 500

// DueSoonWindow is how far ahead an item counts as due soon.
const DueSoonWindow = 7 * 24 * time.Hour

// ActionItem is a tracked task. Timestamps are unix milliseconds; zero means
// unset.
type ActionItem struct {
	ID          string   `json:"id"`
	ChannelID   string   `json:"channel_id"`
	PostID      string   `json:"post_id,omitempty"`
	CreatedBy   string   `json:"created_by"`
	AssigneeID  string   `json:"assignee_id,omitempty"`
	Description string   `json:"description"`
	DueDate     int64    `json:"due_date,omitempty"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	CompletedAt int64    `json:"completed_at,omitempty"`
	CreateAt    int64    `json:"create_at"`
	UpdateAt    int64    `json:"update_at"`
	DeleteAt    int64    `json:"delete_at"`
}

// Due returns the due date, or the zero time when none is set.
func (a *ActionItem) Due() time.Time {
	if a.DueDate == 0 {
		return time.Time{}
	}
	return time.UnixMilli(a.DueDate)
}

// IsOverdue reports whether an open item is past its due date.
func (a *ActionItem) IsOverdue(now time.Time) bool {
	return a.DueDate > 0 && !a.Status.Closed() && a.DueDate < now.UnixMilli()
}

// IsDueSoon reports whether an open item is due within DueSoonWindow of now.
func (a *ActionItem) IsDueSoon(now time.Time) bool {
	if a.DueDate == 0 || a.Status.Closed() {
		return false
	}
	return a.DueDate >= now.UnixMilli() && a.DueDate <= now.Add(DueSoonWindow).UnixMilli()
}

// Validate checks the fields a stored item must have.
func (a *ActionItem) Validate() error {
	if strings.TrimSpace(a.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidRequest)
	}
	if len(a.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidRequest, MaxDescriptionLength)
	}
	if a.AssigneeID == "" {
		return fmt.Errorf("%w: assignee is required", ErrInvalidRequest)
	}
	if a.Priority != "" && !a.Priority.Valid() {
		return fmt.Errorf("%w: invalid priority: %s", ErrInvalidRequest, a.Priority)
	}
	if a.Status != "" && !a.Status.Valid() {
		return fmt.Errorf("%w: invalid status: %s", ErrInvalidRequest, a.Status)
	}
	return nil
}

// =============================================================================
// REQUESTS
// =============================================================================

// ActionItemCreateRequest is the body of POST /actionitems.
type ActionItemCreateRequest struct {
	Description string     `json:"description"`
	AssigneeID  string     `json:"assignee_id"`
	ChannelID   string     `json:"channel_id"`
	PostID      string     `json:"post_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Status      Status     `json:"status,omitempty"`
}

// ToItem builds an item with defaults applied; ID and timestamps are left
// for the store.
func (r ActionItemCreateRequest) ToItem(createdBy string) *ActionItem {
	item := &ActionItem{
		ChannelID:   r.ChannelID,
		PostID:      r.PostID,
		CreatedBy:   createdBy,
		AssigneeID:  r.AssigneeID,
		Description: strings.TrimSpace(r.Description),
		Priority:    r.Priority,
		Status:      r.Status,
	}
	if r.DueDate != nil {
		item.DueDate = r.DueDate.UnixMilli()
	}
	if item.Priority == "" {
		item.Priority = PriorityMedium
	}
	if item.Status == "" {
		item.Status = StatusOpen
	}
	return item
}

// ActionItemUpdateRequest is the body of PATCH /actionitems/{id}. Nil fields
// are left unchanged.
type ActionItemUpdateRequest struct {
	Description *string    `json:"description,omitempty"`
	AssigneeID  *string    `json:"assignee_id,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    *Priority  `json:"priority,omitempty"`
	Status      *Status    `json:"status,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u ActionItemUpdateRequest) Empty() bool {
	return u.Description == nil && u.AssigneeID == nil && u.DueDate == nil &&
		u.Priority == nil && u.Status == nil && u.CompletedAt == nil
}

// Apply merges the update into item. Moving to completed stamps CompletedAt
// once.
func (u ActionItemUpdateRequest) Apply(item *ActionItem, now time.Time) {
	if u.Description != nil {
		item.Description = strings.TrimSpace(*u.Description)
	}
	if u.AssigneeID != nil {
		item.AssigneeID = *u.AssigneeID
	}
	if u.DueDate != nil {
		item.DueDate = u.DueDate.UnixMilli()
	}
	if u.Priority != nil {
		item.Priority = *u.Priority
	}
	if u.Status != nil {
		item.Status = *u.Status
		if item.Status == StatusCompleted && item.CompletedAt == 0 {
			item.CompletedAt = now.UnixMilli()
		}
	}
	if u.CompletedAt != nil {
		item.CompletedAt = u.CompletedAt.UnixMilli()
	}
	item.UpdateAt = now.UnixMilli()
}

// DefaultPerPage is the page size used when filters leave it unset.
const DefaultPerPage = 60

// ActionItemFilters narrows GET /actionitems.
type ActionItemFilters struct {
	UserID           string
	ChannelID        string
	Status           Status
	Priority         Priority
	DueBefore        time.Time
	DueAfter         time.Time
	AssignedBy       string
	IncludeCompleted bool
	Page             int
	PerPage          int
}

// Query encodes the filters as URL query parameters.
func (f ActionItemFilters) Query() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("user_id", f.UserID)
	set("channel_id", f.ChannelID)
	set("status", string(f.Status))
	set("priority", string(f.Priority))
	set("assigned_by", f.AssignedBy)
	if !f.DueBefore.IsZero() {
		q.Set("due_before", strconv.FormatInt(f.DueBefore.UnixMilli(), 10))
	}
	if !f.DueAfter.IsZero() {
		q.Set("due_after", strconv.FormatInt(f.DueAfter.UnixMilli(), 10))
	}
	if f.IncludeCompleted {
		q.Set("include_completed", "true")
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(f.PerPage))
	}
	return q
}

// ParseFilters is the inverse of Query. Malformed numbers are ignored.
func ParseFilters(q url.Values) ActionItemFilters {
	f := ActionItemFilters{
		UserID:           q.Get("user_id"),
		ChannelID:        q.Get("channel_id"),
		Status:           Status(q.Get("status")),
		Priority:         Priority(q.Get("priority")),
		AssignedBy:       q.Get("assigned_by"),
		IncludeCompleted: q.Get("include_completed") == "true",
	}
	if ms, err := strconv.ParseInt(q.Get("due_before"), 10, 64); err == nil {
		f.DueBefore = time.UnixMilli(ms)
	}
	if ms, err := strconv.ParseInt(q.Get("due_after"), 10, 64); err == nil {
		f.DueAfter = time.UnixMilli(ms)
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PerPage, _ = strconv.Atoi(q.Get("per_page"))
	if f.PerPage <= 0 {
		f.PerPage = DefaultPerPage
	}
	return f
}

// Match reports whether item passes the status, priority, due date and
// creator filters.
func (f ActionItemFilters) Match(item *ActionItem) bool {
	switch {
	case f.Status != "" && item.Status != f.Status:
		return false
	case f.Priority != "" && item.Priority != f.Priority:
		return false
	case !f.DueBefore.IsZero() && item.DueDate > f.DueBefore.UnixMilli():
		return false
	case !f.DueAfter.IsZero() && item.DueDate < f.DueAfter.UnixMilli():
		return false
	case f.AssignedBy != "" && item.CreatedBy != f.AssignedBy:
		return false
	case !f.IncludeCompleted && f.Status == "" && item.Status == StatusCompleted:
		return false
	}
	return true
}

// =============================================================================
// STATS
// =============================================================================

// ActionItemStats summarizes a user's action items.
type ActionItemStats struct {
	Total      int            `json:"total"`
	Overdue    int            `json:"overdue"`
	DueToday   int            `json:"dueToday"`
	DueSoon    int            `json:"dueSoon"`
	NoDueDate  int            `json:"noDueDate"`
	Completed  int            `json:"completed"`
	ByPriority map[string]int `json:"byPriority"`
	ByStatus   map[string]int `json:"byStatus"`
}

// ComputeStats tallies items relative to now. An item due later today
// counts as DueToday; one due within DueSoonWindow counts as DueSoon.
func ComputeStats(items []*ActionItem, now time.Time) ActionItemStats {
	stats := ActionItemStats{
		ByPriority: make(map[string]int),
		ByStatus:   make(map[string]int),
	}

	y, m, d := now.Date()
	endOfDay := time.Date(y, m, d, 23, 59, 59, 0, now.Location())
	weekFromNow := now.Add(DueSoonWindow)

	for _, item := range items {
		stats.Total++
		stats.ByPriority[string(item.Priority)]++
		stats.ByStatus[string(item.Status)]++

		if item.Status == StatusCompleted {
			stats.Completed++
		}

		if item.DueDate == 0 {
			stats.NoDueDate++
			continue
		}
		if item.Status == StatusCompleted {
			continue
		}

		due := item.Due()
		switch {
		case due.Before(now):
			stats.Overdue++
		case due.Before(endOfDay):
			stats.DueToday++
		case due.Before(weekFromNow):
			stats.DueSoon++
		}
	}

	return stats
}
