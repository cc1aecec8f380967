// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/util"
)

// =============================================================================
// ACTION ITEM TABLE
// =============================================================================

const (
	colID       = 8
	colPriority = 8
	colStatus   = 11
	colDue      = 10
	colAssignee = 12
	minDescCol  = 12
)

// ActionItems renders items as a table. Due dates are relative to now and
// overdue ones are highlighted.
func (r *Renderer) ActionItems(items []*model.ActionItem, now time.Time) string {
	if len(items) == 0 {
		return r.styles.meta.Render("No action items.")
	}

	descW := r.opts.Width - colID - colPriority - colStatus - colDue - colAssignee - 5
	if descW < minDescCol {
		descW = minDescCol
	}

	var sb strings.Builder
	sb.WriteString(r.styles.header.Render(strings.Join([]string{
		util.PadRight("ID", colID),
		util.PadRight("PRIORITY", colPriority),
		util.PadRight("STATUS", colStatus),
		util.PadRight("DUE", colDue),
		util.PadRight("ASSIGNEE", colAssignee),
		"DESCRIPTION",
	}, " ")))

	for _, item := range items {
		sb.WriteString("\n")
		sb.WriteString(strings.Join([]string{
			util.PadRight(shortID(item.ID), colID),
			r.priorityStyle(item.Priority).Render(util.PadRight(string(item.Priority), colPriority)),
			util.PadRight(string(item.Status), colStatus),
			r.dueCell(item, now),
			util.PadRight(item.AssigneeID, colAssignee),
			util.TruncateWidth(util.SingleLine(item.Description), descW),
		}, " "))
	}
	return sb.String()
}

func (r *Renderer) dueCell(item *model.ActionItem, now time.Time) string {
	if item.DueDate == 0 {
		return r.styles.meta.Render(util.PadRight("-", colDue))
	}
	text := util.PadRight(util.RelativeTime(item.Due(), now), colDue)
	switch {
	case item.IsOverdue(now):
		return r.styles.errText.Render(text)
	case item.IsDueSoon(now):
		return r.styles.warn.Render(text)
	default:
		return text
	}
}

func (r *Renderer) priorityStyle(p model.Priority) lipgloss.Style {
	switch p {
	case model.PriorityUrgent:
		return r.styles.errText
	case model.PriorityHigh:
		return r.styles.warn
	case model.PriorityLow:
		return r.styles.meta
	default:
		return r.lg.NewStyle()
	}
}

// ActionItem renders one item as labeled fields.
func (r *Renderer) ActionItem(item *model.ActionItem, now time.Time) string {
	field := func(label, value string) string {
		return r.styles.meta.Render(util.PadRight(label, 12)) + value
	}
	due := "-"
	if item.DueDate > 0 {
		due = util.FormatMillis(item.DueDate, "2006-01-02 15:04") + " (" + util.RelativeTime(item.Due(), now) + ")"
		if item.IsOverdue(now) {
			due = r.styles.errText.Render(due)
		}
	}

	lines := []string{
		r.styles.title.Render(item.Description),
		field("ID", item.ID),
		field("Status", string(item.Status)),
		field("Priority", r.priorityStyle(item.Priority).Render(string(item.Priority))),
		field("Assignee", item.AssigneeID),
		field("Created by", item.CreatedBy),
		field("Due", due),
	}
	if item.ChannelID != "" {
		lines = append(lines, field("Channel", item.ChannelID))
	}
	if item.PostID != "" {
		lines = append(lines, field("Post", item.PostID))
	}
	lines = append(lines, field("Created", util.FormatMillis(item.CreateAt, "2006-01-02 15:04")))
	if item.CompletedAt > 0 {
		lines = append(lines, field("Completed", util.FormatMillis(item.CompletedAt, "2006-01-02 15:04")))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// STATS
// =============================================================================

// Stats renders action item counts, with priority and status breakdowns in
// their canonical order.
func (r *Renderer) Stats(s model.ActionItemStats) string {
	row := func(label string, n int, style lipgloss.Style) string {
		value := fmt.Sprintf("%d", n)
		if n > 0 {
			value = style.Render(value)
		}
		return util.PadRight(label, 12) + value
	}

	plain := r.lg.NewStyle()
	lines := []string{
		r.styles.title.Render("Action Items"),
		row("Total", s.Total, plain),
		row("Overdue", s.Overdue, r.styles.errText),
		row("Due today", s.DueToday, r.styles.warn),
		row("Due soon", s.DueSoon, r.styles.info),
		row("No due date", s.NoDueDate, plain),
		row("Completed", s.Completed, r.styles.ok),
	}

	var byPriority []string
	for _, p := range model.Priorities {
		if n := s.ByPriority[string(p)]; n > 0 {
			byPriority = append(byPriority, fmt.Sprintf("%s %d", p, n))
		}
	}
	if len(byPriority) > 0 {
		lines = append(lines, r.styles.meta.Render("By priority ")+strings.Join(byPriority, " · "))
	}

	var byStatus []string
	for _, st := range model.Statuses {
		if n := s.ByStatus[string(st)]; n > 0 {
			byStatus = append(byStatus, fmt.Sprintf("%s %d", st, n))
		}
	}
	if len(byStatus) > 0 {
		lines = append(lines, r.styles.meta.Render("By status   ")+strings.Join(byStatus, " · "))
	}
	return strings.Join(lines, "\n")
}

// =============================================================================
// PROFILES
// =============================================================================

// Profiles renders the formatting profiles, marking the default.
func (r *Renderer) Profiles(profiles []model.FormattingProfile) string {
	lines := make([]string, 0, len(profiles))
	for _, p := range profiles {
		name := string(p.ID)
		if p.ID == model.DefaultProfile {
			name += " *"
		}
		id := util.PadRight(name, 16)
		lines = append(lines, r.styles.info.Render(id)+p.Label+r.styles.meta.Render(": "+p.Description))
	}
	return strings.Join(lines, "\n")
}
