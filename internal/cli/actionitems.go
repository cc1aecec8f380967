// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/state"
)

func newActionItemsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "actionitems",
		Aliases: []string{"ai", "items", "tasks"},
		Short:   "List and manage action items",
	}
	cmd.AddCommand(
		newActionItemsListCmd(app),
		newActionItemGetCmd(app),
		newActionItemCreateCmd(app),
		newActionItemUpdateCmd(app),
		newActionItemCompleteCmd(app),
		newActionItemDeleteCmd(app),
		newActionItemStatsCmd(app),
	)
	return cmd
}

// =============================================================================
// LIST / GET
// =============================================================================

func newActionItemsListCmd(app *App) *cobra.Command {
	var (
		f                 model.ActionItemFilters
		status, priority  string
		dueBefore, dueAft string
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List action items",
		Example: `  aisuite actionitems list
  aisuite actionitems list --channel release --priority high
  aisuite actionitems list --due-before 3d --all`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			var err error
			if f.Status, err = parseStatus(status); err != nil {
				return err
			}
			if f.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			if f.DueBefore, err = parseWhen(dueBefore, now, 1); err != nil {
				return err
			}
			if f.DueAfter, err = parseWhen(dueAft, now, -1); err != nil {
				return err
			}

			api, err := app.client()
			if err != nil {
				return err
			}
			items, err := state.FetchActionItems(cmd.Context(), app.store, api, f)
			if err != nil {
				return err
			}
			return app.emit(cmd, items, func() string {
				return app.renderer.ActionItems(items, now)
			})
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.UserID, "user", "", "assignee user id (defaults to you)")
	fl.StringVar(&f.ChannelID, "channel", "", "only items from this channel")
	fl.StringVar(&status, "status", "", "open, in_progress, completed or dismissed")
	fl.StringVar(&priority, "priority", "", "low, medium, high or urgent")
	fl.StringVar(&f.AssignedBy, "assigned-by", "", "only items created by this user")
	fl.StringVar(&dueBefore, "due-before", "", "due before this time (date or offset such as 3d)")
	fl.StringVar(&dueAft, "due-after", "", "due after this time")
	fl.BoolVarP(&f.IncludeCompleted, "all", "a", false, "include completed items")
	fl.IntVar(&f.Page, "page", 0, "page number, from 0")
	fl.IntVar(&f.PerPage, "per-page", 0, "page size")
	return cmd
}

func newActionItemGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one action item",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			item, err := state.FetchActionItem(cmd.Context(), app.store, api, args[0])
			if err != nil {
				return err
			}
			return app.emitItem(cmd, item, "")
		},
	}
}

// =============================================================================
// CREATE / UPDATE
// =============================================================================

func newActionItemCreateCmd(app *App) *cobra.Command {
	var (
		req              model.ActionItemCreateRequest
		due              string
		priority, status string
	)
	cmd := &cobra.Command{
		Use:   "create <description...>",
		Short: "Create an action item",
		Example: `  aisuite actionitems create "Send the release notes" --channel release --due tomorrow
  aisuite actionitems create "Fix flaky test" --assignee alice --priority high --due 2d`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Description = strings.Join(args, " ")
			var err error
			if req.Priority, err = parsePriority(priority); err != nil {
				return err
			}
			if req.Status, err = parseStatus(status); err != nil {
				return err
			}
			if due != "" {
				t, err := parseWhen(due, app.now(), 1)
				if err != nil {
					return err
				}
				req.DueDate = &t
			}

			api, err := app.client()
			if err != nil {
				return err
			}
			item, err := state.CreateActionItem(cmd.Context(), app.store, api, req)
			if err != nil {
				return err
			}
			return app.emitItem(cmd, item, "Created action item "+item.ID)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&req.AssigneeID, "assignee", "", "assignee user id (defaults to you)")
	fl.StringVar(&req.ChannelID, "channel", "", "channel the item belongs to")
	fl.StringVar(&req.PostID, "post", "", "post the item was taken from")
	fl.StringVar(&due, "due", "", "due date (YYYY-MM-DD, RFC 3339, tomorrow, or an offset such as 2d)")
	fl.StringVar(&priority, "priority", "", "low, medium, high or urgent")
	fl.StringVar(&status, "status", "", "initial status")
	return cmd
}

func newActionItemUpdateCmd(app *App) *cobra.Command {
	var description, assignee, due, priority, status string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an action item",
		Long:  `Only the flags given are changed.`,
		Example: `  aisuite actionitems update ai-1 --status in_progress
  aisuite actionitems update ai-1 --due 2025-04-01 --priority urgent`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd model.ActionItemUpdateRequest
			fl := cmd.Flags()
			if fl.Changed("description") {
				upd.Description = &description
			}
			if fl.Changed("assignee") {
				upd.AssigneeID = &assignee
			}
			if fl.Changed("due") {
				t, err := parseWhen(due, app.now(), 1)
				if err != nil {
					return err
				}
				if t.IsZero() {
					return usageErrorf("--due needs a date")
				}
				upd.DueDate = &t
			}
			if fl.Changed("priority") {
				p, err := parsePriority(priority)
				if err != nil {
					return err
				}
				upd.Priority = &p
			}
			if fl.Changed("status") {
				s, err := parseStatus(status)
				if err != nil {
					return err
				}
				upd.Status = &s
			}
			if upd.Empty() {
				return usageErrorf("nothing to update")
			}

			api, err := app.client()
			if err != nil {
				return err
			}
			item, err := state.UpdateActionItem(cmd.Context(), app.store, api, args[0], upd)
			if err != nil {
				return err
			}
			return app.emitItem(cmd, item, "Updated action item "+item.ID)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&description, "description", "", "new description")
	fl.StringVar(&assignee, "assignee", "", "new assignee")
	fl.StringVar(&due, "due", "", "new due date")
	fl.StringVar(&priority, "priority", "", "new priority")
	fl.StringVar(&status, "status", "", "new status")
	return cmd
}

// =============================================================================
// COMPLETE / DELETE / STATS
// =============================================================================

func newActionItemCompleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "complete <id>",
		Aliases: []string{"done"},
		Short:   "Mark an action item completed",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			item, err := state.CompleteActionItem(cmd.Context(), app.store, api, args[0])
			if err != nil {
				return err
			}
			return app.emitItem(cmd, item, "Completed action item "+item.ID)
		},
	}
}

func newActionItemDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an action item",
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			id := args[0]
			if err := state.DeleteActionItem(cmd.Context(), app.store, api, id); err != nil {
				return err
			}
			return app.emit(cmd, map[string]string{"id": id}, func() string {
				return app.renderer.Success("Deleted action item " + id)
			})
		},
	}
}

func newActionItemStatsCmd(app *App) *cobra.Command {
	var userID string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show action item counts",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			stats, err := state.FetchActionItemStats(cmd.Context(), app.store, api, userID)
			if err != nil {
				return err
			}
			return app.emit(cmd, stats, func() string {
				return app.renderer.Stats(*stats)
			})
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id (defaults to you)")
	return cmd
}

// =============================================================================
// HELPERS
// =============================================================================

// emitItem prints an item, preceded by note when set.
func (a *App) emitItem(cmd *cobra.Command, item *model.ActionItem, note string) error {
	return a.emit(cmd, item, func() string {
		view := a.renderer.ActionItem(item, a.now())
		if note == "" {
			return view
		}
		return a.renderer.Success(note) + "\n\n" + view
	})
}

func parsePriority(s string) (model.Priority, error) {
	if s == "" {
		return "", nil
	}
	p := model.Priority(strings.ToLower(s))
	if !p.Valid() {
		return "", usageErrorf("invalid priority %q (want %s)", s, joinValues(model.Priorities))
	}
	return p, nil
}

func parseStatus(s string) (model.Status, error) {
	if s == "" {
		return "", nil
	}
	st := model.Status(strings.ToLower(strings.ReplaceAll(s, "-", "_")))
	if !st.Valid() {
		return "", usageErrorf("invalid status %q (want %s)", s, joinValues(model.Statuses))
	}
	return st, nil
}

func joinValues[T ~string](vs []T) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}
