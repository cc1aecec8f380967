// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/state"
)

// dashboardData is the --json payload of the dashboard command.
type dashboardData struct {
	Stats   *model.ActionItemStats `json:"stats"`
	Overdue []*model.ActionItem    `json:"overdue"`
	DueSoon []*model.ActionItem    `json:"due_soon"`
	Summary *model.SummaryResponse `json:"summary,omitempty"`
}

func newDashboardCmd(app *App) *cobra.Command {
	var channel, timeRange string

	cmd := &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"dash"},
		Short:   "Show overdue and upcoming action items at a glance",
		Long: `Loads action item stats and open items in parallel. With --channel a
summary of the channel is fetched alongside.`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}

			var summaryReq *model.SummaryRequest
			if channel != "" {
				req := model.NewChannelRequest(channel, timeRange)
				if err := req.Validate(); err != nil {
					return err
				}
				summaryReq = &req
			}

			var data dashboardData
			g, ctx := errgroup.WithContext(cmd.Context())
			g.Go(func() error {
				stats, err := state.FetchActionItemStats(ctx, app.store, api, "")
				data.Stats = stats
				return err
			})
			g.Go(func() error {
				_, err := state.FetchActionItems(ctx, app.store, api, model.ActionItemFilters{})
				return err
			})
			if summaryReq != nil {
				g.Go(func() error {
					resp, err := state.FetchSummary(ctx, app.store, api, *summaryReq)
					data.Summary = resp
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			now := app.now()
			st := app.store.State()
			data.Overdue = state.OverdueActionItems(st, now)
			data.DueSoon = state.DueSoonActionItems(st, now)

			if data.Summary != nil {
				app.saveSummary(cmd.Context(), data.Summary)
			}

			return app.emit(cmd, data, func() string {
				sections := []string{
					app.renderer.Stats(*data.Stats),
					app.renderer.Heading("Overdue") + "\n" + app.renderer.ActionItems(data.Overdue, now),
					app.renderer.Heading("Due soon") + "\n" + app.renderer.ActionItems(data.DueSoon, now),
				}
				if data.Summary != nil {
					sections = append(sections, app.renderer.Summary(data.Summary, now))
				}
				return strings.Join(sections, "\n\n")
			})
		},
	}
	cmd.Flags().StringVar(&channel, "channel", "", "also summarize this channel")
	cmd.Flags().StringVar(&timeRange, "range", model.Range24h, "time range of the channel summary")
	return cmd
}
