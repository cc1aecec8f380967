// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/plugin"
	"github.com/jeranaias/aisuite/internal/state"
	"github.com/jeranaias/aisuite/internal/storage"
)

func newSummarizeCmd(app *App) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:     "summarize",
		Aliases: []string{"sum"},
		Short:   "Summarize a thread or a channel",
	}
	cmd.PersistentFlags().BoolVar(&refresh, "refresh", false, "regenerate instead of using a cached summary")

	var root, channel string
	thread := &cobra.Command{
		Use:   "thread <post-id>",
		Short: "Summarize the thread a post belongs to",
		Example: `  aisuite summarize thread p-release
  aisuite summarize thread p-release-qa --refresh`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.summarize(cmd, &plugin.Target{
				Type:       model.SummaryThread,
				PostID:     args[0],
				RootPostID: root,
				ChannelID:  channel,
			}, refresh)
		},
	}
	thread.Flags().StringVar(&root, "root", "", "root post id, when the post is a reply")
	thread.Flags().StringVar(&channel, "channel", "", "channel the thread is in")

	var timeRange, since, until string
	chanCmd := &cobra.Command{
		Use:   "channel <channel-id>",
		Short: "Summarize recent channel activity",
		Example: `  aisuite summarize channel town-square
  aisuite summarize channel release --range 7d
  aisuite summarize channel release --since 2025-03-01 --until 2025-03-03`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			now := app.now()
			target := &plugin.Target{Type: model.SummaryChannel, ChannelID: args[0], TimeRange: timeRange}

			s, err := parseWhen(since, now, -1)
			if err != nil {
				return err
			}
			u, err := parseWhen(until, now, -1)
			if err != nil {
				return err
			}
			if !s.IsZero() {
				target.Since = s.UnixMilli()
			}
			if !u.IsZero() {
				target.Until = u.UnixMilli()
			}
			if (target.Since != 0 || target.Until != 0) && !cmd.Flags().Changed("range") {
				target.TimeRange = ""
			}
			return app.summarize(cmd, target, refresh)
		},
	}
	chanCmd.Flags().StringVar(&timeRange, "range", plugin.DefaultRange, "time range: 24h, 3d, 7d, 30d, today, a duration or two dates")
	chanCmd.Flags().StringVar(&since, "since", "", "start of the window (date, RFC 3339, or an offset such as 6h)")
	chanCmd.Flags().StringVar(&until, "until", "", "end of the window")

	cmd.AddCommand(thread, chanCmd)
	return cmd
}

// summarize loads a summary, saves it to the history and prints it.
func (a *App) summarize(cmd *cobra.Command, target *plugin.Target, refresh bool) error {
	req := target.Request(plugin.DefaultRange)
	if req == nil {
		return usageErrorf("nothing to summarize")
	}
	if err := req.Validate(); err != nil {
		return err
	}

	api, err := a.client()
	if err != nil {
		return err
	}

	var resp *model.SummaryResponse
	if refresh {
		req.Force = true
		resp, err = state.FetchSummary(cmd.Context(), a.store, api, *req)
	} else {
		resp, err = a.summarizeWithPanel(api, target)
	}
	if err != nil {
		return err
	}

	a.saveSummary(cmd.Context(), resp)
	return a.emit(cmd, resp, func() string {
		return a.renderer.Summary(resp, a.now())
	})
}

// summarizeWithPanel drives the plugin through a terminal host: the same
// entry points a chat client would click, and the panel's request cache.
func (a *App) summarizeWithPanel(api state.SummaryAPI, target *plugin.Target) (*model.SummaryResponse, error) {
	p := plugin.New(api).WithLogger(a.logger)
	host := plugin.NewTerminalHost()
	p.Initialize(host)
	defer p.Uninitialize()

	if err := selectTarget(p, host, target); err != nil {
		return nil, err
	}

	panel := host.Panel()
	panel.Wait()
	view := panel.View()
	switch {
	case view.Error != "":
		return nil, &PanelError{Message: view.Error}
	case view.Summary == nil:
		return nil, errors.New("no summary was returned")
	}
	a.store.Dispatch(state.SummaryReceived{Summary: view.Summary})
	return view.Summary, nil
}

// selectTarget points the panel at target the way a user would: through
// the post menu or channel header action when one fits, otherwise through
// the bridge directly.
func selectTarget(p *plugin.Plugin, host *plugin.TerminalHost, target *plugin.Target) error {
	switch {
	case target.Type == model.SummaryThread && target.RootPostID == "" && target.ChannelID == "":
		return host.ClickPostMenu(plugin.ActionSummarizeThread, target.PostID)
	case target.Type == model.SummaryChannel && target.Since == 0 && target.Until == 0 &&
		slices.Contains(model.RangePresets, target.TimeRange):
		// The header action always starts at the default range.
		if err := host.ClickChannelHeader(plugin.ActionSummarizeChannel, target.ChannelID); err != nil {
			return err
		}
		if target.TimeRange != plugin.DefaultRange {
			return host.Panel().SetRange(target.TimeRange)
		}
		return nil
	default:
		p.Bridge().SetTarget(target)
		return nil
	}
}

// saveSummary records resp in the local history. Failures are logged; the
// summary is still printed.
func (a *App) saveSummary(ctx context.Context, resp *model.SummaryResponse) {
	if !a.cfg.History.Enabled {
		return
	}
	store, err := a.openHistory()
	if err != nil {
		a.logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer store.Close()
	if err := store.SaveSummary(ctx, resp); err != nil {
		a.logger.Warn("failed to save summary", zap.Error(err))
	}
}

func (a *App) openHistory() (*storage.Store, error) {
	path, err := a.cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	return storage.Open(path)
}
