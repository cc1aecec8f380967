// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"slices"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/plugin"
	"github.com/jeranaias/aisuite/internal/ui"
)

func newPanelCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive summary panel",
		Long: `Shows a thread or channel summary full screen. Press r to refresh,
tab and shift+tab to switch the range of a channel summary, ? for help
and q to quit. The summary on screen when the panel closes is saved to
the history.`,
	}

	var root, channel string
	thread := &cobra.Command{
		Use:     "thread <post-id>",
		Short:   "Open the panel on the thread a post belongs to",
		Example: `  aisuite panel thread p-release`,
		Args:    usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.panel(cmd, &plugin.Target{
				Type:       model.SummaryThread,
				PostID:     args[0],
				RootPostID: root,
				ChannelID:  channel,
			})
		},
	}
	thread.Flags().StringVar(&root, "root", "", "root post id, when the post is a reply")
	thread.Flags().StringVar(&channel, "channel", "", "channel the thread is in")

	var timeRange string
	chanCmd := &cobra.Command{
		Use:   "channel <channel-id>",
		Short: "Open the panel on a channel",
		Example: `  aisuite panel channel town-square
  aisuite panel channel release --range 7d`,
		Args: usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.panel(cmd, &plugin.Target{
				Type:      model.SummaryChannel,
				ChannelID: args[0],
				TimeRange: timeRange,
			})
		},
	}
	chanCmd.Flags().StringVar(&timeRange, "range", plugin.DefaultRange, "starting range: 24h, 3d, 7d, 30d or today")

	cmd.AddCommand(thread, chanCmd)
	return cmd
}

// panel runs the interactive panel on target.
func (a *App) panel(cmd *cobra.Command, target *plugin.Target) error {
	if a.flags.json {
		return usageErrorf("the panel is interactive and has no JSON output")
	}
	if target.Type == model.SummaryChannel && !slices.Contains(model.RangePresets, target.TimeRange) {
		return usageErrorf("unknown range %q: use one of 24h, 3d, 7d, 30d or today", target.TimeRange)
	}
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

	p := plugin.New(api).WithLogger(a.logger)
	host := plugin.NewTerminalHost()
	p.Initialize(host)
	defer p.Uninitialize()

	if err := selectTarget(p, host, target); err != nil {
		return err
	}

	panel := host.Panel()
	if err := ui.Run(cmd.Context(), panel, a.renderer, a.In, a.Out); err != nil {
		return err
	}

	if v := panel.View(); v.Summary != nil {
		a.saveSummary(cmd.Context(), v.Summary)
	}
	return nil
}
