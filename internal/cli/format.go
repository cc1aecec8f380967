// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/aisuite/internal/diff"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/state"
)

type formatFlags struct {
	profile      string
	instructions string
	copy         bool
}

func newFormatCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "format",
		Aliases: []string{"fmt"},
		Short:   "Rewrite a message with a formatting profile",
	}

	preview := &cobra.Command{
		Use:   "preview <message...>",
		Short: "Show the formatted message and what changed",
		Long:  `Formats a message without applying it. Use "-" to read the message from stdin.`,
		Example: `  aisuite format preview "pls review the pr asap"
  git log -1 --format=%B | aisuite format preview - --profile concise`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
	}
	apply := &cobra.Command{
		Use:   "apply <message...>",
		Short: "Format a message and print the final text",
		Args:  usageArgs(cobra.MinimumNArgs(1)),
	}

	var pf, af formatFlags
	for _, c := range []struct {
		cmd   *cobra.Command
		flags *formatFlags
	}{{preview, &pf}, {apply, &af}} {
		f := c.cmd.Flags()
		f.StringVarP(&c.flags.profile, "profile", "p", string(model.DefaultProfile), "formatting profile (see 'format profiles')")
		f.StringVar(&c.flags.instructions, "instructions", "", "extra instructions for the formatter")
		f.BoolVar(&c.flags.copy, "copy", false, "copy the formatted text to the clipboard")
	}

	preview.RunE = func(cmd *cobra.Command, args []string) error {
		return app.format(cmd, args, pf, state.PreviewFormat)
	}
	apply.RunE = func(cmd *cobra.Command, args []string) error {
		return app.format(cmd, args, af, state.ApplyFormat)
	}

	profiles := &cobra.Command{
		Use:   "profiles",
		Short: "List formatting profiles",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := app.client()
			if err != nil {
				return err
			}
			list, err := state.FetchProfiles(cmd.Context(), app.store, api)
			if err != nil {
				return err
			}
			return app.emit(cmd, list, func() string {
				return app.renderer.Profiles(list)
			})
		},
	}

	cmd.AddCommand(preview, apply, profiles)
	return cmd
}

type formatFunc func(context.Context, *state.Store, state.FormatterAPI, model.FormatRequest) (*model.FormatResponse, error)

func (a *App) format(cmd *cobra.Command, args []string, flags formatFlags, run formatFunc) error {
	msg, err := a.readMessage(args)
	if err != nil {
		return err
	}
	req := model.FormatRequest{
		Message:            msg,
		Profile:            model.ProfileID(flags.profile),
		CustomInstructions: flags.instructions,
	}
	if err := req.Validate(); err != nil {
		return err
	}

	api, err := a.client()
	if err != nil {
		return err
	}
	resp, err := run(cmd.Context(), a.store, api, req)
	if err != nil {
		return err
	}
	if resp.Diff == nil {
		resp.Diff = diff.New(msg, resp.FormattedText)
	}

	copied := false
	if flags.copy {
		if err := a.copyToClipboard(resp.FormattedText); err != nil {
			return fmt.Errorf("copy to clipboard: %w", err)
		}
		copied = true
	}

	return a.emit(cmd, resp, func() string {
		segs := resp.Diff.Segments()
		var sb strings.Builder
		sb.WriteString(a.renderer.Diff(segs))
		sb.WriteString("\n\n")
		sb.WriteString(a.renderer.DiffStats(diff.Stats(segs)))
		sb.WriteString("\n\n")
		sb.WriteString(resp.FormattedText)
		if copied {
			sb.WriteString("\n\n")
			sb.WriteString(a.renderer.Success("Copied to clipboard"))
		}
		return sb.String()
	})
}

// readMessage joins the message arguments, or reads stdin when the only
// argument is "-".
func (a *App) readMessage(args []string) (string, error) {
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(io.LimitReader(a.In, model.MaxMessageLength+1))
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	return strings.Join(args, " "), nil
}
