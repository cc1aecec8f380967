// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/export"
	"github.com/jeranaias/aisuite/internal/storage"
)

func newHistoryCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse summaries saved on this machine",
	}

	var limit int
	list := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved summaries, newest first",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return usageErrorf("--limit must be positive")
			}
			return app.withHistory(func(store *storage.Store) error {
				records, err := store.RecentSummaries(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return app.emit(cmd, records, func() string {
					return app.renderer.History(records, app.now())
				})
			})
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of summaries to show")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved summary",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withHistory(func(store *storage.Store) error {
				resp, err := store.Summary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return app.emit(cmd, resp, func() string {
					return app.renderer.Summary(resp, app.now())
				})
			})
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Delete every saved summary",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.withHistory(func(store *storage.Store) error {
				if err := store.ClearSummaries(cmd.Context()); err != nil {
					return err
				}
				return app.emit(cmd, map[string]bool{"cleared": true}, func() string {
					return app.renderer.Success("History cleared")
				})
			})
		},
	}

	var format, outDir string
	exp := &cobra.Command{
		Use:   "export <id>",
		Short: "Write a saved summary to a Markdown or JSON file",
		Args:  usageArgs(cobra.ExactArgs(1)),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &export.Options{OutputDir: outDir, IncludeMetadata: true, Now: app.now}
			exporter, err := export.ForFormat(format, opts)
			if errors.Is(err, export.ErrUnknownFormat) {
				return usageErrorf("%v", err)
			}
			return app.withHistory(func(store *storage.Store) error {
				resp, err := store.Summary(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				path, err := export.ToFile(resp, exporter, opts)
				if err != nil {
					return err
				}
				app.logger.Info("exported summary", zap.String("id", resp.ID), zap.String("path", path))
				return app.emit(cmd, map[string]string{"path": path}, func() string {
					return app.renderer.Success("Exported to " + path)
				})
			})
		},
	}
	exp.Flags().StringVarP(&format, "format", "f", "markdown", "markdown or json")
	exp.Flags().StringVarP(&outDir, "out", "o", ".", "directory to write into")

	cmd.AddCommand(list, show, clear, exp)
	return cmd
}

// withHistory opens the history database for the duration of fn. It reads
// the history even when saving is turned off.
func (a *App) withHistory(fn func(*storage.Store) error) error {
	store, err := a.openHistory()
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}
