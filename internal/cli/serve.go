// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/devserver"
	"github.com/jeranaias/aisuite/internal/storage"
)

func newServeCmd(app *App) *cobra.Command {
	var listen, fixtures, db, csrf, schedule string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a local plugin API server with demo data",
		Long: `Serves the plugin API from fixture channels and posts. Summaries and
formatting are generated locally; action items live in a SQLite database
(in memory unless --db is given). The fixture file is reloaded when it
changes.`,
		Example: `  aisuite serve
  aisuite serve --listen 127.0.0.1:9000 --fixtures demo.yaml --db items.db`,
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg.DevServer
			fl := cmd.Flags()
			if fl.Changed("listen") {
				cfg.Listen = listen
			}
			if fl.Changed("fixtures") {
				cfg.FixturesPath = fixtures
			}
			if fl.Changed("db") {
				cfg.DBPath = db
			}
			if fl.Changed("require-token") {
				cfg.CSRFToken = csrf
			}
			if fl.Changed("schedule") {
				cfg.ReminderSchedule = schedule
			}

			fx, err := devserver.LoadFixtures(cfg.FixturesPath)
			if err != nil {
				return err
			}
			dbPath := cfg.DBPath
			if dbPath == "" {
				dbPath = storage.MemoryPath
			}
			store, err := storage.Open(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app.logger.Info("starting dev server",
				zap.String("listen", cfg.Listen),
				zap.String("db", dbPath),
				zap.Int("channels", len(fx.Channels)),
			)
			return devserver.New(cfg, store, fx, app.logger).Run(ctx)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&listen, "listen", "", "listen address (default from devserver.listen)")
	fl.StringVar(&fixtures, "fixtures", "", "YAML fixtures file; built-in demo data when empty")
	fl.StringVar(&db, "db", "", "SQLite database for action items")
	fl.StringVar(&csrf, "require-token", "", "CSRF token clients must send on mutating requests")
	fl.StringVar(&schedule, "schedule", "", "cron schedule of the reminder sweep; empty disables it")
	return cmd
}
