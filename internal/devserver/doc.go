// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package devserver serves the AI suite plugin API locally so the client,
// the plugin panel and the CLI can run without a chat server.
//
// Summaries are extractive: a count line followed by one bullet per message,
// built from YAML fixtures of users, channels and posts. Formatting applies
// deterministic per-profile rewrite rules. Action items live in the sqlite
// store from package storage.
//
// # Key Types
//
//   - Server: routes, middleware chain and lifecycle
//   - Fixtures: the demo workspace, hot reloaded when its file changes
//   - Summarizer: builds and caches summaries
//   - RateLimiter: a token bucket per client IP
//
// # Usage
//
//	store, _ := storage.Open(cfg.DevServer.DBPath)
//	fixtures, _ := devserver.LoadFixtures(cfg.DevServer.FixturesPath)
//	srv := devserver.New(cfg.DevServer, store, fixtures, logger)
//	if err := srv.Run(ctx); err != nil {
//	    return err
//	}
package devserver
