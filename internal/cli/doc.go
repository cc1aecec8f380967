// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the aisuite command line.
//
// Commands are cobra commands built around an App, which loads the config
// once in the root pre-run and then hands each command a logger, a
// renderer, a state store and a lazily created API client. Every command
// accepts --json and then prints a JSONResponse envelope instead of text.
//
// # Commands
//
//   - summarize thread|channel: summaries through the plugin's summary panel
//   - format preview|apply|profiles: message formatting with an inline diff
//   - diff: the same diff computed locally
//   - actionitems list|get|create|update|complete|delete|stats
//   - dashboard: overdue and upcoming items, optionally with a channel summary
//   - panel thread|channel: the summary panel full screen, with refresh and
//     range keys
//   - history list|show|export|clear: summaries saved on this machine
//   - serve: the development server
//   - version
//
// # Exit Codes
//
// Run maps errors to exit codes with ExitCode: 2 for usage errors, 3 for
// configuration, 5 when the server is unreachable and 7 for missing
// resources.
package cli
