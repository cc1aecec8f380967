// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the interactive terminal view of the summary panel.
//
// Model is a bubbletea model over a plugin.SummaryPanel: a spinner while a
// summary loads, r to refresh, and tab or the arrow keys to move between
// the channel range presets. Run wires the panel's change notifications
// into the program.
package ui
