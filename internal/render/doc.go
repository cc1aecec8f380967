// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render formats summaries, diffs and action items for the terminal.
//
// Styling goes through a lipgloss renderer bound to the output writer, so
// piped output stays plain while terminals get color. Without color, diffs
// fall back to the [-deleted-] {+inserted+} markers.
//
// # Key Types
//
//   - Options: color, markdown and width, usually from Detect
//   - Renderer: returns rendered strings and prints them
//
// # Usage
//
//	r := render.New(os.Stdout, render.Detect(cfg.UI, os.Stdout))
//	r.Print(r.Summary(resp, time.Now()))
//	r.Print(r.Diff(resp.Diff.Segments()))
package render
