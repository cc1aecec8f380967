// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes saved summaries to files for sharing.
//
// # Key Types
//
//   - Exporter: converts a summary to bytes in one format
//   - MarkdownExporter: YAML front matter, a details list and the summary text
//   - JSONExporter: the summary response as indented JSON
//   - Options: output directory, metadata toggle and clock
//
// # Usage
//
//	exp, err := export.ForFormat("markdown", nil)
//	if err != nil {
//	    return err
//	}
//	path, err := export.ToFile(summary, exp, &export.Options{OutputDir: "out"})
package export
