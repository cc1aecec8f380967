// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across aisuite.
//
// # Key Functions
//
// String Utilities:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth, PadRight: Display-width aware layout
//
// Time:
//   - FormatMillis, RelativeTime: Timestamps for tables
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	cell := util.PadRight(item.Description, 40)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
