// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes display diffs between an original message and its
// formatted rewrite.
//
// Two renderings are supported. When the formatting service returns a
// structured change list, Structured walks it over the original text. When
// no change list is available, Unstructured falls back to a cheap
// position-aligned character scan that is fine for chat-sized messages.
//
// # Key Types
//
//   - SegmentKind: Unchanged, Deleted or Inserted
//   - Segment: A run of display text with its kind
//   - TextChange: One offset-ranged insert, delete or replace
//   - TextDiff: The diff payload of a formatting response
//
// # Usage
//
// Render whatever the server sent:
//
//	segs := diff.Compute(resp.Diff.Original, resp.Diff.Formatted, resp.Diff.Changes)
//	fmt.Println(diff.FormatInline(segs))
//
// Build a change list locally:
//
//	changes := diff.ComputeChanges(original, formatted)
package diff
