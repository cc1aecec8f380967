// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff computes display diffs between an original message and its
// formatted rewrite.
package diff

import (
	"strings"
	"unicode/utf8"
)

// =============================================================================
// SEGMENT TYPES
// =============================================================================

// SegmentKind represents how a piece of text changed.
type SegmentKind int

const (
	// Unchanged text appears in both the original and the formatted text
	Unchanged SegmentKind = iota
	// Deleted text appears only in the original
	Deleted
	// Inserted text appears only in the formatted text
	Inserted
)

// String returns the string representation of a segment kind.
func (k SegmentKind) String() string {
	switch k {
	case Unchanged:
		return "unchanged"
	case Deleted:
		return "deleted"
	case Inserted:
		return "inserted"
	default:
		return "unknown"
	}
}

// Segment is one contiguous run of display text.
type Segment struct {
	Kind SegmentKind `json:"kind"`
	Text string      `json:"text"`
}

// =============================================================================
// CHANGE TYPES
// =============================================================================

// ChangeType is the wire name of a structured change operation.
type ChangeType string

const (
	ChangeInsert  ChangeType = "insert"
	ChangeDelete  ChangeType = "delete"
	ChangeReplace ChangeType = "replace"
)

// Valid reports whether t is a known change type.
func (t ChangeType) Valid() bool {
	switch t {
	case ChangeInsert, ChangeDelete, ChangeReplace:
		return true
	}
	return false
}

// TextChange is a single offset-ranged edit. Start and End are byte offsets
// into the original text, half-open.
type TextChange struct {
	Type    ChangeType `json:"type"`
	Start   int        `json:"start"`
	End     int        `json:"end"`
	NewText string     `json:"new_text"`
	OldText string     `json:"old_text"`
}

// TextDiff is the diff payload attached to formatting responses.
type TextDiff struct {
	Original  string       `json:"original"`
	Formatted string       `json:"formatted"`
	Changes   []TextChange `json:"changes,omitempty"`
}

// Segments returns the display segments for the diff.
func (d *TextDiff) Segments() []Segment {
	if d == nil {
		return nil
	}
	return Compute(d.Original, d.Formatted, d.Changes)
}

// New builds a TextDiff with a change list computed by ComputeChanges.
func New(original, formatted string) *TextDiff {
	return &TextDiff{
		Original:  original,
		Formatted: formatted,
		Changes:   ComputeChanges(original, formatted),
	}
}

// =============================================================================
// SEGMENT COMPUTATION
// =============================================================================

// Compute returns display segments for original and formatted. A non-empty
// change list is rendered with Structured, otherwise Unstructured is used.
func Compute(original, formatted string, changes []TextChange) []Segment {
	if len(changes) > 0 {
		return Structured(original, changes)
	}
	return Unstructured(original, formatted)
}

// Structured walks an ascending change list over original. Offsets outside
// the text or behind the cursor are clamped, so any input produces output.
func Structured(original string, changes []TextChange) []Segment {
	var segs segmentList
	cursor := 0

	for _, c := range changes {
		start := clamp(c.Start, cursor, len(original))
		end := clamp(c.End, start, len(original))

		segs.add(Unchanged, original[cursor:start])

		switch c.Type {
		case ChangeDelete:
			segs.add(Deleted, oldText(c, original[start:end]))
		case ChangeInsert:
			segs.add(Inserted, c.NewText)
		case ChangeReplace:
			segs.add(Deleted, oldText(c, original[start:end]))
			segs.add(Inserted, c.NewText)
		}

		cursor = end
	}

	segs.add(Unchanged, original[cursor:])
	return segs
}

// Unstructured computes a position-aligned character diff. It is greedy and
// does not realign after length-changing edits: a differing run i:j is
// emitted as Deleted original[i:j] followed by Inserted formatted[i:j].
func Unstructured(original, formatted string) []Segment {
	a, b := []rune(original), []rune(formatted)
	n := max(len(a), len(b))

	var segs segmentList
	for i := 0; i < n; {
		if i >= len(a) {
			segs.add(Inserted, string(b[i:]))
			break
		}
		if i >= len(b) {
			segs.add(Deleted, string(a[i:]))
			break
		}

		if a[i] == b[i] {
			j := i
			for j < n && runeAt(a, j) == runeAt(b, j) {
				j++
			}
			segs.add(Unchanged, string(a[i:j]))
			i = j
			continue
		}

		j := i + 1
		for j < n && runeAt(a, j) != runeAt(b, j) {
			j++
		}
		segs.add(Deleted, string(a[i:min(j, len(a))]))
		segs.add(Inserted, string(b[i:min(j, len(b))]))
		i = j
	}

	return segs
}

// runeAt returns the rune at i, or -1 past the end. -1 never equals a
// decoded rune, so a missing position always counts as a difference.
func runeAt(r []rune, i int) rune {
	if i < len(r) {
		return r[i]
	}
	return -1
}

func oldText(c TextChange, fallback string) string {
	if c.OldText != "" {
		return c.OldText
	}
	return fallback
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// segmentList drops empty segments and merges adjacent runs of one kind.
type segmentList []Segment

func (l *segmentList) add(kind SegmentKind, text string) {
	if text == "" {
		return
	}
	if n := len(*l); n > 0 && (*l)[n-1].Kind == kind {
		(*l)[n-1].Text += text
		return
	}
	*l = append(*l, Segment{Kind: kind, Text: text})
}

// =============================================================================
// STATS AND FORMATTING
// =============================================================================

// DiffStats counts runes per segment kind.
type DiffStats struct {
	Unchanged int
	Deleted   int
	Inserted  int
}

// Changed reports whether any text was inserted or deleted.
func (s DiffStats) Changed() bool {
	return s.Deleted > 0 || s.Inserted > 0
}

// Stats counts the runes in each kind of segment.
func Stats(segs []Segment) DiffStats {
	var s DiffStats
	for _, seg := range segs {
		n := utf8.RuneCountInString(seg.Text)
		switch seg.Kind {
		case Unchanged:
			s.Unchanged += n
		case Deleted:
			s.Deleted += n
		case Inserted:
			s.Inserted += n
		}
	}
	return s
}

// FormatInline renders segments as plain text, marking deletions as
// [-text-] and insertions as {+text+}.
func FormatInline(segs []Segment) string {
	var sb strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case Deleted:
			sb.WriteString("[-")
			sb.WriteString(seg.Text)
			sb.WriteString("-]")
		case Inserted:
			sb.WriteString("{+")
			sb.WriteString(seg.Text)
			sb.WriteString("+}")
		default:
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

// Original reassembles the original text from Unchanged and Deleted segments.
func Original(segs []Segment) string {
	return join(segs, Deleted)
}

// Formatted reassembles the formatted text from Unchanged and Inserted segments.
func Formatted(segs []Segment) string {
	return join(segs, Inserted)
}

func join(segs []Segment, side SegmentKind) string {
	var sb strings.Builder
	for _, seg := range segs {
		if seg.Kind == Unchanged || seg.Kind == side {
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}
