// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnstructured(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		formatted string
		want      []Segment
	}{
		{
			name:      "both empty",
			original:  "",
			formatted: "",
			want:      nil,
		},
		{
			name:      "identical",
			original:  "same text",
			formatted: "same text",
			want:      []Segment{{Unchanged, "same text"}},
		},
		{
			name:      "last char differs",
			original:  "abc",
			formatted: "abx",
			want:      []Segment{{Unchanged, "ab"}, {Deleted, "c"}, {Inserted, "x"}},
		},
		{
			name:      "leading deletion never realigns",
			original:  "xabc",
			formatted: "abc",
			want:      []Segment{{Deleted, "xabc"}, {Inserted, "abc"}},
		},
		{
			name:      "formatted is longer",
			original:  "abc",
			formatted: "abcdef",
			want:      []Segment{{Unchanged, "abc"}, {Inserted, "def"}},
		},
		{
			name:      "original is longer",
			original:  "abcdef",
			formatted: "abc",
			want:      []Segment{{Unchanged, "abc"}, {Deleted, "def"}},
		},
		{
			name:      "original empty",
			original:  "",
			formatted: "new",
			want:      []Segment{{Inserted, "new"}},
		},
		{
			name:      "formatted empty",
			original:  "old",
			formatted: "",
			want:      []Segment{{Deleted, "old"}},
		},
		{
			name:      "realigns on equal position",
			original:  "axcyd",
			formatted: "abcde",
			want: []Segment{
				{Unchanged, "a"},
				{Deleted, "x"}, {Inserted, "b"},
				{Unchanged, "c"},
				{Deleted, "yd"}, {Inserted, "de"},
			},
		},
		{
			// A single inserted character shifts every later position, so the
			// rest of both strings is reported as one differing run.
			name:      "no realignment after insertion",
			original:  "helo world",
			formatted: "hello world",
			want: []Segment{
				{Unchanged, "hel"},
				{Deleted, "o world"},
				{Inserted, "lo world"},
			},
		},
		{
			name:      "multibyte runes",
			original:  "café ✓",
			formatted: "cafe ✓",
			want:      []Segment{{Unchanged, "caf"}, {Deleted, "é"}, {Inserted, "e"}, {Unchanged, " ✓"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Unstructured(tt.original, tt.formatted)
			if diff := cmp.Diff(tt.want, []Segment(got)); diff != "" {
				t.Errorf("Unstructured(%q, %q) mismatch (-want +got):\n%s", tt.original, tt.formatted, diff)
			}
		})
	}
}

func TestUnstructured_Reconstructs(t *testing.T) {
	// Both sides share the i:j bounds, so each is fully covered.
	pairs := [][2]string{
		{"abc", "abx"},
		{"short", "a much longer message"},
		{"a much longer message", "short"},
		{"Hello, World", "hello world!"},
	}
	for _, p := range pairs {
		segs := Unstructured(p[0], p[1])
		if got := Original(segs); got != p[0] {
			t.Errorf("Original(Unstructured(%q, %q)) = %q", p[0], p[1], got)
		}
		if got := Formatted(segs); got != p[1] {
			t.Errorf("Formatted(Unstructured(%q, %q)) = %q", p[0], p[1], got)
		}
	}
}

func TestStructured(t *testing.T) {
	tests := []struct {
		name     string
		original string
		changes  []TextChange
		want     []Segment
	}{
		{
			name:     "whole text replace",
			original: "hi",
			changes:  []TextChange{{Type: ChangeReplace, Start: 0, End: 2, OldText: "hi", NewText: "Hello."}},
			want:     []Segment{{Deleted, "hi"}, {Inserted, "Hello."}},
		},
		{
			name:     "insert in the middle",
			original: "ab",
			changes:  []TextChange{{Type: ChangeInsert, Start: 1, End: 1, NewText: "X"}},
			want:     []Segment{{Unchanged, "a"}, {Inserted, "X"}, {Unchanged, "b"}},
		},
		{
			name:     "delete falls back to original slice",
			original: "keep drop keep",
			changes:  []TextChange{{Type: ChangeDelete, Start: 4, End: 9}},
			want:     []Segment{{Unchanged, "keep"}, {Deleted, " drop"}, {Unchanged, " keep"}},
		},
		{
			name:     "old text wins over slice",
			original: "abc",
			changes:  []TextChange{{Type: ChangeDelete, Start: 1, End: 2, OldText: "B"}},
			want:     []Segment{{Unchanged, "a"}, {Deleted, "B"}, {Unchanged, "c"}},
		},
		{
			name:     "offsets past the end are clamped",
			original: "abc",
			changes:  []TextChange{{Type: ChangeReplace, Start: 2, End: 99, NewText: "Z"}},
			want:     []Segment{{Unchanged, "ab"}, {Deleted, "c"}, {Inserted, "Z"}},
		},
		{
			name:     "overlapping change is clamped to cursor",
			original: "abcdef",
			changes: []TextChange{
				{Type: ChangeDelete, Start: 1, End: 4},
				{Type: ChangeInsert, Start: 2, End: 2, NewText: "!"},
			},
			want: []Segment{{Unchanged, "a"}, {Deleted, "bcd"}, {Inserted, "!"}, {Unchanged, "ef"}},
		},
		{
			name:     "unknown change type only advances",
			original: "abc",
			changes:  []TextChange{{Type: "move", Start: 1, End: 2}},
			want:     []Segment{{Unchanged, "a"}, {Unchanged, "c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Structured(tt.original, tt.changes)
			// Adjacent unchanged runs are merged.
			want := segmentList(nil)
			for _, s := range tt.want {
				want.add(s.Kind, s.Text)
			}
			if diff := cmp.Diff([]Segment(want), []Segment(got)); diff != "" {
				t.Errorf("Structured mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompute_ChoosesContract(t *testing.T) {
	changes := []TextChange{{Type: ChangeReplace, Start: 0, End: 3, OldText: "abc", NewText: "abx"}}

	structured := Compute("abc", "abx", changes)
	if len(structured) != 2 || structured[0].Kind != Deleted {
		t.Errorf("Expected structured rendering, got %v", structured)
	}

	unstructured := Compute("abc", "abx", []TextChange{})
	if len(unstructured) != 3 || unstructured[0].Kind != Unchanged {
		t.Errorf("Expected unstructured rendering, got %v", unstructured)
	}
}

func TestComputeChanges_Identical(t *testing.T) {
	if changes := ComputeChanges("same", "same"); len(changes) != 0 {
		t.Errorf("Expected no changes, got %v", changes)
	}
}

func TestComputeChanges_Types(t *testing.T) {
	tests := []struct {
		name      string
		original  string
		formatted string
		want      []TextChange
	}{
		{
			name:      "appended word",
			original:  "done",
			formatted: "done now",
			want:      []TextChange{{Type: ChangeInsert, Start: 4, End: 4, NewText: " now"}},
		},
		{
			name:      "removed word",
			original:  "very very good",
			formatted: "very good",
			want:      []TextChange{{Type: ChangeDelete, Start: 5, End: 10, OldText: "very "}},
		},
		{
			name:      "from empty",
			original:  "",
			formatted: "hi",
			want:      []TextChange{{Type: ChangeInsert, Start: 0, End: 0, NewText: "hi"}},
		},
		{
			name:      "to empty",
			original:  "hi",
			formatted: "",
			want:      []TextChange{{Type: ChangeDelete, Start: 0, End: 2, OldText: "hi"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeChanges(tt.original, tt.formatted)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ComputeChanges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestComputeChanges_Reconstructs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	words := []string{"the", "team", "ship", "Friday", "it", ",", ".", " ", "  ", "\n", "über", "✓"}

	randomText := func() string {
		var sb strings.Builder
		for n := rng.Intn(12); n > 0; n-- {
			sb.WriteString(words[rng.Intn(len(words))])
		}
		return sb.String()
	}

	for i := 0; i < 500; i++ {
		original, formatted := randomText(), randomText()
		changes := ComputeChanges(original, formatted)
		segs := Compute(original, formatted, changes)

		if got := Original(segs); got != original {
			t.Fatalf("original not reconstructed for %q -> %q: got %q (changes %v)", original, formatted, got, changes)
		}
		if got := Formatted(segs); got != formatted {
			t.Fatalf("formatted not reconstructed for %q -> %q: got %q (changes %v)", original, formatted, got, changes)
		}
	}
}

func TestComputeChanges_SizeCap(t *testing.T) {
	original := strings.Repeat("a ", 1100)
	formatted := strings.Repeat("b ", 1100)

	changes := ComputeChanges(original, formatted)
	if len(changes) != 1 {
		t.Fatalf("Expected 1 change, got %d", len(changes))
	}
	c := changes[0]
	if c.Type != ChangeReplace || c.Start != 0 || c.End != len(original) {
		t.Errorf("Expected whole-text replace, got %s [%d,%d)", c.Type, c.Start, c.End)
	}
}

func TestTextChange_JSON(t *testing.T) {
	raw := `{"type":"replace","start":3,"end":6,"new_text":"the","old_text":"teh"}`

	var c TextChange
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	want := TextChange{Type: ChangeReplace, Start: 3, End: 6, NewText: "the", OldText: "teh"}
	if c != want {
		t.Errorf("Expected %+v, got %+v", want, c)
	}
	if !c.Type.Valid() {
		t.Error("Expected replace to be a valid change type")
	}
	if ChangeType("move").Valid() {
		t.Error("Expected move to be invalid")
	}
}

func TestTextDiff_Segments(t *testing.T) {
	var nilDiff *TextDiff
	if segs := nilDiff.Segments(); segs != nil {
		t.Errorf("Expected nil segments for nil diff, got %v", segs)
	}

	d := New("teh cat", "the cat")
	if FormatInline(d.Segments()) != "[-teh-]{+the+} cat" {
		t.Errorf("Unexpected inline diff: %q", FormatInline(d.Segments()))
	}
}

func TestStats(t *testing.T) {
	segs := []Segment{{Unchanged, "ab"}, {Deleted, "é"}, {Inserted, "xyz"}}
	s := Stats(segs)

	if s.Unchanged != 2 || s.Deleted != 1 || s.Inserted != 3 {
		t.Errorf("Unexpected stats: %+v", s)
	}
	if !s.Changed() {
		t.Error("Expected Changed() to be true")
	}
	if Stats(Unstructured("x", "x")).Changed() {
		t.Error("Expected identical text to be unchanged")
	}
}

func TestSegmentKindString(t *testing.T) {
	tests := []struct {
		kind SegmentKind
		want string
	}{
		{Unchanged, "unchanged"},
		{Deleted, "deleted"},
		{Inserted, "inserted"},
		{SegmentKind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Expected '%s', got '%s'", tt.want, got)
		}
	}
}
