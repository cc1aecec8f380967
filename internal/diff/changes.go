// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package diff

import (
	"unicode"
	"unicode/utf8"
)

// MaxLCSCells bounds the token LCS table. Larger inputs are reported as a
// single whole-text replace.
const MaxLCSCells = 1 << 20

// token is a word, a whitespace run, or a single other rune, with its byte
// offset in the source text.
type token struct {
	text  string
	start int
}

// ComputeChanges derives an offset-based change list that turns original
// into formatted. Identical inputs produce no changes.
func ComputeChanges(original, formatted string) []TextChange {
	if original == formatted {
		return nil
	}

	a, b := tokenize(original), tokenize(formatted)
	if len(a)*len(b) > MaxLCSCells {
		return []TextChange{wholeReplace(original, formatted)}
	}

	pairs := computeLCS(a, b)

	var changes []TextChange
	ai, bi := 0, 0
	for _, p := range append(pairs, [2]int{len(a), len(b)}) {
		if p[0] > ai || p[1] > bi {
			changes = append(changes, gapChange(original, formatted, a, b, ai, p[0], bi, p[1]))
		}
		ai, bi = p[0]+1, p[1]+1
	}

	return changes
}

// gapChange describes the tokens a[ai:aj] being replaced by b[bi:bj].
func gapChange(original, formatted string, a, b []token, ai, aj, bi, bj int) TextChange {
	start, end := span(a, ai, aj, len(original))
	nstart, nend := span(b, bi, bj, len(formatted))

	c := TextChange{
		Start:   start,
		End:     end,
		OldText: original[start:end],
		NewText: formatted[nstart:nend],
	}
	switch {
	case aj == ai:
		c.Type = ChangeInsert
	case bj == bi:
		c.Type = ChangeDelete
	default:
		c.Type = ChangeReplace
	}
	return c
}

// span returns the byte range covered by toks[i:j]. An empty range sits at
// the start of toks[i], or at textLen when i is past the end.
func span(toks []token, i, j, textLen int) (int, int) {
	start := textLen
	if i < len(toks) {
		start = toks[i].start
	}
	end := start
	if j > i {
		last := toks[j-1]
		end = last.start + len(last.text)
	}
	return start, end
}

func wholeReplace(original, formatted string) TextChange {
	c := TextChange{
		Type:    ChangeReplace,
		Start:   0,
		End:     len(original),
		OldText: original,
		NewText: formatted,
	}
	switch {
	case original == "":
		c.Type = ChangeInsert
	case formatted == "":
		c.Type = ChangeDelete
	}
	return c
}

func tokenize(s string) []token {
	var toks []token
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		j := i + size

		switch {
		case isWord(r):
			for j < len(s) {
				r2, n := utf8.DecodeRuneInString(s[j:])
				if !isWord(r2) {
					break
				}
				j += n
			}
		case unicode.IsSpace(r):
			for j < len(s) {
				r2, n := utf8.DecodeRuneInString(s[j:])
				if !unicode.IsSpace(r2) {
					break
				}
				j += n
			}
		}

		toks = append(toks, token{text: s[i:j], start: i})
		i = j
	}
	return toks
}

func isWord(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

// computeLCS returns index pairs (i, j) of a longest common subsequence of
// token texts, in ascending order.
func computeLCS(a, b []token) [][2]int {
	m, n := len(a), len(b)

	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
	}

	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			if a[i].text == b[j].text {
				dp[i][j] = dp[i+1][j+1] + 1
			} else {
				dp[i][j] = max(dp[i+1][j], dp[i][j+1])
			}
		}
	}

	var pairs [][2]int
	i, j := 0, 0
	for i < m && j < n {
		if a[i].text == b[j].text {
			pairs = append(pairs, [2]int{i, j})
			i++
			j++
		} else if dp[i+1][j] >= dp[i][j+1] {
			i++
		} else {
			j++
		}
	}
	return pairs
}
