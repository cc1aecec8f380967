// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package blocks

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// =============================================================================
// BLOCK TYPES
// =============================================================================

// Kind identifies the type of a display block.
type Kind int

const (
	// Paragraph is one or more consecutive non-bullet lines joined by spaces.
	Paragraph Kind = iota
	// BulletList is one or more consecutive bullet lines.
	BulletList
)

// String returns the string representation of a block kind.
func (k Kind) String() string {
	switch k {
	case Paragraph:
		return "paragraph"
	case BulletList:
		return "bullets"
	default:
		return "unknown"
	}
}

// Block is a single display block. Text is set for paragraphs, Items for
// bullet lists.
type Block struct {
	Kind  Kind     `json:"kind"`
	Text  string   `json:"text,omitempty"`
	Items []string `json:"items,omitempty"`
}

// NewParagraph returns a paragraph block.
func NewParagraph(text string) Block {
	return Block{Kind: Paragraph, Text: text}
}

// NewBulletList returns a bullet list block.
func NewBulletList(items ...string) Block {
	return Block{Kind: BulletList, Items: items}
}

// Blocks is an ordered sequence of display blocks.
type Blocks []Block

// Text concatenates the content of every block: paragraph text as is and
// bullet items joined by nothing.
func (bs Blocks) Text() string {
	var sb strings.Builder
	for _, b := range bs {
		switch b.Kind {
		case Paragraph:
			sb.WriteString(b.Text)
		case BulletList:
			for _, item := range b.Items {
				sb.WriteString(item)
			}
		}
	}
	return sb.String()
}

// Counts returns the number of paragraphs and bullet items.
func (bs Blocks) Counts() (paragraphs, items int) {
	for _, b := range bs {
		if b.Kind == Paragraph {
			paragraphs++
		} else {
			items += len(b.Items)
		}
	}
	return paragraphs, items
}

// =============================================================================
// PARSER
// =============================================================================

// bulletMarkers are the characters that start a bullet line.
const bulletMarkers = "-*•"

// parser holds the two accumulators used while walking the lines.
type parser struct {
	blocks  Blocks
	text    strings.Builder
	bullets []string
}

func (p *parser) flushText() {
	if content := strings.TrimSpace(p.text.String()); content != "" {
		p.blocks = append(p.blocks, NewParagraph(content))
	}
	p.text.Reset()
}

func (p *parser) flushBullets() {
	if len(p.bullets) > 0 {
		p.blocks = append(p.blocks, NewBulletList(p.bullets...))
	}
	p.bullets = nil
}

// Parse converts summary text into display blocks.
//
// Blank lines end the current paragraph and bullet list. A bullet line ends
// the current paragraph; any other line ends the current bullet list. At end
// of input the paragraph is flushed before the bullets, whichever came last.
// Parse never fails: every non-blank character ends up in some block.
func Parse(text string) Blocks {
	p := &parser{}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			p.flushText()
			p.flushBullets()
			continue
		}

		if item, ok := stripBullet(trimmed); ok {
			p.flushText()
			p.bullets = append(p.bullets, item)
			continue
		}

		p.flushBullets()
		p.text.WriteString(trimmed)
		p.text.WriteByte(' ')
	}

	p.flushText()
	p.flushBullets()

	if p.blocks == nil {
		return Blocks{}
	}
	return p.blocks
}

// stripBullet reports whether line starts with a bullet marker and returns the
// item text with the marker and at most one following space removed.
func stripBullet(line string) (string, bool) {
	r, size := utf8.DecodeRuneInString(line)
	if !strings.ContainsRune(bulletMarkers, r) {
		return "", false
	}
	rest := line[size:]
	if next, n := utf8.DecodeRuneInString(rest); n > 0 && unicode.IsSpace(next) {
		rest = rest[n:]
	}
	return strings.TrimSpace(rest), true
}
