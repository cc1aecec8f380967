// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"

	"github.com/jeranaias/aisuite/internal/blocks"
	"github.com/jeranaias/aisuite/internal/diff"
)

// =============================================================================
// PALETTE
// =============================================================================

var (
	colorAccent  = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	colorInfo    = lipgloss.AdaptiveColor{Light: "#0891B2", Dark: "#22D3EE"}
	colorSuccess = lipgloss.AdaptiveColor{Light: "#059669", Dark: "#34D399"}
	colorError   = lipgloss.AdaptiveColor{Light: "#E11D48", Dark: "#FB7185"}
	colorWarning = lipgloss.AdaptiveColor{Light: "#D97706", Dark: "#FBBF24"}
	colorMuted   = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#A6ADC8"}
)

type styles struct {
	title    lipgloss.Style
	meta     lipgloss.Style
	header   lipgloss.Style
	bullet   lipgloss.Style
	deleted  lipgloss.Style
	inserted lipgloss.Style
	errText  lipgloss.Style
	warn     lipgloss.Style
	ok       lipgloss.Style
	info     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		title:    r.NewStyle().Bold(true).Foreground(colorAccent),
		meta:     r.NewStyle().Foreground(colorMuted),
		header:   r.NewStyle().Bold(true).Foreground(colorMuted),
		bullet:   r.NewStyle().Foreground(colorInfo),
		deleted:  r.NewStyle().Foreground(colorError).Strikethrough(true),
		inserted: r.NewStyle().Foreground(colorSuccess),
		errText:  r.NewStyle().Bold(true).Foreground(colorError),
		warn:     r.NewStyle().Foreground(colorWarning),
		ok:       r.NewStyle().Foreground(colorSuccess),
		info:     r.NewStyle().Foreground(colorInfo),
	}
}

// =============================================================================
// RENDERER
// =============================================================================

// Renderer turns suite data into terminal text. Output is returned as
// strings; Print writes to the renderer's writer.
type Renderer struct {
	w      io.Writer
	opts   Options
	lg     *lipgloss.Renderer
	styles styles

	mdOnce sync.Once
	md     *glamour.TermRenderer
	mdErr  error
}

// New creates a renderer writing to w.
func New(w io.Writer, opts Options) *Renderer {
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	lg := lipgloss.NewRenderer(w)
	if opts.Color {
		profile := opts.Profile
		if profile == termenv.Ascii {
			profile = termenv.ANSI256
		}
		lg.SetColorProfile(profile)
	} else {
		lg.SetColorProfile(termenv.Ascii)
	}
	lg.SetHasDarkBackground(opts.DarkBackground)

	return &Renderer{
		w:      w,
		opts:   opts,
		lg:     lg,
		styles: newStyles(lg),
	}
}

// Options returns the options the renderer was built with.
func (r *Renderer) Options() Options { return r.opts }

// Print writes s followed by a newline unless s already ends with one.
func (r *Renderer) Print(s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	fmt.Fprint(r.w, s)
}

// Error renders a failure line.
func (r *Renderer) Error(msg string) string {
	return r.styles.errText.Render("Error:") + " " + msg
}

// Success renders a confirmation line.
func (r *Renderer) Success(msg string) string {
	return r.styles.ok.Render("✓") + " " + msg
}

// Heading renders a section title.
func (r *Renderer) Heading(title string) string {
	return r.styles.title.Render(title)
}

// Muted renders secondary text such as metadata and hints.
func (r *Renderer) Muted(s string) string {
	return r.styles.meta.Render(s)
}

// =============================================================================
// BLOCKS
// =============================================================================

// Blocks renders parsed summary blocks. Paragraphs wrap to the configured
// width; bullet items hang-indent under their marker. Blocks are separated
// by a blank line.
func (r *Renderer) Blocks(bs blocks.Blocks) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		switch b.Kind {
		case blocks.Paragraph:
			parts = append(parts, wordwrap.String(b.Text, r.opts.Width))
		case blocks.BulletList:
			items := make([]string, 0, len(b.Items))
			for _, item := range b.Items {
				items = append(items, r.bulletItem(item))
			}
			parts = append(parts, strings.Join(items, "\n"))
		}
	}
	return strings.Join(parts, "\n\n")
}

func (r *Renderer) bulletItem(text string) string {
	width := r.opts.Width - 2
	if width < 1 {
		width = 1
	}
	wrapped := wordwrap.String(text, width)
	return r.styles.bullet.Render("•") + " " + strings.ReplaceAll(wrapped, "\n", "\n  ")
}

// Markdown renders text with glamour, falling back to the block renderer
// when glamour cannot be initialized or fails.
func (r *Renderer) Markdown(text string) string {
	r.mdOnce.Do(func() {
		style := "notty"
		if r.opts.Color {
			style = "light"
			if r.opts.DarkBackground {
				style = "dark"
			}
		}
		r.md, r.mdErr = glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(r.opts.Width),
		)
	})
	if r.mdErr != nil {
		return r.Blocks(blocks.Parse(text))
	}
	out, err := r.md.Render(text)
	if err != nil {
		return r.Blocks(blocks.Parse(text))
	}
	return strings.Trim(out, "\n")
}

// =============================================================================
// DIFF
// =============================================================================

// Diff renders segments inline. With color, deletions are red and struck
// through and insertions are green; without, they use the [-x-] and {+x+}
// markers of diff.FormatInline.
func (r *Renderer) Diff(segs []diff.Segment) string {
	if !r.opts.Color {
		return diff.FormatInline(segs)
	}
	var sb strings.Builder
	for _, seg := range segs {
		switch seg.Kind {
		case diff.Deleted:
			sb.WriteString(paintLines(r.styles.deleted, seg.Text))
		case diff.Inserted:
			sb.WriteString(paintLines(r.styles.inserted, seg.Text))
		default:
			sb.WriteString(seg.Text)
		}
	}
	return sb.String()
}

// paintLines styles each line of text separately. Rendering a multi-line
// string in one call pads every line to the widest one.
func paintLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

// DiffStats renders a one-line change count.
func (r *Renderer) DiffStats(s diff.DiffStats) string {
	if !s.Changed() {
		return r.styles.meta.Render("no changes")
	}
	return fmt.Sprintf("%s %s",
		r.styles.deleted.UnsetStrikethrough().Render(fmt.Sprintf("-%d", s.Deleted)),
		r.styles.inserted.Render(fmt.Sprintf("+%d", s.Inserted)),
	) + r.styles.meta.Render(" characters")
}
