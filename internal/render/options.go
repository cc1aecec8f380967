// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/jeranaias/aisuite/internal/config"
)

// =============================================================================
// OPTIONS
// =============================================================================

const (
	// DefaultWidth is used when the output is not a terminal.
	DefaultWidth = 80

	// MinWidth keeps tables readable in narrow terminals.
	MinWidth = 40
)

// Color modes accepted in [ui] color.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options controls how a Renderer styles its output.
type Options struct {
	// Color enables ANSI styling
	Color bool
	// Profile is the color depth used when Color is set
	Profile termenv.Profile
	// DarkBackground picks the dark side of adaptive colors
	DarkBackground bool
	// Markdown renders summary text through glamour
	Markdown bool
	// Width wraps paragraphs and sizes tables
	Width int
}

// Plain returns options for uncolored output at the default width.
func Plain() Options {
	return Options{Profile: termenv.Ascii, Width: DefaultWidth}
}

// Detect derives options from the UI config and the file output goes to.
func Detect(cfg config.UIConfig, f *os.File) Options {
	isTTY := f != nil && term.IsTerminal(int(f.Fd()))
	_, noColor := os.LookupEnv("NO_COLOR")

	opts := Options{
		Color:    ColorEnabled(cfg.Color, isTTY, noColor),
		Profile:  termenv.Ascii,
		Markdown: cfg.Markdown,
		Width:    cfg.Width,
	}

	if opts.Color {
		opts.Profile = termenv.ANSI256
		if isTTY {
			out := termenv.NewOutput(f)
			if p := out.ColorProfile(); p != termenv.Ascii {
				opts.Profile = p
			}
			opts.DarkBackground = out.HasDarkBackground()
		}
	}

	if opts.Width <= 0 {
		opts.Width = DefaultWidth
		if isTTY {
			if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
				opts.Width = w
			}
		}
	}
	if opts.Width < MinWidth {
		opts.Width = MinWidth
	}
	return opts
}

// ColorEnabled resolves a color mode. NO_COLOR only affects auto.
func ColorEnabled(mode string, isTTY, noColor bool) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	default:
		return isTTY && !noColor
	}
}
