// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aisuite/internal/blocks"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/storage"
	"github.com/jeranaias/aisuite/internal/util"
)

// =============================================================================
// SUMMARIES
// =============================================================================

// maxParticipantNames caps the participant line before "+N more".
const maxParticipantNames = 5

// SummaryHeader renders the title and metadata lines of a summary.
func (r *Renderer) SummaryHeader(s *model.SummaryResponse, now time.Time) string {
	var lines []string
	lines = append(lines, r.styles.title.Render(s.Title))

	meta := []string{plural(s.MessageCount, "message"), plural(s.ParticipantCount, "participant")}
	if s.Range.Label != "" {
		meta = append(meta, s.Range.Label)
	}
	if s.GeneratedAt > 0 {
		meta = append(meta, "generated "+util.RelativeTime(time.UnixMilli(s.GeneratedAt), now))
	}
	if s.Cached {
		meta = append(meta, "cached")
	}
	lines = append(lines, r.styles.meta.Render(strings.Join(meta, " · ")))

	if names := participantLine(s.Participants); names != "" {
		lines = append(lines, r.styles.meta.Render("Participants: ")+names)
	}
	if s.LimitReached && s.Context.MessageLimit > 0 {
		lines = append(lines, r.styles.warn.Render(
			fmt.Sprintf("Only the most recent %d messages were summarized.", s.Context.MessageLimit)))
	}
	return strings.Join(lines, "\n")
}

// Summary renders the header followed by the summary body.
func (r *Renderer) Summary(s *model.SummaryResponse, now time.Time) string {
	var body string
	if r.opts.Markdown {
		body = r.Markdown(s.Summary)
	} else {
		body = r.Blocks(blocks.Parse(s.Summary))
	}
	if strings.TrimSpace(body) == "" {
		body = r.styles.meta.Render("(empty summary)")
	}
	return r.SummaryHeader(s, now) + "\n\n" + body
}

func participantLine(ps []model.Participant) string {
	if len(ps) == 0 {
		return ""
	}
	names := make([]string, 0, maxParticipantNames)
	for i, p := range ps {
		if i == maxParticipantNames {
			break
		}
		names = append(names, p.Name())
	}
	line := strings.Join(names, ", ")
	if extra := len(ps) - len(names); extra > 0 {
		line += fmt.Sprintf(" +%d more", extra)
	}
	return line
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// =============================================================================
// HISTORY
// =============================================================================

// History renders saved summaries newest first.
func (r *Renderer) History(records []storage.SummaryRecord, now time.Time) string {
	if len(records) == 0 {
		return r.styles.meta.Render("No saved summaries.")
	}

	const (
		idW    = 8
		whenW  = 9
		typeW  = 8
		countW = 5
	)
	titleW := r.opts.Width - idW - whenW - typeW - countW - 4
	if titleW < 10 {
		titleW = 10
	}

	var sb strings.Builder
	sb.WriteString(r.styles.header.Render(strings.Join([]string{
		util.PadRight("ID", idW),
		util.PadRight("SAVED", whenW),
		util.PadRight("TYPE", typeW),
		util.PadRight("MSGS", countW),
		"TITLE",
	}, " ")))

	for _, rec := range records {
		sb.WriteString("\n")
		sb.WriteString(strings.Join([]string{
			util.PadRight(shortID(rec.ID), idW),
			r.styles.meta.Render(util.PadRight(util.RelativeTime(time.UnixMilli(rec.SavedAt), now), whenW)),
			util.PadRight(string(rec.Type), typeW),
			util.PadRight(fmt.Sprintf("%d", rec.MessageCount), countW),
			util.TruncateWidth(rec.Title, titleW),
		}, " "))
	}
	return sb.String()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
