// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/aisuite/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports summaries as Markdown with YAML front matter.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// frontMatter is the YAML header of a Markdown export.
type frontMatter struct {
	Title        string   `yaml:"title"`
	Type         string   `yaml:"type"`
	Channel      string   `yaml:"channel,omitempty"`
	RootPost     string   `yaml:"root_post,omitempty"`
	Range        string   `yaml:"range,omitempty"`
	Messages     int      `yaml:"messages"`
	Participants []string `yaml:"participants,omitempty"`
	Generated    string   `yaml:"generated"`
	Exported     string   `yaml:"exported"`
	Generator    string   `yaml:"generator"`
}

// Export converts a summary to Markdown. The summary text is already
// Markdown and is written unchanged.
func (e *MarkdownExporter) Export(s *model.SummaryResponse) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("summary is nil")
	}
	if strings.TrimSpace(s.Summary) == "" {
		return nil, fmt.Errorf("summary %s has no text", s.ID)
	}

	names := make([]string, 0, len(s.Participants))
	for _, p := range s.Participants {
		names = append(names, p.Name())
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		fm, err := yaml.Marshal(frontMatter{
			Title:        s.Title,
			Type:         string(s.Type),
			Channel:      s.ChannelName,
			RootPost:     s.RootPostID,
			Range:        s.Range.Label,
			Messages:     s.MessageCount,
			Participants: names,
			Generated:    time.UnixMilli(s.GeneratedAt).UTC().Format(time.RFC3339),
			Exported:     e.options.now().UTC().Format(time.RFC3339),
			Generator:    "aisuite",
		})
		if err != nil {
			return nil, fmt.Errorf("encode front matter: %w", err)
		}
		sb.WriteString("---\n")
		sb.Write(fm)
		sb.WriteString("---\n\n")
	}

	title := s.Title
	if title == "" {
		title = "Summary"
	}
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(title))

	if e.options.IncludeMetadata {
		sb.WriteString("## Details\n\n")
		if s.ChannelName != "" {
			fmt.Fprintf(&sb, "- **Channel**: %s\n", escapeMarkdown(s.ChannelName))
		}
		if s.Range.Label != "" {
			fmt.Fprintf(&sb, "- **Range**: %s\n", s.Range.Label)
		}
		fmt.Fprintf(&sb, "- **Messages**: %d\n", s.MessageCount)
		if len(names) > 0 {
			fmt.Fprintf(&sb, "- **Participants**: %s\n", escapeMarkdown(strings.Join(names, ", ")))
		}
		fmt.Fprintf(&sb, "- **Generated**: %s\n", formatTimestamp(s.GeneratedAt))
		if s.LimitReached {
			fmt.Fprintf(&sb, "- **Note**: only the most recent %d messages were summarized\n", s.Context.MessageLimit)
		}
		sb.WriteString("\n---\n\n")
	}

	sb.WriteString(strings.TrimSpace(s.Summary))
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break formatting in
// headings and list items.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}
