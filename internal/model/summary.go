// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned when a request is missing required fields.
var ErrInvalidRequest = errors.New("invalid request")

// SummaryType identifies what is being summarized.
type SummaryType string

const (
	SummaryThread  SummaryType = "thread"
	SummaryChannel SummaryType = "channel"
)

// Valid reports whether t is a known summary type.
func (t SummaryType) Valid() bool {
	return t == SummaryThread || t == SummaryChannel
}

// Time range presets accepted by channel summaries.
const (
	Range24h   = "24h"
	Range3d    = "3d"
	Range7d    = "7d"
	Range30d   = "30d"
	RangeToday = "today"
)

// RangePresets lists the presets in display order.
var RangePresets = []string{Range24h, Range3d, Range7d, Range30d, RangeToday}

// SummaryRequest is the body of POST /summarize. Since and Until are unix
// milliseconds.
type SummaryRequest struct {
	Type       SummaryType `json:"type"`
	ChannelID  string      `json:"channel_id,omitempty"`
	RootPostID string      `json:"root_post_id,omitempty"`
	PostID     string      `json:"post_id,omitempty"`
	TimeRange  string      `json:"time_range,omitempty"`
	Since      int64       `json:"since,omitempty"`
	Until      int64       `json:"until,omitempty"`
	Force      bool        `json:"force,omitempty"`
}

// NewThreadRequest builds a thread summary request. postID may be any post in
// the thread; rootPostID is optional.
func NewThreadRequest(channelID, rootPostID, postID string) SummaryRequest {
	return SummaryRequest{
		Type:       SummaryThread,
		ChannelID:  channelID,
		RootPostID: rootPostID,
		PostID:     postID,
	}
}

// NewChannelRequest builds a channel summary request for a range preset.
func NewChannelRequest(channelID, timeRange string) SummaryRequest {
	return SummaryRequest{
		Type:      SummaryChannel,
		ChannelID: channelID,
		TimeRange: timeRange,
	}
}

// Validate checks the fields each summary type requires.
func (r SummaryRequest) Validate() error {
	switch r.Type {
	case SummaryThread, "":
		if strings.TrimSpace(r.RootPostID) == "" && strings.TrimSpace(r.PostID) == "" {
			return fmt.Errorf("%w: root_post_id or post_id required", ErrInvalidRequest)
		}
	case SummaryChannel:
		if strings.TrimSpace(r.ChannelID) == "" {
			return fmt.Errorf("%w: channel_id required", ErrInvalidRequest)
		}
		if r.Since > 0 && r.Until > 0 && r.Since > r.Until {
			return fmt.Errorf("%w: since after until", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown type %s", ErrInvalidRequest, r.Type)
	}
	return nil
}

// SummaryResponse is the body returned by POST /summarize. GeneratedAt is
// unix milliseconds.
type SummaryResponse struct {
	ID               string         `json:"id"`
	Type             SummaryType    `json:"type"`
	ChannelID        string         `json:"channel_id"`
	ChannelName      string         `json:"channel_name"`
	RootPostID       string         `json:"root_post_id,omitempty"`
	Title            string         `json:"title"`
	Summary          string         `json:"summary"`
	MessageCount     int            `json:"message_count"`
	ParticipantCount int            `json:"participant_count"`
	Participants     []Participant  `json:"participants"`
	GeneratedAt      int64          `json:"generated_at"`
	Range            SummaryRange   `json:"range"`
	Context          SummaryContext `json:"context"`
	Usage            *Usage         `json:"usage,omitempty"`
	LimitReached     bool           `json:"limit_reached"`
	Cached           bool           `json:"cached"`
}

// Participant is a user who posted in the summarized conversation.
type Participant struct {
	ID          string `json:"id"`
	Username    string `json:"username,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
}

// Name returns the best available label for the participant.
func (p Participant) Name() string {
	switch {
	case p.DisplayName != "":
		return p.DisplayName
	case p.Username != "":
		return p.Username
	default:
		return p.ID
	}
}

// SummaryRange is the time window a summary covers.
type SummaryRange struct {
	Since int64  `json:"since"`
	Until int64  `json:"until"`
	Label string `json:"label"`
}

// SummaryContext carries presentation metadata.
type SummaryContext struct {
	TypeLabel    string `json:"type_label"`
	MessageLimit int    `json:"message_limit"`
	Timeframe    string `json:"timeframe"`
}

// Usage is model token accounting.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
