// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"strings"

	"github.com/jeranaias/aisuite/internal/diff"
)

// ProfileID names a formatting profile.
type ProfileID string

const (
	ProfileProfessional ProfileID = "professional"
	ProfileCasual       ProfileID = "casual"
	ProfileTechnical    ProfileID = "technical"
	ProfileConcise      ProfileID = "concise"
)

// DefaultProfile is used when a request names no profile.
const DefaultProfile = ProfileProfessional

// FormattingProfile describes one entry of GET /format/profiles.
type FormattingProfile struct {
	ID          ProfileID `json:"id"`
	Label       string    `json:"label"`
	Description string    `json:"description"`
}

// Profiles returns the built-in profiles in display order.
func Profiles() []FormattingProfile {
	return []FormattingProfile{
		{ProfileProfessional, "Professional", "Improve grammar, clarity, and structure for professional business communication"},
		{ProfileCasual, "Casual", "Improve message quality while maintaining a casual, friendly tone"},
		{ProfileTechnical, "Technical", "Improve technical communication with proper terminology and formatting"},
		{ProfileConcise, "Concise", "Make messages more concise while preserving meaning"},
	}
}

// LookupProfile finds a built-in profile by id.
func LookupProfile(id ProfileID) (FormattingProfile, bool) {
	for _, p := range Profiles() {
		if p.ID == id {
			return p, true
		}
	}
	return FormattingProfile{}, false
}

// MaxMessageLength bounds the message of a format request.
const MaxMessageLength = 16000

// FormatRequest is the body of POST /format/preview and /format/apply.
type FormatRequest struct {
	Message            string    `json:"message"`
	Profile            ProfileID `json:"profile,omitempty"`
	CustomInstructions string    `json:"custom_instructions,omitempty"`
}

// Validate checks the message and profile.
func (r FormatRequest) Validate() error {
	if strings.TrimSpace(r.Message) == "" {
		return fmt.Errorf("%w: message required", ErrInvalidRequest)
	}
	if len(r.Message) > MaxMessageLength {
		return fmt.Errorf("%w: message exceeds %d bytes", ErrInvalidRequest, MaxMessageLength)
	}
	if r.Profile != "" {
		if _, ok := LookupProfile(r.Profile); !ok {
			return fmt.Errorf("%w: unknown profile %q", ErrInvalidRequest, r.Profile)
		}
	}
	return nil
}

// FormatResponse is returned by both format endpoints.
type FormatResponse struct {
	FormattedText string         `json:"formatted_text"`
	Profile       ProfileID      `json:"profile"`
	Diff          *diff.TextDiff `json:"diff,omitempty"`
	ProcessingMs  int64          `json:"processing_ms"`
}
