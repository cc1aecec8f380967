// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the wire types of the AI suite HTTP contract.
//
// # Key Types
//
//   - SummaryRequest / SummaryResponse: POST /summarize
//   - FormatRequest / FormatResponse: POST /format/preview and /format/apply
//   - FormattingProfile: GET /format/profiles
//   - ActionItem and its create/update/filter/stats companions
//
// # Usage
//
//	req := model.NewChannelRequest(channelID, "7d")
//	if err := req.Validate(); err != nil {
//	    return err
//	}
package model
