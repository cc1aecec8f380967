// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/aisuite/internal/model"
)

// MaxChannelRange caps channel summary windows.
const MaxChannelRange = 30 * 24 * time.Hour

const rangeLabelLayout = "Jan 2, 15:04"

// Window is a resolved summary time range.
type Window struct {
	Since time.Time
	Until time.Time
	Label string
}

// ResolveRange turns a channel request's range fields into a window ending
// at until (or now). Accepted ranges are the presets, Go durations up to
// MaxChannelRange, and "YYYY-MM-DD YYYY-MM-DD" date pairs. A positive since
// always overrides the computed start.
func ResolveRange(timeRange string, sinceMs, untilMs int64, now time.Time) (Window, error) {
	until := now
	if untilMs > 0 {
		until = time.UnixMilli(untilMs)
	}

	var since time.Time
	raw := strings.TrimSpace(timeRange)
	switch strings.ToLower(raw) {
	case "", model.Range24h:
		since = until.Add(-24 * time.Hour)
	case model.Range3d:
		since = until.Add(-72 * time.Hour)
	case model.Range7d:
		since = until.Add(-7 * 24 * time.Hour)
	case model.Range30d:
		since = until.Add(-30 * 24 * time.Hour)
	case model.RangeToday:
		y, m, d := until.Date()
		since = time.Date(y, m, d, 0, 0, 0, 0, until.Location())
	default:
		if d, err := time.ParseDuration(raw); err == nil {
			if d <= 0 || d > MaxChannelRange {
				return Window{}, fmt.Errorf("%w: invalid time range", model.ErrInvalidRequest)
			}
			since = until.Add(-d)
		} else if parts := strings.Fields(raw); len(parts) == 2 {
			start, errStart := time.Parse("2006-01-02", parts[0])
			end, errEnd := time.Parse("2006-01-02", parts[1])
			if errStart != nil || errEnd != nil {
				return Window{}, fmt.Errorf("%w: invalid date range", model.ErrInvalidRequest)
			}
			since = start
			until = end.Add(24*time.Hour - time.Nanosecond)
		} else if sinceMs <= 0 {
			return Window{}, fmt.Errorf("%w: unsupported range %q", model.ErrInvalidRequest, raw)
		}
	}

	if sinceMs > 0 {
		since = time.UnixMilli(sinceMs)
	}
	if since.After(until) {
		return Window{}, fmt.Errorf("%w: since after until", model.ErrInvalidRequest)
	}
	if until.Sub(since) > MaxChannelRange {
		return Window{}, fmt.Errorf("%w: range exceeds 30 days", model.ErrInvalidRequest)
	}

	return Window{
		Since: since,
		Until: until,
		Label: fmt.Sprintf("%s – %s", since.Format(rangeLabelLayout), until.Format(rangeLabelLayout)),
	}, nil
}
