// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

var whenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
}

// parseWhen reads an absolute time or an offset from now. Offsets are Go
// durations or whole days ("3d"); direction is -1 for the past (since and
// until flags) and +1 for the future (due dates).
func parseWhen(s string, now time.Time, direction int) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	switch strings.ToLower(s) {
	case "now":
		return now, nil
	case "today":
		y, m, d := now.Date()
		if direction > 0 {
			return time.Date(y, m, d, 23, 59, 0, 0, now.Location()), nil
		}
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	case "tomorrow":
		y, m, d := now.AddDate(0, 0, 1).Date()
		return time.Date(y, m, d, 23, 59, 0, 0, now.Location()), nil
	}

	for _, layout := range whenLayouts {
		if t, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return t, nil
		}
	}

	if d, err := parseOffset(s); err == nil {
		return now.Add(time.Duration(direction) * d), nil
	}
	return time.Time{}, usageErrorf("cannot parse time %q (use YYYY-MM-DD, RFC 3339, 24h or 3d)", s)
}

func parseOffset(s string) (time.Duration, error) {
	if days, ok := strings.CutSuffix(strings.ToLower(s), "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("offset must be positive: %s", s)
	}
	return d, nil
}
