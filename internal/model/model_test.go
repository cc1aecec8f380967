// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     SummaryRequest
		wantErr bool
	}{
		{"thread with post", NewThreadRequest("c1", "", "p1"), false},
		{"thread with root", NewThreadRequest("", "r1", ""), false},
		{"thread without ids", NewThreadRequest("c1", "", ""), true},
		{"channel preset", NewChannelRequest("c1", Range7d), false},
		{"channel without id", NewChannelRequest("", Range24h), true},
		{"channel inverted range", SummaryRequest{Type: SummaryChannel, ChannelID: "c1", Since: 20, Until: 10}, true},
		{"unknown type", SummaryRequest{Type: "team", ChannelID: "c1"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidRequest))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestSummaryRequestJSON_OmitsEmpty(t *testing.T) {
	data, err := json.Marshal(NewChannelRequest("c1", Range24h))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"channel","channel_id":"c1","time_range":"24h"}`, string(data))
}

func TestParticipantName(t *testing.T) {
	assert.Equal(t, "Ada", Participant{ID: "u1", Username: "ada", DisplayName: "Ada"}.Name())
	assert.Equal(t, "ada", Participant{ID: "u1", Username: "ada"}.Name())
	assert.Equal(t, "u1", Participant{ID: "u1"}.Name())
}

func TestProfiles(t *testing.T) {
	profiles := Profiles()
	require.Len(t, profiles, 4)
	assert.Equal(t, ProfileProfessional, profiles[0].ID)

	p, ok := LookupProfile(ProfileConcise)
	require.True(t, ok)
	assert.Equal(t, "Concise", p.Label)

	_, ok = LookupProfile("pirate")
	assert.False(t, ok)
}

func TestFormatRequestValidate(t *testing.T) {
	assert.NoError(t, FormatRequest{Message: "hi"}.Validate())
	assert.NoError(t, FormatRequest{Message: "hi", Profile: ProfileCasual}.Validate())
	assert.ErrorIs(t, FormatRequest{Message: "  "}.Validate(), ErrInvalidRequest)
	assert.ErrorIs(t, FormatRequest{Message: "hi", Profile: "pirate"}.Validate(), ErrInvalidRequest)
}

func TestActionItemValidate(t *testing.T) {
	valid := ActionItem{Description: "Write notes", AssigneeID: "u1", Priority: PriorityHigh, Status: StatusOpen}
	require.NoError(t, valid.Validate())

	noDesc := valid
	noDesc.Description = " "
	assert.ErrorIs(t, noDesc.Validate(), ErrInvalidRequest)

	noAssignee := valid
	noAssignee.AssigneeID = ""
	assert.Error(t, noAssignee.Validate())

	badPriority := valid
	badPriority.Priority = "someday"
	assert.Error(t, badPriority.Validate())

	badStatus := valid
	badStatus.Status = "blocked"
	assert.Error(t, badStatus.Validate())
}

func TestCreateRequestDefaults(t *testing.T) {
	due := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	item := ActionItemCreateRequest{
		Description: "  Draft plan ",
		AssigneeID:  "u2",
		ChannelID:   "c1",
		DueDate:     &due,
	}.ToItem("u1")

	assert.Equal(t, "Draft plan", item.Description)
	assert.Equal(t, "u1", item.CreatedBy)
	assert.Equal(t, PriorityMedium, item.Priority)
	assert.Equal(t, StatusOpen, item.Status)
	assert.Equal(t, due.UnixMilli(), item.DueDate)
}

func TestUpdateApply(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	item := &ActionItem{Description: "old", Status: StatusOpen, Priority: PriorityLow}

	completed := StatusCompleted
	desc := "new"
	update := ActionItemUpdateRequest{Description: &desc, Status: &completed}
	require.False(t, update.Empty())
	update.Apply(item, now)

	assert.Equal(t, "new", item.Description)
	assert.Equal(t, StatusCompleted, item.Status)
	assert.Equal(t, now.UnixMilli(), item.CompletedAt)
	assert.Equal(t, now.UnixMilli(), item.UpdateAt)
	assert.Equal(t, PriorityLow, item.Priority)

	// A second completion keeps the first timestamp.
	update.Apply(item, now.Add(time.Hour))
	assert.Equal(t, now.UnixMilli(), item.CompletedAt)

	assert.True(t, ActionItemUpdateRequest{}.Empty())
}

func TestUpdateRequestJSON_OmitsNil(t *testing.T) {
	p := PriorityUrgent
	data, err := json.Marshal(ActionItemUpdateRequest{Priority: &p})
	require.NoError(t, err)
	assert.JSONEq(t, `{"priority":"urgent"}`, string(data))
}

func TestFiltersQueryRoundTrip(t *testing.T) {
	before := time.UnixMilli(1_700_000_000_000)
	f := ActionItemFilters{
		ChannelID:        "c1",
		Status:           StatusInProgress,
		Priority:         PriorityHigh,
		DueBefore:        before,
		IncludeCompleted: true,
		Page:             2,
		PerPage:          10,
	}

	q := f.Query()
	assert.Equal(t, "c1", q.Get("channel_id"))
	assert.Equal(t, "true", q.Get("include_completed"))
	assert.Empty(t, q.Get("user_id"))

	parsed := ParseFilters(q)
	assert.Equal(t, f.ChannelID, parsed.ChannelID)
	assert.Equal(t, f.Status, parsed.Status)
	assert.True(t, parsed.DueBefore.Equal(before))
	assert.Equal(t, 2, parsed.Page)
	assert.Equal(t, 10, parsed.PerPage)

	assert.Equal(t, DefaultPerPage, ParseFilters(nil).PerPage)
}

func TestFiltersMatch(t *testing.T) {
	item := &ActionItem{Status: StatusCompleted, Priority: PriorityLow, CreatedBy: "u1", DueDate: 100}

	assert.False(t, ActionItemFilters{}.Match(item), "completed hidden by default")
	assert.True(t, ActionItemFilters{IncludeCompleted: true}.Match(item))
	assert.True(t, ActionItemFilters{Status: StatusCompleted}.Match(item))
	assert.False(t, ActionItemFilters{IncludeCompleted: true, Priority: PriorityHigh}.Match(item))
	assert.False(t, ActionItemFilters{IncludeCompleted: true, AssignedBy: "u2"}.Match(item))
	assert.False(t, ActionItemFilters{IncludeCompleted: true, DueAfter: time.UnixMilli(200)}.Match(item))
}

func TestOverdueAndDueSoon(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ms := func(d time.Duration) int64 { return now.Add(d).UnixMilli() }

	tests := []struct {
		name        string
		item        ActionItem
		wantOverdue bool
		wantSoon    bool
	}{
		{"past due open", ActionItem{DueDate: ms(-time.Hour), Status: StatusOpen}, true, false},
		{"past due completed", ActionItem{DueDate: ms(-time.Hour), Status: StatusCompleted}, false, false},
		{"past due dismissed", ActionItem{DueDate: ms(-time.Hour), Status: StatusDismissed}, false, false},
		{"due tomorrow", ActionItem{DueDate: ms(24 * time.Hour), Status: StatusInProgress}, false, true},
		{"due in a month", ActionItem{DueDate: ms(30 * 24 * time.Hour), Status: StatusOpen}, false, false},
		{"no due date", ActionItem{Status: StatusOpen}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantOverdue, tt.item.IsOverdue(now))
			assert.Equal(t, tt.wantSoon, tt.item.IsDueSoon(now))
		})
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	ms := func(d time.Duration) int64 { return now.Add(d).UnixMilli() }

	items := []*ActionItem{
		{Priority: PriorityHigh, Status: StatusOpen, DueDate: ms(-time.Hour)},
		{Priority: PriorityHigh, Status: StatusOpen, DueDate: ms(2 * time.Hour)},
		{Priority: PriorityLow, Status: StatusInProgress, DueDate: ms(48 * time.Hour)},
		{Priority: PriorityMedium, Status: StatusCompleted, DueDate: ms(-time.Hour)},
		{Priority: PriorityMedium, Status: StatusOpen},
	}

	stats := ComputeStats(items, now)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.DueToday)
	assert.Equal(t, 1, stats.DueSoon)
	assert.Equal(t, 1, stats.NoDueDate)
	assert.Equal(t, 1, stats.Completed)
	assert.Equal(t, 2, stats.ByPriority["high"])
	assert.Equal(t, 3, stats.ByStatus["open"])
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityLow.Rank(), PriorityUrgent.Rank())
	assert.Equal(t, -1, Priority("x").Rank())
	assert.False(t, Priority("x").Valid())
	assert.True(t, StatusDismissed.Closed())
	assert.False(t, StatusInProgress.Closed())
}
