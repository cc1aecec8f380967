// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jeranaias/aisuite/internal/client"
	"github.com/jeranaias/aisuite/internal/config"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

const base = config.DefaultPluginPath

type testEnv struct {
	srv    *Server
	store  *storage.Store
	ts     *httptest.Server
	client *client.Client
	logs   *observer.ObservedLogs
}

func newTestEnv(t *testing.T, cfg config.DevServerConfig) *testEnv {
	t.Helper()

	store, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	store.WithClock(func() time.Time { return testNow })

	core, logs := observer.New(zap.DebugLevel)
	srv := New(cfg, store, testFixtures(t), zap.New(core)).
		WithClock(func() time.Time { return testNow })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	c, err := client.New(ts.URL, "")
	require.NoError(t, err)
	c.WithHTTPClient(ts.Client()).WithMaxRetries(1)

	return &testEnv{srv: srv, store: store, ts: ts, client: c, logs: logs}
}

type rawResponse struct {
	status int
	header http.Header
	body   []byte
}

func (r rawResponse) errorMessage(t *testing.T) string {
	t.Helper()
	var payload map[string]string
	require.NoError(t, json.Unmarshal(r.body, &payload), string(r.body))
	return payload["error"]
}

func (e *testEnv) do(t *testing.T, method, path, body string, header map[string]string) rawResponse {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, e.ts.URL+base+path, reader)
	require.NoError(t, err)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := e.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return rawResponse{status: resp.StatusCode, header: resp.Header, body: data}
}

// =============================================================================
// HEALTH AND MIDDLEWARE
// =============================================================================

func TestHealth(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	h, err := env.client.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, Version, h.Version)
}

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "nosniff", resp.header.Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.header.Get("X-Frame-Options"))
	assert.Equal(t, "no-store", resp.header.Get("Cache-Control"))
	assert.Equal(t, "application/json", resp.header.Get("Content-Type"))
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	resp := env.do(t, http.MethodGet, "/summarize", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.status)
}

func TestCSRF(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{CSRFToken: "secret"})
	ctx := context.Background()

	_, err := env.client.Health(ctx)
	require.NoError(t, err, "reads need no token")

	_, err = env.client.Summarize(ctx, model.SummaryRequest{PostID: "p-standup"})
	assert.True(t, client.IsStatus(err, http.StatusUnauthorized), "err = %v", err)

	resp := env.do(t, http.MethodPost, "/summarize", `{"post_id":"p-standup"}`, map[string]string{"X-CSRF-Token": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.status)
	assert.Equal(t, "invalid CSRF token", resp.errorMessage(t))

	env.client.WithCSRFToken("secret")
	_, err = env.client.Summarize(ctx, model.SummaryRequest{PostID: "p-standup"})
	assert.NoError(t, err)
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodGet, "/health", "", nil)
		require.Equal(t, http.StatusOK, resp.status)
		assert.Equal(t, "2", resp.header.Get("X-RateLimit-Limit"))
	}

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, resp.status)
	assert.Equal(t, "30", resp.header.Get("Retry-After"))
	assert.Equal(t, 1, env.logs.FilterMessage("rate limit exceeded").Len())
}

func TestRateLimiter_RefillsAndForgets(t *testing.T) {
	now := testNow
	rl := NewRateLimiter(60)
	rl.now = func() time.Time { return now }

	for i := 0; i < 60; i++ {
		require.True(t, rl.Allow("10.0.0.1"))
	}
	assert.False(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.2"), "buckets are per IP")

	now = now.Add(time.Second)
	assert.True(t, rl.Allow("10.0.0.1"), "one token per second refills")

	now = now.Add(limiterIdle + time.Minute)
	assert.True(t, rl.Allow("10.0.0.3"))
	assert.Equal(t, 1, rl.Clients(), "idle clients are swept")
}

func TestRecoveryMiddleware(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	h := RecoveryMiddleware(zap.New(core))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
	assert.Equal(t, 1, logs.FilterMessage("panic recovered").Len())
}

func TestBodyLimit(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	big := `{"post_id":"` + strings.Repeat("a", MaxBodyBytes+1) + `"}`
	resp := env.do(t, http.MethodPost, "/summarize", big, nil)
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.status)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"direct", "203.0.113.9:5000", "", "", "203.0.113.9"},
		{"untrusted proxy ignored", "203.0.113.9:5000", "198.51.100.1", "", "203.0.113.9"},
		{"trusted proxy xff", "127.0.0.1:5000", "198.51.100.1, 10.0.0.1", "", "198.51.100.1"},
		{"trusted proxy bad xff", "10.1.2.3:5000", "not-an-ip", "198.51.100.2", "198.51.100.2"},
		{"trusted proxy no headers", "192.168.1.5:5000", "", "", "192.168.1.5"},
		{"no port", "203.0.113.9", "", "", "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, GetClientIP(r))
		})
	}
}

// =============================================================================
// SUMMARIES
// =============================================================================

func TestSummarizeEndpoint(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	ctx := context.Background()

	resp, err := env.client.Summarize(ctx, model.SummaryRequest{Type: model.SummaryThread, PostID: "p-release-qa"})
	require.NoError(t, err)
	assert.Equal(t, "p-release", resp.RootPostID)
	assert.Equal(t, "Thread Summary", resp.Title)
	assert.Equal(t, 3, resp.MessageCount)
	assert.False(t, resp.Cached)

	again, err := env.client.Summarize(ctx, model.SummaryRequest{Type: model.SummaryThread, PostID: "p-release"})
	require.NoError(t, err)
	assert.True(t, again.Cached)

	forced, err := env.client.Summarize(ctx, model.SummaryRequest{Type: model.SummaryThread, PostID: "p-release", Force: true})
	require.NoError(t, err)
	assert.False(t, forced.Cached)

	channel, err := env.client.Summarize(ctx, model.NewChannelRequest("release", "7d"))
	require.NoError(t, err)
	assert.Equal(t, "Channel Summary • #release", channel.Title)
}

func TestSummarizeEndpoint_Errors(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"missing ids", `{"type":"thread"}`, http.StatusBadRequest},
		{"bad range", `{"type":"channel","channel_id":"release","time_range":"forever"}`, http.StatusBadRequest},
		{"unknown post", `{"type":"thread","post_id":"nope"}`, http.StatusNotFound},
		{"unknown channel", `{"type":"channel","channel_id":"nope"}`, http.StatusNotFound},
		{"nothing in range", `{"type":"channel","channel_id":"town-square","time_range":"1h"}`, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := env.do(t, http.MethodPost, "/summarize", tt.body, nil)
			assert.Equal(t, tt.status, resp.status)
			assert.NotEmpty(t, resp.errorMessage(t))
		})
	}
}

// =============================================================================
// FORMATTING
// =============================================================================

func TestFormatEndpoints(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	ctx := context.Background()

	preview, err := env.client.FormatPreview(ctx, model.FormatRequest{Message: "pls review the pr asap"})
	require.NoError(t, err)
	assert.Equal(t, model.ProfileProfessional, preview.Profile)
	assert.Equal(t, "Please review the pull request at your earliest convenience.", preview.FormattedText)
	require.NotNil(t, preview.Diff)
	assert.Equal(t, "pls review the pr asap", preview.Diff.Original)
	assert.NotEmpty(t, preview.Diff.Changes)

	applied, err := env.client.FormatApply(ctx, model.FormatRequest{
		Message: "the parse_config() helper reads json",
		Profile: model.ProfileTechnical,
	})
	require.NoError(t, err)
	assert.Equal(t, "The `parse_config()` helper reads JSON.", applied.FormattedText)
	assert.Equal(t, 1, env.logs.FilterMessage("format applied").Len())

	unchanged, err := env.client.FormatPreview(ctx, model.FormatRequest{Message: "All good.", Profile: model.ProfileCasual})
	require.NoError(t, err)
	assert.Equal(t, "All good.", unchanged.FormattedText)
	assert.Empty(t, unchanged.Diff.Changes)

	profiles, err := env.client.FormatProfiles(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.Profiles(), profiles)
}

func TestFormatEndpoints_Validation(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	resp := env.do(t, http.MethodPost, "/format/preview", `{"message":"hi","profile":"pirate"}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
	assert.Contains(t, resp.errorMessage(t), "unknown profile")

	resp = env.do(t, http.MethodPost, "/format/apply", `{"message":"   "}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)
}

// =============================================================================
// ACTION ITEMS
// =============================================================================

func TestActionItemLifecycle(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	ctx := context.Background()

	created, err := env.client.CreateActionItem(ctx, model.ActionItemCreateRequest{
		Description: "Write the migration guide",
		AssigneeID:  "u-linus",
		ChannelID:   "release",
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, DefaultUserID, created.CreatedBy)
	assert.Equal(t, model.StatusOpen, created.Status)
	assert.Equal(t, model.PriorityMedium, created.Priority)
	assert.Equal(t, testNow.UnixMilli(), created.CreateAt)

	got, err := env.client.GetActionItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Description, got.Description)

	high := model.PriorityHigh
	updated, err := env.client.UpdateActionItem(ctx, created.ID, model.ActionItemUpdateRequest{Priority: &high})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	resp := env.do(t, http.MethodPut, "/actionitems/"+created.ID, `{"status":"in_progress"}`, nil)
	require.Equal(t, http.StatusOK, resp.status, string(resp.body))

	done, err := env.client.CompleteActionItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, done.Status)
	assert.Equal(t, testNow.UnixMilli(), done.CompletedAt)

	require.NoError(t, env.client.DeleteActionItem(ctx, created.ID))
	_, err = env.client.GetActionItem(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound), "err = %v", err)

	err = env.client.DeleteActionItem(ctx, created.ID)
	assert.True(t, client.IsStatus(err, http.StatusNotFound), "err = %v", err)
}

func TestActionItemCreate_Status(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})

	resp := env.do(t, http.MethodPost, "/actionitems", `{"description":"Tag the build"}`, nil)
	require.Equal(t, http.StatusCreated, resp.status)
	var item model.ActionItem
	require.NoError(t, json.Unmarshal(resp.body, &item))
	assert.Equal(t, DefaultUserID, item.AssigneeID, "assignee defaults to the session user")

	resp = env.do(t, http.MethodPost, "/actionitems", `{"description":"  "}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = env.do(t, http.MethodPatch, "/actionitems/"+item.ID, `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, resp.status)

	resp = env.do(t, http.MethodPatch, "/actionitems/missing", `{"priority":"low"}`, nil)
	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestActionItemList_Scoping(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	ctx := context.Background()

	mine, err := env.client.CreateActionItem(ctx, model.ActionItemCreateRequest{
		Description: "Review export", AssigneeID: "u-ada", ChannelID: "town-square",
	})
	require.NoError(t, err)

	resp := env.do(t, http.MethodPost, "/actionitems",
		`{"description":"Attach sample output","assignee_id":"u-grace","channel_id":"town-square"}`,
		map[string]string{UserHeader: "u-grace"})
	require.Equal(t, http.StatusCreated, resp.status)

	items, err := env.client.ListActionItems(ctx, model.ActionItemFilters{})
	require.NoError(t, err)
	require.Len(t, items, 1, "defaults to the session user")
	assert.Equal(t, mine.ID, items[0].ID)

	items, err = env.client.ListActionItems(ctx, model.ActionItemFilters{ChannelID: "town-square"})
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = env.client.ListActionItems(ctx, model.ActionItemFilters{UserID: "u-grace"})
	require.NoError(t, err)
	assert.Len(t, items, 1)

	empty := env.do(t, http.MethodGet, "/actionitems?user_id=nobody", "", nil)
	assert.Equal(t, "[]", strings.TrimSpace(string(empty.body)))
}

func TestActionItemStatsEndpoint(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	ctx := context.Background()

	yesterday := testNow.Add(-24 * time.Hour)
	_, err := env.client.CreateActionItem(ctx, model.ActionItemCreateRequest{
		Description: "Overdue thing", AssigneeID: DefaultUserID, DueDate: &yesterday, Priority: model.PriorityUrgent,
	})
	require.NoError(t, err)
	_, err = env.client.CreateActionItem(ctx, model.ActionItemCreateRequest{
		Description: "Someday", AssigneeID: "u-ada",
	})
	require.NoError(t, err)

	stats, err := env.client.ActionItemStats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Total, "created by the session user counts too")
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 1, stats.NoDueDate)
	assert.Equal(t, 1, stats.ByPriority[string(model.PriorityUrgent)])

	stats, err = env.client.ActionItemStats(ctx, "u-ada")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)
}

// =============================================================================
// JOBS
// =============================================================================

func TestSweepReminders(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{DueSoonHours: 24})
	ctx := context.Background()

	create := func(desc string, due time.Time) *model.ActionItem {
		t.Helper()
		item, err := env.store.CreateActionItem(ctx, &model.ActionItem{
			Description: desc, AssigneeID: "u-ada", CreatedBy: DefaultUserID, DueDate: due.UnixMilli(),
		})
		require.NoError(t, err)
		return item
	}
	overdue := create("late", testNow.Add(-2*time.Hour))
	soon := create("soon", testNow.Add(3*time.Hour))
	create("later", testNow.Add(72*time.Hour))
	closed := create("closed", testNow.Add(-5*time.Hour))
	_, err := env.store.CompleteActionItem(ctx, closed.ID)
	require.NoError(t, err)

	report, err := env.srv.SweepReminders(ctx)
	require.NoError(t, err)
	require.Len(t, report.Overdue, 1)
	require.Len(t, report.DueSoon, 1)
	assert.Equal(t, overdue.ID, report.Overdue[0].ID)
	assert.Equal(t, soon.ID, report.DueSoon[0].ID)

	assert.Equal(t, 1, env.logs.FilterMessage("action item overdue").Len())
	assert.Equal(t, 1, env.logs.FilterMessage("action item due soon").Len())
}

func TestReloadFixtures(t *testing.T) {
	env := newTestEnv(t, config.DevServerConfig{})
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("posts: [{id: p}]"), 0o600))
	assert.ErrorIs(t, env.srv.ReloadFixtures(bad), ErrFixture)
	_, ok := env.srv.Fixtures().Channel("release")
	assert.True(t, ok, "old fixtures stay on error")

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("channels: [{id: ops}]"), 0o600))
	require.NoError(t, env.srv.ReloadFixtures(good))
	_, ok = env.srv.Fixtures().Channel("ops")
	assert.True(t, ok)
	assert.Equal(t, 1, env.logs.FilterMessage("fixtures reloaded").Len())
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestServe_WatchesFixturesAndShutsDown(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fixtures.yaml")
	require.NoError(t, os.WriteFile(path, []byte("channels: [{id: first}]"), 0o600))

	fixtures, err := LoadFixtures(path)
	require.NoError(t, err)
	store, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	srv := New(config.DevServerConfig{
		FixturesPath:     path,
		ReminderSchedule: "@every 1h",
	}, store, fixtures, zap.NewNop())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	hc := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := hc.Get("http://" + ln.Addr().String() + base + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.Eventually(t, func() bool {
		// Rewrite until the watcher has picked a change up.
		_ = os.WriteFile(path, []byte("channels: [{id: second}]"), 0o600)
		_, ok := srv.Fixtures().Channel("second")
		return ok
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestServe_BadSchedule(t *testing.T) {
	store, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	defer store.Close()

	srv := New(config.DevServerConfig{ReminderSchedule: "every tuesday"}, store, nil, zap.NewNop())
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = srv.Serve(context.Background(), ln)
	assert.ErrorContains(t, err, "invalid reminder schedule")
}
