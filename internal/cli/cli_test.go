// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/jeranaias/aisuite/internal/client"
	"github.com/jeranaias/aisuite/internal/config"
	"github.com/jeranaias/aisuite/internal/devserver"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/storage"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

// =============================================================================
// HARNESS
// =============================================================================

type harness struct {
	t       *testing.T
	ts      *httptest.Server
	cfg     func() *config.Config
	now     time.Time
	stdin   string
	copied  []string
	history string
}

type result struct {
	code   int
	stdout string
	stderr string
}

// envelope decodes a JSONResponse with the data left raw.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *string         `json:"error"`
	Timestamp string          `json:"timestamp"`
	Command   string          `json:"command"`
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store, err := storage.Open(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	srv := devserver.New(config.DevServerConfig{MessageLimit: 500}, store, devserver.DefaultFixtures(), zap.NewNop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	dir := t.TempDir()
	h := &harness{
		t:       t,
		ts:      ts,
		now:     time.Now(),
		history: filepath.Join(dir, "history.db"),
	}
	h.cfg = func() *config.Config {
		cfg := config.Default()
		cfg.Server.URL = ts.URL
		cfg.Server.MaxRetries = 1
		cfg.Server.RequestsPerSecond = 0
		cfg.Log.Level = "error"
		cfg.Log.File = filepath.Join(dir, "aisuite.log")
		cfg.UI.Color = "never"
		cfg.UI.Markdown = false
		cfg.UI.Width = 100
		cfg.History.Path = h.history
		return cfg
	}
	return h
}

func (h *harness) run(args ...string) result {
	h.t.Helper()
	var stdout, stderr bytes.Buffer
	app := &App{
		In:         strings.NewReader(h.stdin),
		Out:        &stdout,
		Err:        &stderr,
		Now:        func() time.Time { return h.now },
		LoadConfig: func() (*config.Config, error) { return h.cfg(), nil },
		HTTPClient: h.ts.Client(),
		Clipboard: func(s string) error {
			h.copied = append(h.copied, s)
			return nil
		},
	}
	code := Run(context.Background(), app, args)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

// runJSON runs args with --json and decodes the envelope.
func (h *harness) runJSON(args ...string) (int, envelope) {
	h.t.Helper()
	res := h.run(append([]string{"--json"}, args...)...)
	var env envelope
	require.NoError(h.t, json.Unmarshal([]byte(res.stdout), &env), res.stdout)
	return res.code, env
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

// =============================================================================
// ROOT AND ERRORS
// =============================================================================

func TestRun_Version(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("version")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Error)
	assert.Equal(t, "version", env.Command)

	info := decodeData[VersionInfo](t, env)
	assert.Equal(t, Version, info.Version)
	assert.Empty(t, info.Server)
}

func TestRun_VersionCheck(t *testing.T) {
	h := newHarness(t)

	res := h.run("version", "--check")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "aisuite "+Version)
	assert.Contains(t, res.stdout, "server:   "+h.ts.URL+" (ok, "+devserver.Version+")")
}

func TestRun_UsageErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing argument", []string{"summarize", "thread"}, "accepts 1 arg(s)"},
		{"unknown flag", []string{"actionitems", "list", "--bogus"}, "unknown flag: --bogus"},
		{"bad priority", []string{"actionitems", "list", "--priority", "extreme"}, `invalid priority "extreme"`},
		{"bad due date", []string{"actionitems", "create", "x", "--due", "someday"}, `cannot parse time "someday"`},
		{"empty update", []string{"actionitems", "update", "ai-1"}, "nothing to update"},
		{"bad profile", []string{"format", "preview", "hello", "--profile", "pirate"}, `unknown profile "pirate"`},
		{"history limit", []string{"history", "list", "--limit", "0"}, "--limit must be positive"},
		{"panel range", []string{"panel", "channel", "release", "--range", "2w"}, `unknown range "2w"`},
		{"panel argument", []string{"panel", "thread"}, "accepts 1 arg(s)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := h.run(tt.args...)
			assert.Equal(t, ExitUsageError, res.code)
			assert.Contains(t, res.stderr, tt.want)
			assert.Empty(t, res.stdout)
		})
	}
}

func TestPanel_RejectsJSON(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("panel", "channel", "release")
	assert.Equal(t, ExitUsageError, code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.Contains(t, *env.Error, "no JSON output")
	assert.Equal(t, "panel channel", env.Command)
}

func TestRun_UsageHint(t *testing.T) {
	h := newHarness(t)

	res := h.run("summarize", "channel")
	require.Equal(t, ExitUsageError, res.code)
	assert.Contains(t, res.stderr, "Run 'aisuite summarize channel --help' for usage.")
}

func TestRun_ConfigErrors(t *testing.T) {
	h := newHarness(t)

	res := h.run("--color", "purple", "version")
	assert.Equal(t, ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "ui.color")

	res = h.run("--server", "ftp://chat.example.com", "actionitems", "list")
	assert.Equal(t, ExitConfigError, res.code)
	assert.Contains(t, res.stderr, "unsupported scheme")
}

func TestRun_NetworkError(t *testing.T) {
	h := newHarness(t)
	h.ts.Close()

	res := h.run("actionitems", "list")
	assert.Equal(t, ExitNetworkError, res.code)
	assert.Contains(t, res.stderr, "Error: ")
}

func TestRun_JSONError(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("actionitems", "get", "missing")
	assert.Equal(t, ExitNotFoundError, code)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, *env.Error)
	assert.Equal(t, "actionitems get", env.Command)
	assert.Equal(t, "null", string(env.Data))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", usageErrorf("bad"), ExitUsageError},
		{"invalid request", fmt.Errorf("%w: message required", model.ErrInvalidRequest), ExitUsageError},
		{"validation", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "log.level", Message: "bad"}}), ExitConfigError},
		{"not configured", config.ErrNotConfigured, ExitConfigError},
		{"invalid url", fmt.Errorf("%w: x", client.ErrInvalidURL), ExitConfigError},
		{"api 404", &client.APIError{Status: 404, Message: "not found"}, ExitNotFoundError},
		{"storage not found", fmt.Errorf("summary x: %w", storage.ErrNotFound), ExitNotFoundError},
		{"api 500", &client.APIError{Status: 500, Message: "boom"}, ExitGeneralError},
		{"panel", &PanelError{Message: "Unable to load summary"}, ExitGeneralError},
		{"other", errors.New("boom"), ExitGeneralError},
		{"missing file", fmt.Errorf("read a.txt: %w", &fs.PathError{Op: "open", Path: "a.txt", Err: syscall.ENOENT}), ExitGeneralError},
		{"bare errno", syscall.EACCES, ExitGeneralError},
		{"deadline", context.DeadlineExceeded, ExitGeneralError},
		{"dial", fmt.Errorf("request failed: %w", &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}}), ExitNetworkError},
		{"op error", &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, ExitNetworkError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorMessage_PrefersServerMessage(t *testing.T) {
	err := fmt.Errorf("request: %w", &client.APIError{Status: 404, Message: "action item not found"})
	assert.Equal(t, "action item not found", ErrorMessage(err))
	assert.Equal(t, "plain", ErrorMessage(errors.New("plain")))
	assert.Equal(t, "", ErrorMessage(nil))
}

// =============================================================================
// SUMMARIES AND HISTORY
// =============================================================================

func TestSummarizeThread_SavesHistory(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("summarize", "thread", "p-release-docs")
	require.Equal(t, ExitSuccess, code, string(env.Data))
	summary := decodeData[model.SummaryResponse](t, env)
	assert.Equal(t, model.SummaryThread, summary.Type)
	assert.Equal(t, "p-release", summary.RootPostID)
	assert.Equal(t, 3, summary.MessageCount)

	code, env = h.runJSON("history", "list")
	require.Equal(t, ExitSuccess, code)
	records := decodeData[[]storage.SummaryRecord](t, env)
	require.Len(t, records, 1)
	assert.Equal(t, summary.ID, records[0].ID)

	code, env = h.runJSON("history", "show", summary.ID)
	require.Equal(t, ExitSuccess, code)
	saved := decodeData[model.SummaryResponse](t, env)
	assert.Equal(t, summary.Summary, saved.Summary)
}

func TestSummarizeThread_Text(t *testing.T) {
	h := newHarness(t)

	res := h.run("summarize", "thread", "p-release")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Thread Summary")
	assert.Contains(t, res.stdout, "3 messages")
	assert.Contains(t, res.stdout, "Participants: ")
}

func TestSummarizeChannel_Ranges(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("--no-history", "summarize", "channel", "release")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 3, decodeData[model.SummaryResponse](t, env).MessageCount)

	code, env = h.runJSON("--no-history", "summarize", "channel", "release", "--range", "30d")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 4, decodeData[model.SummaryResponse](t, env).MessageCount)

	code, env = h.runJSON("--no-history", "summarize", "channel", "release", "--since", "4h")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 1, decodeData[model.SummaryResponse](t, env).MessageCount)

	code, env = h.runJSON("history", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, decodeData[[]storage.SummaryRecord](t, env))
}

func TestSummarize_Refresh(t *testing.T) {
	h := newHarness(t)

	code, _ := h.runJSON("summarize", "channel", "town-square")
	require.Equal(t, ExitSuccess, code)

	code, env := h.runJSON("summarize", "channel", "town-square")
	require.Equal(t, ExitSuccess, code)
	assert.True(t, decodeData[model.SummaryResponse](t, env).Cached)

	code, env = h.runJSON("summarize", "--refresh", "channel", "town-square")
	require.Equal(t, ExitSuccess, code)
	assert.False(t, decodeData[model.SummaryResponse](t, env).Cached)
}

func TestSummarize_NotFound(t *testing.T) {
	h := newHarness(t)

	res := h.run("summarize", "--refresh", "thread", "p-missing")
	assert.Equal(t, ExitNotFoundError, res.code)
	assert.Contains(t, res.stderr, "p-missing")

	res = h.run("summarize", "thread", "p-missing")
	assert.Equal(t, ExitGeneralError, res.code)
	assert.Contains(t, res.stderr, "Error: ")
}

func TestHistory_Clear(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("summarize", "thread", "p-standup")
	require.Equal(t, ExitSuccess, code)
	id := decodeData[model.SummaryResponse](t, env).ID

	res := h.run("history", "clear")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "History cleared")

	res = h.run("history", "show", id)
	assert.Equal(t, ExitNotFoundError, res.code)
}

func TestHistory_Export(t *testing.T) {
	h := newHarness(t)
	out := filepath.Join(t.TempDir(), "exports")

	code, env := h.runJSON("summarize", "thread", "p-release")
	require.Equal(t, ExitSuccess, code)
	id := decodeData[model.SummaryResponse](t, env).ID

	code, env = h.runJSON("history", "export", id, "--out", out)
	require.Equal(t, ExitSuccess, code)
	path := decodeData[map[string]string](t, env)["path"]
	assert.Equal(t, out, filepath.Dir(path))
	assert.Equal(t, ".md", filepath.Ext(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\ntitle: "))
	assert.Contains(t, string(data), "generator: aisuite")

	res := h.run("history", "export", id, "--out", out, "--format", "json")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "Exported to ")

	res = h.run("history", "export", id, "--format", "pdf")
	assert.Equal(t, ExitUsageError, res.code)

	res = h.run("history", "export", "missing", "--out", out)
	assert.Equal(t, ExitNotFoundError, res.code)
}

// =============================================================================
// FORMATTING AND DIFF
// =============================================================================

func TestFormatPreview(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("format", "preview", "pls", "review", "the", "pr", "asap", "--copy")
	require.Equal(t, ExitSuccess, code)
	resp := decodeData[model.FormatResponse](t, env)
	assert.Equal(t, "Please review the pull request at your earliest convenience.", resp.FormattedText)
	require.NotNil(t, resp.Diff)
	assert.Equal(t, "pls review the pr asap", resp.Diff.Original)
	assert.Equal(t, []string{resp.FormattedText}, h.copied)
}

func TestFormatApply_Stdin(t *testing.T) {
	h := newHarness(t)
	h.stdin = "pls review the pr asap\n"

	res := h.run("format", "apply", "-")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Please review the pull request at your earliest convenience.")
	assert.Contains(t, res.stdout, "characters")
	assert.Empty(t, h.copied)
}

func TestFormatProfiles(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("format", "profiles")
	require.Equal(t, ExitSuccess, code)
	profiles := decodeData[[]model.FormattingProfile](t, env)
	assert.Equal(t, model.Profiles(), profiles)

	res := h.run("format", "profiles")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "professional *")
}

func TestDiff(t *testing.T) {
	h := newHarness(t)

	res := h.run("diff", "teh cat", "the cat")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "[-teh-]")
	assert.Contains(t, res.stdout, "{+the+}")

	res = h.run("diff", "same", "same")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "no changes")

	code, env := h.runJSON("diff", "a b", "a c")
	require.Equal(t, ExitSuccess, code)
	out := decodeData[diffResult](t, env)
	assert.True(t, out.Stats.Changed())
	assert.Equal(t, "a b", out.Diff.Original)
}

func TestDiff_Files(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("first draft\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("final draft\n"), 0o600))

	code, env := h.runJSON("diff", "--file", a, b)
	require.Equal(t, ExitSuccess, code)
	out := decodeData[diffResult](t, env)
	assert.Equal(t, "first draft", out.Diff.Original)
	assert.Equal(t, "final draft", out.Diff.Formatted)

	res := h.run("diff", "--file", filepath.Join(dir, "missing"), b)
	assert.Equal(t, ExitGeneralError, res.code)
}

// =============================================================================
// ACTION ITEMS AND DASHBOARD
// =============================================================================

func TestActionItems_Lifecycle(t *testing.T) {
	h := newHarness(t)

	code, env := h.runJSON("actionitems", "create", "Write", "the", "migration", "guide",
		"--channel", "release", "--due", "2d", "--priority", "high")
	require.Equal(t, ExitSuccess, code)
	item := decodeData[model.ActionItem](t, env)
	assert.Equal(t, "Write the migration guide", item.Description)
	assert.Equal(t, devserver.DefaultUserID, item.AssigneeID)
	assert.Equal(t, model.PriorityHigh, item.Priority)
	assert.Equal(t, model.StatusOpen, item.Status)
	assert.Equal(t, h.now.Add(48*time.Hour).UnixMilli(), item.DueDate)

	code, env = h.runJSON("actionitems", "list")
	require.Equal(t, ExitSuccess, code)
	require.Len(t, decodeData[[]*model.ActionItem](t, env), 1)

	code, env = h.runJSON("actionitems", "update", item.ID, "--status", "in-progress", "--description", "Write the guide")
	require.Equal(t, ExitSuccess, code)
	updated := decodeData[model.ActionItem](t, env)
	assert.Equal(t, model.StatusInProgress, updated.Status)
	assert.Equal(t, "Write the guide", updated.Description)
	assert.Equal(t, model.PriorityHigh, updated.Priority)

	res := h.run("actionitems", "complete", item.ID)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "✓ Completed action item "+item.ID)

	code, env = h.runJSON("actionitems", "list")
	require.Equal(t, ExitSuccess, code)
	assert.Empty(t, decodeData[[]*model.ActionItem](t, env))

	code, env = h.runJSON("actionitems", "list", "--all")
	require.Equal(t, ExitSuccess, code)
	assert.Len(t, decodeData[[]*model.ActionItem](t, env), 1)

	res = h.run("actionitems", "delete", item.ID)
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Deleted action item "+item.ID)

	res = h.run("actionitems", "get", item.ID)
	assert.Equal(t, ExitNotFoundError, res.code)
}

func TestActionItems_ListText(t *testing.T) {
	h := newHarness(t)

	res := h.run("actionitems", "list")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "No action items.")

	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "Ship it", "--priority", "urgent").code)
	res = h.run("actionitems", "ls")
	require.Equal(t, ExitSuccess, res.code)
	assert.Contains(t, res.stdout, "urgent")
	assert.Contains(t, res.stdout, "Ship it")
}

func TestActionItems_Stats(t *testing.T) {
	h := newHarness(t)

	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "one").code)
	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "two", "--assignee", "u-ada").code)

	// Items the user created count alongside the ones assigned to them.
	code, env := h.runJSON("actionitems", "stats")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 2, decodeData[model.ActionItemStats](t, env).Total)

	code, env = h.runJSON("actionitems", "stats", "--user", "u-ada")
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, 1, decodeData[model.ActionItemStats](t, env).Total)
}

func TestDashboard(t *testing.T) {
	h := newHarness(t)

	past := h.now.Add(-2 * time.Hour).Format(time.RFC3339)
	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "late", "--due", past).code)
	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "soon", "--due", "1d").code)
	require.Equal(t, ExitSuccess, h.run("actionitems", "create", "someday").code)

	code, env := h.runJSON("dashboard", "--channel", "release")
	require.Equal(t, ExitSuccess, code)
	data := decodeData[dashboardData](t, env)
	require.NotNil(t, data.Stats)
	assert.Equal(t, 3, data.Stats.Total)
	require.Len(t, data.Overdue, 1)
	assert.Equal(t, "late", data.Overdue[0].Description)
	require.Len(t, data.DueSoon, 1)
	assert.Equal(t, "soon", data.DueSoon[0].Description)
	require.NotNil(t, data.Summary)
	assert.Equal(t, "release", data.Summary.ChannelID)

	res := h.run("dashboard")
	require.Equal(t, ExitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Overdue")
	assert.Contains(t, res.stdout, "Due soon")
	assert.NotContains(t, res.stdout, "Channel Summary")
}

// =============================================================================
// TIME PARSING
// =============================================================================

func TestParseWhen(t *testing.T) {
	now := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

	tests := []struct {
		in        string
		direction int
		want      time.Time
	}{
		{"", 1, time.Time{}},
		{"now", 1, now},
		{"today", -1, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"today", 1, time.Date(2025, 3, 10, 23, 59, 0, 0, time.UTC)},
		{"tomorrow", 1, time.Date(2025, 3, 11, 23, 59, 0, 0, time.UTC)},
		{"2025-04-01", 1, time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)},
		{"2025-04-01 09:15", 1, time.Date(2025, 4, 1, 9, 15, 0, 0, time.UTC)},
		{"2025-04-01T09:15", 1, time.Date(2025, 4, 1, 9, 15, 0, 0, time.UTC)},
		{"2025-04-01T09:15:00Z", 1, time.Date(2025, 4, 1, 9, 15, 0, 0, time.UTC)},
		{"2d", 1, now.Add(48 * time.Hour)},
		{"3D", -1, now.Add(-72 * time.Hour)},
		{"90m", -1, now.Add(-90 * time.Minute)},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%d", tt.in, tt.direction), func(t *testing.T) {
			got, err := parseWhen(tt.in, now, tt.direction)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseWhen_Invalid(t *testing.T) {
	now := time.Now()
	for _, in := range []string{"soon", "0d", "-2h", "xd", "2025-13-01"} {
		_, err := parseWhen(in, now, 1)
		var usage *UsageError
		assert.True(t, errors.As(err, &usage), in)
	}
}
