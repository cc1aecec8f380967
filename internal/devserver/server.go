// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jeranaias/aisuite/internal/config"
	"github.com/jeranaias/aisuite/internal/diff"
	"github.com/jeranaias/aisuite/internal/logging"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/storage"
)

// Version is reported by GET /health.
const Version = "0.1.0"

// UserHeader carries the session user id, as the chat server sets it for
// plugin requests.
const UserHeader = "Mattermost-User-Id"

const shutdownTimeout = 5 * time.Second

// Server serves the plugin API from fixtures and a local store.
type Server struct {
	cfg        config.DevServerConfig
	base       string
	mux        *http.ServeMux
	store      *storage.Store
	fixtures   atomic.Pointer[Fixtures]
	summarizer *Summarizer
	limiter    *RateLimiter
	logger     *zap.Logger
	now        func() time.Time
}

// New creates a server. A nil fixtures uses the built-in demo workspace.
func New(cfg config.DevServerConfig, store *storage.Store, fixtures *Fixtures, logger *zap.Logger) *Server {
	if fixtures == nil {
		fixtures = DefaultFixtures()
	}
	s := &Server{
		cfg:        cfg,
		base:       config.DefaultPluginPath,
		mux:        http.NewServeMux(),
		store:      store,
		summarizer: NewSummarizer(cfg.MessageLimit),
		logger:     logging.OrNop(logger).Named("devserver"),
		now:        time.Now,
	}
	if cfg.RequestsPerMinute > 0 {
		s.limiter = NewRateLimiter(cfg.RequestsPerMinute)
	}
	s.fixtures.Store(fixtures)
	s.setupRoutes()
	return s
}

// WithClock replaces the time source for summaries, stats and reminders.
func (s *Server) WithClock(now func() time.Time) *Server {
	s.now = now
	s.summarizer.now = now
	if s.limiter != nil {
		s.limiter.now = now
	}
	return s
}

// Fixtures returns the fixtures currently served.
func (s *Server) Fixtures() *Fixtures {
	return s.fixtures.Load()
}

// SetFixtures replaces the served fixtures and drops cached summaries.
func (s *Server) SetFixtures(f *Fixtures) {
	s.fixtures.Store(f)
	s.summarizer.Reset()
}

// Handler returns the routes wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return Chain(
		RecoveryMiddleware(s.logger),
		SecurityHeadersMiddleware(),
		LoggingMiddleware(s.logger),
		RateLimitMiddleware(s.limiter, s.logger),
		CSRFMiddleware(s.cfg.CSRFToken),
		BodyLimitMiddleware(MaxBodyBytes),
	)(s.mux)
}

// ============================================================================
// ROUTES
// ============================================================================

func (s *Server) setupRoutes() {
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		s.mux.HandleFunc(method+" "+s.base+path, h)
	}

	handle("GET /health", s.handleHealth)

	handle("POST /summarize", s.handleSummarize)

	handle("POST /format/preview", s.handleFormatPreview)
	handle("POST /format/apply", s.handleFormatApply)
	handle("GET /format/profiles", s.handleProfiles)

	handle("GET /actionitems", s.handleListActionItems)
	handle("POST /actionitems", s.handleCreateActionItem)
	handle("GET /actionitems/stats", s.handleActionItemStats)
	handle("GET /actionitems/{id}", s.handleGetActionItem)
	handle("PATCH /actionitems/{id}", s.handleUpdateActionItem)
	handle("PUT /actionitems/{id}", s.handleUpdateActionItem)
	handle("DELETE /actionitems/{id}", s.handleDeleteActionItem)
	handle("POST /actionitems/{id}/complete", s.handleCompleteActionItem)
}

// sessionUser returns the requesting user id.
func (s *Server) sessionUser(r *http.Request) string {
	if id := r.Header.Get(UserHeader); id != "" {
		return id
	}
	return s.fixtures.Load().CurrentUser
}

// ============================================================================
// HEALTH
// ============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			s.logger.Warn("store ping failed", zap.Error(err))
			status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status, "version": Version})
}

// ============================================================================
// SUMMARIES
// ============================================================================

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req model.SummaryRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	resp, err := s.summarizer.Summarize(s.fixtures.Load(), req)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.logger.Debug("summary generated",
		zap.String("type", string(resp.Type)),
		zap.String("channel_id", resp.ChannelID),
		zap.Int("messages", resp.MessageCount),
		zap.Bool("cached", resp.Cached),
	)
	writeJSON(w, http.StatusOK, resp)
}

// ============================================================================
// FORMATTING
// ============================================================================

func (s *Server) handleFormatPreview(w http.ResponseWriter, r *http.Request) {
	resp, err := s.format(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFormatApply(w http.ResponseWriter, r *http.Request) {
	resp, err := s.format(r)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	s.logger.Info("format applied",
		zap.String("user_id", s.sessionUser(r)),
		zap.String("profile", string(resp.Profile)),
		zap.Int("changes", len(resp.Diff.Changes)),
	)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) format(r *http.Request) (*model.FormatResponse, error) {
	start := time.Now()

	var req model.FormatRequest
	if err := decodeJSON(r, &req); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	profile := req.Profile
	if profile == "" {
		profile = model.DefaultProfile
	}

	formatted, ok := s.fixtures.Load().Override(req.Message, profile)
	if !ok {
		formatted = FormatText(req.Message, profile, req.CustomInstructions)
	}

	return &model.FormatResponse{
		FormattedText: formatted,
		Profile:       profile,
		Diff:          diff.New(req.Message, formatted),
		ProcessingMs:  time.Since(start).Milliseconds(),
	}, nil
}

func (s *Server) handleProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, model.Profiles())
}

// ============================================================================
// ACTION ITEMS
// ============================================================================

func (s *Server) handleListActionItems(w http.ResponseWriter, r *http.Request) {
	filters := model.ParseFilters(r.URL.Query())
	if filters.UserID == "" && filters.ChannelID == "" {
		filters.UserID = s.sessionUser(r)
	}

	items, err := s.store.ListActionItems(r.Context(), filters)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	if items == nil {
		items = []*model.ActionItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateActionItem(w http.ResponseWriter, r *http.Request) {
	var req model.ActionItemCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}

	user := s.sessionUser(r)
	item := req.ToItem(user)
	if item.AssigneeID == "" {
		item.AssigneeID = user
	}

	created, err := s.store.CreateActionItem(r.Context(), item)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetActionItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.ActionItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdateActionItem(w http.ResponseWriter, r *http.Request) {
	var req model.ActionItemUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeErr(w, err)
		return
	}
	if req.Empty() {
		s.writeErr(w, fmt.Errorf("%w: nothing to update", model.ErrInvalidRequest))
		return
	}

	item, err := s.store.UpdateActionItem(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteActionItem(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteActionItem(r.Context(), r.PathValue("id")); err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "OK"})
}

func (s *Server) handleCompleteActionItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.store.CompleteActionItem(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleActionItemStats(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = s.sessionUser(r)
	}

	stats, err := s.store.ActionItemStats(r.Context(), userID, s.now())
	if err != nil {
		s.writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ============================================================================
// SERVER LIFECYCLE
// ============================================================================

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves HTTP on ln alongside the reminder sweep and the fixture
// watcher. It returns after ctx is done and the server has shut down, or
// when any of them fails.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ErrorLog:          zap.NewStdLog(s.logger),
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("dev server listening",
			zap.String("addr", ln.Addr().String()),
			zap.String("base", s.base),
			zap.String("version", Version),
		)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("dev server shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if s.cfg.ReminderSchedule != "" && s.store != nil {
		g.Go(func() error { return s.runReminders(ctx, s.cfg.ReminderSchedule) })
	}
	if s.cfg.FixturesPath != "" {
		g.Go(func() error { return s.watchFixtures(ctx, s.cfg.FixturesPath) })
	}

	return g.Wait()
}

// ============================================================================
// HELPERS
// ============================================================================

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return err
		}
		return fmt.Errorf("%w: invalid JSON body: %v", model.ErrInvalidRequest, err)
	}
	return nil
}

// statusFor maps handler errors onto HTTP status codes.
func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ErrUnknownPost),
		errors.Is(err, ErrUnknownChannel),
		errors.Is(err, ErrEmptyConversation):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeErr(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		msg = "internal server error"
	}
	writeError(w, status, msg)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
