// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/util"
)

var (
	// ErrEmptyConversation is returned when nothing in range can be
	// summarized.
	ErrEmptyConversation = errors.New("no messages to summarize")

	// ErrUnknownPost is returned for post ids missing from the fixtures.
	ErrUnknownPost = errors.New("post not found")

	// ErrUnknownChannel is returned for channel ids missing from the
	// fixtures.
	ErrUnknownChannel = errors.New("channel not found")
)

const (
	// DefaultMessageLimit caps the posts considered per summary.
	DefaultMessageLimit = 500

	// SummaryTTL is how long generated summaries are reused.
	SummaryTTL = 24 * time.Hour

	maxBullets     = 8
	maxBulletRunes = 140
)

// conversation is the material a summary is built from.
type conversation struct {
	channelID      string
	channelDisplay string
	rootPostID     string
	title          string
	contextLabel   string
	window         Window
	posts          []*Post
	messageLimit   int
	limitReached   bool
	participants   []model.Participant
	hash           string
}

// =============================================================================
// SUMMARIZER
// =============================================================================

// Summarizer builds extractive summaries from fixtures and caches them.
type Summarizer struct {
	limit int
	now   func() time.Time

	mu    sync.Mutex
	cache map[string]cachedSummary
}

type cachedSummary struct {
	summary model.SummaryResponse
	expires time.Time
}

// NewSummarizer creates a summarizer that considers at most limit posts.
func NewSummarizer(limit int) *Summarizer {
	if limit <= 0 {
		limit = DefaultMessageLimit
	}
	return &Summarizer{
		limit: limit,
		now:   time.Now,
		cache: make(map[string]cachedSummary),
	}
}

// Summarize returns a summary for req. Without Force a cached summary of the
// same conversation is returned with Cached set.
func (s *Summarizer) Summarize(f *Fixtures, req model.SummaryRequest) (*model.SummaryResponse, error) {
	if req.Type == "" {
		req.Type = model.SummaryThread
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := s.now()
	var conv *conversation
	var err error
	if req.Type == model.SummaryChannel {
		conv, err = s.channelConversation(f, req, now)
	} else {
		conv, err = s.threadConversation(f, req)
	}
	if err != nil {
		return nil, err
	}

	key := cacheKey(req, conv)
	if !req.Force {
		if cached, ok := s.lookup(key, now); ok {
			return cached, nil
		}
	}

	summary := s.generate(req, conv, now)
	summary.ID = key
	s.store(key, summary, now)
	return summary, nil
}

// Reset drops every cached summary.
func (s *Summarizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = make(map[string]cachedSummary)
}

func (s *Summarizer) lookup(key string, now time.Time) (*model.SummaryResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if now.After(entry.expires) {
		delete(s.cache, key)
		return nil, false
	}
	out := entry.summary
	out.Cached = true
	return &out, true
}

func (s *Summarizer) store(key string, summary *model.SummaryResponse, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := *summary
	entry.Cached = false
	s.cache[key] = cachedSummary{summary: entry, expires: now.Add(SummaryTTL)}
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func (s *Summarizer) threadConversation(f *Fixtures, req model.SummaryRequest) (*conversation, error) {
	rootID, err := resolveRoot(f, req)
	if err != nil {
		return nil, err
	}
	root, _ := f.Post(rootID)
	channel, ok := f.Channel(root.ChannelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, root.ChannelID)
	}

	posts := filterPosts(f.Thread(rootID))
	if len(posts) == 0 {
		return nil, ErrEmptyConversation
	}
	sortPosts(posts)
	limitReached, trimmed := applyLimit(posts, s.limit, false)

	since := trimmed[0].CreatedAt()
	until := trimmed[len(trimmed)-1].CreatedAt()

	return &conversation{
		channelID:      channel.ID,
		channelDisplay: channel.Display(),
		rootPostID:     rootID,
		title:          "Thread Summary",
		contextLabel:   "Thread",
		window: Window{
			Since: since,
			Until: until,
			Label: fmt.Sprintf("%s – %s", since.Format(time.RFC822), until.Format(time.RFC822)),
		},
		posts:        trimmed,
		messageLimit: s.limit,
		limitReached: limitReached,
		participants: participants(f, trimmed),
		hash:         hashPosts(trimmed),
	}, nil
}

func (s *Summarizer) channelConversation(f *Fixtures, req model.SummaryRequest, now time.Time) (*conversation, error) {
	channel, ok := f.Channel(req.ChannelID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, req.ChannelID)
	}

	window, err := ResolveRange(req.TimeRange, req.Since, req.Until, now)
	if err != nil {
		return nil, err
	}

	posts := filterPosts(f.ChannelPosts(channel.ID))
	sortPosts(posts)
	inRange := posts[:0]
	for _, p := range posts {
		ts := p.CreatedAt()
		if ts.Before(window.Since) || ts.After(window.Until) {
			continue
		}
		inRange = append(inRange, p)
	}
	if len(inRange) == 0 {
		return nil, ErrEmptyConversation
	}
	limitReached, trimmed := applyLimit(inRange, s.limit, true)

	return &conversation{
		channelID:      channel.ID,
		channelDisplay: channel.Display(),
		title:          fmt.Sprintf("Channel Summary • #%s", channel.Name),
		contextLabel:   "Channel",
		window:         window,
		posts:          trimmed,
		messageLimit:   s.limit,
		limitReached:   limitReached,
		participants:   participants(f, trimmed),
		hash:           hashPosts(trimmed),
	}, nil
}

func resolveRoot(f *Fixtures, req model.SummaryRequest) (string, error) {
	id := req.RootPostID
	if id == "" {
		id = req.PostID
	}
	post, ok := f.Post(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownPost, id)
	}
	// A reply passed as the root still summarizes its whole thread.
	if post.RootID != "" {
		return post.RootID, nil
	}
	return post.ID, nil
}

func filterPosts(posts []*Post) []*Post {
	out := make([]*Post, 0, len(posts))
	for _, p := range posts {
		if p.Deleted || p.System() {
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortPosts(posts []*Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].CreatedAt().Before(posts[j].CreatedAt())
	})
}

// applyLimit keeps the newest or oldest limit posts.
func applyLimit(posts []*Post, limit int, keepNewest bool) (bool, []*Post) {
	if limit <= 0 || len(posts) <= limit {
		return false, posts
	}
	if keepNewest {
		return true, posts[len(posts)-limit:]
	}
	return true, posts[:limit]
}

// participants returns the posters sorted by display name.
func participants(f *Fixtures, posts []*Post) []model.Participant {
	seen := make(map[string]bool)
	var out []model.Participant
	for _, p := range posts {
		if p.UserID == "" || seen[p.UserID] {
			continue
		}
		seen[p.UserID] = true

		pt := model.Participant{ID: p.UserID, DisplayName: p.UserID}
		if u, ok := f.User(p.UserID); ok {
			pt.Username = u.Username
			switch {
			case u.DisplayName != "":
				pt.DisplayName = u.DisplayName
			case u.Username != "":
				pt.DisplayName = u.Username
			}
		}
		out = append(out, pt)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out
}

func hashPosts(posts []*Post) string {
	var b strings.Builder
	for _, p := range posts {
		b.WriteString(p.ID)
		b.WriteByte(':')
		if !p.Edited.IsZero() {
			b.WriteString(p.Edited.UTC().Format(time.RFC3339Nano))
		}
		b.WriteString(p.Message)
		b.WriteByte(';')
	}
	return buildKey(b.String())
}

func cacheKey(req model.SummaryRequest, conv *conversation) string {
	root := conv.rootPostID
	if root == "" {
		root = req.PostID
	}
	rangePart := fmt.Sprintf("%d-%d", conv.window.Since.UnixMilli(), conv.window.Until.UnixMilli())
	if req.Type == model.SummaryChannel && req.Since == 0 && req.Until == 0 {
		// Named ranges move with the clock; the post hash pins what they cover.
		rangePart = strings.ToLower(strings.TrimSpace(req.TimeRange))
		if rangePart == "" {
			rangePart = model.Range24h
		}
	}
	return buildKey(string(req.Type), conv.channelID, root, rangePart, conv.hash)
}

func buildKey(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// =============================================================================
// GENERATION
// =============================================================================

func (s *Summarizer) generate(req model.SummaryRequest, conv *conversation, now time.Time) *model.SummaryResponse {
	names := make(map[string]string, len(conv.participants))
	for _, p := range conv.participants {
		names[p.ID] = p.Name()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s from %d %s in %s.\n",
		len(conv.posts), plural(len(conv.posts), "message", "messages"),
		len(conv.participants), plural(len(conv.participants), "participant", "participants"),
		conv.channelDisplay)

	var transcript, bullets, omitted int
	for _, p := range conv.posts {
		text := postText(p)
		if text == "" {
			continue
		}
		transcript += len(text)
		if bullets == maxBullets {
			omitted++
			continue
		}
		author := names[p.UserID]
		if author == "" {
			author = "Unknown"
		}
		fmt.Fprintf(&b, "- %s: %s\n", author, util.TruncateRunes(firstSentence(text), maxBulletRunes))
		bullets++
	}
	if omitted > 0 {
		fmt.Fprintf(&b, "- and %d more %s\n", omitted, plural(omitted, "message", "messages"))
	}
	text := strings.TrimSpace(b.String())

	prompt := transcript / 4
	completion := len(text) / 4

	return &model.SummaryResponse{
		Type:             req.Type,
		ChannelID:        conv.channelID,
		ChannelName:      conv.channelDisplay,
		RootPostID:       conv.rootPostID,
		Title:            conv.title,
		Summary:          text,
		MessageCount:     len(conv.posts),
		ParticipantCount: len(conv.participants),
		Participants:     conv.participants,
		GeneratedAt:      now.UTC().UnixMilli(),
		Range: model.SummaryRange{
			Since: conv.window.Since.UnixMilli(),
			Until: conv.window.Until.UnixMilli(),
			Label: conv.window.Label,
		},
		Context: model.SummaryContext{
			TypeLabel:    conv.contextLabel,
			MessageLimit: conv.messageLimit,
			Timeframe:    conv.window.Label,
		},
		Usage: &model.Usage{
			PromptTokens:     prompt,
			CompletionTokens: completion,
			TotalTokens:      prompt + completion,
		},
		LimitReached: conv.limitReached,
	}
}

// postText flattens a post to one line.
func postText(p *Post) string {
	text := util.SingleLine(p.Message)
	if text == "" && p.Files > 0 {
		text = fmt.Sprintf("[Attached %d file(s)]", p.Files)
	}
	return text
}

// firstSentence returns text up to and including its first sentence end.
func firstSentence(text string) string {
	for i, r := range text {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next := i + 1
		if next == len(text) || text[next] == ' ' {
			return text[:next]
		}
	}
	return text
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
