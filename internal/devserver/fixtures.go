// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeranaias/aisuite/internal/model"
)

//go:embed default_fixtures.yaml
var defaultFixturesYAML []byte

// ErrFixture is returned for malformed fixture files.
var ErrFixture = errors.New("invalid fixtures")

// DefaultUserID is the session user when fixtures name none.
const DefaultUserID = "me"

// Fixtures is the content served by the development server.
type Fixtures struct {
	CurrentUser string           `yaml:"current_user"`
	Users       []User           `yaml:"users"`
	Channels    []Channel        `yaml:"channels"`
	Posts       []Post           `yaml:"posts"`
	Formatting  []FormatOverride `yaml:"formatting"`

	loadedAt time.Time
	users    map[string]*User
	channels map[string]*Channel
	posts    map[string]*Post
}

// User is a chat user.
type User struct {
	ID          string `yaml:"id"`
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
}

// Channel is a chat channel.
type Channel struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
}

// Display returns the display name, falling back to the handle.
func (c *Channel) Display() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return c.Name
}

// Post is a chat message. A post is placed in time either absolutely with
// At or relative to the fixture load time with Ago ("90m", "2h").
type Post struct {
	ID        string    `yaml:"id"`
	ChannelID string    `yaml:"channel_id"`
	RootID    string    `yaml:"root_id"`
	UserID    string    `yaml:"user_id"`
	Message   string    `yaml:"message"`
	Type      string    `yaml:"type"`
	Files     int       `yaml:"files"`
	At        time.Time `yaml:"at"`
	Ago       string    `yaml:"ago"`
	Deleted   bool      `yaml:"deleted"`
	Edited    time.Time `yaml:"edited"`

	created time.Time
}

// CreatedAt returns the post time.
func (p *Post) CreatedAt() time.Time {
	return p.created
}

// System reports whether the post is a server generated message.
func (p *Post) System() bool {
	return strings.HasPrefix(p.Type, "system_")
}

// FormatOverride fixes the formatter output for one message.
type FormatOverride struct {
	Message   string          `yaml:"message"`
	Profile   model.ProfileID `yaml:"profile"`
	Formatted string          `yaml:"formatted"`
}

// =============================================================================
// LOADING
// =============================================================================

// DefaultFixtures returns the built-in demo workspace.
func DefaultFixtures() *Fixtures {
	f, err := ParseFixtures(defaultFixturesYAML)
	if err != nil {
		panic(fmt.Sprintf("devserver: built-in fixtures: %v", err))
	}
	return f
}

// LoadedAt returns the time relative posts were placed against.
func (f *Fixtures) LoadedAt() time.Time { return f.loadedAt }

// LoadFixtures reads fixtures from a YAML file. An empty path returns the
// built-in fixtures.
func LoadFixtures(path string) (*Fixtures, error) {
	if path == "" {
		return DefaultFixtures(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixtures: %w", err)
	}
	f, err := ParseFixtures(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// ParseFixtures decodes and indexes fixture YAML, placing relative posts
// before the current time.
func ParseFixtures(data []byte) (*Fixtures, error) {
	return ParseFixturesAt(data, time.Now())
}

// ParseFixturesAt is ParseFixtures with relative posts placed before now.
func ParseFixturesAt(data []byte, now time.Time) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFixture, err)
	}
	f.loadedAt = now
	if err := f.index(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *Fixtures) index() error {
	if f.CurrentUser == "" {
		f.CurrentUser = DefaultUserID
	}

	f.users = make(map[string]*User, len(f.Users))
	for i := range f.Users {
		u := &f.Users[i]
		if u.ID == "" {
			return fmt.Errorf("%w: user %d has no id", ErrFixture, i)
		}
		f.users[u.ID] = u
	}

	f.channels = make(map[string]*Channel, len(f.Channels))
	for i := range f.Channels {
		c := &f.Channels[i]
		if c.ID == "" {
			return fmt.Errorf("%w: channel %d has no id", ErrFixture, i)
		}
		if c.Name == "" {
			c.Name = c.ID
		}
		f.channels[c.ID] = c
	}

	f.posts = make(map[string]*Post, len(f.Posts))
	for i := range f.Posts {
		p := &f.Posts[i]
		if p.ID == "" {
			return fmt.Errorf("%w: post %d has no id", ErrFixture, i)
		}
		if _, ok := f.channels[p.ChannelID]; !ok {
			return fmt.Errorf("%w: post %s: unknown channel %q", ErrFixture, p.ID, p.ChannelID)
		}
		p.created = p.At
		if p.At.IsZero() {
			var ago time.Duration
			if p.Ago != "" {
				d, err := time.ParseDuration(p.Ago)
				if err != nil || d < 0 {
					return fmt.Errorf("%w: post %s: bad ago %q", ErrFixture, p.ID, p.Ago)
				}
				ago = d
			}
			p.created = f.loadedAt.Add(-ago)
		}
		f.posts[p.ID] = p
	}
	for _, p := range f.posts {
		if p.RootID != "" {
			if _, ok := f.posts[p.RootID]; !ok {
				return fmt.Errorf("%w: post %s: unknown root %q", ErrFixture, p.ID, p.RootID)
			}
		}
	}

	for i, o := range f.Formatting {
		if o.Profile != "" {
			if _, ok := model.LookupProfile(o.Profile); !ok {
				return fmt.Errorf("%w: formatting %d: unknown profile %q", ErrFixture, i, o.Profile)
			}
		}
	}
	return nil
}

// =============================================================================
// LOOKUPS
// =============================================================================

// Channel returns a channel by id.
func (f *Fixtures) Channel(id string) (*Channel, bool) {
	c, ok := f.channels[id]
	return c, ok
}

// Post returns a post by id.
func (f *Fixtures) Post(id string) (*Post, bool) {
	p, ok := f.posts[id]
	return p, ok
}

// User returns a user by id.
func (f *Fixtures) User(id string) (*User, bool) {
	u, ok := f.users[id]
	return u, ok
}

// Thread returns the root post and its replies.
func (f *Fixtures) Thread(rootID string) []*Post {
	var out []*Post
	for i := range f.Posts {
		p := &f.Posts[i]
		if p.ID == rootID || p.RootID == rootID {
			out = append(out, p)
		}
	}
	return out
}

// ChannelPosts returns every post in a channel.
func (f *Fixtures) ChannelPosts(channelID string) []*Post {
	var out []*Post
	for i := range f.Posts {
		p := &f.Posts[i]
		if p.ChannelID == channelID {
			out = append(out, p)
		}
	}
	return out
}

// Override returns the fixed formatter output for message and profile.
// Overrides without a profile match every profile.
func (f *Fixtures) Override(message string, profile model.ProfileID) (string, bool) {
	msg := strings.TrimSpace(message)
	for _, o := range f.Formatting {
		if strings.TrimSpace(o.Message) != msg {
			continue
		}
		if o.Profile == "" || o.Profile == profile {
			return o.Formatted, true
		}
	}
	return "", false
}
