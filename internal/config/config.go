// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for aisuite.
//
// Supports both TOML and JSON configuration formats, with sensible defaults,
// .env files, environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.aisuite/config.toml
//   - ~/.aisuite/config.json
//   - Built-in defaults
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/jeranaias/aisuite/internal/util"
)

// DefaultPluginPath is the API prefix of the AI suite plugin.
const DefaultPluginPath = "/plugins/com.mattermost.ai-suite/api/v1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete aisuite configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// Server is the chat server hosting the plugin
	Server ServerConfig `toml:"server" json:"server"`

	Log LogConfig `toml:"log" json:"log"`

	UI UIConfig `toml:"ui" json:"ui"`

	// History keeps fetched summaries in a local sqlite database
	History HistoryConfig `toml:"history" json:"history"`

	// DevServer configures `aisuite serve`
	DevServer DevServerConfig `toml:"devserver" json:"devserver"`
}

// ServerConfig contains the HTTP client settings.
type ServerConfig struct {
	// URL is the chat server base URL, e.g. https://chat.example.com
	URL string `toml:"url" json:"url"`
	// PluginPath is appended to URL for every request
	PluginPath string `toml:"plugin_path" json:"plugin_path"`
	// CSRFToken is sent as X-CSRF-Token
	CSRFToken string `toml:"csrf_token" json:"csrf_token"`
	// TimeoutSecs bounds each HTTP attempt
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries for 5xx and 429 responses
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerSecond caps outgoing requests; 0 disables the limiter
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `toml:"level" json:"level"`
	// JSON selects JSON encoding instead of console
	JSON bool `toml:"json" json:"json"`
	// File receives log output; empty means stderr
	File string `toml:"file" json:"file"`
}

// UIConfig contains terminal output settings.
type UIConfig struct {
	// Color is "auto", "always" or "never"
	Color string `toml:"color" json:"color"`
	// Markdown renders summaries through glamour
	Markdown bool `toml:"markdown" json:"markdown"`
	// Width wraps output; 0 uses the terminal width
	Width int `toml:"width" json:"width"`
}

// HistoryConfig contains local summary history settings.
type HistoryConfig struct {
	Enabled bool `toml:"enabled" json:"enabled"`
	// Path to the sqlite database; empty uses ~/.aisuite/history.db
	Path string `toml:"path" json:"path"`
}

// DevServerConfig contains settings for the local development server.
type DevServerConfig struct {
	Listen string `toml:"listen" json:"listen"`
	// CSRFToken required on every request; empty disables the check
	CSRFToken string `toml:"csrf_token" json:"csrf_token"`
	// FixturesPath is a YAML file of channels and posts
	FixturesPath string `toml:"fixtures_path" json:"fixtures_path"`
	// DBPath is the sqlite database for action items
	DBPath string `toml:"db_path" json:"db_path"`
	// ReminderSchedule is a cron spec for the overdue sweep; empty disables it
	ReminderSchedule string `toml:"reminder_schedule" json:"reminder_schedule"`
	// DueSoonHours is the look-ahead of the reminder sweep
	DueSoonHours int `toml:"due_soon_hours" json:"due_soon_hours"`
	// RequestsPerMinute per client IP
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`
	// MessageLimit caps the posts considered per summary
	MessageLimit int `toml:"message_limit" json:"message_limit"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version: "1.0.0",

		Server: ServerConfig{
			URL:               "http://localhost:8065",
			PluginPath:        DefaultPluginPath,
			TimeoutSecs:       60,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},

		Log: LogConfig{
			Level: "info",
		},

		UI: UIConfig{
			Color:    "auto",
			Markdown: true,
		},

		History: HistoryConfig{
			Enabled: true,
		},

		DevServer: DevServerConfig{
			Listen:            "127.0.0.1:8065",
			ReminderSchedule:  "@every 15m",
			DueSoonHours:      24,
			RequestsPerMinute: 120,
			MessageLimit:      500,
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the aisuite configuration directory path.
// AISUITE_CONFIG_DIR overrides the default of ~/.aisuite.
func ConfigDir() (string, error) {
	if dir := os.Getenv("AISUITE_CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".aisuite"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// HistoryPath returns the summary history database path.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "history.db"), nil
}

// ensureSecurePermissions restricts config files to the owner, since they
// may hold a CSRF token.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	mode := info.Mode().Perm()
	if mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}

	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment. Missing files are skipped and variables that are already set
// are left alone.
func LoadDotEnv(paths ...string) error {
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// .env files and environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	dir, err := ConfigDir()
	if err == nil {
		if err := LoadDotEnv(".env", filepath.Join(dir, ".env")); err != nil {
			loadErr = err
		}
	}

	loaded := false
	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				loaded = true
			}
		}
	}

	if !loaded {
		if jsonPath, err := ConfigPathJSON(); err == nil {
			if _, statErr := os.Stat(jsonPath); statErr == nil {
				if err := LoadJSON(cfg, jsonPath); err != nil {
					loadErr = fmt.Errorf("failed to load JSON config: %w", err)
					cfg = Default()
				}
			}
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Return the config with any load error for informational purposes
	return cfg, loadErr
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return fillDefaults(cfg)
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := &Config{}

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) error {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}

	// Server
	if cfg.Server.URL == "" {
		cfg.Server.URL = defaults.Server.URL
	}
	if cfg.Server.PluginPath == "" {
		cfg.Server.PluginPath = defaults.Server.PluginPath
	}
	if cfg.Server.TimeoutSecs == 0 {
		cfg.Server.TimeoutSecs = defaults.Server.TimeoutSecs
	}

	// Log
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}

	// UI
	if cfg.UI.Color == "" {
		cfg.UI.Color = defaults.UI.Color
	}

	// DevServer
	if cfg.DevServer.Listen == "" {
		cfg.DevServer.Listen = defaults.DevServer.Listen
	}
	if cfg.DevServer.DueSoonHours == 0 {
		cfg.DevServer.DueSoonHours = defaults.DevServer.DueSoonHours
	}
	if cfg.DevServer.RequestsPerMinute == 0 {
		cfg.DevServer.RequestsPerMinute = defaults.DevServer.RequestsPerMinute
	}
	if cfg.DevServer.MessageLimit == 0 {
		cfg.DevServer.MessageLimit = defaults.DevServer.MessageLimit
	}

	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("# aisuite configuration file\n")
	sb.WriteString("# Generated by aisuite - edit with care\n\n")

	if err := toml.NewEncoder(&sb).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	// Server
	if u, err := url.Parse(c.Server.URL); err != nil || u.Scheme == "" || u.Host == "" {
		add("server.url", "invalid URL '%s', must be absolute (e.g. https://chat.example.com)", c.Server.URL)
	} else if u.Scheme != "http" && u.Scheme != "https" {
		add("server.url", "unsupported scheme '%s', must be http or https", u.Scheme)
	}
	if !strings.HasPrefix(c.Server.PluginPath, "/") {
		add("server.plugin_path", "must start with '/'")
	}
	if c.Server.TimeoutSecs < 1 || c.Server.TimeoutSecs > 600 {
		add("server.timeout_secs", "must be between 1 and 600, got %d", c.Server.TimeoutSecs)
	}
	if c.Server.MaxRetries < 0 || c.Server.MaxRetries > 10 {
		add("server.max_retries", "must be between 0 and 10, got %d", c.Server.MaxRetries)
	}
	if c.Server.RequestsPerSecond < 0 {
		add("server.requests_per_second", "must not be negative")
	}

	// Log
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		add("log.level", "invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level)
	}

	// UI
	validColors := map[string]bool{"auto": true, "always": true, "never": true}
	if !validColors[strings.ToLower(c.UI.Color)] {
		add("ui.color", "invalid color mode '%s', must be one of: auto, always, never", c.UI.Color)
	}
	if c.UI.Width < 0 {
		add("ui.width", "must not be negative")
	}

	// DevServer
	if c.DevServer.ReminderSchedule != "" {
		if _, err := cron.ParseStandard(c.DevServer.ReminderSchedule); err != nil {
			add("devserver.reminder_schedule", "invalid cron spec: %v", err)
		}
	}
	if c.DevServer.DueSoonHours < 0 {
		add("devserver.due_soon_hours", "must not be negative")
	}
	if c.DevServer.RequestsPerMinute < 0 {
		add("devserver.requests_per_minute", "must not be negative")
	}
	if c.DevServer.MessageLimit < 0 {
		add("devserver.message_limit", "must not be negative")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies AISUITE_* environment variables on top of the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setBool := func(key string, dst *bool) {
		if v := os.Getenv(key); v != "" {
			*dst = v == "1" || strings.ToLower(v) == "true"
		}
	}

	setString("AISUITE_URL", &c.Server.URL)
	setString("AISUITE_PLUGIN_PATH", &c.Server.PluginPath)
	setString("AISUITE_CSRF_TOKEN", &c.Server.CSRFToken)
	setInt("AISUITE_TIMEOUT", &c.Server.TimeoutSecs)
	setInt("AISUITE_MAX_RETRIES", &c.Server.MaxRetries)

	setString("AISUITE_LOG_LEVEL", &c.Log.Level)
	setBool("AISUITE_LOG_JSON", &c.Log.JSON)
	setString("AISUITE_LOG_FILE", &c.Log.File)

	setString("AISUITE_COLOR", &c.UI.Color)
	if os.Getenv("NO_COLOR") != "" {
		c.UI.Color = "never"
	}

	setBool("AISUITE_HISTORY", &c.History.Enabled)
	setString("AISUITE_HISTORY_PATH", &c.History.Path)

	setString("AISUITE_LISTEN", &c.DevServer.Listen)
	setString("AISUITE_FIXTURES", &c.DevServer.FixturesPath)
	setString("AISUITE_DB", &c.DevServer.DBPath)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

// ErrNotConfigured is returned when a required setting is empty.
var ErrNotConfigured = errors.New("not configured")

// RequireServer returns ErrNotConfigured unless a server URL is set.
func (c *Config) RequireServer() error {
	if strings.TrimSpace(c.Server.URL) == "" {
		return fmt.Errorf("server.url: %w", ErrNotConfigured)
	}
	return nil
}
