// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/jeranaias/aisuite/internal/config"
)

// Configuration constants for the plugin API.
const (
	// DefaultPluginPath is the API prefix of the AI suite plugin.
	DefaultPluginPath = config.DefaultPluginPath

	// DefaultTimeout bounds a single HTTP attempt.
	DefaultTimeout = 60 * time.Second

	// DefaultMaxRetries is the number of attempts for retryable responses.
	DefaultMaxRetries = 3

	// retryBaseDelay is the base delay for exponential backoff.
	retryBaseDelay = 500 * time.Millisecond

	// retryMaxDelay caps backoff and Retry-After waits.
	retryMaxDelay = 10 * time.Second

	// MaxResponseSize is the maximum accepted response body size.
	MaxResponseSize = 10 * 1024 * 1024

	// csrfCookie holds the server-issued CSRF token when none is configured.
	csrfCookie = "MMCSRF"

	userAgent = "aisuite/1.0"
)

// Error variables for client setup.
var (
	// ErrNotConfigured indicates no server URL was given.
	ErrNotConfigured = errors.New("server URL not configured")

	// ErrInvalidURL indicates the server URL could not be used.
	ErrInvalidURL = errors.New("invalid server URL")

	// ErrResponseTooLarge indicates a body above MaxResponseSize.
	ErrResponseTooLarge = errors.New("response too large")
)

// =============================================================================
// API ERROR
// =============================================================================

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
	// Details is the decoded JSON payload, when the server sent one.
	Details map[string]any
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// UserMessage returns the text to show for this error.
func (e *APIError) UserMessage() string {
	return e.Message
}

// Retryable reports whether the request may succeed if sent again.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsStatus reports whether err is an *APIError with the given status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is safe for concurrent use once configured.
type Client struct {
	baseURL    *url.URL
	pluginPath string
	httpClient *http.Client
	csrfToken  string
	maxRetries int
	retryBase  time.Duration
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// New creates a client for the server at baseURL. pluginPath defaults to
// DefaultPluginPath when empty.
func New(baseURL, pluginPath string) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, ErrNotConfigured
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %s", ErrInvalidURL, baseURL)
	}
	if pluginPath == "" {
		pluginPath = DefaultPluginPath
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	return &Client{
		baseURL:    u,
		pluginPath: "/" + strings.Trim(pluginPath, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		maxRetries: DefaultMaxRetries,
		retryBase:  retryBaseDelay,
		logger:     zap.NewNop(),
	}, nil
}

// NewFromConfig creates a client from the [server] config section.
func NewFromConfig(cfg config.ServerConfig, logger *zap.Logger) (*Client, error) {
	c, err := New(cfg.URL, cfg.PluginPath)
	if err != nil {
		return nil, err
	}
	c.WithCSRFToken(cfg.CSRFToken).WithLogger(logger)
	if cfg.TimeoutSecs > 0 {
		c.WithTimeout(time.Duration(cfg.TimeoutSecs) * time.Second)
	}
	if cfg.MaxRetries > 0 {
		c.WithMaxRetries(cfg.MaxRetries)
	}
	if cfg.RequestsPerSecond > 0 {
		c.WithRateLimit(cfg.RequestsPerSecond)
	}
	return c, nil
}

// WithCSRFToken sets the X-CSRF-Token value. Without one, the client sends
// the server's CSRF cookie if it has received it.
func (c *Client) WithCSRFToken(token string) *Client {
	c.csrfToken = strings.TrimSpace(token)
	return c
}

// WithTimeout sets the per-attempt timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithMaxRetries sets the number of attempts for retryable responses.
func (c *Client) WithMaxRetries(maxRetries int) *Client {
	if maxRetries < 1 {
		maxRetries = 1
	}
	c.maxRetries = maxRetries
	return c
}

// WithRateLimit throttles outgoing requests to rps per second.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps <= 0 {
		c.limiter = nil
		return c
	}
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	return c
}

// WithLogger sets the logger for request tracing.
func (c *Client) WithLogger(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c.logger = logger.Named("client")
	return c
}

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar gets one.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc.Jar == nil {
		hc.Jar = c.httpClient.Jar
	}
	c.httpClient = hc
	return c
}

// BaseURL returns the server URL the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint joins the plugin path and p into an absolute URL.
func (c *Client) endpoint(p string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + c.pluginPath + p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// =============================================================================
// TRANSPORT
// =============================================================================

// do sends one logical request, retrying retryable failures, and decodes a
// 2xx body into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, p string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	target := c.endpoint(p, query)
	requestID := uuid.NewString()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.calculateBackoff(attempt)
			var apiErr *APIError
			if errors.As(lastErr, &apiErr) {
				if ra, ok := apiErr.retryAfter(); ok {
					delay = ra
				}
			}
			c.logger.Warn("retrying request",
				zap.String("method", method),
				zap.String("path", p),
				zap.Int("attempt", attempt+1),
				zap.Duration("delay", delay),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		respBody, err := c.doOnce(ctx, method, target, p, requestID, payload)
		if err == nil {
			if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
				return nil
			}
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to parse response: %w", err)
			}
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !isRetryable(err) || !replayable(method, p) {
			return err
		}
		lastErr = err
	}

	var apiErr *APIError
	if errors.As(lastErr, &apiErr) {
		return apiErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// doOnce performs a single attempt and returns the body of a 2xx response.
func (c *Client) doOnce(ctx context.Context, method, target, p, requestID string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req, requestID, payload != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", p),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", requestID),
	)

	body, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, handleErrorResponse(resp, body)
	}
	return body, nil
}

// setHeaders sets the headers every plugin request carries.
func (c *Client) setHeaders(req *http.Request, requestID string, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("X-Request-Id", requestID)
	if token := c.csrf(req.URL); token != "" {
		req.Header.Set("X-CSRF-Token", token)
	}
}

func (c *Client) csrf(u *url.URL) string {
	if c.csrfToken != "" {
		return c.csrfToken
	}
	if c.httpClient.Jar == nil {
		return ""
	}
	for _, cookie := range c.httpClient.Jar.Cookies(u) {
		if cookie.Name == csrfCookie {
			return cookie.Value
		}
	}
	return ""
}

// readResponse reads the body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("%w: exceeds %d bytes", ErrResponseTooLarge, MaxResponseSize)
	}
	return body, nil
}

// handleErrorResponse converts a non-2xx response into an *APIError. A JSON
// body's "error" field becomes the message; anything else falls back to
// the status text.
func handleErrorResponse(resp *http.Response, body []byte) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err == nil {
			apiErr.Details = payload
			if msg, ok := payload["error"].(string); ok && msg != "" {
				apiErr.Message = msg
			}
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("Request failed with status %d", resp.StatusCode)
	}
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if apiErr.Details == nil {
			apiErr.Details = map[string]any{}
		}
		apiErr.Details["retry_after"] = ra
	}
	return apiErr
}

// retryAfter returns the server-requested wait, capped at retryMaxDelay.
func (e *APIError) retryAfter() (time.Duration, bool) {
	raw, ok := e.Details["retry_after"].(string)
	if !ok {
		return 0, false
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs < 0 {
		return 0, false
	}
	d := time.Duration(secs) * time.Second
	if d > retryMaxDelay {
		d = retryMaxDelay
	}
	return d, true
}

// isRetryable reports whether an attempt error warrants another attempt.
// Transport failures and 5xx/429 responses are retried.
func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return !errors.Is(err, ErrResponseTooLarge)
}

// replayable reports whether a request may be sent again after a failed
// attempt. The server may already have applied a write whose response was
// lost, so only reads and the side-effect-free POSTs are repeated.
func replayable(method, p string) bool {
	switch method {
	case http.MethodGet, http.MethodHead:
		return true
	case http.MethodPost:
		return p == "/summarize" || p == "/format/preview"
	default:
		return false
	}
}

// calculateBackoff returns the delay before the given attempt.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	delay := c.retryBase * time.Duration(1<<(attempt-1))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
