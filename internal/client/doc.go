// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package client talks to the AI suite plugin REST API.
//
// Every request is JSON over HTTP with same-origin credentials kept in a
// cookie jar. The client adds the CSRF and request-id headers the server
// expects, retries 5xx and 429 responses with exponential backoff, and
// throttles itself with a token bucket.
//
// # Key Types
//
//   - Client: the API client, configured with chained With* methods
//   - APIError: a non-2xx response, carrying status, message and payload
//
// # Usage
//
//	c, err := client.New("https://chat.example.com", client.DefaultPluginPath)
//	if err != nil {
//	    return err
//	}
//	c.WithCSRFToken(token).WithLogger(logger)
//
//	summary, err := c.Summarize(ctx, model.NewChannelRequest(channelID, model.Range24h))
//	var apiErr *client.APIError
//	if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden {
//	    ...
//	}
package client
