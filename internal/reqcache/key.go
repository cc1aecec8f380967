// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package reqcache

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ForceField is the JSON field excluded from logical keys.
const ForceField = "force"

// Key returns the logical key of req: its JSON encoding with the force field
// removed and object keys sorted, so structurally equal requests share a key
// regardless of field order.
func Key(req any) (string, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("decode request: %w", err)
	}
	if obj, ok := v.(map[string]any); ok {
		delete(obj, ForceField)
	}

	// encoding/json writes map keys in sorted order.
	canonical, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("canonicalize request: %w", err)
	}
	return string(canonical), nil
}

// DefaultErrorMessage is shown when a failure carries no message of its own.
const DefaultErrorMessage = "Unable to load"

// userMessager is implemented by errors that carry a display message, such
// as *client.APIError.
type userMessager interface {
	UserMessage() string
}

// ErrorMessage converts err into display text. An explicit message found
// anywhere in the error chain wins; otherwise fallback is returned.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
