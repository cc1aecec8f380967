// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"

	"github.com/jeranaias/aisuite/internal/client"
	"github.com/jeranaias/aisuite/internal/config"
	"github.com/jeranaias/aisuite/internal/model"
	"github.com/jeranaias/aisuite/internal/reqcache"
	"github.com/jeranaias/aisuite/internal/storage"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	// ExitSuccess indicates successful execution
	ExitSuccess = 0
	// ExitGeneralError indicates a general/unknown error
	ExitGeneralError = 1
	// ExitUsageError indicates invalid command usage or arguments
	ExitUsageError = 2
	// ExitConfigError indicates configuration file or settings error
	ExitConfigError = 3
	// ExitNetworkError indicates the server could not be reached
	ExitNetworkError = 5
	// ExitNotFoundError indicates a resource was not found
	ExitNotFoundError = 7
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// UsageError marks bad arguments or flags.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string { return e.Err.Error() }

func (e *UsageError) Unwrap() error { return e.Err }

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// PanelError is a summary failure reported by the summary panel, which
// only keeps the display message.
type PanelError struct {
	Message string
}

func (e *PanelError) Error() string { return e.Message }

// UserMessage implements the display message lookup of reqcache.
func (e *PanelError) UserMessage() string { return e.Message }

// =============================================================================
// CLASSIFICATION
// =============================================================================

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var usage *UsageError
	var validate config.ValidateErrors
	var apiErr *client.APIError
	var pathErr *fs.PathError
	var opErr *net.OpError
	var urlErr *url.Error

	switch {
	case errors.As(err, &usage), errors.Is(err, model.ErrInvalidRequest):
		return ExitUsageError
	case errors.As(err, &validate),
		errors.Is(err, config.ErrNotConfigured),
		errors.Is(err, client.ErrNotConfigured),
		errors.Is(err, client.ErrInvalidURL):
		return ExitConfigError
	case client.IsStatus(err, 404), errors.Is(err, storage.ErrNotFound):
		return ExitNotFoundError
	case errors.As(err, &apiErr), errors.As(err, &pathErr):
		return ExitGeneralError
	case errors.As(err, &urlErr), errors.As(err, &opErr):
		return ExitNetworkError
	default:
		return ExitGeneralError
	}
}

// ErrorMessage returns the text shown for err: the server's message when
// there is one, otherwise the error itself.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return reqcache.ErrorMessage(err, err.Error())
}
