// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package database

import (
	"errors"
	"io"
	"strings"

	"github.com/vidsift/vidsift/internal/logging"
)

// Store errors. Handlers map these onto API error codes; everything else is
// treated as an internal database failure.
var (
	ErrUserNotFound        = errors.New("user not found")
	ErrDuplicateUser       = errors.New("email or username already registered")
	ErrPreferencesNotFound = errors.New("preferences not found")
	ErrAnalysisNotFound    = errors.New("analysis record not found")
)

// isUniqueConstraintError checks if an error is a unique constraint violation.
// DuckDB unique constraint error messages contain "unique constraint" or
// "Duplicate key".
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "unique constraint") || strings.Contains(errMsg, "duplicate key")
}

// closeWithLog closes a resource and logs any error. Use for cleanup where
// errors should be acknowledged but not fail the operation.
func closeWithLog(closer io.Closer, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logging.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error. Use in
// error paths where Close() errors are not actionable.
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
