// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/vidsift/vidsift/internal/models"
)

// Mode selects which analyzer variant the pipeline runs. It is fixed by
// configuration at startup; requests cannot switch modes.
type Mode string

const (
	// ModeMetadata analyzes title/description metadata only.
	ModeMetadata Mode = "metadata"

	// ModeTranscript analyzes transcript text and fills the extended
	// verdict fields (detected topics, content type, detected language).
	ModeTranscript Mode = "transcript"
)

// ParseMode converts a configuration string into a Mode. Matching is
// case-insensitive; the empty string is rejected so a missing configuration
// value surfaces at startup instead of silently picking a variant.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeMetadata:
		return ModeMetadata, nil
	case ModeTranscript:
		return ModeTranscript, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// ContentAnalyzer is one analysis strategy. Implementations must be safe for
// concurrent use.
//
// Analyze returns a verdict or an error; it never returns both. The
// heuristic implementation is total and never errors. The external-model
// implementation reports ErrModelUnavailable (possibly wrapped) for every
// failure class so the orchestrator can fall through to the next strategy.
type ContentAnalyzer interface {
	// Name identifies the strategy in logs and metrics.
	Name() string

	// Analyze produces a suitability verdict for the given content under
	// the given preferences.
	Analyze(ctx context.Context, content models.VideoContent, prefs models.UserPreferences) (*models.AnalysisVerdict, error)
}
