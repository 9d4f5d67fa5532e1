// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package provider implements video info and transcript extraction backends.
//
// The only backend today is a yt-dlp sidecar reached over HTTP; the factory
// exists so a second extractor can be added without touching callers. All
// backends satisfy analysis.InfoProvider and analysis.TranscriptProvider.
package provider

import (
	"fmt"

	"github.com/vidsift/vidsift/internal/config"
)

// New creates the configured extraction backend, wrapped in a circuit
// breaker.
func New(cfg config.ProviderConfig) (*CircuitBreakerProvider, error) {
	switch cfg.Kind {
	case "ytdlp":
		return NewCircuitBreakerProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}
