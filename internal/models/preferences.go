// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package models

import (
	"strings"
	"time"
)

// UserPreferences is the structured preference profile driving suitability
// analysis. It is validated once at the API boundary and treated as immutable
// for the rest of the request; the analyzers never re-check field ranges.
//
// Duration bounds are in minutes and the window is inclusive on both ends.
// MinContentLength is a transcript-mode word-count floor and is ignored in
// metadata mode.
//
// Fields:
//   - PreferredCategories: normalized lowercase category labels (see Normalize)
//   - PreferredLanguages: normalized lowercase language names/codes
//   - MinDurationMinutes / MaxDurationMinutes: inclusive duration window
//   - EducationalPreference / EntertainmentPreference: content-type wishes
//   - ExcludeExplicitContent: hard filter; any explicit keyword zeroes the score
//   - MinContentLength: minimum transcript word count (transcript mode only)
//
// Example:
//
//	{
//	  "preferred_categories": ["программирование", "наука"],
//	  "preferred_languages": ["русский"],
//	  "min_duration_minutes": 5,
//	  "max_duration_minutes": 60,
//	  "educational_preference": true,
//	  "entertainment_preference": false,
//	  "exclude_explicit_content": true,
//	  "min_content_length": 300
//	}
type UserPreferences struct {
	PreferredCategories     []string `json:"preferred_categories" validate:"omitempty,dive,min=1,max=64"`
	PreferredLanguages      []string `json:"preferred_languages" validate:"omitempty,dive,min=1,max=32"`
	MinDurationMinutes      int      `json:"min_duration_minutes" validate:"gte=0"`
	MaxDurationMinutes      int      `json:"max_duration_minutes" validate:"gte=0,gtefield=MinDurationMinutes"`
	EducationalPreference   bool     `json:"educational_preference"`
	EntertainmentPreference bool     `json:"entertainment_preference"`
	ExcludeExplicitContent  bool     `json:"exclude_explicit_content"`
	MinContentLength        int      `json:"min_content_length" validate:"gte=0"`
}

// DefaultPreferences returns the preference profile applied when a user has
// not stored one and supplies no inline overrides.
func DefaultPreferences() UserPreferences {
	return UserPreferences{
		PreferredCategories:     nil,
		PreferredLanguages:      nil,
		MinDurationMinutes:      0,
		MaxDurationMinutes:      120,
		EducationalPreference:   false,
		EntertainmentPreference: true,
		ExcludeExplicitContent:  false,
		MinContentLength:        300,
	}
}

// Normalize lowercases and trims category and language labels, dropping
// entries that become empty. Called once at the API boundary so the scorer
// can match keywords without re-normalizing per check.
func (p *UserPreferences) Normalize() {
	p.PreferredCategories = normalizeLabels(p.PreferredCategories)
	p.PreferredLanguages = normalizeLabels(p.PreferredLanguages)
}

func normalizeLabels(labels []string) []string {
	if len(labels) == 0 {
		return nil
	}
	out := make([]string, 0, len(labels))
	for _, l := range labels {
		l = strings.ToLower(strings.TrimSpace(l))
		if l != "" {
			out = append(out, l)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// StoredPreferences is the persisted per-user preference row. The embedded
// profile carries the analysis-relevant fields; UserID and UpdatedAt track
// ownership and staleness.
type StoredPreferences struct {
	UserPreferences

	UserID    int64     `json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
