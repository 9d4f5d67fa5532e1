// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package models

import "time"

// Content-type labels assigned by transcript-mode analysis.
const (
	ContentTypeEducational   = "educational"
	ContentTypeEntertainment = "entertainment"
	ContentTypeMixed         = "mixed"
	ContentTypeUnknown       = "unknown"
)

// AnalysisVerdict is the structured suitability judgment produced by either
// analyzer path (external model or heuristic fallback). Which path produced
// it is deliberately not part of the verdict; callers see one uniform shape.
//
// Invariants:
//   - 0 <= MatchScore <= 100
//   - 0.0 <= Confidence <= 1.0
//   - Reasons is never empty; when no issues were found it holds a single
//     affirmative placeholder.
//
// The extended fields (DetectedTopics, ContentType, LanguageDetected) are
// populated in transcript mode only and omitted from metadata-mode verdicts.
type AnalysisVerdict struct {
	IsSuitable bool     `json:"is_suitable"`
	Analysis   string   `json:"analysis"`
	Confidence float64  `json:"confidence"`
	Reasons    []string `json:"reasons"`
	MatchScore int      `json:"match_score"`

	DetectedTopics   []string `json:"detected_topics,omitempty"`
	ContentType      string   `json:"content_type,omitempty"`
	LanguageDetected string   `json:"language_detected,omitempty"`
}

// AnalysisResult is the top-level analysis response. Success is true whenever
// either analyzer path produced a verdict; only provider failures surface as
// Error with Success=false and IsSuitable=false.
type AnalysisResult struct {
	Success    bool             `json:"success"`
	VideoInfo  *VideoMetadata   `json:"video_info,omitempty"`
	Analysis   *AnalysisVerdict `json:"analysis,omitempty"`
	IsSuitable bool             `json:"is_suitable"`
	Error      string           `json:"error,omitempty"`
}

// AnalysisRequest is the API input for a suitability analysis. Inline
// preferences, when present, are the complete preference document for this
// request; when absent, the caller's stored profile applies, then the
// documented defaults.
type AnalysisRequest struct {
	VideoURL    string           `json:"video_url" validate:"required,max=2048,url"`
	Preferences *UserPreferences `json:"preferences,omitempty"`
}

// AnalysisRecord is a persisted analysis history row. The full result is
// stored as a JSON column so the history endpoint can replay exactly what
// the caller saw.
type AnalysisRecord struct {
	ID         string         `json:"id"`
	UserID     int64          `json:"user_id"`
	VideoURL   string         `json:"video_url"`
	VideoTitle string         `json:"video_title,omitempty"`
	Mode       string         `json:"mode"`
	Result     AnalysisResult `json:"result"`
	CreatedAt  time.Time      `json:"created_at"`
}
