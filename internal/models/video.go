// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package models

// VideoMetadata is the metadata record returned by a video info provider.
// Any field may be empty or zero on partial provider failure; analyzers
// treat missing fields as failing their respective checks rather than
// erroring.
type VideoMetadata struct {
	URL             string   `json:"url,omitempty"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationSeconds int      `json:"duration_seconds"`
	Uploader        string   `json:"uploader,omitempty"`
	Categories      []string `json:"categories,omitempty"`
	Tags            []string `json:"tags,omitempty"`
}

// DurationMinutes returns the duration in whole minutes, truncated.
func (m VideoMetadata) DurationMinutes() int {
	return m.DurationSeconds / 60
}

// VideoContent bundles everything an analyzer may consume for one video:
// the provider metadata plus an optional transcript. Transcript is empty in
// metadata mode and when transcript extraction failed.
type VideoContent struct {
	Metadata   VideoMetadata `json:"metadata"`
	Transcript string        `json:"transcript,omitempty"`
}

// HasTranscript reports whether transcript text is available.
func (c VideoContent) HasTranscript() bool {
	return c.Transcript != ""
}
