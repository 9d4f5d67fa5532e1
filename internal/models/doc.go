// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package models defines data structures for the Vidsift application.

This package contains all data models used throughout the application:
domain value objects for the analysis pipeline, database-backed records,
and API request/response structures. It serves as the single source of
truth for data structure definitions.

Key Components:

  - UserPreferences: Typed suitability-preference profile with defaults
  - VideoMetadata / VideoContent: Provider output consumed by analyzers
  - AnalysisVerdict: Structured suitability judgment (score, reasons, confidence)
  - AnalysisResult: Top-level analysis response envelope
  - AnalysisRecord: Persisted analysis history row
  - User: Account record backing authentication
  - APIResponse: Standardized API response wrapper

Thread Safety:

All models are request-scoped value objects: constructed fresh per call,
never mutated after construction, safe for concurrent read access. No
internal mutexes are needed.

JSON Marshaling:

All models use snake_case struct tags, omitempty for optional fields,
and time.Time in RFC3339 format. Password hashes are never serialized.

See Also:

  - internal/analysis: Analyzer strategies producing AnalysisVerdict
  - internal/database: Persistence for User, UserPreferences, AnalysisRecord
  - internal/api: HTTP handlers returning APIResponse
*/
package models
