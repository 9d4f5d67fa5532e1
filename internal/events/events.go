// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package events

import (
	"fmt"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vidsift/vidsift/internal/models"
)

// SchemaVersion is the current event schema version. Increment on breaking
// changes to AnalysisCompletedEvent.
const SchemaVersion = 1

// TopicAnalysisCompleted carries one event per finished analysis request,
// including requests served from the verdict cache.
const TopicAnalysisCompleted = "analysis.completed"

// AnalysisCompletedEvent is published after every analysis request, whether
// the verdict came from a fresh provider round trip or the cache. RecordID is
// pre-generated by the publisher so the API response and the history row the
// subscriber writes agree on the identifier.
type AnalysisCompletedEvent struct {
	SchemaVersion int    `json:"schema_version,omitempty"`
	EventID       string `json:"event_id"`
	RecordID      string `json:"record_id"`

	UserID     int64  `json:"user_id"`
	Username   string `json:"username,omitempty"`
	VideoURL   string `json:"video_url"`
	VideoTitle string `json:"video_title,omitempty"`
	Mode       string `json:"mode"`

	// Cached marks verdicts served from the verdict cache rather than a
	// fresh provider round trip.
	Cached    bool  `json:"cached,omitempty"`
	ElapsedMS int64 `json:"elapsed_ms,omitempty"`

	Result    *models.AnalysisResult `json:"result"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewAnalysisCompleted creates an event with a unique ID, record ID,
// timestamp, and schema version. Request-specific fields are the caller's to
// fill.
func NewAnalysisCompleted(userID int64, videoURL, mode string, result *models.AnalysisResult) *AnalysisCompletedEvent {
	return &AnalysisCompletedEvent{
		SchemaVersion: SchemaVersion,
		EventID:       uuid.New().String(),
		RecordID:      uuid.New().String(),
		UserID:        userID,
		VideoURL:      videoURL,
		Mode:          mode,
		Result:        result,
		Timestamp:     time.Now().UTC(),
	}
}

// Validate checks required fields and returns an error if validation fails.
func (e *AnalysisCompletedEvent) Validate() error {
	if e.EventID == "" {
		return fmt.Errorf("event_id is required")
	}
	if e.RecordID == "" {
		return fmt.Errorf("record_id is required")
	}
	if e.VideoURL == "" {
		return fmt.Errorf("video_url is required")
	}
	if e.Mode == "" {
		return fmt.Errorf("mode is required")
	}
	if e.Result == nil {
		return fmt.Errorf("result is required")
	}
	return nil
}

// Record converts the event into the history row its subscriber persists.
func (e *AnalysisCompletedEvent) Record() *models.AnalysisRecord {
	return &models.AnalysisRecord{
		ID:         e.RecordID,
		UserID:     e.UserID,
		VideoURL:   e.VideoURL,
		VideoTitle: e.VideoTitle,
		Mode:       e.Mode,
		Result:     *e.Result,
		CreatedAt:  e.Timestamp,
	}
}

// SerializeEvent marshals a validated event to JSON.
func SerializeEvent(e *AnalysisCompletedEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}

	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// DeserializeEvent unmarshals JSON into an event.
func DeserializeEvent(data []byte) (*AnalysisCompletedEvent, error) {
	var e AnalysisCompletedEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return &e, nil
}
