// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

// AnalysisCreate runs the suitability pipeline for one video and responds
// with the analysis record. The verdict cache is consulted first; a hit skips
// the provider round trip entirely. Either way a completion event goes out on
// the bus, where the history writer and the WebSocket feed pick it up.
func (h *Handler) AnalysisCreate(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if h.analyzer == nil {
		respondError(w, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Analysis pipeline not available", nil)
		return
	}

	var req models.AnalysisRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	prefs, apiErr := h.resolvePreferences(r.Context(), identity.UserID, req.Preferences)
	if apiErr != nil {
		respondError(w, http.StatusInternalServerError, apiErr.Code, apiErr.Message, nil)
		return
	}

	mode := string(h.analyzer.Mode())

	var cacheKey string
	if h.verdicts != nil {
		cacheKey = h.verdicts.Key(req.VideoURL, mode, prefs)
		if result, ok := h.verdicts.Get(cacheKey); ok {
			logging.Debug().Str("video_url", sanitizeLogValue(req.VideoURL)).Msg("Verdict served from cache")
			h.completeAnalysis(w, r, identity, req.VideoURL, mode, result, start, true)
			return
		}
	}

	result := h.analyzer.AnalyzeVideo(r.Context(), req.VideoURL, prefs)
	if h.verdicts != nil && result.Success {
		h.verdicts.Put(cacheKey, result)
	}

	h.completeAnalysis(w, r, identity, req.VideoURL, mode, result, start, false)
}

// completeAnalysis publishes the completion event and writes the response.
// The record ID is minted with the event so the API reply and the history row
// the subscriber writes agree on it.
func (h *Handler) completeAnalysis(w http.ResponseWriter, r *http.Request, identity *Identity, videoURL, mode string, result *models.AnalysisResult, start time.Time, cached bool) {
	event := events.NewAnalysisCompleted(identity.UserID, videoURL, mode, result)
	event.Username = identity.Username
	event.Cached = cached
	event.ElapsedMS = time.Since(start).Milliseconds()
	if result.VideoInfo != nil {
		event.VideoTitle = result.VideoInfo.Title
	}

	if h.bus != nil {
		if err := h.bus.PublishAnalysisCompleted(r.Context(), event); err != nil {
			logging.Error().Err(err).Str("record_id", event.RecordID).Msg("Analysis event publish failed")
		}
	}

	// The envelope status reports the HTTP operation; a pipeline failure
	// rides inside the record with result.success=false and its error string.
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   event.Record(),
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
			Cached:      cached,
		},
	})
}

// resolvePreferences picks the profile for one analysis: inline preferences
// from the request replace the stored profile wholesale, otherwise the stored
// profile applies, and a user without one gets the defaults.
func (h *Handler) resolvePreferences(ctx context.Context, userID int64, inline *models.UserPreferences) (models.UserPreferences, *models.APIError) {
	if inline != nil {
		prefs := *inline
		prefs.Normalize()
		return prefs, nil
	}

	if h.db == nil {
		return models.DefaultPreferences(), nil
	}

	stored, err := h.db.GetPreferences(ctx, userID)
	if errors.Is(err, database.ErrPreferencesNotFound) {
		return models.DefaultPreferences(), nil
	}
	if err != nil {
		return models.UserPreferences{}, &models.APIError{Code: "DATABASE_ERROR", Message: "Failed to load preferences"}
	}

	prefs := stored.UserPreferences
	prefs.Normalize()
	return prefs, nil
}

// AnalysisHistory lists the caller's most recent analyses, newest first.
func (h *Handler) AnalysisHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if !h.requireDB(w) {
		return
	}

	defaultLimit, maxLimit := 20, 100
	if h.config != nil {
		if h.config.API.DefaultPageSize > 0 {
			defaultLimit = h.config.API.DefaultPageSize
		}
		if h.config.API.MaxPageSize > 0 {
			maxLimit = h.config.API.MaxPageSize
		}
	}

	limit := getIntParam(r, "limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := h.db.ListAnalysisHistory(r.Context(), identity.UserID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load analysis history", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   records,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}

// AnalysisGet returns a single analysis record. Records are scoped to their
// owner; a foreign ID reads as absent rather than forbidden.
func (h *Handler) AnalysisGet(w http.ResponseWriter, r *http.Request) {
	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if !h.requireDB(w) {
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid analysis id", nil)
		return
	}

	record, err := h.db.GetAnalysisRecord(r.Context(), id)
	if errors.Is(err, database.ErrAnalysisNotFound) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load analysis record", err)
		return
	}
	if record.UserID != identity.UserID {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Analysis not found", nil)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   record,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
