// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

// PreferencesGet returns the caller's preference profile. A missing row reads
// as the default profile; reads never insert.
func (h *Handler) PreferencesGet(w http.ResponseWriter, r *http.Request) {
	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if !h.requireDB(w) {
		return
	}

	prefs, err := h.db.GetPreferences(r.Context(), identity.UserID)
	if errors.Is(err, database.ErrPreferencesNotFound) {
		prefs = &models.StoredPreferences{
			UserPreferences: models.DefaultPreferences(),
			UserID:          identity.UserID,
		}
	} else if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load preferences", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   prefs,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// PreferencesPut replaces the caller's preference profile. The payload is a
// complete profile, normalized at the boundary before it is stored, so reads
// and the analysis pipeline always see canonical label casing and ordering.
func (h *Handler) PreferencesPut(w http.ResponseWriter, r *http.Request) {
	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if !h.requireDB(w) {
		return
	}

	var req models.UserPreferences
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	req.Normalize()

	stored, err := h.db.UpsertPreferences(r.Context(), identity.UserID, req)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to store preferences", err)
		return
	}

	logging.Debug().Int64("user_id", identity.UserID).Msg("Preferences updated")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stored,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
