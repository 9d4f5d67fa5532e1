// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

// marshalLabels JSON-encodes a label list for storage. nil and empty both
// store as "[]" so the column stays NOT NULL.
func marshalLabels(labels []string) (string, error) {
	if len(labels) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(labels)
	if err != nil {
		return "", fmt.Errorf("failed to encode labels: %w", err)
	}
	return string(data), nil
}

// unmarshalLabels decodes a stored label list. Empty lists come back as nil
// to match the in-memory convention.
func unmarshalLabels(raw string) ([]string, error) {
	if raw == "" || raw == "[]" || raw == "null" {
		return nil, nil
	}
	var labels []string
	if err := json.Unmarshal([]byte(raw), &labels); err != nil {
		return nil, fmt.Errorf("failed to decode labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return labels, nil
}

// GetPreferences retrieves the stored preference profile for a user.
// Returns ErrPreferencesNotFound when the user has no stored profile.
func (db *DB) GetPreferences(ctx context.Context, userID int64) (*models.StoredPreferences, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT
		preferred_categories, preferred_languages,
		min_duration_minutes, max_duration_minutes,
		educational_preference, entertainment_preference,
		exclude_explicit_content, min_content_length, updated_at
	FROM user_preferences WHERE user_id = ?`)
	if err != nil {
		return nil, err
	}

	var categoriesJSON, languagesJSON string
	prefs := &models.StoredPreferences{UserID: userID}
	err = stmt.QueryRowContext(ctx, userID).Scan(
		&categoriesJSON, &languagesJSON,
		&prefs.MinDurationMinutes, &prefs.MaxDurationMinutes,
		&prefs.EducationalPreference, &prefs.EntertainmentPreference,
		&prefs.ExcludeExplicitContent, &prefs.MinContentLength, &prefs.UpdatedAt,
	)
	metrics.RecordDBQuery("select", "user_preferences", time.Since(start), errIgnoringNotFound(err))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPreferencesNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	if prefs.PreferredCategories, err = unmarshalLabels(categoriesJSON); err != nil {
		return nil, err
	}
	if prefs.PreferredLanguages, err = unmarshalLabels(languagesJSON); err != nil {
		return nil, err
	}

	return prefs, nil
}

// UpsertPreferences stores the complete preference profile for a user,
// replacing any existing row.
func (db *DB) UpsertPreferences(ctx context.Context, userID int64, p models.UserPreferences) (*models.StoredPreferences, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	categoriesJSON, err := marshalLabels(p.PreferredCategories)
	if err != nil {
		return nil, err
	}
	languagesJSON, err := marshalLabels(p.PreferredLanguages)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	start := now

	query := `INSERT INTO user_preferences (
		user_id, preferred_categories, preferred_languages,
		min_duration_minutes, max_duration_minutes,
		educational_preference, entertainment_preference,
		exclude_explicit_content, min_content_length, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id) DO UPDATE SET
		preferred_categories = EXCLUDED.preferred_categories,
		preferred_languages = EXCLUDED.preferred_languages,
		min_duration_minutes = EXCLUDED.min_duration_minutes,
		max_duration_minutes = EXCLUDED.max_duration_minutes,
		educational_preference = EXCLUDED.educational_preference,
		entertainment_preference = EXCLUDED.entertainment_preference,
		exclude_explicit_content = EXCLUDED.exclude_explicit_content,
		min_content_length = EXCLUDED.min_content_length,
		updated_at = EXCLUDED.updated_at`

	_, err = db.conn.ExecContext(ctx, query,
		userID, categoriesJSON, languagesJSON,
		p.MinDurationMinutes, p.MaxDurationMinutes,
		p.EducationalPreference, p.EntertainmentPreference,
		p.ExcludeExplicitContent, p.MinContentLength, now,
	)
	metrics.RecordDBQuery("upsert", "user_preferences", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert preferences: %w", err)
	}

	return &models.StoredPreferences{
		UserPreferences: p,
		UserID:          userID,
		UpdatedAt:       now,
	}, nil
}

// CreateDefaultPreferences inserts the default profile for a new user.
// Idempotent: an existing row is left untouched.
func (db *DB) CreateDefaultPreferences(ctx context.Context, userID int64) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()

	// Column defaults carry the actual values; only the key is supplied.
	query := `INSERT INTO user_preferences (user_id) VALUES (?) ON CONFLICT DO NOTHING`
	_, err := db.conn.ExecContext(ctx, query, userID)
	metrics.RecordDBQuery("insert", "user_preferences", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to create default preferences: %w", err)
	}
	return nil
}
