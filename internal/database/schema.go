// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
schema.go - Database Schema Management

Tables:
  - users: account records (email and username unique)
  - user_preferences: one preference profile per user; list-valued fields
    (categories, languages) are stored as JSON text
  - analysis_history: one row per completed analysis; the full result
    envelope is stored as JSON text so the history endpoint can replay
    exactly what the caller saw

Schema Strategy (Pre-Release):
All columns are defined in the initial CREATE TABLE statement. This provides a
single source of truth for the complete schema and faster startup. After the
first public release, new columns go through versioned migrations instead.

Index Strategy:
History is always queried per user ordered by recency, so a composite index
on (user_id, created_at) covers both the list and prune paths.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE SEQUENCE IF NOT EXISTS users_id_seq`,

		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT PRIMARY KEY DEFAULT nextval('users_id_seq'),
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
			user_id BIGINT PRIMARY KEY,
			preferred_categories TEXT NOT NULL DEFAULT '[]',
			preferred_languages TEXT NOT NULL DEFAULT '[]',
			min_duration_minutes INTEGER NOT NULL DEFAULT 0,
			max_duration_minutes INTEGER NOT NULL DEFAULT 120,
			educational_preference BOOLEAN NOT NULL DEFAULT false,
			entertainment_preference BOOLEAN NOT NULL DEFAULT true,
			exclude_explicit_content BOOLEAN NOT NULL DEFAULT false,
			min_content_length INTEGER NOT NULL DEFAULT 300,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS analysis_history (
			id UUID PRIMARY KEY,
			user_id BIGINT NOT NULL,
			video_url TEXT NOT NULL,
			video_title TEXT,
			mode TEXT NOT NULL,
			result TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}

	return nil
}

// createIndexes creates indexes for common query patterns.
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	queries := []string{
		`CREATE INDEX IF NOT EXISTS idx_history_user_created ON analysis_history(user_id, created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_history_created ON analysis_history(created_at);`,
	}

	for _, query := range queries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}

	return nil
}
