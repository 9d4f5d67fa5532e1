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
	"github.com/google/uuid"

	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

// scanAnalysisRow scans a history row, decoding the stored result envelope.
func scanAnalysisRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.AnalysisRecord, error) {
	rec := &models.AnalysisRecord{}
	var videoTitle sql.NullString
	var resultJSON string

	err := scanner.Scan(&rec.ID, &rec.UserID, &rec.VideoURL, &videoTitle, &rec.Mode, &resultJSON, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan history row: %w", err)
	}

	if videoTitle.Valid {
		rec.VideoTitle = videoTitle.String
	}
	if err := json.Unmarshal([]byte(resultJSON), &rec.Result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return rec, nil
}

// InsertAnalysisRecord persists one completed analysis. ID and CreatedAt are
// filled when empty so callers can pass a bare record.
func (db *DB) InsertAnalysisRecord(ctx context.Context, rec *models.AnalysisRecord) error {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	start := time.Now()
	stmt, err := db.getStmt(ctx, `INSERT INTO analysis_history (
		id, user_id, video_url, video_title, mode, result, created_at
	) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}

	_, err = stmt.ExecContext(ctx,
		rec.ID, rec.UserID, rec.VideoURL, nullableString(rec.VideoTitle),
		rec.Mode, string(resultJSON), rec.CreatedAt,
	)
	metrics.RecordDBQuery("insert", "analysis_history", time.Since(start), err)
	if err != nil {
		return fmt.Errorf("failed to insert history record: %w", err)
	}
	return nil
}

// defaultHistoryLimit applies when a caller passes a non-positive page size.
const defaultHistoryLimit = 50

// ListAnalysisHistory returns a user's analyses, most recent first.
func (db *DB) ListAnalysisHistory(ctx context.Context, userID int64, limit int) ([]models.AnalysisRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT
		CAST(id AS VARCHAR), user_id, video_url, video_title, mode, result, created_at
	FROM analysis_history
	WHERE user_id = ?
	ORDER BY created_at DESC
	LIMIT ?`)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, userID, limit)
	metrics.RecordDBQuery("select", "analysis_history", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer closeQuietly(rows)

	records := make([]models.AnalysisRecord, 0, limit)
	for rows.Next() {
		rec, err := scanAnalysisRow(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history row iteration failed: %w", err)
	}
	return records, nil
}

// GetAnalysisRecord retrieves one stored analysis by ID. Ownership is the
// caller's concern; the record carries UserID for that check.
func (db *DB) GetAnalysisRecord(ctx context.Context, id string) (*models.AnalysisRecord, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	// A malformed ID cannot match the UUID column; comparing it would raise
	// a cast error instead of returning zero rows.
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrAnalysisNotFound
	}

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT
		CAST(id AS VARCHAR), user_id, video_url, video_title, mode, result, created_at
	FROM analysis_history WHERE id = ?`)
	if err != nil {
		return nil, err
	}

	rec, err := scanAnalysisRow(stmt.QueryRowContext(ctx, id))
	metrics.RecordDBQuery("select", "analysis_history", time.Since(start), errIgnoringNotFound(err))
	return rec, err
}

// PruneAnalysisHistory deletes records older than the retention window.
// Returns the number of rows removed.
func (db *DB) PruneAnalysisHistory(ctx context.Context, retentionDays int) (int64, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	start := time.Now()
	result, err := db.conn.ExecContext(ctx, `DELETE FROM analysis_history WHERE created_at < ?`, cutoff)
	metrics.RecordDBQuery("delete", "analysis_history", time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}

	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return deleted, nil
}

// nullableString maps "" to NULL for optional text columns.
func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
