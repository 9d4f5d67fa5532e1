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

	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/models"
)

const userColumns = `id, email, username, password_hash, created_at`

// scanUserRow scans a database row into a User struct.
func scanUserRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	user := &models.User{}
	err := scanner.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// CreateUser inserts a new account. The password must already be hashed.
// Returns ErrDuplicateUser when the email or username is taken.
func (db *DB) CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	user := &models.User{Email: email, Username: username, PasswordHash: passwordHash}

	// DuckDB's driver has no LastInsertId, so read the generated key back
	// with RETURNING.
	query := `INSERT INTO users (email, username, password_hash) VALUES (?, ?, ?) RETURNING id, created_at`
	err := db.conn.QueryRowContext(ctx, query, email, username, passwordHash).Scan(&user.ID, &user.CreatedAt)
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, ErrDuplicateUser
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID retrieves a user by primary key.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`)
	if err != nil {
		return nil, err
	}
	user, err := scanUserRow(stmt.QueryRowContext(ctx, id))
	metrics.RecordDBQuery("select", "users", time.Since(start), errIgnoringNotFound(err))
	return user, err
}

// GetUserByUsername retrieves a user by exact username.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`)
	if err != nil {
		return nil, err
	}
	user, err := scanUserRow(stmt.QueryRowContext(ctx, username))
	metrics.RecordDBQuery("select", "users", time.Since(start), errIgnoringNotFound(err))
	return user, err
}

// GetUserByLogin retrieves a user by email or username. Login forms accept
// either, so both unique columns are checked in one query.
func (db *DB) GetUserByLogin(ctx context.Context, login string) (*models.User, error) {
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stmt, err := db.getStmt(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? OR username = ?`)
	if err != nil {
		return nil, err
	}
	user, err := scanUserRow(stmt.QueryRowContext(ctx, login, login))
	metrics.RecordDBQuery("select", "users", time.Since(start), errIgnoringNotFound(err))
	return user, err
}

// EnsureAdminUser creates the bootstrap admin account if it does not exist.
// The account gets a synthetic local email since only a username is
// configured. Returns true when the account was created by this call.
func (db *DB) EnsureAdminUser(ctx context.Context, username, passwordHash string) (bool, error) {
	_, err := db.GetUserByUsername(ctx, username)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return false, err
	}

	user, err := db.CreateUser(ctx, username+"@vidsift.local", username, passwordHash)
	if errors.Is(err, ErrDuplicateUser) {
		// Another instance won the bootstrap race.
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := db.CreateDefaultPreferences(ctx, user.ID); err != nil {
		return true, fmt.Errorf("admin user created but default preferences failed: %w", err)
	}

	logging.Info().Str("username", username).Int64("user_id", user.ID).Msg("Bootstrap admin account created")
	return true, nil
}

// AnonymousUsername is the account all requests share when authentication
// is disabled (auth.mode = none).
const AnonymousUsername = "anonymous"

// EnsureAnonymousUser creates the shared anonymous account used when
// authentication is disabled, and returns it. The account has an empty
// password hash so it can never be logged into directly.
func (db *DB) EnsureAnonymousUser(ctx context.Context) (*models.User, error) {
	user, err := db.GetUserByUsername(ctx, AnonymousUsername)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	user, err = db.CreateUser(ctx, AnonymousUsername+"@vidsift.local", AnonymousUsername, "")
	if errors.Is(err, ErrDuplicateUser) {
		return db.GetUserByUsername(ctx, AnonymousUsername)
	}
	if err != nil {
		return nil, err
	}

	if err := db.CreateDefaultPreferences(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("anonymous user created but default preferences failed: %w", err)
	}

	logging.Info().Int64("user_id", user.ID).Msg("Shared anonymous account created")
	return user, nil
}

// errIgnoringNotFound filters ErrUserNotFound and friends out of metric
// recording: a miss is a normal outcome, not a query error.
func errIgnoringNotFound(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrPreferencesNotFound),
		errors.Is(err, ErrAnalysisNotFound):
		return nil
	default:
		return err
	}
}
