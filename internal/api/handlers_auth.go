// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

// Register handles account creation. The new account gets a default
// preference profile so a first analysis works without a preferences PUT.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}
	if h.authDisabled(w) {
		return
	}

	var req models.RegisterRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process password", err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email, req.Username, hash)
	if errors.Is(err, database.ErrDuplicateUser) {
		respondError(w, http.StatusConflict, "CONFLICT", "Email or username already registered", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create user", err)
		return
	}

	// The account is usable without the default profile row; the analysis
	// path falls back to defaults when the row is missing.
	if err := h.db.CreateDefaultPreferences(r.Context(), user.ID); err != nil {
		logging.Error().Err(err).Int64("user_id", user.ID).Msg("Default preferences creation failed")
	}

	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("User registered")

	respondJSON(w, http.StatusCreated, &models.APIResponse{
		Status: "success",
		Data:   user,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Login authenticates a user by username or email and hands out a session
// cookie or a signed token depending on the auth mode.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if !h.requireDB(w) {
		return
	}
	if h.authDisabled(w) {
		return
	}

	var req models.LoginRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	user, err := h.db.GetUserByLogin(r.Context(), req.Login)
	if errors.Is(err, database.ErrUserNotFound) {
		// Same envelope as a wrong password; the response must not reveal
		// which accounts exist.
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to look up user", err)
		return
	}

	if err := auth.CheckPassword(user.PasswordHash, req.Password); err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password", nil)
		return
	}

	if h.config.Auth.Mode == config.AuthModeJWT {
		h.loginJWT(w, r, user)
		return
	}
	h.loginSession(w, r, user)
}

// loginSession creates a server-side session and sets the session cookie.
func (h *Handler) loginSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	if h.sessions == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Session store not initialized", nil)
		return
	}

	session := auth.NewSession(user, h.config.Auth.SessionTTL)
	if err := h.sessions.Create(r.Context(), session); err != nil {
		respondError(w, http.StatusInternalServerError, "SESSION_ERROR", "Failed to create session", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("User logged in")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			ExpiresAt: session.ExpiresAt,
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// loginJWT issues a signed bearer token, also set as a cookie for browser
// clients.
func (h *Handler) loginJWT(w http.ResponseWriter, r *http.Request, user *models.User) {
	if h.tokens == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Token manager not initialized", nil)
		return
	}

	token, expiresAt, err := h.tokens.Generate(user)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "TOKEN_GENERATION_FAILED", "Failed to generate authentication token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	logging.Info().Int64("user_id", user.ID).Str("username", sanitizeLogValue(user.Username)).Msg("User logged in")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.LoginResponse{
			Token:     token,
			ExpiresAt: expiresAt,
			UserID:    user.ID,
			Username:  user.Username,
			Email:     user.Email,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Logout invalidates the current session and clears auth cookies. It never
// fails: logging out while already logged out is a success.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	mode := config.AuthModeSession
	if h.config != nil {
		mode = h.config.Auth.Mode
	}

	switch mode {
	case config.AuthModeNone:
		// Nothing to invalidate.
	case config.AuthModeJWT:
		// Tokens are stateless; the server can only drop the cookie copy.
		clearCookie(w, TokenCookieName)
	default:
		if cookie, err := r.Cookie(SessionCookieName); err == nil && h.sessions != nil {
			if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil {
				logging.Warn().Err(err).Msg("Session delete failed during logout")
			}
		}
		clearCookie(w, SessionCookieName)
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   map[string]string{"message": "Logged out"},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Me returns the account behind the current request. In auth mode none this
// is the shared anonymous account.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	identity := requireIdentity(w, r)
	if identity == nil {
		return
	}
	if !h.requireDB(w) {
		return
	}

	user, err := h.db.GetUserByID(r.Context(), identity.UserID)
	if errors.Is(err, database.ErrUserNotFound) {
		// Valid credential for a deleted account; treat as unauthenticated.
		respondError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Account no longer exists", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load account", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   user,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// authDisabled writes the 403 envelope when the server runs in auth mode
// none, where accounts and credentials do not exist.
func (h *Handler) authDisabled(w http.ResponseWriter) bool {
	if h.config == nil || h.config.Auth.Mode == config.AuthModeNone {
		respondError(w, http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled", nil)
		return true
	}
	return false
}
