// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

type contextKey string

// identityKey is the context key under which the authenticated principal is
// stored.
const identityKey contextKey = "identity"

// SessionCookieName is the cookie carrying the opaque session ID in session
// auth mode.
const SessionCookieName = "vidsift_session"

// TokenCookieName is the cookie fallback for the bearer token in jwt auth
// mode. The Authorization header takes precedence when both are present.
const TokenCookieName = "token"

// Identity is the principal attached to every authenticated request. In auth
// mode none it is the shared anonymous account.
type Identity struct {
	UserID   int64
	Username string
	Email    string
}

// IdentityFromContext returns the request identity, or nil when the request
// did not pass through the authentication middleware.
func IdentityFromContext(ctx context.Context) *Identity {
	identity, ok := ctx.Value(identityKey).(*Identity)
	if !ok {
		return nil
	}
	return identity
}

func contextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityKey, identity)
}

// AuthMiddleware resolves the request principal according to the configured
// auth mode:
//
//   - none: every request runs as the shared anonymous account
//   - session: opaque cookie looked up in the session store, with sliding
//     expiry on each authenticated request
//   - jwt: bearer token from the Authorization header or token cookie
type AuthMiddleware struct {
	mode      string
	sessions  auth.Store
	tokens    *auth.TokenManager
	anonymous *models.User
	ttl       time.Duration
}

// NewAuthMiddleware creates the authentication middleware. sessions, tokens,
// and anonymous are each required only by their respective mode; the others
// may be nil.
func NewAuthMiddleware(cfg config.AuthConfig, sessions auth.Store, tokens *auth.TokenManager, anonymous *models.User) *AuthMiddleware {
	return &AuthMiddleware{
		mode:      cfg.Mode,
		sessions:  sessions,
		tokens:    tokens,
		anonymous: anonymous,
		ttl:       cfg.SessionTTL,
	}
}

// Authenticate enforces authentication and attaches the resolved Identity to
// the request context. Unauthenticated requests get a 401 envelope; mode none
// never rejects.
func (m *AuthMiddleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch m.mode {
		case config.AuthModeNone:
			m.handleAnonymous(w, r, next)
		case config.AuthModeJWT:
			m.handleJWT(w, r, next)
		default:
			m.handleSession(w, r, next)
		}
	}
}

// handleAnonymous runs the request as the shared anonymous account.
func (m *AuthMiddleware) handleAnonymous(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if m.anonymous == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Anonymous account not initialized", nil)
		return
	}

	identity := &Identity{
		UserID:   m.anonymous.ID,
		Username: m.anonymous.Username,
		Email:    m.anonymous.Email,
	}
	next(w, r.WithContext(contextWithIdentity(r.Context(), identity)))
}

// handleSession authenticates via the session cookie.
func (m *AuthMiddleware) handleSession(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if m.sessions == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Session store not initialized", nil)
		return
	}

	cookie, err := r.Cookie(SessionCookieName)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required", nil)
		return
	}

	session, err := m.sessions.Get(r.Context(), cookie.Value)
	if errors.Is(err, auth.ErrSessionExpired) {
		clearCookie(w, SessionCookieName)
		respondError(w, http.StatusUnauthorized, "SESSION_EXPIRED", "Session has expired", nil)
		return
	}
	if err != nil {
		respondError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Invalid session", nil)
		return
	}

	// Sliding expiry: each authenticated request pushes the deadline out.
	if err := m.sessions.Touch(r.Context(), session.ID, time.Now().Add(m.ttl)); err != nil {
		logging.Debug().Err(err).Msg("Session touch failed")
	}

	identity := &Identity{
		UserID:   session.UserID,
		Username: session.Username,
		Email:    session.Email,
	}
	next(w, r.WithContext(contextWithIdentity(r.Context(), identity)))
}

// handleJWT authenticates via a signed bearer token.
func (m *AuthMiddleware) handleJWT(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	if m.tokens == nil {
		respondError(w, http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Token manager not initialized", nil)
		return
	}

	token, err := extractBearerToken(r)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "Authentication required", nil)
		return
	}

	claims, err := m.tokens.Validate(token)
	if err != nil {
		logging.Debug().Err(err).Msg("Token validation failed")
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Invalid or expired token", nil)
		return
	}

	identity := &Identity{
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
	}
	next(w, r.WithContext(contextWithIdentity(r.Context(), identity)))
}

// extractBearerToken extracts the JWT from the Authorization header or the
// token cookie.
func extractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		cookie, err := r.Cookie(TokenCookieName)
		if err != nil {
			return "", fmt.Errorf("missing token")
		}
		return cookie.Value, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", fmt.Errorf("invalid authorization header")
	}

	return parts[1], nil
}

// clearCookie expires a cookie on the client.
func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
