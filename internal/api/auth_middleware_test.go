// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/models"
)

func identityProbe(captured **Identity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		*captured = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}
}

func TestAuthenticateNoneModeInjectsAnonymous(t *testing.T) {
	anon := &models.User{ID: 1, Username: "anonymous", Email: "anonymous@vidsift.local"}
	mw := NewAuthMiddleware(config.AuthConfig{Mode: config.AuthModeNone}, nil, nil, anon)

	var got *Identity
	handler := mw.Authenticate(identityProbe(&got))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if got == nil {
		t.Fatal("Expected identity in context")
	}
	if got.UserID != 1 || got.Username != "anonymous" {
		t.Errorf("Identity = %+v, want anonymous account", got)
	}
}

func TestAuthenticateNoneModeWithoutAccount(t *testing.T) {
	mw := NewAuthMiddleware(config.AuthConfig{Mode: config.AuthModeNone}, nil, nil, nil)

	var got *Identity
	handler := mw.Authenticate(identityProbe(&got))

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/preferences", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want 500", rec.Code)
	}
	if got != nil {
		t.Error("Handler should not have run")
	}
}

func TestAuthenticateSessionMode(t *testing.T) {
	store := auth.NewMemoryStore()
	user := &models.User{ID: 7, Username: "alice", Email: "alice@example.com"}
	session := auth.NewSession(user, time.Hour)
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	cfg := config.AuthConfig{Mode: config.AuthModeSession, SessionTTL: time.Hour}
	mw := NewAuthMiddleware(cfg, store, nil, nil)

	t.Run("missing cookie rejected", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})

	t.Run("valid cookie passes", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
		rec := httptest.NewRecorder()
		handler(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", rec.Code)
		}
		if got == nil || got.UserID != 7 || got.Username != "alice" {
			t.Errorf("Identity = %+v, want alice", got)
		}
	})

	t.Run("unknown session rejected", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "no-such-session"})
		rec := httptest.NewRecorder()
		handler(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})
}

func TestAuthenticateSessionSlidesExpiry(t *testing.T) {
	store := auth.NewMemoryStore()
	user := &models.User{ID: 3, Username: "bob", Email: "bob@example.com"}

	// Session nearly expired; an authenticated request should push the
	// deadline back out to the full TTL.
	session := auth.NewSession(user, time.Minute)
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	cfg := config.AuthConfig{Mode: config.AuthModeSession, SessionTTL: time.Hour}
	mw := NewAuthMiddleware(cfg, store, nil, nil)

	var got *Identity
	handler := mw.Authenticate(identityProbe(&got))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	handler(httptest.NewRecorder(), r)

	refreshed, err := store.Get(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("Get refreshed session: %v", err)
	}
	if !refreshed.ExpiresAt.After(session.ExpiresAt.Add(30 * time.Minute)) {
		t.Errorf("Expiry not extended: was %v, now %v", session.ExpiresAt, refreshed.ExpiresAt)
	}
}

func TestAuthenticateExpiredSessionClearsCookie(t *testing.T) {
	store := auth.NewMemoryStore()
	user := &models.User{ID: 4, Username: "carol", Email: "carol@example.com"}

	session := auth.NewSession(user, -time.Minute)
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	cfg := config.AuthConfig{Mode: config.AuthModeSession, SessionTTL: time.Hour}
	mw := NewAuthMiddleware(cfg, store, nil, nil)

	var got *Identity
	handler := mw.Authenticate(identityProbe(&got))

	r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	handler(rec, r)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("Status = %d, want 401", rec.Code)
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected expired session cookie to be cleared")
	}
}

func TestAuthenticateJWTMode(t *testing.T) {
	cfg := config.AuthConfig{
		Mode:       config.AuthModeJWT,
		JWTSecret:  "0123456789abcdef0123456789abcdef",
		SessionTTL: time.Hour,
	}
	tokens, err := auth.NewTokenManager(cfg)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	user := &models.User{ID: 9, Username: "dave", Email: "dave@example.com"}
	token, _, err := tokens.Generate(user)
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	mw := NewAuthMiddleware(cfg, nil, tokens, nil)

	t.Run("bearer header", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", rec.Code)
		}
		if got == nil || got.UserID != 9 || got.Email != "dave@example.com" {
			t.Errorf("Identity = %+v, want dave", got)
		}
	})

	t.Run("token cookie fallback", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: token})
		rec := httptest.NewRecorder()
		handler(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200", rec.Code)
		}
		if got == nil || got.UserID != 9 {
			t.Errorf("Identity = %+v, want dave", got)
		}
	})

	t.Run("garbage token rejected", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		r := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		r.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()
		handler(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})

	t.Run("missing credentials rejected", func(t *testing.T) {
		var got *Identity
		handler := mw.Authenticate(identityProbe(&got))

		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		cookie    string
		expected  string
		expectErr bool
	}{
		{"bearer header", "Bearer abc123", "", "abc123", false},
		{"cookie fallback", "", "cookie-token", "cookie-token", false},
		{"header wins over cookie", "Bearer header-token", "cookie-token", "header-token", false},
		{"malformed header", "Token abc123", "", "", true},
		{"bare header", "abc123", "", "", true},
		{"nothing", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: TokenCookieName, Value: tt.cookie})
			}

			token, err := extractBearerToken(r)
			if tt.expectErr {
				if err == nil {
					t.Fatal("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if token != tt.expected {
				t.Errorf("Token = %q, want %q", token, tt.expected)
			}
		})
	}
}

func TestIdentityFromContextMissing(t *testing.T) {
	if got := IdentityFromContext(context.Background()); got != nil {
		t.Errorf("Expected nil identity, got %+v", got)
	}
}
