// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/models"
)

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(testConfig(), db, nil, nil, auth.NewMemoryStore(), nil, nil, nil, nil)

	t.Run("creates user with default preferences", func(t *testing.T) {
		body := `{"email":"alice@example.com","username":"alice","password":"correct-horse"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Register(rec, r)

		if rec.Code != http.StatusCreated {
			t.Fatalf("Status = %d, want 201: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Status string      `json:"status"`
			Data   models.User `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Data.Username != "alice" {
			t.Errorf("Username = %q, want alice", resp.Data.Username)
		}
		if resp.Data.ID == 0 {
			t.Error("Expected assigned user ID")
		}

		prefs, err := db.GetPreferences(context.Background(), resp.Data.ID)
		if err != nil {
			t.Fatalf("GetPreferences after register: %v", err)
		}
		if prefs.MaxDurationMinutes != 120 {
			t.Errorf("Default MaxDurationMinutes = %d, want 120", prefs.MaxDurationMinutes)
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		body := `{"email":"other@example.com","username":"alice","password":"correct-horse"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Register(rec, r)

		if rec.Code != http.StatusConflict {
			t.Fatalf("Status = %d, want 409: %s", rec.Code, rec.Body.String())
		}

		var resp models.APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != "CONFLICT" {
			t.Errorf("Error = %+v, want CONFLICT", resp.Error)
		}
	})

	t.Run("short password rejected", func(t *testing.T) {
		body := `{"email":"bob@example.com","username":"bob","password":"short"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Register(rec, r)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})

	t.Run("invalid email rejected", func(t *testing.T) {
		body := `{"email":"not-an-email","username":"carol","password":"correct-horse"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Register(rec, r)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})
}

func TestRegisterDisabledInNoneMode(t *testing.T) {
	db := setupTestDB(t)
	cfg := testConfig()
	cfg.Auth.Mode = config.AuthModeNone
	h := NewHandler(cfg, db, nil, nil, nil, nil, nil, nil, nil)

	body := `{"email":"alice@example.com","username":"alice","password":"correct-horse"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Register(rec, r)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("Status = %d, want 403", rec.Code)
	}
}

func TestLoginSessionMode(t *testing.T) {
	db := setupTestDB(t)
	store := auth.NewMemoryStore()
	h := NewHandler(testConfig(), db, nil, nil, store, nil, nil, nil, nil)
	seedUser(t, db, "alice@example.com", "alice", "correct-horse")

	t.Run("by username", func(t *testing.T) {
		body := `{"login":"alice","password":"correct-horse"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var sessionCookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == SessionCookieName {
				sessionCookie = c
			}
		}
		if sessionCookie == nil {
			t.Fatal("Expected session cookie")
		}
		if !sessionCookie.HttpOnly {
			t.Error("Session cookie must be HttpOnly")
		}

		session, err := store.Get(context.Background(), sessionCookie.Value)
		if err != nil {
			t.Fatalf("Session not in store: %v", err)
		}
		if session.Username != "alice" {
			t.Errorf("Session username = %q, want alice", session.Username)
		}

		var resp struct {
			Data models.LoginResponse `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Data.Token != "" {
			t.Error("Session mode must not return a token")
		}
		if resp.Data.Username != "alice" {
			t.Errorf("Username = %q, want alice", resp.Data.Username)
		}
	})

	t.Run("by email", func(t *testing.T) {
		body := `{"login":"alice@example.com","password":"correct-horse"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"login":"alice","password":"wrong-password"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Status = %d, want 401", rec.Code)
		}
	})

	t.Run("unknown user gets identical error", func(t *testing.T) {
		body := `{"login":"mallory","password":"whatever-else"}`
		r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.Login(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("Status = %d, want 401", rec.Code)
		}

		var resp models.APIResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Error == nil || resp.Error.Code != "INVALID_CREDENTIALS" {
			t.Errorf("Error = %+v, want INVALID_CREDENTIALS", resp.Error)
		}
	})
}

func TestLoginJWTMode(t *testing.T) {
	db := setupTestDB(t)

	cfg := testConfig()
	cfg.Auth.Mode = config.AuthModeJWT
	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"

	tokens, err := auth.NewTokenManager(cfg.Auth)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	h := NewHandler(cfg, db, nil, nil, nil, tokens, nil, nil, nil)
	seedUser(t, db, "alice@example.com", "alice", "correct-horse")

	body := `{"login":"alice","password":"correct-horse"}`
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("Expected token in jwt mode")
	}

	claims, err := tokens.Validate(resp.Data.Token)
	if err != nil {
		t.Fatalf("Returned token does not validate: %v", err)
	}
	if claims.Username != "alice" {
		t.Errorf("Claims username = %q, want alice", claims.Username)
	}

	foundCookie := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == TokenCookieName && c.Value == resp.Data.Token {
			foundCookie = true
		}
	}
	if !foundCookie {
		t.Error("Expected token cookie matching the response token")
	}
}

func TestLogoutDeletesSession(t *testing.T) {
	db := setupTestDB(t)
	store := auth.NewMemoryStore()
	h := NewHandler(testConfig(), db, nil, nil, store, nil, nil, nil, nil)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")

	session := auth.NewSession(user, time.Hour)
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create session: %v", err)
	}

	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.ID})
	rec := httptest.NewRecorder()
	h.Logout(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if _, err := store.Get(context.Background(), session.ID); err == nil {
		t.Error("Session should be gone after logout")
	}

	cleared := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected session cookie to be cleared")
	}
}

func TestLogoutWithoutSessionSucceeds(t *testing.T) {
	h := NewHandler(testConfig(), nil, nil, nil, auth.NewMemoryStore(), nil, nil, nil, nil)

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200", rec.Code)
	}
}

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	h := NewHandler(testConfig(), db, nil, nil, nil, nil, nil, nil, nil)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")

	t.Run("returns account", func(t *testing.T) {
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), user)
		rec := httptest.NewRecorder()
		h.Me(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data models.User `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Data.ID != user.ID || resp.Data.Email != "alice@example.com" {
			t.Errorf("User = %+v, want alice", resp.Data)
		}
	})

	t.Run("without identity rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})

	t.Run("deleted account rejected", func(t *testing.T) {
		ghost := &models.User{ID: 99999, Username: "ghost", Email: "ghost@example.com"}
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil), ghost)
		rec := httptest.NewRecorder()
		h.Me(rec, r)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})
}
