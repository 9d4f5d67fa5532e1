// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/vidsift/vidsift/internal/analysis"
	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
)

func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

// testDBSemaphore serializes database-backed tests. Concurrent DuckDB CGO
// calls can hang under pressure, so the semaphore is held for the entire test
// lifecycle and released via t.Cleanup.
var testDBSemaphore = make(chan struct{}, 1)

// testDBMutex serializes the New() call itself.
var testDBMutex sync.Mutex

// setupTestDB creates an in-memory test database with timeout protection so a
// hung DuckDB connection fails the test quickly instead of stalling the run.
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	cfg := config.DatabaseConfig{
		Path:        ":memory:",
		MemoryLimit: "1GB",
		Threads:     2,
	}

	type result struct {
		db  *database.DB
		err error
	}

	resultCh := make(chan result, 1)
	go func() {
		testDBMutex.Lock()
		db, err := database.New(cfg)
		testDBMutex.Unlock()
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		t.Cleanup(func() {
			if err := res.db.Close(); err != nil {
				t.Logf("Failed to close test database: %v", err)
			}
		})
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

// testConfig returns a configuration suitable for handler tests: session
// auth, permissive CORS, small page sizes.
func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			Mode:       config.AuthModeSession,
			SessionTTL: time.Hour,
		},
		Analyzer: config.AnalyzerConfig{
			Mode:     "metadata",
			CacheTTL: 15 * time.Minute,
		},
		API: config.APIConfig{
			DefaultPageSize: 20,
			MaxPageSize:     100,
		},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
		},
	}
}

// seedUser registers a user with a known password and default preferences.
func seedUser(t *testing.T, db *database.DB, email, username, password string) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	user, err := db.CreateUser(context.Background(), email, username, hash)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := db.CreateDefaultPreferences(context.Background(), user.ID); err != nil {
		t.Fatalf("CreateDefaultPreferences: %v", err)
	}
	return user
}

// withIdentity attaches a request identity the way the auth middleware does.
func withIdentity(r *http.Request, user *models.User) *http.Request {
	identity := &Identity{UserID: user.ID, Username: user.Username, Email: user.Email}
	return r.WithContext(contextWithIdentity(r.Context(), identity))
}

// stubAnalyzer is a VideoAnalyzer that returns a canned result and records
// what it was called with.
type stubAnalyzer struct {
	mu        sync.Mutex
	result    *models.AnalysisResult
	calls     int
	lastURL   string
	lastPrefs models.UserPreferences
}

func (a *stubAnalyzer) AnalyzeVideo(_ context.Context, videoURL string, prefs models.UserPreferences) *models.AnalysisResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	a.lastURL = videoURL
	a.lastPrefs = prefs
	return a.result
}

func (a *stubAnalyzer) Mode() analysis.Mode { return analysis.ModeMetadata }

func (a *stubAnalyzer) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

// stubPinger fakes provider reachability for health tests.
type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error { return p.err }

// suitableResult builds a successful analysis result for tests.
func suitableResult(title string) *models.AnalysisResult {
	return &models.AnalysisResult{
		Success:    true,
		IsSuitable: true,
		VideoInfo: &models.VideoMetadata{
			URL:             "https://example.com/watch?v=abc",
			Title:           title,
			DurationSeconds: 600,
		},
		Analysis: &models.AnalysisVerdict{
			IsSuitable: true,
			Analysis:   "Видео соответствует основным предпочтениям",
			Confidence: 0.85,
			Reasons:    []string{"Подходящая длительность"},
			MatchScore: 85,
		},
	}
}
