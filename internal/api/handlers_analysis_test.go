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

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vidsift/vidsift/internal/cache"
	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/models"
)

func TestAnalysisCreate(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: suitableResult("Science Lecture")}

	bus := events.NewBus()
	t.Cleanup(func() { _ = bus.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	messages, err := bus.Subscribe(ctx, events.TopicAnalysisCompleted)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, bus, nil, nil)

	body := `{"video_url":"https://example.com/watch?v=abc"}`
	r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
	rec := httptest.NewRecorder()
	h.AnalysisCreate(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Status   string                `json:"status"`
		Data     models.AnalysisRecord `json:"data"`
		Metadata models.Metadata       `json:"metadata"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Status != "success" {
		t.Errorf("Status = %q, want success", resp.Status)
	}
	if _, err := uuid.Parse(resp.Data.ID); err != nil {
		t.Errorf("Record ID %q is not a UUID", resp.Data.ID)
	}
	if resp.Data.UserID != user.ID {
		t.Errorf("Record UserID = %d, want %d", resp.Data.UserID, user.ID)
	}
	if resp.Data.VideoTitle != "Science Lecture" {
		t.Errorf("VideoTitle = %q, want Science Lecture", resp.Data.VideoTitle)
	}
	if resp.Data.Mode != "metadata" {
		t.Errorf("Mode = %q, want metadata", resp.Data.Mode)
	}
	if !resp.Data.Result.IsSuitable {
		t.Error("Expected suitable verdict in record")
	}
	if resp.Metadata.Cached {
		t.Error("First analysis must not be marked cached")
	}

	// The completion event carries the same record ID as the response.
	select {
	case msg := <-messages:
		event, err := events.DeserializeEvent(msg.Payload)
		if err != nil {
			t.Fatalf("DeserializeEvent: %v", err)
		}
		msg.Ack()
		if event.RecordID != resp.Data.ID {
			t.Errorf("Event RecordID = %q, response ID = %q", event.RecordID, resp.Data.ID)
		}
		if event.Username != "alice" {
			t.Errorf("Event Username = %q, want alice", event.Username)
		}
		if event.Cached {
			t.Error("Event must not be marked cached")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for completion event")
	}

	if analyzer.callCount() != 1 {
		t.Errorf("Analyzer calls = %d, want 1", analyzer.callCount())
	}
}

func TestAnalysisCreateServesCachedVerdict(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: suitableResult("Cached Video")}

	verdicts := cache.NewVerdictCache(time.Minute)
	t.Cleanup(verdicts.Close)

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, nil, verdicts, nil)

	body := `{"video_url":"https://example.com/watch?v=abc"}`
	for i := 0; i < 2; i++ {
		r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
		rec := httptest.NewRecorder()
		h.AnalysisCreate(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Call %d status = %d: %s", i, rec.Code, rec.Body.String())
		}

		var resp struct {
			Metadata models.Metadata `json:"metadata"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if wantCached := i == 1; resp.Metadata.Cached != wantCached {
			t.Errorf("Call %d cached = %v, want %v", i, resp.Metadata.Cached, wantCached)
		}
	}

	if analyzer.callCount() != 1 {
		t.Errorf("Analyzer calls = %d, want 1 (second call cached)", analyzer.callCount())
	}
}

func TestAnalysisCreateDistinctPrefsMissCache(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: suitableResult("Video")}

	verdicts := cache.NewVerdictCache(time.Minute)
	t.Cleanup(verdicts.Close)

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, nil, verdicts, nil)

	first := `{"video_url":"https://example.com/watch?v=abc"}`
	second := `{"video_url":"https://example.com/watch?v=abc","preferences":{"preferred_categories":["music"],"max_duration_minutes":30}}`

	for _, body := range []string{first, second} {
		r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
		rec := httptest.NewRecorder()
		h.AnalysisCreate(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
		}
	}

	if analyzer.callCount() != 2 {
		t.Errorf("Analyzer calls = %d, want 2 (different preferences must not share verdicts)", analyzer.callCount())
	}
}

func TestAnalysisCreateInlinePreferencesOverrideStored(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: suitableResult("Video")}

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, nil, nil, nil)

	body := `{"video_url":"https://example.com/watch?v=abc","preferences":{"preferred_categories":["  MUSIC "],"max_duration_minutes":30,"entertainment_preference":true}}`
	r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
	rec := httptest.NewRecorder()
	h.AnalysisCreate(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
	}

	analyzer.mu.Lock()
	prefs := analyzer.lastPrefs
	analyzer.mu.Unlock()

	if len(prefs.PreferredCategories) != 1 || prefs.PreferredCategories[0] != "music" {
		t.Errorf("Analyzer saw categories %v, want normalized [music]", prefs.PreferredCategories)
	}
	if prefs.MaxDurationMinutes != 30 {
		t.Errorf("MaxDurationMinutes = %d, want inline 30", prefs.MaxDurationMinutes)
	}
}

func TestAnalysisCreateUsesStoredPreferences(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: suitableResult("Video")}

	stored := models.DefaultPreferences()
	stored.PreferredCategories = []string{"science"}
	stored.MaxDurationMinutes = 75
	if _, err := db.UpsertPreferences(context.Background(), user.ID, stored); err != nil {
		t.Fatalf("UpsertPreferences: %v", err)
	}

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, nil, nil, nil)

	body := `{"video_url":"https://example.com/watch?v=abc"}`
	r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
	rec := httptest.NewRecorder()
	h.AnalysisCreate(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
	}

	analyzer.mu.Lock()
	prefs := analyzer.lastPrefs
	analyzer.mu.Unlock()

	if prefs.MaxDurationMinutes != 75 {
		t.Errorf("MaxDurationMinutes = %d, want stored 75", prefs.MaxDurationMinutes)
	}
	if len(prefs.PreferredCategories) != 1 || prefs.PreferredCategories[0] != "science" {
		t.Errorf("Categories = %v, want stored [science]", prefs.PreferredCategories)
	}
}

func TestAnalysisCreatePipelineFailureStillResponds(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	analyzer := &stubAnalyzer{result: &models.AnalysisResult{
		Success: false,
		Error:   "Не удалось получить информацию о видео",
	}}

	verdicts := cache.NewVerdictCache(time.Minute)
	t.Cleanup(verdicts.Close)

	h := NewHandler(testConfig(), db, analyzer, nil, nil, nil, nil, verdicts, nil)

	body := `{"video_url":"https://example.com/watch?v=abc"}`
	r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
	rec := httptest.NewRecorder()
	h.AnalysisCreate(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.AnalysisRecord `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if resp.Data.Result.Success {
		t.Error("Expected failed result in record")
	}
	if resp.Data.Result.Error == "" {
		t.Error("Expected error string in record")
	}

	// Failed verdicts are not cached; a retry reaches the analyzer.
	r = withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
	h.AnalysisCreate(httptest.NewRecorder(), r)
	if analyzer.callCount() != 2 {
		t.Errorf("Analyzer calls = %d, want 2 (failures must not be cached)", analyzer.callCount())
	}
}

func TestAnalysisCreateGuards(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "alice@example.com", "alice", "correct-horse")

	t.Run("no analyzer", func(t *testing.T) {
		h := NewHandler(testConfig(), db, nil, nil, nil, nil, nil, nil, nil)
		body := `{"video_url":"https://example.com/watch?v=abc"}`
		r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
		rec := httptest.NewRecorder()
		h.AnalysisCreate(rec, r)

		if rec.Code != http.StatusServiceUnavailable {
			t.Errorf("Status = %d, want 503", rec.Code)
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		h := NewHandler(testConfig(), db, &stubAnalyzer{result: suitableResult("x")}, nil, nil, nil, nil, nil, nil)
		body := `{"video_url":"not a url"}`
		r := withIdentity(httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)), user)
		rec := httptest.NewRecorder()
		h.AnalysisCreate(rec, r)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})

	t.Run("no identity", func(t *testing.T) {
		h := NewHandler(testConfig(), db, &stubAnalyzer{result: suitableResult("x")}, nil, nil, nil, nil, nil, nil)
		body := `{"video_url":"https://example.com/watch?v=abc"}`
		rec := httptest.NewRecorder()
		h.AnalysisCreate(rec, httptest.NewRequest(http.MethodPost, "/api/v1/analysis", strings.NewReader(body)))

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("Status = %d, want 401", rec.Code)
		}
	})
}

func TestAnalysisHistory(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	bob := seedUser(t, db, "bob@example.com", "bob", "correct-horse")

	insert := func(userID int64, title string, at time.Time) {
		t.Helper()
		rec := &models.AnalysisRecord{
			ID:         uuid.New().String(),
			UserID:     userID,
			VideoURL:   "https://example.com/watch?v=" + title,
			VideoTitle: title,
			Mode:       "metadata",
			Result:     *suitableResult(title),
			CreatedAt:  at,
		}
		if err := db.InsertAnalysisRecord(context.Background(), rec); err != nil {
			t.Fatalf("InsertAnalysisRecord: %v", err)
		}
	}

	now := time.Now().UTC()
	insert(alice.ID, "oldest", now.Add(-2*time.Hour))
	insert(alice.ID, "middle", now.Add(-time.Hour))
	insert(alice.ID, "newest", now)
	insert(bob.ID, "other-user", now)

	h := NewHandler(testConfig(), db, nil, nil, nil, nil, nil, nil, nil)

	t.Run("newest first, owner only", func(t *testing.T) {
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/history", nil), alice)
		rec := httptest.NewRecorder()
		h.AnalysisHistory(rec, r)

		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data []models.AnalysisRecord `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if len(resp.Data) != 3 {
			t.Fatalf("Records = %d, want 3", len(resp.Data))
		}
		if resp.Data[0].VideoTitle != "newest" {
			t.Errorf("First record = %q, want newest", resp.Data[0].VideoTitle)
		}
		for _, record := range resp.Data {
			if record.UserID != alice.ID {
				t.Errorf("Foreign record %q in history", record.VideoTitle)
			}
		}
	})

	t.Run("limit respected", func(t *testing.T) {
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/history?limit=2", nil), alice)
		rec := httptest.NewRecorder()
		h.AnalysisHistory(rec, r)

		var resp struct {
			Data []models.AnalysisRecord `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if len(resp.Data) != 2 {
			t.Errorf("Records = %d, want 2", len(resp.Data))
		}
	})

	t.Run("limit clamped to max", func(t *testing.T) {
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/history?limit=99999", nil), alice)
		rec := httptest.NewRecorder()
		h.AnalysisHistory(rec, r)

		if rec.Code != http.StatusOK {
			t.Errorf("Status = %d, want 200 with clamped limit", rec.Code)
		}
	})
}

func TestAnalysisGet(t *testing.T) {
	db := setupTestDB(t)
	alice := seedUser(t, db, "alice@example.com", "alice", "correct-horse")
	bob := seedUser(t, db, "bob@example.com", "bob", "correct-horse")

	record := &models.AnalysisRecord{
		ID:         uuid.New().String(),
		UserID:     alice.ID,
		VideoURL:   "https://example.com/watch?v=abc",
		VideoTitle: "Science Lecture",
		Mode:       "metadata",
		Result:     *suitableResult("Science Lecture"),
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.InsertAnalysisRecord(context.Background(), record); err != nil {
		t.Fatalf("InsertAnalysisRecord: %v", err)
	}

	h := NewHandler(testConfig(), db, nil, nil, nil, nil, nil, nil, nil)

	get := func(user *models.User, id string) *httptest.ResponseRecorder {
		r := withIdentity(httptest.NewRequest(http.MethodGet, "/api/v1/analysis/"+id, nil), user)

		// Inject the chi URL parameter the router would have set.
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", id)
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

		rec := httptest.NewRecorder()
		h.AnalysisGet(rec, r)
		return rec
	}

	t.Run("owner reads record", func(t *testing.T) {
		rec := get(alice, record.ID)
		if rec.Code != http.StatusOK {
			t.Fatalf("Status = %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Data models.AnalysisRecord `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if resp.Data.ID != record.ID {
			t.Errorf("ID = %q, want %q", resp.Data.ID, record.ID)
		}
		if resp.Data.Result.Analysis == nil {
			t.Error("Expected verdict in record")
		}
	})

	t.Run("foreign record reads as absent", func(t *testing.T) {
		rec := get(bob, record.ID)
		if rec.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", rec.Code)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		rec := get(alice, uuid.New().String())
		if rec.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want 404", rec.Code)
		}
	})

	t.Run("malformed id", func(t *testing.T) {
		rec := get(alice, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want 400", rec.Code)
		}
	})
}
