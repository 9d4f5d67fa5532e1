// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vidsift/vidsift/internal/analysis"
	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/cache"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/models"
	"github.com/vidsift/vidsift/internal/ws"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// VideoAnalyzer runs the analysis pipeline for one video. The production
// implementation is analysis.Orchestrator; tests substitute stubs.
type VideoAnalyzer interface {
	AnalyzeVideo(ctx context.Context, videoURL string, prefs models.UserPreferences) *models.AnalysisResult
	Mode() analysis.Mode
}

// ProviderPinger reports extraction-sidecar reachability for health checks.
type ProviderPinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the HTTP handlers and their dependencies. Nil dependencies
// degrade the affected endpoints to 5xx envelopes instead of panicking, which
// keeps partially wired test setups usable.
type Handler struct {
	db        *database.DB
	config    *config.Config
	analyzer  VideoAnalyzer
	provider  ProviderPinger
	sessions  auth.Store
	tokens    *auth.TokenManager
	bus       *events.Bus
	verdicts  *cache.VerdictCache
	wsHub     *ws.Hub
	startTime time.Time
}

// NewHandler creates the API handler set.
func NewHandler(cfg *config.Config, db *database.DB, analyzer VideoAnalyzer, provider ProviderPinger, sessions auth.Store, tokens *auth.TokenManager, bus *events.Bus, verdicts *cache.VerdictCache, wsHub *ws.Hub) *Handler {
	return &Handler{
		db:        db,
		config:    cfg,
		analyzer:  analyzer,
		provider:  provider,
		sessions:  sessions,
		tokens:    tokens,
		bus:       bus,
		verdicts:  verdicts,
		wsHub:     wsHub,
		startTime: time.Now(),
	}
}

// getUpgrader creates a WebSocket upgrader with origin checking and a
// handshake timeout against slow-client attacks.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates WebSocket connection origins.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	// Browser WebSockets always send Origin; only non-browser clients omit
	// it. An empty Origin would bypass CORS entirely, so reject it.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// No config means a test harness; fail open there.
	if h.config == nil {
		return true
	}

	for _, allowed := range h.config.CORS.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
