// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package main is the entry point for the Vidsift server.
//
// Vidsift analyzes whether a video is worth a user's attention: given a
// video URL and a preference profile, it extracts metadata (and optionally a
// transcript) through a yt-dlp sidecar, asks an external chat-completion
// model for a verdict, and falls back to a deterministic keyword scorer when
// the model is unavailable. Every analysis is recorded per user and pushed
// to WebSocket subscribers.
//
// # Startup order
//
//  1. Configuration: koanf v2 over defaults, config.yaml, .env, environment
//  2. Logging: zerolog, configured from logging.*
//  3. Database: DuckDB with the users/preferences/history schema
//  4. Bootstrap accounts: admin (session/jwt modes) or the shared anonymous
//     account (auth.mode=none)
//  5. Sessions and tokens: BadgerDB or in-memory session store, JWT manager
//  6. Analysis pipeline: provider -> external model -> heuristic fallback
//  7. Event bus, history writer, WebSocket hub and feed
//  8. Maintenance scheduler: session sweep, history pruning, badger GC
//  9. Supervisor tree: data, messaging, and api layers under suture
//
// # Configuration
//
// Everything is environment-mapped; the full variable table lives in
// internal/config. The short version:
//
//	export AUTH_MODE=session
//	export ADMIN_USERNAME=admin
//	export ADMIN_PASSWORD=change-me-please
//	export PROVIDER_BASE_URL=http://localhost:9008
//	export MODEL_API_KEY=sk-...
//	./vidsift
//
// Development without accounts or a model credential:
//
//	export AUTH_MODE=none
//	./vidsift
//
// With AUTH_MODE=none every request runs as a shared anonymous account; the
// analyzer then relies on the heuristic scorer whenever MODEL_API_KEY is
// unset or still the placeholder value.
//
// # Signal handling
//
// SIGINT and SIGTERM trigger graceful shutdown: the HTTP server drains
// in-flight requests within server.shutdown_timeout, supervised services
// stop in reverse order, and any service that ignores its deadline is named
// in the unstopped-service report.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/vidsift/vidsift/internal/analysis"
	"github.com/vidsift/vidsift/internal/api"
	"github.com/vidsift/vidsift/internal/auth"
	"github.com/vidsift/vidsift/internal/cache"
	"github.com/vidsift/vidsift/internal/config"
	"github.com/vidsift/vidsift/internal/database"
	"github.com/vidsift/vidsift/internal/events"
	"github.com/vidsift/vidsift/internal/logging"
	"github.com/vidsift/vidsift/internal/maintenance"
	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/modelclient"
	"github.com/vidsift/vidsift/internal/models"
	"github.com/vidsift/vidsift/internal/provider"
	"github.com/vidsift/vidsift/internal/supervisor"
	"github.com/vidsift/vidsift/internal/supervisor/services"
	"github.com/vidsift/vidsift/internal/taxonomy"
	"github.com/vidsift/vidsift/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Config is not available yet; the default logger will do.
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("auth_mode", cfg.Auth.Mode).
		Str("analyzer_mode", cfg.Analyzer.Mode).
		Str("db_path", cfg.Database.Path).
		Bool("model_configured", cfg.Model.Configured()).
		Msg("Starting Vidsift")
	metrics.SetAppInfo(api.Version, runtime.Version())

	db, err := database.New(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	anonymous := bootstrapAccounts(ctx, cfg, db)

	sessions, err := auth.NewStore(cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open session store")
	}
	defer func() {
		if err := sessions.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing session store")
		}
	}()

	var tokens *auth.TokenManager
	if cfg.Auth.Mode == config.AuthModeJWT {
		tokens, err = auth.NewTokenManager(cfg.Auth)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT token manager")
		}
		logging.Info().Msg("JWT authentication enabled")
	}

	analyzer, prov := buildPipeline(ctx, cfg)

	verdicts := cache.NewVerdictCache(cfg.Analyzer.CacheTTL)
	bus := events.NewBusWithBuffer(cfg.Events.Buffer)
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()

	writer := events.NewHistoryWriter(bus, db)
	hub := ws.NewHub()
	feed := ws.NewFeed(bus, hub)

	// BadgerDB needs periodic value-log GC; the in-memory store does not.
	var gc maintenance.ValueLogGC
	if badgerStore, ok := sessions.(*auth.BadgerStore); ok {
		gc = badgerStore
	}
	maint, err := maintenance.New(maintenance.Config{
		RetentionDays: cfg.History.RetentionDays,
	}, sessions, db, gc)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to build maintenance scheduler")
	}

	handler := api.NewHandler(cfg, db, analyzer, prov, sessions, tokens, bus, verdicts, hub)
	authMW := api.NewAuthMiddleware(cfg.Auth, sessions, tokens, anonymous)
	router := api.NewRouter(handler, authMW, api.NewChiMiddlewareFromConfig(cfg))

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	if cfg.Server.ShutdownTimeout > 0 {
		treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(maint)
	tree.AddMessagingService(writer)
	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddMessagingService(feed)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context cancelled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Vidsift stopped gracefully")
}

// bootstrapAccounts creates whichever account startup requires: the shared
// anonymous account when authentication is off, or the admin account when
// credentials are configured. Returns the anonymous user, nil outside
// auth.mode=none.
func bootstrapAccounts(ctx context.Context, cfg *config.Config, db *database.DB) *models.User {
	if cfg.Auth.Mode == config.AuthModeNone {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); every request runs as the shared anonymous account")
		logging.Warn().Msg("Use this mode only for local development or isolated networks")

		anonymous, err := db.EnsureAnonymousUser(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create anonymous account")
		}
		return anonymous
	}

	if cfg.Auth.AdminUsername == "" || cfg.Auth.AdminPassword == "" {
		logging.Info().Msg("No admin credentials configured; accounts come from registration only")
		return nil
	}

	hash, err := auth.HashPassword(cfg.Auth.AdminPassword)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to hash admin password")
	}
	created, err := db.EnsureAdminUser(ctx, cfg.Auth.AdminUsername, hash)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to ensure admin account")
	}
	if created {
		logging.Info().Str("username", cfg.Auth.AdminUsername).Msg("Admin account created")
	}
	return nil
}

// buildPipeline assembles the two-stage analysis chain: the external model
// first, the deterministic heuristic scorer as fallback. The provider is
// returned separately so the health endpoints can ping it.
func buildPipeline(ctx context.Context, cfg *config.Config) (*analysis.Orchestrator, *provider.CircuitBreakerProvider) {
	mode, err := analysis.ParseMode(cfg.Analyzer.Mode)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid analyzer mode")
	}

	prov, err := provider.New(cfg.Provider)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create extraction provider")
	}
	if err := prov.Ping(ctx); err != nil {
		logging.Warn().Err(err).Str("base_url", cfg.Provider.BaseURL).
			Msg("Extraction provider unreachable at startup (will retry per request)")
	}

	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Taxonomy.Path).Msg("Failed to load keyword taxonomy")
	}

	model := modelclient.New(cfg.Model)
	if !cfg.Model.Configured() {
		logging.Warn().Msg("No model API key configured; analyses will use the heuristic scorer only")
	}

	timeout := cfg.Model.Timeout
	if mode == analysis.ModeTranscript {
		timeout = cfg.Model.TranscriptTimeout
	}

	external := analysis.NewExternalModelAnalyzer(model, mode, timeout)
	heuristic := analysis.NewHeuristicScorer(tax, mode)
	orchestrator := analysis.NewOrchestrator(mode, prov, prov, external, heuristic)

	logging.Info().
		Str("mode", string(mode)).
		Str("provider", cfg.Provider.Kind).
		Msg("Analysis pipeline assembled")
	return orchestrator, prov
}
