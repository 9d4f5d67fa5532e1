// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vidsift/vidsift/internal/metrics"
	"github.com/vidsift/vidsift/internal/middleware"
)

// Router wires handlers, authentication, and the Chi middleware stack into
// the served http.Handler.
type Router struct {
	handler *Handler
	authMW  *AuthMiddleware
	chiMW   *ChiMiddleware
}

// NewRouter creates a router from its middleware and handler set.
func NewRouter(handler *Handler, authMW *AuthMiddleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler: handler,
		authMW:  authMW,
		chiMW:   chiMW,
	}
}

// chiMiddleware adapts an http.HandlerFunc-based middleware to Chi's
// http.Handler-based middleware signature.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Setup configures all HTTP routes.
//
// Group layout, outermost first: request ID and logging context, real IP,
// panic recovery, and CORS apply globally; each route group then adds its own
// rate limit, security headers, metrics, and authentication.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMW.CORS())

	// Health endpoints: no auth, permissive rate limit so monitoring can
	// poll freely.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Auth endpoints: strict limits against credential stuffing. Only /me
	// requires an authenticated principal.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Post("/register", router.handler.Register)
		r.With(router.chiMW.RateLimitLogin()).Post("/login", router.handler.Login)
		r.Post("/logout", router.handler.Logout)
		r.With(chiMiddleware(router.authMW.Authenticate)).Get("/me", router.handler.Me)
	})

	// Preference profile, authenticated.
	r.Route("/api/v1/preferences", func(r chi.Router) {
		r.Use(router.chiMW.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Get("/", router.handler.PreferencesGet)
		r.Put("/", router.handler.PreferencesPut)
	})

	// Analysis pipeline and history, authenticated. Submissions carry their
	// own tighter limit since each one can cost a provider round trip plus
	// a model call.
	r.Route("/api/v1/analysis", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.With(router.chiMW.RateLimitAnalyze()).Post("/", router.handler.AnalysisCreate)
		r.With(router.chiMW.RateLimit()).Get("/history", router.handler.AnalysisHistory)
		r.With(router.chiMW.RateLimit()).Get("/{id}", router.handler.AnalysisGet)
	})

	// Real-time feed, authenticated; the limit bounds upgrade attempts.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMW.RateLimitWebSocket())
		r.Use(chiMiddleware(router.authMW.Authenticate))
		r.Get("/", router.handler.WebSocket)
	})

	// Prometheus scrape endpoint, outside /api/v1 by convention. Each scrape
	// refreshes the uptime gauge.
	scrape := promhttp.Handler()
	r.Handle("/metrics", http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		metrics.SetAppUptime(time.Since(router.handler.startTime))
		scrape.ServeHTTP(w, req)
	}))

	return r
}
