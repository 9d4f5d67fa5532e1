// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

// Package api implements the HTTP surface of the engine: a Chi router with
// per-group rate limits, authentication middleware for the three auth modes,
// and the handlers for accounts, preferences, analysis, history, health, and
// the WebSocket feed.
//
// Every endpoint responds with the models.APIResponse envelope. Handlers are
// plain http.HandlerFunc methods on Handler; cross-cutting concerns (request
// IDs, CORS, rate limiting, security headers, Prometheus metrics, identity)
// live in middleware so the handlers stay focused on request semantics.
package api
