// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for request ID tracking
and Prometheus metrics instrumentation. These components work alongside the
router-level middleware (CORS, rate limiting, authentication) in internal/api
to form the complete request processing stack.

Key Components:

  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Usage Example - Request ID:

	http.HandleFunc("/api/v1/analysis",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    ...
	}

Usage Example - Prometheus Metrics:

	http.HandleFunc("/api/v1/analysis",
	    middleware.PrometheusMetrics(handler),
	)

The request ID middleware also populates the logging context, so every
log line emitted while serving a request carries request_id and
correlation_id fields.

Performance Characteristics:

  - Metrics overhead: <0.1ms per request
  - Request ID overhead: <0.01ms (UUID generation)

Thread Safety:

All middleware components are thread-safe:
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: Chi router and handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
  - internal/logging: Context-aware structured logging
*/
package middleware
