// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

/*
Package metrics provides Prometheus metrics collection and export for
observability.

All metrics are registered with the default registry via promauto at package
load and exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Analysis pipeline:
  - analysis_total: Completed analyses (counter)
    Labels: mode, strategy, suitable
  - analysis_duration_seconds: End-to-end analysis latency (histogram)
  - analysis_fallbacks_total: Strategies skipped as unavailable (counter)
  - analysis_match_score: Verdict score distribution (histogram)

External calls:
  - model_requests_total / model_request_duration_seconds
  - provider_requests_total / provider_request_duration_seconds
  - circuit_breaker_state, circuit_breaker_requests_total,
    circuit_breaker_state_transitions_total

HTTP and storage:
  - api_requests_total, api_request_duration_seconds, api_active_requests
  - duckdb_query_duration_seconds, duckdb_query_errors_total
  - cache_hits_total, cache_misses_total, cache_evictions_total

Background:
  - websocket_connections, websocket_messages_sent_total
  - events_published_total, events_dropped_total
  - sessions_active, sessions_expired_total
  - maintenance_runs_total, maintenance_duration_seconds

# Usage

Use the Record helpers rather than touching collectors directly, so label
conventions stay in one place:

	start := time.Now()
	err := store.SaveRecord(ctx, rec)
	metrics.RecordDBQuery("insert", "analysis_history", time.Since(start), err)
*/
package metrics
