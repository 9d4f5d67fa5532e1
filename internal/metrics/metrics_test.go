// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordAnalysis(t *testing.T) {
	before := testutil.ToFloat64(AnalysisTotal.WithLabelValues("metadata", "heuristic", "true"))

	RecordAnalysis("metadata", "heuristic", true, 50*time.Millisecond)

	after := testutil.ToFloat64(AnalysisTotal.WithLabelValues("metadata", "heuristic", "true"))
	if after != before+1 {
		t.Errorf("analysis_total = %v, want %v", after, before+1)
	}
}

func TestRecordAnalysisFallback(t *testing.T) {
	before := testutil.ToFloat64(AnalysisFallbacks.WithLabelValues("transcript", "external_model"))

	RecordAnalysisFallback("transcript", "external_model")

	after := testutil.ToFloat64(AnalysisFallbacks.WithLabelValues("transcript", "external_model"))
	if after != before+1 {
		t.Errorf("analysis_fallbacks_total = %v, want %v", after, before+1)
	}
}

func TestRecordDBQuery(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		table     string
		err       error
		wantErrs  float64
	}{
		{
			name:      "successful query",
			operation: "select",
			table:     "users",
			err:       nil,
			wantErrs:  0,
		},
		{
			name:      "failed query",
			operation: "insert",
			table:     "analysis_history",
			err:       errors.New("constraint violation"),
			wantErrs:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))

			RecordDBQuery(tt.operation, tt.table, 5*time.Millisecond, tt.err)

			after := testutil.ToFloat64(DBQueryErrors.WithLabelValues(tt.operation, tt.table))
			if after-before != tt.wantErrs {
				t.Errorf("duckdb_query_errors_total delta = %v, want %v", after-before, tt.wantErrs)
			}
		})
	}
}

func TestRecordProviderRequest(t *testing.T) {
	before := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("ytdlp", "info", "error"))

	RecordProviderRequest("ytdlp", "info", 100*time.Millisecond, errors.New("upstream 502"))

	after := testutil.ToFloat64(ProviderRequestsTotal.WithLabelValues("ytdlp", "info", "error"))
	if after != before+1 {
		t.Errorf("provider_requests_total = %v, want %v", after, before+1)
	}
}

func TestTrackActiveRequest(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests); got != before+1 {
		t.Errorf("api_active_requests after inc = %v, want %v", got, before+1)
	}

	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("api_active_requests after dec = %v, want %v", got, before)
	}
}

func TestRecordCacheHitMiss(t *testing.T) {
	hitsBefore := testutil.ToFloat64(CacheHits.WithLabelValues("verdict"))
	missesBefore := testutil.ToFloat64(CacheMisses.WithLabelValues("verdict"))

	RecordCacheHit("verdict")
	RecordCacheMiss("verdict")
	RecordCacheMiss("verdict")

	if got := testutil.ToFloat64(CacheHits.WithLabelValues("verdict")); got != hitsBefore+1 {
		t.Errorf("cache_hits_total = %v, want %v", got, hitsBefore+1)
	}
	if got := testutil.ToFloat64(CacheMisses.WithLabelValues("verdict")); got != missesBefore+2 {
		t.Errorf("cache_misses_total = %v, want %v", got, missesBefore+2)
	}
}

func TestRecordMaintenanceRun(t *testing.T) {
	before := testutil.ToFloat64(MaintenanceRuns.WithLabelValues("session_sweep", "error"))

	RecordMaintenanceRun("session_sweep", time.Second, errors.New("store closed"))

	after := testutil.ToFloat64(MaintenanceRuns.WithLabelValues("session_sweep", "error"))
	if after != before+1 {
		t.Errorf("maintenance_runs_total = %v, want %v", after, before+1)
	}
}

func TestSessionMetrics(t *testing.T) {
	expiredBefore := testutil.ToFloat64(SessionsExpired)

	RecordSessionsExpired(3)
	SetSessionsActive(7)

	if got := testutil.ToFloat64(SessionsExpired); got != expiredBefore+3 {
		t.Errorf("sessions_expired_total = %v, want %v", got, expiredBefore+3)
	}
	if got := testutil.ToFloat64(SessionsActive); got != 7 {
		t.Errorf("sessions_active = %v, want 7", got)
	}
}

func TestWSMetrics(t *testing.T) {
	sentBefore := testutil.ToFloat64(WSMessagesSent)

	SetWSConnections(2)
	RecordWSMessagesSent(5)

	if got := testutil.ToFloat64(WSConnections); got != 2 {
		t.Errorf("websocket_connections = %v, want 2", got)
	}
	if got := testutil.ToFloat64(WSMessagesSent); got != sentBefore+5 {
		t.Errorf("websocket_messages_sent_total = %v, want %v", got, sentBefore+5)
	}
}

func TestAppMetrics(t *testing.T) {
	SetAppInfo("1.0.0", "go1.25")
	SetAppUptime(90 * time.Second)

	if got := testutil.ToFloat64(AppInfo.WithLabelValues("1.0.0", "go1.25")); got != 1 {
		t.Errorf("app_info = %v, want 1", got)
	}
	if got := testutil.ToFloat64(AppUptime); got != 90 {
		t.Errorf("app_uptime_seconds = %v, want 90", got)
	}
}
