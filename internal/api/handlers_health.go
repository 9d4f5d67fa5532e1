// Vidsift - Video Suitability Analysis Engine
// Copyright 2026 The Vidsift Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vidsift/vidsift

package api

import (
	"net/http"
	"time"

	"github.com/vidsift/vidsift/internal/models"
)

// Health returns the detailed health report: dependency reachability, the
// configured analyzer mode, and uptime. It always answers 200; degraded
// states are reported in the body, not the status code.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	providerConnected := h.provider != nil && h.provider.Ping(r.Context()) == nil

	status := "healthy"
	if !dbConnected || !providerConnected {
		status = "degraded"
	}

	mode := ""
	modelConfigured := false
	if h.config != nil {
		mode = h.config.Analyzer.Mode
		modelConfigured = h.config.Model.Configured()
	}
	if h.analyzer != nil {
		mode = string(h.analyzer.Mode())
	}

	wsClients := 0
	if h.wsHub != nil {
		wsClients = h.wsHub.GetClientCount()
	}

	health := models.HealthStatus{
		Status:            status,
		Version:           Version,
		Mode:              mode,
		DatabaseConnected: dbConnected,
		ProviderConnected: providerConnected,
		ModelConfigured:   modelConfigured,
		ActiveWSClients:   wsClients,
		Uptime:            time.Since(h.startTime).Seconds(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive handles liveness probe requests (Kubernetes-style).
// Returns 200 OK if the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady handles readiness probe requests (Kubernetes-style).
// Ready means both the database and the extraction provider answer a ping;
// anything less returns 503 so the load balancer stops routing here.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	providerConnected := h.provider != nil && h.provider.Ping(r.Context()) == nil
	ready := dbConnected && providerConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"provider_connected": providerConnected,
			"ready_to_serve":     ready,
			"uptime":             time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
