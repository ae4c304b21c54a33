// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/weightsync"
)

// healthStatus is the payload of GET /api/v1/health.
type healthStatus struct {
	Status           string                     `json:"status"`
	Version          string                     `json:"version"`
	UptimeSeconds    float64                    `json:"uptime_seconds"`
	Engine           *recommend.ScorerMetrics   `json:"engine,omitempty"`
	Feedback         *feedbackHealth            `json:"feedback,omitempty"`
	Weights          *weightsync.ManagerMetrics `json:"weights,omitempty"`
	Sync             *weightsync.SyncState      `json:"sync,omitempty"`
	WebSocketClients int                        `json:"websocket_clients"`
}

// feedbackHealth summarizes the feedback store for health reporting.
type feedbackHealth struct {
	Events          int `json:"events"`
	TrackedPresets  int `json:"tracked_presets"`
	FilteredPresets int `json:"filtered_presets"`
}

// Health handles GET /api/v1/health. The engine runs in-process, so
// "degraded" means a core component was never wired, not a lost
// connection.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	status := "healthy"
	if h.scorer == nil || h.store == nil || h.manager == nil {
		status = "degraded"
	}

	health := healthStatus{
		Status:        status,
		Version:       "1.0.0",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.scorer != nil {
		m := h.scorer.Metrics()
		health.Engine = &m
	}
	if h.store != nil {
		health.Feedback = &feedbackHealth{
			Events:          h.store.EventCount(),
			TrackedPresets:  len(h.store.AllStats()),
			FilteredPresets: len(h.store.FilteredPresets()),
		}
	}
	if h.manager != nil {
		m := h.manager.Metrics()
		health.Weights = &m
		s := h.manager.SyncStatus()
		health.Sync = &s
	}
	if h.hub != nil {
		health.WebSocketClients = h.hub.GetClientCount()
	}

	rw.Success(health)
}

// HealthLive handles GET /api/v1/health/live (Kubernetes liveness).
// Returns 200 whenever the process is alive, regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(map[string]interface{}{
		"alive":  true,
		"uptime": time.Since(h.startTime).Seconds(),
	})
}

// HealthReady handles GET /api/v1/health/ready (Kubernetes readiness).
// Returns 503 until the scorer, feedback store, and weight manager are
// all wired.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	ready := h.scorer != nil && h.store != nil && h.manager != nil
	data := map[string]interface{}{
		"ready_to_serve": ready,
		"uptime":         time.Since(h.startTime).Seconds(),
	}

	if ready {
		rw.Success(data)
		return
	}

	rw.writeJSON(http.StatusServiceUnavailable, APIResponse{
		Success: false,
		Data:    data,
		Error: &APIError{
			Code:    ErrCodeServiceUnavailable,
			Message: "Service is not ready",
		},
	})
}

// HealthPerformance handles GET /api/v1/health/performance. The response
// holds per-endpoint latency aggregates from the rolling request window;
// ?recent=N appends the last N raw requests, capped at 100.
func (h *Handler) HealthPerformance(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	if h.perfMon == nil {
		rw.ServiceUnavailable("Performance monitoring is not enabled")
		return
	}

	data := map[string]interface{}{
		"endpoints": h.perfMon.GetStats(),
	}
	if recent := getIntParam(r, "recent", 0); recent > 0 {
		if recent > 100 {
			recent = 100
		}
		data["recent"] = h.perfMon.GetRecentMetrics(recent)
	}

	rw.Success(data)
}
