// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/presage/internal/auth"
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/dispatch"
	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/middleware"
	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/weightsync"
)

// Handler contains dependencies for API handlers.
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct, constructor, WebSocket origin check
//   - handlers_helpers.go: shared helper functions
//   - handlers_score.go: scoring endpoint
//   - handlers_feedback.go: feedback recording, stats, events
//   - handlers_weights.go: weight profile reads
//   - handlers_kpi.go: KPI tracking and analytics export
//   - handlers_sync.go: sync triggers and status
//   - handlers_auth.go: login
//   - handlers_health.go: health and performance endpoints
//   - handlers_websocket.go: WebSocket upgrade
type Handler struct {
	config       *config.Config
	scorer       *recommend.Scorer
	store        *feedback.Store
	manager      *weightsync.Manager
	jwtManager   *auth.JWTManager
	credentials  *auth.CredentialStore
	loginLimiter *auth.LoginLimiter
	hub          *dispatch.Hub
	startTime    time.Time
	perfMon      *middleware.PerformanceMonitor
}

// NewHandler creates a new API handler with all required dependencies.
//
// Dependencies:
//   - cfg: application configuration
//   - scorer: recommendation scorer
//   - store: feedback store (shared with the manager)
//   - manager: weight sync manager
//   - jwtManager: JWT token manager, nil when auth mode is "none"
//   - hub: dispatch hub for live broadcasts, nil disables broadcasting
//
// The credential store is built from the configured admin credentials in
// jwt mode; a failure leaves it nil and login responds with
// AUTH_NOT_CONFIGURED. The handler also initializes a performance
// monitor tracking the last 1000 requests.
//
// Example:
//
//	handler := api.NewHandler(cfg, scorer, store, manager, jwtManager, hub)
//	router := api.NewRouter(handler, authMiddleware)
//	http.ListenAndServe(":8475", router.SetupChi())
func NewHandler(cfg *config.Config, scorer *recommend.Scorer, store *feedback.Store, manager *weightsync.Manager, jwtManager *auth.JWTManager, hub *dispatch.Hub) *Handler {
	var credentials *auth.CredentialStore
	var loginLimiter *auth.LoginLimiter
	if cfg != nil && cfg.Security.AuthMode == auth.ModeJWT {
		store, err := auth.NewCredentialStore(
			cfg.Security.AdminUsername,
			cfg.Security.AdminPassword,
			cfg.Security.BcryptCost,
		)
		if err != nil {
			logging.Warn().Err(err).Msg("Credential store initialization failed; login disabled")
		} else {
			credentials = store
		}
		loginLimiter = auth.NewLoginLimiter(cfg.Security.LoginRatePerMinute, cfg.Security.LoginBurst)
	}

	return &Handler{
		config:       cfg,
		scorer:       scorer,
		store:        store,
		manager:      manager,
		jwtManager:   jwtManager,
		credentials:  credentials,
		loginLimiter: loginLimiter,
		hub:          hub,
		startTime:    time.Now(),
		perfMon:      middleware.NewPerformanceMonitor(1000), // Keep last 1000 requests
	}
}

// PerformanceMonitor returns the handler's request performance monitor
// for router wiring.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// Close releases handler-owned background resources.
func (h *Handler) Close() {
	if h.loginLimiter != nil {
		h.loginLimiter.Stop()
	}
}

// getUpgrader creates a WebSocket upgrader with proper origin checking
// and a handshake timeout against slow-client attacks.
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

	// Legitimate browser WebSockets always include Origin; allowing an
	// empty Origin would bypass CORS entirely.
	if origin == "" {
		logging.Warn().Msg("WebSocket connection rejected: missing Origin header")
		return false
	}

	// If config is nil, allow by default (fail open for tests/development)
	if h.config == nil {
		return true
	}

	for _, allowedOrigin := range h.config.Security.CORSOrigins {
		if allowedOrigin == "*" || allowedOrigin == origin {
			return true
		}
	}

	// Origin not in allowed list - sanitize origin to prevent log injection
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("WebSocket connection rejected from unauthorized origin")
	return false
}
