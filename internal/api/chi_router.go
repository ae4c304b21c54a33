// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/presage/internal/auth"
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler, so the HandlerFunc-style middleware
// (PrometheusMetrics, Compression) works with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router handles HTTP routing for the API.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router over the handler and auth middleware. The
// Chi middleware factory is built from the handler's security
// configuration; a handler without configuration gets the secure
// defaults (no CORS origins, rate limiting on).
func NewRouter(handler *Handler, authMiddleware *auth.Middleware) *Router {
	var security *config.SecurityConfig
	if handler != nil && handler.config != nil {
		security = &handler.config.Security
	}

	return &Router{
		handler:       handler,
		middleware:    authMiddleware,
		chiMiddleware: NewChiMiddlewareFromSecurity(security),
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	// Applied to ALL routes in order
	r.Use(RequestIDWithLogging())      // Add X-Request-ID header with logging context
	r.Use(chimiddleware.RealIP)        // Extract real IP from X-Forwarded-For
	r.Use(chimiddleware.Recoverer)     // Recover from panics
	r.Use(router.chiMiddleware.CORS()) // CORS must be global to handle OPTIONS preflight

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusNotFound, ErrCodeNotFound, "Resource not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
	})

	// ========================
	// Health Endpoints
	// ========================
	// Permissive rate limiting allows frequent probe polling.
	// The performance endpoint exposes internal latency data, so it
	// additionally requires authentication.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
		r.With(router.middleware.Authenticate).Get("/performance", router.handler.HealthPerformance)
		r.Get("/", router.handler.Health)
	})

	// ========================
	// Authentication Endpoints
	// ========================
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())

		// Login has the strictest rate limiting (5 attempts per 5 minutes)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	// ========================
	// Scoring
	// ========================
	// The hot path: a preset picker re-scores on every context change.
	r.Route("/api/v1/score", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitScore())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.perfMon.Middleware)
		r.Use(router.middleware.Authenticate)

		r.Post("/", router.handler.Score)
	})

	// ========================
	// Feedback
	// ========================
	r.Route("/api/v1/feedback", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.perfMon.Middleware)
		r.Use(router.middleware.Authenticate)

		r.Post("/implicit", router.handler.FeedbackImplicit)
		r.Post("/explicit", router.handler.FeedbackExplicit)
		r.Get("/stats", router.handler.FeedbackStatsAll)
		r.Get("/stats/{presetID}", router.handler.FeedbackStats)
		r.Get("/filtered", router.handler.FeedbackFiltered)
		r.Get("/events", router.handler.FeedbackEvents)
	})

	// ========================
	// Manual Reinforcement (admin)
	// ========================
	r.Route("/api/v1/reinforce", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.middleware.Authenticate)
		r.Use(router.middleware.RequireAdmin)

		r.Post("/", router.handler.Reinforce)
	})

	// ========================
	// Weight Profiles
	// ========================
	r.Route("/api/v1/weights", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.handler.perfMon.Middleware)
		r.Use(router.middleware.Authenticate)

		r.Get("/profiles", router.handler.WeightProfiles)
		r.Get("/effective/{profile}", router.handler.WeightsEffective)
	})

	// ========================
	// KPI Tracking
	// ========================
	// Reset clears the measurement session and is admin only.
	r.Route("/api/v1/kpi", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWrite())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.middleware.Authenticate)

		r.Get("/", router.handler.KPI)
		r.Post("/impressions", router.handler.KPIImpressions)
		r.Post("/selections", router.handler.KPISelections)
		r.With(router.middleware.RequireAdmin).Post("/reset", router.handler.KPIReset)
	})

	// ========================
	// Analytics Export
	// ========================
	// Strict rate limiting: the export serializes the full feedback
	// history. Compressed because the document grows with usage.
	r.Route("/api/v1/analytics", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitExport())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.middleware.Authenticate)
		r.Use(chiMiddleware(middleware.Compression))

		r.Get("/export", router.handler.AnalyticsExport)
	})

	// ========================
	// Sync Triggers and Status
	// ========================
	r.Route("/api/v1/sync", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitSync())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(router.middleware.Authenticate)

		r.Post("/backend", router.handler.SyncBackend)
		r.Post("/longterm", router.handler.SyncLongTerm)
		r.Get("/status", router.handler.SyncStatus)
	})

	// ========================
	// WebSocket
	// ========================
	// Browser WebSocket clients cannot set Authorization headers, so
	// the auth middleware also accepts the token cookie.
	r.Route("/api/v1/ws", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitWebSocket())
		r.Use(router.middleware.Authenticate)

		r.Get("/", router.handler.WebSocket)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
