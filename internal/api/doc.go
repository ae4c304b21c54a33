// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package api exposes the recommendation engine over HTTP.
//
// The package wires a chi router around a single Handler that owns the
// engine dependencies (scorer, feedback store, weight sync manager) and
// the live dispatch hub. Every endpoint responds with the shared JSON
// envelope {success, data, error, meta}; list endpoints add pagination
// metadata.
//
// # Layout
//
//   - handlers.go: Handler struct, constructor, WebSocket origin checks
//   - handlers_score.go: POST /api/v1/score
//   - handlers_feedback.go: feedback recording, stats, events, reinforce
//   - handlers_weights.go: profile and effective weight reads
//   - handlers_kpi.go: impression/selection tracking and analytics export
//   - handlers_sync.go: backend and long-term sync triggers, sync status
//   - handlers_auth.go: login (JWT)
//   - handlers_health.go: health, liveness, readiness, performance stats
//   - handlers_websocket.go: WebSocket upgrade into the dispatch hub
//   - chi_middleware.go: CORS, rate limit classes, security headers
//   - chi_router.go: route tree assembly
//   - response.go: response envelope and ResponseWriter
//   - requests.go: request bodies with validation tags
//
// # Middleware stack
//
// Global: request-id with logging context, RealIP, Recoverer, CORS.
// Per group: endpoint-class rate limits (login strictest), security
// headers, Prometheus HTTP metrics, and JWT authentication on every
// data endpoint. Auth mode "none" disables enforcement for local
// development and is refused by config validation in production.
package api
