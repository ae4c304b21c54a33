// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/auth"
	"github.com/tomtom215/presage/internal/logging"
)

// Login handles POST /api/v1/auth/login.
//
// The attempt limiter runs after the mode checks: only real credential
// attempts consume budget, and it guards even when the route-level rate
// limiting is disabled behind a reverse proxy.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if h.config == nil || h.config.Security.AuthMode != auth.ModeJWT {
		rw.Error(http.StatusForbidden, "AUTH_DISABLED", "Authentication is disabled")
		return
	}
	if h.jwtManager == nil || h.credentials == nil {
		rw.Error(http.StatusInternalServerError, "AUTH_NOT_CONFIGURED", "Authentication is not properly configured")
		return
	}

	ip := clientIP(r)
	if h.loginLimiter != nil && !h.loginLimiter.Allow(ip) {
		logging.Warn().Str("ip", ip).Msg("Login attempt limit exceeded")
		rw.TooManyRequests("Too many login attempts, try again later")
		return
	}

	role, ok := h.credentials.Verify(req.Username, req.Password)
	if !ok {
		logging.Warn().
			Str("username", sanitizeLogValue(req.Username)).
			Str("ip", ip).
			Msg("Login failed")
		rw.Error(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
		return
	}

	token, err := h.jwtManager.GenerateToken(req.Username, role)
	if err != nil {
		logging.Error().Err(err).Msg("Token generation failed")
		rw.InternalError("Failed to generate token")
		return
	}

	expiresAt := time.Now().Add(h.config.Security.SessionTimeout)
	h.setAuthCookie(w, r, token, expiresAt)

	logging.Info().
		Str("username", sanitizeLogValue(req.Username)).
		Str("role", role).
		Msg("Login successful")

	rw.Success(LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Username:  req.Username,
		Role:      role,
	})
}

// setAuthCookie carries the JWT in an HTTP-only cookie for clients that
// do not manage Authorization headers.
func (h *Handler) setAuthCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}
