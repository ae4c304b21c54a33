// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/presage/internal/logging"
)

type contextKey string

// ClaimsContextKey is the context key under which validated claims are stored.
const ClaimsContextKey contextKey = "claims"

// Auth modes accepted by the middleware.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

// tokenCookie is the cookie checked when no Authorization header is present.
const tokenCookie = "token"

// Authentication errors distinguished by the HTTP error mapping.
var (
	ErrNoCredentials      = errors.New("no credentials provided")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrExpiredCredentials = errors.New("credentials expired")
)

// Middleware enforces bearer-token authentication on API routes.
type Middleware struct {
	jwtManager *JWTManager
	mode       string
}

// NewMiddleware creates authentication middleware for the given mode.
// Mode "none" disables authentication and is refused by config
// validation in production. Mode "jwt" requires a JWTManager.
func NewMiddleware(jwtManager *JWTManager, mode string) (*Middleware, error) {
	if mode == ModeJWT && jwtManager == nil {
		return nil, errors.New("JWT manager required for jwt auth mode")
	}
	return &Middleware{
		jwtManager: jwtManager,
		mode:       mode,
	}, nil
}

// Authenticate enforces authentication and stores the validated claims
// in the request context.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.authenticate(r)
		if err != nil {
			handleAuthError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin enforces the admin role. It must run inside Authenticate.
func (m *Middleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			next.ServeHTTP(w, r)
			return
		}

		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "Forbidden: invalid authentication", http.StatusForbidden)
			return
		}
		if claims.Role != RoleAdmin {
			http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the validated claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return claims, ok
}

// authenticate extracts and validates the bearer token.
func (m *Middleware) authenticate(r *http.Request) (*Claims, error) {
	tokenStr := extractToken(r)
	if tokenStr == "" {
		return nil, ErrNoCredentials
	}

	claims, err := m.jwtManager.ValidateToken(tokenStr)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredCredentials
		}
		return nil, ErrInvalidCredentials
	}

	return claims, nil
}

// extractToken extracts the bearer token from Authorization header or cookie.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token := strings.TrimSpace(parts[1])
			if token != "" {
				return token
			}
		}
	}

	cookie, err := r.Cookie(tokenCookie)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	return ""
}

// handleAuthError sends the appropriate HTTP error response for auth errors.
func handleAuthError(w http.ResponseWriter, err error) {
	logging.Debug().Err(err).Msg("Authentication failed")

	switch {
	case errors.Is(err, ErrNoCredentials):
		http.Error(w, "Unauthorized: authentication required", http.StatusUnauthorized)
	case errors.Is(err, ErrExpiredCredentials):
		http.Error(w, "Unauthorized: credentials expired", http.StatusUnauthorized)
	default:
		http.Error(w, "Unauthorized: invalid credentials", http.StatusUnauthorized)
	}
}
