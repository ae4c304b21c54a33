// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestMiddleware(t *testing.T) (*Middleware, *JWTManager) {
	t.Helper()

	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}
	middleware, err := NewMiddleware(manager, ModeJWT)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}
	return middleware, manager
}

func okHandler(claims **Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims != nil {
			got, _ := ClaimsFromContext(r.Context())
			*claims = got
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewMiddleware_JWTModeRequiresManager(t *testing.T) {
	if _, err := NewMiddleware(nil, ModeJWT); err == nil {
		t.Error("NewMiddleware() accepted jwt mode without manager")
	}
	if _, err := NewMiddleware(nil, ModeNone); err != nil {
		t.Errorf("NewMiddleware() mode none error = %v", err)
	}
}

func TestAuthenticate_ModeNone(t *testing.T) {
	middleware, err := NewMiddleware(nil, ModeNone)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	middleware.Authenticate(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestAuthenticate_BearerToken(t *testing.T) {
	middleware, manager := newTestMiddleware(t)

	token, err := manager.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var claims *Claims
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	middleware.Authenticate(okHandler(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if claims == nil {
		t.Fatal("claims not stored in request context")
	}
	if claims.Username != "admin" || claims.Role != RoleAdmin {
		t.Errorf("claims = %s/%s, want admin/%s", claims.Username, claims.Role, RoleAdmin)
	}
}

func TestAuthenticate_CookieToken(t *testing.T) {
	middleware, manager := newTestMiddleware(t)

	token, err := manager.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	var claims *Claims
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	middleware.Authenticate(okHandler(&claims)).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if claims == nil || claims.Username != "admin" {
		t.Error("cookie token did not produce context claims")
	}
}

func TestAuthenticate_Rejections(t *testing.T) {
	middleware, _ := newTestMiddleware(t)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		Username: "admin",
		Role:     RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	expiredToken, err := expired.SignedString([]byte(testSecurityConfig().JWTSecret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantBody string
	}{
		{
			name:     "missing token",
			header:   "",
			wantBody: "authentication required",
		},
		{
			name:     "malformed token",
			header:   "Bearer not.a.token",
			wantBody: "invalid credentials",
		},
		{
			name:     "wrong scheme",
			header:   "Basic YWRtaW46cGFzcw==",
			wantBody: "authentication required",
		},
		{
			name:     "expired token",
			header:   "Bearer " + expiredToken,
			wantBody: "credentials expired",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/recommendations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			middleware.Authenticate(okHandler(nil)).ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want substring %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	middleware, manager := newTestMiddleware(t)

	tests := []struct {
		name     string
		role     string
		wantCode int
	}{
		{
			name:     "admin allowed",
			role:     RoleAdmin,
			wantCode: http.StatusOK,
		},
		{
			name:     "viewer forbidden",
			role:     RoleViewer,
			wantCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := manager.GenerateToken("user", tt.role)
			if err != nil {
				t.Fatalf("GenerateToken() error = %v", err)
			}

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/kpi/reset", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			middleware.Authenticate(middleware.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
		})
	}
}

func TestRequireAdmin_ModeNone(t *testing.T) {
	middleware, err := NewMiddleware(nil, ModeNone)
	if err != nil {
		t.Fatalf("NewMiddleware() error = %v", err)
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kpi/reset", nil)
	middleware.Authenticate(middleware.RequireAdmin(okHandler(nil))).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRequireAdmin_NoClaims(t *testing.T) {
	middleware, _ := newTestMiddleware(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/kpi/reset", nil)
	middleware.RequireAdmin(okHandler(nil)).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}
