// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tomtom215/presage/internal/config"
)

func testSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		JWTSecret:      "this_is_a_very_long_secret_key_for_testing_purposes_12345",
		SessionTimeout: time.Hour,
	}
}

func TestNewJWTManager(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.SecurityConfig
		wantErr bool
	}{
		{
			name:    "valid secret",
			cfg:     testSecurityConfig(),
			wantErr: false,
		},
		{
			name: "empty secret",
			cfg: &config.SecurityConfig{
				JWTSecret:      "",
				SessionTimeout: 24 * time.Hour,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			manager, err := NewJWTManager(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Error("NewJWTManager() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Errorf("NewJWTManager() unexpected error = %v", err)
				return
			}
			if manager == nil {
				t.Error("NewJWTManager() returned nil manager")
			}
		})
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	token, err := manager.GenerateToken("admin", RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatal("GenerateToken() returned empty token")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("Username = %s, want admin", claims.Username)
	}
	if claims.Role != RoleAdmin {
		t.Errorf("Role = %s, want %s", claims.Role, RoleAdmin)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Error("token expiry not bounded by session timeout")
	}
}

func TestValidateToken_Rejections(t *testing.T) {
	manager, err := NewJWTManager(testSecurityConfig())
	if err != nil {
		t.Fatalf("NewJWTManager() error = %v", err)
	}

	t.Run("garbage token", func(t *testing.T) {
		if _, err := manager.ValidateToken("not.a.token"); err == nil {
			t.Error("ValidateToken() accepted garbage")
		}
	})

	t.Run("tampered payload", func(t *testing.T) {
		token, err := manager.GenerateToken("admin", RoleAdmin)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		parts := strings.Split(token, ".")
		tampered := parts[0] + ".eyJ1c2VybmFtZSI6ImV2aWwifQ." + parts[2]
		if _, err := manager.ValidateToken(tampered); err == nil {
			t.Error("ValidateToken() accepted tampered token")
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewJWTManager(&config.SecurityConfig{
			JWTSecret:      "a_completely_different_secret_also_long_enough_xyz",
			SessionTimeout: time.Hour,
		})
		if err != nil {
			t.Fatalf("NewJWTManager() error = %v", err)
		}
		token, err := other.GenerateToken("admin", RoleAdmin)
		if err != nil {
			t.Fatalf("GenerateToken() error = %v", err)
		}
		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("ValidateToken() accepted token signed with another secret")
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
			Username: "admin",
			Role:     RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
				IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		})
		signed, err := expired.SignedString([]byte(testSecurityConfig().JWTSecret))
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		_, err = manager.ValidateToken(signed)
		if err == nil {
			t.Fatal("ValidateToken() accepted expired token")
		}
		if !strings.Contains(err.Error(), "expired") {
			t.Errorf("error = %v, want expiration error", err)
		}
	})

	t.Run("unsigned algorithm", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			Username: "admin",
			Role:     RoleAdmin,
		})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("SignedString() error = %v", err)
		}
		if _, err := manager.ValidateToken(token); err == nil {
			t.Error("ValidateToken() accepted unsigned token")
		}
	})
}
