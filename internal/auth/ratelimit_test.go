// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"testing"
	"time"
)

func TestLoginLimiter_BurstThenDeny(t *testing.T) {
	limiter := NewLoginLimiter(10, 3)
	defer limiter.Stop()

	for i := 0; i < 3; i++ {
		if !limiter.Allow("192.0.2.1") {
			t.Fatalf("attempt %d denied within burst", i+1)
		}
	}
	if limiter.Allow("192.0.2.1") {
		t.Error("attempt beyond burst allowed")
	}
}

func TestLoginLimiter_PerIP(t *testing.T) {
	limiter := NewLoginLimiter(10, 1)
	defer limiter.Stop()

	if !limiter.Allow("192.0.2.1") {
		t.Fatal("first IP denied")
	}
	if limiter.Allow("192.0.2.1") {
		t.Error("first IP allowed beyond burst")
	}
	if !limiter.Allow("192.0.2.2") {
		t.Error("second IP throttled by first IP's attempts")
	}
}

func TestLoginLimiter_Defaults(t *testing.T) {
	limiter := NewLoginLimiter(0, 0)
	defer limiter.Stop()

	if !limiter.Allow("192.0.2.1") {
		t.Error("default limiter denied first attempt")
	}
}

func TestLoginLimiter_Cleanup(t *testing.T) {
	limiter := NewLoginLimiter(10, 5)
	defer limiter.Stop()

	limiter.Allow("192.0.2.1")
	limiter.Allow("192.0.2.2")

	limiter.mu.Lock()
	for _, entry := range limiter.limiters {
		entry.lastAccess = time.Now().Add(-2 * time.Hour)
	}
	limiter.mu.Unlock()

	limiter.cleanup()

	limiter.mu.Lock()
	remaining := len(limiter.limiters)
	limiter.mu.Unlock()
	if remaining != 0 {
		t.Errorf("stale limiters remaining = %d, want 0", remaining)
	}
}
