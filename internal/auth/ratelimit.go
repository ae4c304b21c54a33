// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package auth

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LoginLimiter implements per-IP login throttling with automatic
// cleanup. It protects the credential endpoint from online guessing;
// general API rate limiting is handled separately by the router.
type LoginLimiter struct {
	limiters  map[string]*loginLimiterEntry
	mu        sync.Mutex
	rate      rate.Limit
	burst     int
	stopClean chan struct{}
}

// loginLimiterEntry wraps a rate limiter with last access time
type loginLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// NewLoginLimiter creates a login limiter allowing attemptsPerMinute
// sustained attempts with the given burst allowance per client IP.
func NewLoginLimiter(attemptsPerMinute, burst int) *LoginLimiter {
	if attemptsPerMinute <= 0 {
		attemptsPerMinute = 10
	}
	if burst <= 0 {
		burst = 5
	}
	return &LoginLimiter{
		limiters:  make(map[string]*loginLimiterEntry),
		rate:      rate.Every(time.Minute / time.Duration(attemptsPerMinute)),
		burst:     burst,
		stopClean: make(chan struct{}),
	}
}

// Allow checks if a login attempt from the given IP is allowed
func (l *LoginLimiter) Allow(ip string) bool {
	l.mu.Lock()
	entry, exists := l.limiters[ip]
	if !exists {
		entry = &loginLimiterEntry{
			limiter:    rate.NewLimiter(l.rate, l.burst),
			lastAccess: time.Now(),
		}
		l.limiters[ip] = entry
	} else {
		entry.lastAccess = time.Now()
	}
	limiter := entry.limiter
	l.mu.Unlock()

	return limiter.Allow()
}

// StartCleanup periodically removes stale limiters until Stop is called.
func (l *LoginLimiter) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				l.cleanup()
			case <-l.stopClean:
				return
			}
		}
	}()
}

// cleanup removes limiters that haven't been accessed in the last hour
func (l *LoginLimiter) cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	threshold := time.Now().Add(-1 * time.Hour)
	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
		}
	}
}

// Stop stops the cleanup goroutine
func (l *LoginLimiter) Stop() {
	close(l.stopClean)
}
