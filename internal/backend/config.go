// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package backend

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServerConfig holds embedded NATS server configuration.
type ServerConfig struct {
	Host              string
	Port              int
	StoreDir          string
	JetStreamMaxMem   int64
	JetStreamMaxStore int64
}

// DefaultServerConfig returns production defaults for the embedded server.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:              "127.0.0.1",
		Port:              4222,
		StoreDir:          "./data/nats",
		JetStreamMaxMem:   256 << 20, // 256MB
		JetStreamMaxStore: 1 << 30,   // 1GB
	}
}

// PublisherConfig holds publisher configuration.
type PublisherConfig struct {
	// URL is the NATS server connection URL.
	URL string

	// WeightsSubject receives per-profile weight snapshot messages.
	WeightsSubject string

	// KPISubject receives KPI snapshot messages.
	KPISubject string

	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int

	// TrackMsgID enables JetStream deduplication via Nats-Msg-Id.
	TrackMsgID bool
}

// DefaultPublisherConfig returns production defaults for the publisher.
func DefaultPublisherConfig(url string) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		WeightsSubject:  "presage.sync.weights",
		KPISubject:      "presage.sync.kpi",
		MaxReconnects:   -1, // Unlimited
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 << 20, // 8MB
		TrackMsgID:      true,
	}
}

// Validate checks publisher configuration limits.
func (c *PublisherConfig) Validate() error {
	if c.URL == "" {
		return errors.New("NATS URL is required")
	}
	if !strings.HasPrefix(c.URL, "nats://") && !strings.HasPrefix(c.URL, "tls://") {
		return fmt.Errorf("NATS URL must use nats:// or tls:// scheme, got %q", c.URL)
	}
	if c.WeightsSubject == "" {
		return errors.New("weights subject is required")
	}
	if c.KPISubject == "" {
		return errors.New("kpi subject is required")
	}
	if c.WeightsSubject == c.KPISubject {
		return errors.New("weights and kpi subjects must differ")
	}
	return nil
}

// StreamConfig defines sync snapshot stream settings.
type StreamConfig struct {
	Name            string
	Subjects        []string
	MaxAge          time.Duration
	MaxBytes        int64
	MaxMsgs         int64
	DuplicateWindow time.Duration
	Replicas        int
}

// DefaultStreamConfig returns production stream configuration.
func DefaultStreamConfig() StreamConfig {
	return StreamConfig{
		Name:            "PRESAGE_SYNC",
		Subjects:        []string{"presage.sync.>"},
		MaxAge:          7 * 24 * time.Hour,
		MaxBytes:        1 << 30, // 1GB
		MaxMsgs:         -1,      // Unlimited
		DuplicateWindow: 2 * time.Minute,
		Replicas:        1, // Increase for clustering
	}
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Name                string
	MaxRequests         uint32        // Allowed in half-open state
	Interval            time.Duration // Reset interval for counts
	Timeout             time.Duration // Time to stay open
	ConsecutiveFailures uint32        // Failures before opening
}

// DefaultBreakerConfig returns production defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:                name,
		MaxRequests:         3,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}
