// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build !nats

package backend

import (
	"context"
	"fmt"
)

// StreamInitializer is a stub when NATS dependencies are not available.
// Build with -tags=nats to enable JetStream stream management.
type StreamInitializer struct{}

// NewStreamInitializer returns an error when NATS dependencies are not
// available. Build with -tags=nats to enable JetStream stream management.
func NewStreamInitializer(js interface{}, cfg *StreamConfig) (*StreamInitializer, error) {
	return nil, fmt.Errorf("stream initializer not available: build with -tags=nats")
}

// EnsureStream is a stub that returns an error.
func (s *StreamInitializer) EnsureStream(ctx context.Context) (interface{}, error) {
	return nil, fmt.Errorf("stream initializer not available: build with -tags=nats")
}

// IsHealthy always returns false for the stub implementation.
func (s *StreamInitializer) IsHealthy(ctx context.Context) bool {
	return false
}

// Config returns the zero configuration for the stub implementation.
func (s *StreamInitializer) Config() StreamConfig {
	return StreamConfig{}
}
