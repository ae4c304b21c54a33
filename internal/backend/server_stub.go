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

// EmbeddedServer is a stub when NATS dependencies are not available.
// Build with -tags=nats to enable the embedded NATS server.
type EmbeddedServer struct{}

// NewEmbeddedServer returns an error when NATS dependencies are not
// available. Build with -tags=nats to enable the embedded NATS server.
func NewEmbeddedServer(cfg ServerConfig) (*EmbeddedServer, error) {
	return nil, fmt.Errorf("embedded NATS server not available: build with -tags=nats")
}

// ClientURL returns an empty string for the stub implementation.
func (s *EmbeddedServer) ClientURL() string {
	return ""
}

// Shutdown is a no-op stub.
func (s *EmbeddedServer) Shutdown(ctx context.Context) error {
	return nil
}

// IsRunning always returns false for the stub implementation.
func (s *EmbeddedServer) IsRunning() bool {
	return false
}

// WaitForShutdown returns immediately for the stub implementation.
func (s *EmbeddedServer) WaitForShutdown() {}

// JetStreamEnabled always returns false for the stub implementation.
func (s *EmbeddedServer) JetStreamEnabled() bool {
	return false
}
