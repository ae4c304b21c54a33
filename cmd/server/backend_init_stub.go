// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build !nats

package main

import (
	"context"

	"github.com/tomtom215/presage/internal/backend"
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/weightsync"
)

// BackendComponents is a stub for non-NATS builds.
type BackendComponents struct{}

// InitBackend is a no-op stub for non-NATS builds.
// Returns nil to indicate the backend tier is not available.
func InitBackend(cfg *config.Config) (*BackendComponents, error) {
	if cfg.NATS.Enabled {
		logging.Warn().Msg("NATS_ENABLED=true but NATS support not compiled (build with -tags nats)")
	}
	return nil, nil
}

// Hook returns nil for non-NATS builds.
func (c *BackendComponents) Hook() weightsync.Hook {
	return nil
}

// EmbeddedServer returns nil for non-NATS builds.
func (c *BackendComponents) EmbeddedServer() *backend.EmbeddedServer {
	return nil
}

// IsRunning returns false for non-NATS builds.
func (c *BackendComponents) IsRunning() bool {
	return false
}

// Shutdown is a no-op stub for non-NATS builds.
func (c *BackendComponents) Shutdown(_ context.Context) {}
