// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build nats

// This file provides backend tier integration with the supervisor tree.
// It is only compiled when the "nats" build tag is enabled.
//
// Build with NATS support:
//
//	go build -tags nats -o presage ./cmd/server

package main

import (
	"time"

	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/supervisor"
	"github.com/tomtom215/presage/internal/supervisor/services"
)

// AddBackendToSupervisor adds the embedded NATS server to the supervisor
// tree's sync layer for crash detection.
//
// Only the embedded server is supervised: the publisher reconnects on
// its own and the stream is provisioned once at startup. When running
// against an external broker there is nothing to supervise.
//
// This function is a no-op if components is nil (backend tier disabled
// via config).
//
// Example usage in main.go:
//
//	backendComponents, _ := InitBackend(cfg)
//	AddBackendToSupervisor(tree, backendComponents)
func AddBackendToSupervisor(tree *supervisor.SupervisorTree, components *BackendComponents) {
	if components == nil {
		return
	}
	server := components.EmbeddedServer()
	if server == nil {
		return
	}
	tree.AddSyncService(services.NewEmbeddedNATSService(server, 10*time.Second))
	logging.Info().Msg("Embedded NATS server added to supervisor tree (sync layer)")
}
