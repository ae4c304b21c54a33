// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build !nats

// This file provides a no-op stub for backend supervisor integration.
// It is only compiled when the "nats" build tag is NOT enabled.
//
// Build without NATS support (default):
//
//	go build -o presage ./cmd/server

package main

import (
	"github.com/tomtom215/presage/internal/supervisor"
)

// AddBackendToSupervisor is a no-op stub for non-NATS builds.
//
// When NATS support is not compiled in (no -tags nats), this function
// does nothing. This allows main.go to call AddBackendToSupervisor
// unconditionally without build tag conditionals.
//
// The BackendComponents parameter will be nil from the stub InitBackend
// function in backend_init_stub.go.
func AddBackendToSupervisor(_ *supervisor.SupervisorTree, _ *BackendComponents) {
	// No-op: NATS not compiled in
}
