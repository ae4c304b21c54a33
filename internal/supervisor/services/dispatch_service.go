// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package services

import (
	"context"
)

// ContextHub interface matches *dispatch.Hub's RunWithContext method.
//
// This interface allows the DispatchHubService to work with the Hub
// without importing the dispatch package, avoiding circular dependencies.
//
// Satisfied by *dispatch.Hub from internal/dispatch/hub.go.
type ContextHub interface {
	RunWithContext(ctx context.Context) error
}

// DispatchHubService wraps the live-update hub as a supervised service.
//
// The hub's RunWithContext method already implements the suture.Service
// pattern, so this wrapper simply delegates to it and provides a name
// for logging.
//
// Example usage:
//
//	hub := dispatch.NewHub()
//	svc := services.NewDispatchHubService(hub)
//	tree.AddDispatchService(svc)
type DispatchHubService struct {
	hub  ContextHub
	name string
}

// NewDispatchHubService creates a new dispatch hub service wrapper.
func NewDispatchHubService(hub ContextHub) *DispatchHubService {
	return &DispatchHubService{
		hub:  hub,
		name: "dispatch-hub",
	}
}

// Serve implements suture.Service.
//
// This method delegates to hub.RunWithContext which:
//  1. Processes client registration/unregistration and broadcasts
//  2. Returns when the context is canceled
//  3. Gracefully closes all clients on shutdown
//
// The method returns ctx.Err() on normal shutdown.
func (d *DispatchHubService) Serve(ctx context.Context) error {
	return d.hub.RunWithContext(ctx)
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (d *DispatchHubService) String() string {
	return d.name
}
