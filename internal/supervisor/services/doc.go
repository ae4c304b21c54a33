// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

/*
Package services provides suture.Service wrappers for Presage components.

This package adapts existing application components to the suture v4 supervision
model, translating various lifecycle patterns (Run, ListenAndServe, ticker loop)
into suture's context-aware Serve pattern.

# Overview

Each wrapper implements the suture.Service interface:

	type Service interface {
	    Serve(ctx context.Context) error
	}

The wrappers handle:
  - Lifecycle translation to the Serve pattern
  - Graceful shutdown via context cancellation
  - Error propagation for supervisor restart decisions
  - Service identification via fmt.Stringer

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

Dispatch Hub (DispatchHubService):
  - Wraps dispatch.Hub with context support
  - Handles client connection cleanup on shutdown
  - Delegates directly since the hub already has a Serve-shaped loop

Sync Scheduler (SyncSchedulerService):
  - Drives the periodic backend and long-term sync cycles
  - One ticker per tier, defaults 5m backend / 30m long-term
  - Cycle failures land in the manager's sync error list, not here

Embedded NATS (EmbeddedNATSService):
  - Supervises the embedded NATS JetStream server
  - The server is constructed during boot; the wrapper owns shutdown
  - Reports an unexpected server death as a service failure

# Usage Example

Creating and registering services:

	import (
	    "net/http"
	    "time"

	    "github.com/tomtom215/presage/internal/supervisor"
	    "github.com/tomtom215/presage/internal/supervisor/services"
	)

	func setupSupervisor(server *http.Server, hub *dispatch.Hub, manager *weightsync.Manager) {
	    tree, _ := supervisor.NewSupervisorTree(slogger, config)

	    // HTTP server with 30s shutdown timeout
	    httpSvc := services.NewHTTPServerService(server, 30*time.Second)
	    tree.AddAPIService(httpSvc)

	    // Live-update hub
	    hubSvc := services.NewDispatchHubService(hub)
	    tree.AddDispatchService(hubSvc)

	    // Scheduled sync cycles
	    schedSvc := services.NewSyncSchedulerService(manager, 5*time.Minute, 30*time.Minute)
	    tree.AddSyncService(schedSvc)

	    // Start supervision
	    tree.Serve(ctx)
	}

# Error Handling

Return values determine supervisor behavior:

	nil         -> Service stopped cleanly, will not restart
	error       -> Service crashed, supervisor will restart
	ctx.Err()   -> Shutdown requested, normal termination

# Service Identification

All services implement fmt.Stringer for logging:

	func (s *HTTPServerService) String() string {
	    return "http-server"
	}

Suture uses this for log messages:

	INFO http-server: starting
	INFO http-server: stopped
	ERROR http-server: restarting after failure

# Testing

Services can be tested with mock components:

	type MockServer struct {
	    started  bool
	    shutdown bool
	}

	func (m *MockServer) ListenAndServe() error {
	    m.started = true
	    <-time.After(time.Hour) // Block until shutdown
	    return nil
	}

	func (m *MockServer) Shutdown(ctx context.Context) error {
	    m.shutdown = true
	    return nil
	}

	func TestHTTPService(t *testing.T) {
	    mock := &MockServer{}
	    svc := services.NewHTTPServerService(mock, time.Second)

	    ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	    defer cancel()

	    svc.Serve(ctx)

	    if !mock.started { t.Error("server not started") }
	    if !mock.shutdown { t.Error("server not shutdown") }
	}

# Thread Safety

All service wrappers are safe for concurrent use:
  - State is protected by mutexes where needed
  - Context cancellation is handled atomically
  - Multiple Serve calls are not supported (undefined behavior)

# See Also

  - internal/supervisor: SupervisorTree that manages these services
  - github.com/thejerf/suture/v4: Underlying supervision library
  - internal/dispatch: Live-update hub implementation
  - internal/weightsync: Sync manager implementation
*/
package services
