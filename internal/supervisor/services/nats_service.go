// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package services

import (
	"context"
	"fmt"
	"time"
)

// EmbeddedBroker interface matches the embedded NATS server lifecycle.
//
// This interface allows the EmbeddedNATSService to supervise the server
// without importing the backend package, avoiding a dependency on the
// nats build tag from this package.
//
// Satisfied by *backend.EmbeddedServer from internal/backend/server.go:
//   - Shutdown(ctx context.Context) error - graceful stop
//   - IsRunning() bool - health state
//   - WaitForShutdown() - blocks until fully stopped
type EmbeddedBroker interface {
	Shutdown(ctx context.Context) error
	IsRunning() bool
	WaitForShutdown()
}

// EmbeddedNATSService supervises an already-running embedded NATS server.
//
// The server is constructed during boot, before the stream initializer
// and the publisher connect to it, so this wrapper does not own startup.
// It watches the running server and handles shutdown:
//
//  1. Verifies the server is running when Serve begins
//  2. Blocks until the server dies on its own or the context is canceled
//  3. On cancellation, calls Shutdown with the configured timeout
//
// If the server dies outside a shutdown, Serve returns an error. The
// dead handle cannot be restarted, so the supervisor's restart attempts
// keep failing into backoff; that keeps the failure loud in the logs
// while the rest of the tree stays up.
//
// Example usage:
//
//	server, _ := backend.NewEmbeddedServer(backend.DefaultServerConfig())
//	svc := services.NewEmbeddedNATSService(server, 10*time.Second)
//	tree.AddSyncService(svc)
type EmbeddedNATSService struct {
	broker          EmbeddedBroker
	shutdownTimeout time.Duration
	name            string
}

// NewEmbeddedNATSService creates a new embedded NATS service wrapper.
func NewEmbeddedNATSService(broker EmbeddedBroker, shutdownTimeout time.Duration) *EmbeddedNATSService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &EmbeddedNATSService{
		broker:          broker,
		shutdownTimeout: shutdownTimeout,
		name:            "embedded-nats",
	}
}

// Serve implements suture.Service.
func (s *EmbeddedNATSService) Serve(ctx context.Context) error {
	if !s.broker.IsRunning() {
		return fmt.Errorf("embedded NATS server is not running")
	}

	// WaitForShutdown returns for both graceful and crash stops; which
	// one happened is decided by the select below.
	stopped := make(chan struct{})
	go func() {
		s.broker.WaitForShutdown()
		close(stopped)
	}()

	select {
	case <-stopped:
		return fmt.Errorf("embedded NATS server stopped unexpectedly")

	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.broker.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("embedded NATS shutdown failed: %w", err)
		}

		<-stopped
		return ctx.Err()
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *EmbeddedNATSService) String() string {
	return s.name
}
