// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build nats

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/presage/internal/backend"
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/weightsync"
)

// BackendComponents holds the backend sync tier for lifecycle management:
// the optional embedded NATS server, the provisioning connection, and the
// JetStream snapshot publisher.
type BackendComponents struct {
	server    *backend.EmbeddedServer
	natsConn  *natsgo.Conn
	publisher *backend.Publisher

	mu      sync.Mutex
	running bool
	closed  bool
}

// InitBackend initializes the backend sync tier when NATS_ENABLED=true.
//
// Initialization order:
//  1. Embedded NATS server (if NATS_EMBEDDED_SERVER=true)
//  2. Provisioning connection and JetStream stream (create-or-update)
//  3. Watermill publisher with circuit breaker
//
// Returns nil components when the tier is disabled. On failure, anything
// already started is shut down before the error returns.
func InitBackend(cfg *config.Config) (*BackendComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Backend sync tier disabled (NATS_ENABLED=false)")
		return nil, nil
	}

	logging.Info().Msg("Initializing backend sync tier...")

	components := &BackendComponents{}

	var natsURL string

	// Step 1: Embedded NATS server if enabled
	if cfg.NATS.EmbeddedServer {
		serverCfg := backend.DefaultServerConfig()
		if cfg.NATS.StoreDir != "" {
			serverCfg.StoreDir = cfg.NATS.StoreDir
		}
		if cfg.NATS.MaxMemory > 0 {
			serverCfg.JetStreamMaxMem = cfg.NATS.MaxMemory
		}
		if cfg.NATS.MaxStore > 0 {
			serverCfg.JetStreamMaxStore = cfg.NATS.MaxStore
		}

		server, err := backend.NewEmbeddedServer(serverCfg)
		if err != nil {
			return nil, fmt.Errorf("start embedded NATS server: %w", err)
		}
		components.server = server
		natsURL = server.ClientURL()
		logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
	} else {
		natsURL = cfg.NATS.URL
		logging.Info().Str("url", natsURL).Msg("Using external NATS server")
	}

	// Step 2: Connect and ensure the sync stream exists
	nc, err := natsgo.Connect(natsURL,
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	components.natsConn = nc
	logging.Info().Msg("NATS connection established")

	js, err := jetstream.New(nc)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	streamCfg := backend.DefaultStreamConfig()
	streamInitializer, err := backend.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create stream initializer: %w", err)
	}

	provisionCtx, provisionCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer provisionCancel()

	stream, err := streamInitializer.EnsureStream(provisionCtx)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("ensure stream exists: %w", err)
	}
	streamInfo := stream.CachedInfo()
	logging.Info().
		Str("name", streamInfo.Config.Name).
		Strs("subjects", streamInfo.Config.Subjects).
		Dur("max_age", streamInfo.Config.MaxAge).
		Msg("JetStream stream ready")

	// Step 3: Publisher with circuit breaker
	publisherCfg := backend.DefaultPublisherConfig(natsURL)
	if cfg.NATS.WeightsSubject != "" {
		publisherCfg.WeightsSubject = cfg.NATS.WeightsSubject
	}
	if cfg.NATS.KPISubject != "" {
		publisherCfg.KPISubject = cfg.NATS.KPISubject
	}

	publisher, err := backend.NewPublisher(publisherCfg, nil)
	if err != nil {
		components.Shutdown(context.Background())
		return nil, fmt.Errorf("create publisher: %w", err)
	}
	components.publisher = publisher

	breakerCfg := backend.DefaultBreakerConfig("backend-sync")
	if cfg.NATS.Breaker.MaxRequests > 0 {
		breakerCfg.MaxRequests = cfg.NATS.Breaker.MaxRequests
	}
	if cfg.NATS.Breaker.Interval > 0 {
		breakerCfg.Interval = cfg.NATS.Breaker.Interval
	}
	if cfg.NATS.Breaker.Timeout > 0 {
		breakerCfg.Timeout = cfg.NATS.Breaker.Timeout
	}
	if cfg.NATS.Breaker.ConsecutiveFailures > 0 {
		breakerCfg.ConsecutiveFailures = cfg.NATS.Breaker.ConsecutiveFailures
	}
	publisher.SetCircuitBreaker(backend.NewCircuitBreaker(breakerCfg, logging.Logger()))
	logging.Info().
		Str("weights_subject", publisherCfg.WeightsSubject).
		Str("kpi_subject", publisherCfg.KPISubject).
		Uint32("breaker_failures", breakerCfg.ConsecutiveFailures).
		Msg("Backend publisher created")

	components.mu.Lock()
	components.running = true
	components.mu.Unlock()

	logging.Info().Msg("Backend sync tier initialized successfully")
	return components, nil
}

// Hook returns the publisher's sync hook, nil when the tier is disabled.
func (c *BackendComponents) Hook() weightsync.Hook {
	if c == nil || c.publisher == nil {
		return nil
	}
	return c.publisher.Hook()
}

// EmbeddedServer returns the embedded server handle, nil when running
// against an external broker.
func (c *BackendComponents) EmbeddedServer() *backend.EmbeddedServer {
	if c == nil {
		return nil
	}
	return c.server
}

// IsRunning reports whether initialization completed and Shutdown has
// not been called.
func (c *BackendComponents) IsRunning() bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running && !c.closed
}

// Shutdown stops the backend tier: publisher first so in-flight
// snapshots drain, then the provisioning connection, then the embedded
// server. Safe to call on nil components and idempotent.
func (c *BackendComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.running = false
	c.mu.Unlock()

	logging.Info().Msg("Shutting down backend sync tier...")

	if c.publisher != nil {
		if err := c.publisher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing backend publisher")
		}
	}

	if c.natsConn != nil {
		c.natsConn.Close()
	}

	if c.server != nil && c.server.IsRunning() {
		if err := c.server.Shutdown(ctx); err != nil {
			logging.Error().Err(err).Msg("Error shutting down embedded NATS server")
		}
	}

	logging.Info().Msg("Backend sync tier shutdown complete")
}
