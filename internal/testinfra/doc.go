// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to manage Docker containers for integration tests,
// providing realistic testing environments that closely match production.
//
// # NATS Container
//
// The NATSContainer provides a real external NATS JetStream broker for
// testing the backend sync tier. The embedded server in internal/backend
// covers standalone mode; this container covers the external-broker
// deployment mode:
//
//	func TestPublisherAgainstExternalBroker(t *testing.T) {
//	    ctx := context.Background()
//	    broker, err := testinfra.NewNATSContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, broker.Container)
//
//	    cfg := backend.DefaultPublisherConfig()
//	    cfg.URL = broker.URL
//	    pub, err := backend.NewPublisher(cfg, nil)
//	    // Publish against a real broker
//	}
//
// # Benefits Over Mocks
//
// Using real containers provides several advantages:
//   - Tests validate actual wire behavior (JetStream acks, dedup headers)
//   - No mock drift (mocks getting out of sync with the real broker)
//   - Tests run against production-equivalent services
//
// # CI Considerations
//
// These tests require Docker and network access. In CI:
//   - Self-hosted runners have Docker pre-installed
//   - Container images are cached between runs
//   - Tests are skipped gracefully if Docker is unavailable
//
// # Network Requirements
//
// First run may need to download container images. Subsequent runs use cached images.
package testinfra
