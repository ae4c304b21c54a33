// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package backend publishes weight and KPI snapshots to NATS JetStream,
// forming the second sync tier between the local BadgerDB store and the
// long-term warehouse.
//
// Every backend sync cycle produces two messages:
//
//	presage.sync.weights  - per-profile effective weight vectors
//	presage.sync.kpi      - the session's KPI snapshot
//
// Messages carry a uuid message id that doubles as the Nats-Msg-Id
// deduplication header, so a retried hook invocation within the stream's
// duplicate window lands exactly once.
//
//	┌─────────────┐      ┌──────────────────┐      ┌──────────────┐
//	│ weightsync  │ hook │    Publisher     │      │     NATS     │
//	│  Manager    ├─────►│ breaker + dedup  ├─────►│  JetStream   │
//	└─────────────┘      └──────────────────┘      └──────┬───────┘
//	                                                      │
//	                                          downstream consumers
//	                                          (fleet aggregation, BI)
//
// # Key Components
//
//   - EmbeddedServer: optional embedded NATS JetStream server for
//     standalone deployments without external infrastructure
//   - StreamInitializer: idempotent PRESAGE_SYNC stream provisioning
//   - Publisher: Watermill publisher with circuit breaker protection and
//     automatic reconnection handling
//
// # Build Tags
//
// The NATS-backed implementations require -tags=nats. Without the tag,
// constructors return errors and the engine runs with the local and
// warehouse tiers only. Wire types, configuration, and the circuit
// breaker build unconditionally.
//
// # Usage Example
//
//	server, err := backend.NewEmbeddedServer(backend.DefaultServerConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer server.Shutdown(ctx)
//
//	pub, err := backend.NewPublisher(
//	    backend.DefaultPublisherConfig(server.ClientURL()),
//	    nil, // logger
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer pub.Close()
//
//	pub.SetCircuitBreaker(backend.NewCircuitBreaker(
//	    backend.DefaultBreakerConfig("backend-sync"), logger))
//	manager.RegisterBackendHook(pub.Hook())
package backend
