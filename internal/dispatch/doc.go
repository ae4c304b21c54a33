// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package dispatch provides real-time event delivery to UI clients over
// WebSocket connections.
//
// The hub maintains the set of connected clients and broadcasts engine
// events to all of them: recommendations served, feedback recorded,
// weight adjustments applied, and sync cycle completions. Clients that
// cannot keep up are disconnected rather than allowed to block the hub.
//
// # Architecture
//
//	Engine events -> Hub.Broadcast* -> broadcast channel -> clients
//
// The hub runs as a single goroutine (RunWithContext) that owns the
// client set. Lifecycle events (register/unregister) take priority over
// broadcasts so the client set is consistent before any message is
// delivered. Broadcast delivery iterates clients in ascending client-id
// order, which keeps message delivery order reproducible across runs.
//
// # Message Types
//
//   - recommendation_served: a scoring call returned a ranked list
//   - feedback_recorded: an implicit or explicit feedback event landed
//   - weights_adjusted: a reinforcement pass changed learned weights
//   - sync_completed: a sync tier finished a cycle
//   - ping / pong: keepalive
//
// # Usage
//
//	hub := dispatch.NewHub()
//	go hub.RunWithContext(ctx)
//
//	// From an HTTP handler after upgrading the connection:
//	client := dispatch.NewClient(hub, conn)
//	hub.Register <- client
//	client.Start()
//
//	// From engine call sites:
//	hub.BroadcastFeedbackRecorded("vocal-clarity", "selected", "implicit")
//
// Each client has a bounded send queue. A full queue marks the client
// for removal during the broadcast pass; the hub never blocks on a slow
// consumer.
package dispatch
