// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package weightsync layers learned weights over profile defaults and
// carries the result to the persistence tiers.
//
// # Architecture
//
// The Manager composes four concerns around a feedback store:
//
//   - Blending: effective weights are a configurable mix of the profile's
//     default ("global") vector and its learned ("local") vector,
//     renormalized to a unit sum. Blends are cached per profile with a
//     short TTL and invalidated explicitly after reinforcement writes.
//   - KPI tracking: impressions, selections, click-through rate, Hit@1,
//     Hit@3, and a bounded sample list of time-to-selection durations,
//     all under a session ID that changes on reset.
//   - Sync tiers: three independent persistence tiers. The local tier is
//     debounced with a coalescing window and flushed best-effort; the
//     backend and long-term tiers run externally registered hooks, each
//     under its own timeout, with failures recorded rather than raised.
//   - Analytics export: a versioned, self-contained document assembling
//     per-preset rollups, per-profile weight state, KPIs, and the raw
//     feedback export for downstream consumers.
//
// # Failure Model
//
// Hook failures never propagate to callers. Each failure becomes a
// SyncError in a bounded list, is handed to registered error hooks, and
// leaves sibling hooks and the tier's cycle untouched. A hook that never
// returns forfeits its result when its timeout lapses; the cycle moves on.
//
// # Thread Safety
//
// All exported methods are safe for concurrent use. Snapshots handed to
// hooks are built synchronously before the first hook runs, so hooks
// observe a consistent view regardless of concurrent mutation.
package weightsync
