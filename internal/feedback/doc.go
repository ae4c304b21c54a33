// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package feedback records behavioral events per preset and turns them
// into Bayesian statistics and bounded weight adjustments.
//
// # Event Model
//
// Two event families increment distinct monotonic counters:
//
//   - Implicit: selected, ignored, selected_other, engaged. The first
//     three also increment the shown counter; engaged does not.
//   - Explicit: upvote, downvote, hide, pin.
//
// Counters never decrement. A preset moves from untracked to tracked on
// its first event and its stats are never deleted, only reset store-wide.
// A single hide event permanently marks the preset as filtered.
//
// # Statistics
//
// Each event recomputes three Laplace-smoothed posteriors
// (successes+1)/(successes+failures+2): implicit over
// (selected+engaged | ignored+selected_other), explicit over
// (upvote+pin | downvote+hide), and their 0.6/0.4 combination. A Wilson
// 95% lower bound over the pooled successes and trials provides the
// conservative confidence estimate. With no data every posterior is
// exactly 0.5 and the Wilson bound is 0.
//
// # Reinforcement
//
// ApplyReinforcement converts one piece of feedback into per-signal weight
// deltas for a profile's learned weights. Presets below the minimum
// feedback count produce a documented zero-delta adjustment and no
// mutation. Above it, each delta is direction x signal x step, clamped to
// the per-adjustment maximum; the adjusted weights are clamped to the
// configured floor and ceiling and then renormalized to sum to 1.0. The
// renormalization can push a component back below the floor; the bound is
// soft and deliberately not re-clamped, which would break the unit sum.
//
// # Bounded Histories
//
// The event log and each profile's adjustment history are fixed-capacity
// rings; the oldest entry is evicted on overflow. This bounds memory, it
// is not an error condition.
//
// All read accessors return deep copies. The store is safe for concurrent
// use and carries an explicit Reset for test isolation.
package feedback
