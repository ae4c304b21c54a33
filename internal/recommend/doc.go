// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package recommend implements the glass-box preset scorer.
//
// # Architecture
//
// The scorer ranks candidate presets by a weighted combination of four
// independent signals, each normalized to [0, 1]:
//
//   - Usage: how often the preset has been applied, relative to siblings
//   - Recency: exponential decay over a 30-day window since last use
//   - Tags: Jaccard similarity between preset tags and context tags
//   - Category: exact match against the requested category, neutral when
//     no category is requested
//
// # Design Principles
//
//   - Glass-box: every score decomposes into its per-signal breakdown and a
//     structured explanation; nothing is opaque to the caller
//   - Deterministic: identical presets, context, and weights produce
//     identical results; the clock is injectable for reproducible output
//   - Total: scoring never fails; malformed input degrades to neutral or
//     zero signal values instead of returning errors
//   - Bounded: results are memoized in a fixed-capacity LRU with TTL
//
// # Weight Resolution
//
// Callers may supply weights four ways, resolved in priority order: an
// explicit override vector, a named profile (conservative, moderate,
// aggressive), a partial map merged over the moderate defaults, or nothing
// at all, which selects moderate. Resolved weights are always renormalized
// to sum to 1.0 before use.
//
// # Usage
//
//	scorer, err := recommend.NewScorer(recommend.DefaultConfig(), logger)
//	if err != nil {
//	    return err
//	}
//
//	result := scorer.Score(presets, recommend.Context{
//	    Category: recommend.CategoryCompliance,
//	    Tags:     []string{"audit", "quarterly"},
//	}, recommend.Options{TopN: 5, Profile: "moderate"})
//
// # Thread Safety
//
// The scorer is safe for concurrent use. Scoring itself is pure; the only
// shared state is the result memo, which synchronizes internally.
package recommend
