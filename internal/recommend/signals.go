// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

import (
	"math"
	"sort"
	"strings"
	"time"
)

// DefaultRecencyWindow is the age beyond which a preset scores zero recency.
const DefaultRecencyWindow = 30 * 24 * time.Hour

// recencyDecayRate shapes the exponential falloff across the window.
// exp(-3) ≈ 0.05, so a preset last used at the window edge retains
// roughly 5% of the maximum recency signal.
const recencyDecayRate = 3.0

// NormalizeUsage maps a usage count into [0, 1] relative to the busiest
// sibling preset. A non-positive ceiling yields zero.
func NormalizeUsage(count, maxCount int) float64 {
	if maxCount <= 0 {
		return 0
	}
	return clamp01(float64(count) / float64(maxCount))
}

// RecencyScore maps the time since last use into [0, 1].
// Never-used presets score 0. A timestamp in the future relative to now
// scores 1. Ages beyond the window score 0; otherwise the score decays
// exponentially from 1 toward exp(-3).
func RecencyScore(lastUsed *time.Time, now time.Time, window time.Duration) float64 {
	if lastUsed == nil || lastUsed.IsZero() {
		return 0
	}
	if window <= 0 {
		window = DefaultRecencyWindow
	}

	age := now.Sub(*lastUsed)
	if age < 0 {
		return 1
	}
	if age > window {
		return 0
	}

	return math.Exp(-recencyDecayRate * float64(age) / float64(window))
}

// TagSimilarity computes the Jaccard index of two tag sets after
// case-folding and whitespace-trimming each tag. Two empty sets match
// perfectly by convention; exactly one empty set yields zero.
func TagSimilarity(a, b []string) float64 {
	setA := foldTagSet(a)
	setB := foldTagSet(b)

	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tag := range setA {
		if _, ok := setB[tag]; ok {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// CategoryMatch scores category alignment: 1 for a match, 0 for a
// mismatch, and a neutral 0.5 when no target category is requested.
func CategoryMatch(presetCat, targetCat Category) float64 {
	if targetCat == "" {
		return 0.5
	}
	if presetCat.Equals(targetCat) {
		return 1
	}
	return 0
}

// foldTagSet builds the canonical tag set: trimmed, lowercased, with
// empty strings dropped.
func foldTagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		folded := strings.ToLower(strings.TrimSpace(tag))
		if folded == "" {
			continue
		}
		set[folded] = struct{}{}
	}
	return set
}

// foldedSortedTags returns the canonical tag set as a sorted slice,
// used for deterministic memo keys.
func foldedSortedTags(tags []string) []string {
	set := foldTagSet(tags)
	out := make([]string, 0, len(set))
	for tag := range set {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// clamp01 bounds a value to [0, 1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
