// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package feedback

import (
	"fmt"

	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/ringbuf"
)

// ApplyReinforcement turns one piece of feedback into bounded weight
// deltas for the profile's learned weights.
//
// The call is total: it always returns a WeightAdjustment. Presets below
// the minimum feedback count, unknown feedback types, and empty profiles
// yield a zero-delta, non-applied adjustment with an explanatory reason
// and no mutation. Applied adjustments move the profile's adjusted
// weights by direction x signal x step per component (clamped to the
// per-adjustment maximum), clamp each component into the configured
// bounds, renormalize to a unit sum, and append the record to the
// profile's bounded history.
func (s *Store) ApplyReinforcement(profile string, base recommend.ScoringWeights, presetID string, typ Type, breakdown recommend.ScoreBreakdown) WeightAdjustment {
	s.mu.Lock()
	defer s.mu.Unlock()

	adj := WeightAdjustment{
		Profile:   profile,
		PresetID:  presetID,
		Type:      typ,
		Timestamp: s.now(),
	}

	if profile == "" {
		adj.Reason = "no profile named; nothing to adjust"
		return adj
	}
	if !typ.Valid() {
		adj.Reason = fmt.Sprintf("unknown feedback type %q; nothing to adjust", typ)
		return adj
	}

	total := 0
	if stats, ok := s.stats[presetID]; ok {
		total = stats.TotalEvents()
	}
	if total < s.config.MinFeedback {
		adj.Reason = fmt.Sprintf("insufficient feedback for preset %s: %d of %d required events",
			presetID, total, s.config.MinFeedback)
		s.logger.Debug().
			Str("profile", profile).
			Str("preset_id", presetID).
			Int("events", total).
			Msg("reinforcement below threshold")
		return adj
	}

	direction := -1.0
	if typ.Positive() {
		direction = 1.0
	}

	adj.Deltas = WeightDeltas{
		Usage:    s.clampDelta(direction * breakdown.Usage * s.config.AdjustmentStep),
		Recency:  s.clampDelta(direction * breakdown.Recency * s.config.AdjustmentStep),
		Tags:     s.clampDelta(direction * breakdown.Tags * s.config.AdjustmentStep),
		Category: s.clampDelta(direction * breakdown.Category * s.config.AdjustmentStep),
	}
	adj.Applied = true
	adj.Reason = s.adjustmentReason(typ, presetID, breakdown, direction)

	lp := s.learnedLocked(profile, base)
	lp.weights.Adjusted = s.applyDeltas(lp.weights.Adjusted, adj.Deltas)
	lp.weights.AdjustmentCount++
	lp.weights.UpdatedAt = adj.Timestamp
	lp.history.Append(adj)

	s.logger.Debug().
		Str("profile", profile).
		Str("preset_id", presetID).
		Str("type", string(typ)).
		Int("adjustment_count", lp.weights.AdjustmentCount).
		Msg("reinforcement applied")

	return adj
}

// learnedLocked returns the profile's learned record, creating it from
// the supplied base weights on first contact. Must be called with mu held.
func (s *Store) learnedLocked(profile string, base recommend.ScoringWeights) *learnedProfile {
	lp, ok := s.learned[profile]
	if ok {
		return lp
	}

	resolved := recommend.DefaultWeights()
	if !base.IsZero() {
		resolved = base.Normalize()
	}

	lp = &learnedProfile{
		weights: LearnedWeights{
			Profile:  profile,
			Base:     resolved,
			Adjusted: resolved,
		},
		history: ringbuf.New[WeightAdjustment](s.config.AdjustmentCapacity),
	}
	s.learned[profile] = lp
	return lp
}

// applyDeltas adds the deltas, clamps each component into the configured
// bounds, then renormalizes to a unit sum. The renormalization can push a
// component back outside the bounds; that is accepted rather than
// breaking the unit-sum invariant with a second clamp.
func (s *Store) applyDeltas(w recommend.ScoringWeights, d WeightDeltas) recommend.ScoringWeights {
	out := recommend.ScoringWeights{
		Usage:    s.clampWeight(w.Usage + d.Usage),
		Recency:  s.clampWeight(w.Recency + d.Recency),
		Tags:     s.clampWeight(w.Tags + d.Tags),
		Category: s.clampWeight(w.Category + d.Category),
	}
	return out.Normalize()
}

// clampDelta bounds one raw delta to the per-adjustment maximum.
func (s *Store) clampDelta(d float64) float64 {
	if d > s.config.MaxAdjustment {
		return s.config.MaxAdjustment
	}
	if d < -s.config.MaxAdjustment {
		return -s.config.MaxAdjustment
	}
	return d
}

// clampWeight bounds one weight component into [MinWeight, MaxWeight].
func (s *Store) clampWeight(w float64) float64 {
	if w < s.config.MinWeight {
		return s.config.MinWeight
	}
	if w > s.config.MaxWeight {
		return s.config.MaxWeight
	}
	return w
}

// adjustmentReason generates the natural-language explanation for an
// applied adjustment, naming the dominant contributing signal.
func (s *Store) adjustmentReason(typ Type, presetID string, breakdown recommend.ScoreBreakdown, direction float64) string {
	dominant := recommend.DominantSignal(breakdown)
	if direction > 0 {
		return fmt.Sprintf("boosted %s weight after %q feedback on preset %s", dominant, typ, presetID)
	}
	return fmt.Sprintf("reduced %s weight after %q feedback on preset %s", dominant, typ, presetID)
}

// LearnedWeightsFor returns a copy of one profile's learned record.
func (s *Store) LearnedWeightsFor(profile string) (LearnedWeights, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lp, ok := s.learned[profile]
	if !ok {
		return LearnedWeights{}, false
	}
	return lp.weights, true
}

// AllLearned returns a copy of every profile's learned record.
func (s *Store) AllLearned() map[string]LearnedWeights {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]LearnedWeights, len(s.learned))
	for profile, lp := range s.learned {
		out[profile] = lp.weights
	}
	return out
}

// AdjustmentHistory returns a copy of one profile's bounded adjustment
// history, oldest first.
func (s *Store) AdjustmentHistory(profile string) []WeightAdjustment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lp, ok := s.learned[profile]
	if !ok {
		return nil
	}
	return lp.history.Snapshot()
}
