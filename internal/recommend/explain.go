// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

// Strength thresholds applied to each signal independently.
const (
	highThreshold   = 0.75
	mediumThreshold = 0.40
)

// genericLowDetail is emitted once when every signal classifies as low.
const genericLowDetail = "no individual signal stands out; ranked by overall weighted score"

// detailText maps (signal, strength) to explanation text. Low-strength
// signals are never surfaced individually.
var detailText = map[string]map[Strength]string{
	SignalUsage: {
		StrengthHigh:   "among the most frequently used presets",
		StrengthMedium: "used regularly compared with sibling presets",
	},
	SignalRecency: {
		StrengthHigh:   "used very recently",
		StrengthMedium: "used within the recency window",
	},
	SignalTags: {
		StrengthHigh:   "tags strongly overlap the request context",
		StrengthMedium: "tags partially overlap the request context",
	},
	SignalCategory: {
		StrengthHigh:   "matches the requested category",
		StrengthMedium: "neutral category fit; no target category requested",
	},
}

// ClassifyStrength maps a signal value to its strength band.
// Out-of-range inputs are clamped to [0, 1] first.
func ClassifyStrength(score float64) Strength {
	score = clamp01(score)
	switch {
	case score >= highThreshold:
		return StrengthHigh
	case score >= mediumThreshold:
		return StrengthMedium
	default:
		return StrengthLow
	}
}

// BuildReasons produces the explanation for one breakdown. Signals are
// evaluated in fixed order so output is deterministic. When all four are
// low a single generic placeholder reason is returned instead.
func BuildReasons(b ScoreBreakdown) []Reason {
	signals := []struct {
		name  string
		value float64
	}{
		{SignalUsage, b.Usage},
		{SignalRecency, b.Recency},
		{SignalTags, b.Tags},
		{SignalCategory, b.Category},
	}

	reasons := make([]Reason, 0, len(signals))
	for _, sig := range signals {
		strength := ClassifyStrength(sig.value)
		if strength == StrengthLow {
			continue
		}
		reasons = append(reasons, Reason{
			Signal:   sig.name,
			Strength: strength,
			Detail:   detailText[sig.name][strength],
		})
	}

	if len(reasons) == 0 {
		return []Reason{{
			Signal:   "overall",
			Strength: StrengthLow,
			Detail:   genericLowDetail,
		}}
	}

	return reasons
}

// DominantSignal returns the name of the largest component of a
// breakdown. Ties resolve in the fixed signal order.
func DominantSignal(b ScoreBreakdown) string {
	name := SignalUsage
	best := b.Usage

	if b.Recency > best {
		name, best = SignalRecency, b.Recency
	}
	if b.Tags > best {
		name, best = SignalTags, b.Tags
	}
	if b.Category > best {
		name = SignalCategory
	}
	return name
}
