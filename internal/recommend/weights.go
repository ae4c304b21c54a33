// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

// Named weight profiles. Each expresses a risk appetite for exploration
// versus familiarity and each sums to 1.0.
const (
	// ProfileConservative favors proven, recently used presets.
	ProfileConservative = "conservative"
	// ProfileModerate balances all four signals and is the default.
	ProfileModerate = "moderate"
	// ProfileAggressive favors contextual fit over usage history.
	ProfileAggressive = "aggressive"
)

// profileWeights are the immutable named defaults. Accessors return
// copies; the table itself is never handed out.
var profileWeights = map[string]ScoringWeights{
	ProfileConservative: {Usage: 0.40, Recency: 0.30, Tags: 0.20, Category: 0.10},
	ProfileModerate:     {Usage: 0.30, Recency: 0.25, Tags: 0.25, Category: 0.20},
	ProfileAggressive:   {Usage: 0.15, Recency: 0.20, Tags: 0.35, Category: 0.30},
}

// ProfileWeights returns the weight vector of a named profile.
// The second return is false for unknown names.
func ProfileWeights(name string) (ScoringWeights, bool) {
	w, ok := profileWeights[name]
	return w, ok
}

// DefaultWeights returns the moderate profile vector.
func DefaultWeights() ScoringWeights {
	return profileWeights[ProfileModerate]
}

// Profiles returns the known profile names in stable order.
func Profiles() []string {
	return []string{ProfileConservative, ProfileModerate, ProfileAggressive}
}

// ResolveWeights determines the weight vector for a scoring call.
//
// Priority: explicit override, then named profile, then partial map merged
// over the moderate defaults, then the moderate defaults themselves. An
// all-zero vector at any step degrades to moderate rather than producing a
// meaningless uniform blend. The returned vector is always normalized and
// paired with a label describing its provenance for debug output.
func ResolveWeights(opts Options) (ScoringWeights, string) {
	if opts.WeightsOverride != nil {
		w := *opts.WeightsOverride
		if w.IsZero() {
			return DefaultWeights(), ProfileModerate
		}
		return w.Normalize(), "override"
	}

	if opts.Profile != "" {
		if w, ok := ProfileWeights(opts.Profile); ok {
			return w, opts.Profile
		}
		// Unknown profile names fall through to the remaining inputs.
	}

	if len(opts.Weights) > 0 {
		w := mergeWeights(DefaultWeights(), opts.Weights)
		if w.IsZero() {
			return DefaultWeights(), ProfileModerate
		}
		return w.Normalize(), "partial"
	}

	return DefaultWeights(), ProfileModerate
}

// mergeWeights overlays the signal-keyed entries of partial onto base.
// Unrecognized keys are ignored.
func mergeWeights(base ScoringWeights, partial map[string]float64) ScoringWeights {
	out := base
	for signal, value := range partial {
		switch signal {
		case SignalUsage:
			out.Usage = value
		case SignalRecency:
			out.Recency = value
		case SignalTags:
			out.Tags = value
		case SignalCategory:
			out.Category = value
		}
	}
	return out
}
