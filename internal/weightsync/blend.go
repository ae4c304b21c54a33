// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"time"

	"github.com/tomtom215/presage/internal/recommend"
)

// BlendConfig sets the shares of a single blend. Shares need not sum to
// one; the blended vector is renormalized afterwards.
type BlendConfig struct {
	// GlobalShare weights the profile's base vector.
	GlobalShare float64 `json:"global_share"`

	// LocalShare weights the learned vector.
	LocalShare float64 `json:"local_share"`
}

// DefaultBlendConfig returns the standard 70/30 global-to-local blend.
func DefaultBlendConfig() BlendConfig {
	return BlendConfig{GlobalShare: 0.7, LocalShare: 0.3}
}

// valid reports whether the shares can produce a meaningful blend.
func (b BlendConfig) valid() bool {
	return b.GlobalShare >= 0 && b.LocalShare >= 0 && b.GlobalShare+b.LocalShare > 0
}

// Blend combines a global and a local weight vector into one normalized
// effective vector. A degenerate raw sum falls back to the uniform vector
// inside Normalize.
func Blend(global, local recommend.ScoringWeights, cfg BlendConfig) recommend.ScoringWeights {
	raw := recommend.ScoringWeights{
		Usage:    cfg.GlobalShare*global.Usage + cfg.LocalShare*local.Usage,
		Recency:  cfg.GlobalShare*global.Recency + cfg.LocalShare*local.Recency,
		Tags:     cfg.GlobalShare*global.Tags + cfg.LocalShare*local.Tags,
		Category: cfg.GlobalShare*global.Category + cfg.LocalShare*local.Category,
	}
	return raw.Normalize()
}

// EffectiveWeights is the resolved weight state of one profile: the base
// vector, the learned vector, and their blend.
type EffectiveWeights struct {
	// Profile is the profile name.
	Profile string `json:"profile"`

	// Global is the profile's default weight vector.
	Global recommend.ScoringWeights `json:"global"`

	// Local is the profile's learned weight vector. Equals Global until
	// the first reinforcement lands.
	Local recommend.ScoringWeights `json:"local"`

	// Effective is the normalized blend scoring should use.
	Effective recommend.ScoringWeights `json:"effective"`

	// AdjustmentCount is how many reinforcements shaped Local.
	AdjustmentCount int `json:"adjustment_count"`

	// ComputedAt is when the blend was computed.
	ComputedAt time.Time `json:"computed_at"`
}
