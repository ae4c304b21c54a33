// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

import (
	"strings"
	"time"
)

// Category classifies a preset within the fixed catalog taxonomy.
type Category string

const (
	// CategoryAnalytics covers dashboards and ad-hoc analysis presets.
	CategoryAnalytics Category = "analytics"
	// CategoryMonitoring covers live monitoring and alerting presets.
	CategoryMonitoring Category = "monitoring"
	// CategoryCompliance covers regulatory and audit presets.
	CategoryCompliance Category = "compliance"
	// CategoryRisk covers risk assessment presets.
	CategoryRisk Category = "risk"
	// CategoryReporting covers scheduled reporting presets.
	CategoryReporting Category = "reporting"
	// CategoryOperations covers operational workflow presets.
	CategoryOperations Category = "operations"
)

// Valid reports whether the category is one of the six known values.
func (c Category) Valid() bool {
	switch c {
	case CategoryAnalytics, CategoryMonitoring, CategoryCompliance,
		CategoryRisk, CategoryReporting, CategoryOperations:
		return true
	default:
		return false
	}
}

// Equals compares categories case-insensitively.
func (c Category) Equals(other Category) bool {
	return strings.EqualFold(string(c), string(other))
}

// Preset is an immutable scoring candidate owned by an external catalog.
type Preset struct {
	// ID is the unique preset identifier.
	ID string `json:"id"`

	// Category is one of the six catalog categories.
	Category Category `json:"category"`

	// Tags is a set of free-form labels attached to the preset.
	Tags []string `json:"tags,omitempty"`

	// UsageCount is how many times the preset has been applied.
	UsageCount int `json:"usage_count"`

	// LastUsed is when the preset was last applied. Nil means never used.
	LastUsed *time.Time `json:"last_used,omitempty"`
}

// Context carries the optional targeting information for one scoring call.
type Context struct {
	// Category is the requested target category, if any.
	Category Category `json:"category,omitempty"`

	// Tags is the set of tags describing the current situation.
	Tags []string `json:"tags,omitempty"`
}

// ScoreBreakdown holds the four independent signals, each in [0, 1].
type ScoreBreakdown struct {
	// Usage is the preset's usage count relative to the busiest sibling.
	Usage float64 `json:"usage"`

	// Recency is the exponential-decay score since last use.
	Recency float64 `json:"recency"`

	// Tags is the Jaccard similarity against the context tags.
	Tags float64 `json:"tags"`

	// Category is the category match score (1 match, 0 mismatch, 0.5 neutral).
	Category float64 `json:"category"`
}

// ScoringWeights is the relative contribution of each signal.
// After Normalize or weight resolution the four values sum to 1.0.
type ScoringWeights struct {
	// Usage is the weight of the usage signal.
	Usage float64 `json:"usage"`

	// Recency is the weight of the recency signal.
	Recency float64 `json:"recency"`

	// Tags is the weight of the tag-similarity signal.
	Tags float64 `json:"tags"`

	// Category is the weight of the category-match signal.
	Category float64 `json:"category"`
}

// Sum returns the total of the four weights.
func (w ScoringWeights) Sum() float64 {
	return w.Usage + w.Recency + w.Tags + w.Category
}

// IsZero reports whether all four weights are zero.
func (w ScoringWeights) IsZero() bool {
	return w.Usage == 0 && w.Recency == 0 && w.Tags == 0 && w.Category == 0
}

// Normalize returns a copy with weights scaled to sum to 1.0.
// A non-positive sum falls back to the uniform vector rather than dividing.
func (w ScoringWeights) Normalize() ScoringWeights {
	sum := w.Sum()
	if sum <= 0 {
		const uniform = 0.25
		return ScoringWeights{Usage: uniform, Recency: uniform, Tags: uniform, Category: uniform}
	}

	return ScoringWeights{
		Usage:    w.Usage / sum,
		Recency:  w.Recency / sum,
		Tags:     w.Tags / sum,
		Category: w.Category / sum,
	}
}

// Apply computes the weighted sum of a breakdown under these weights.
func (w ScoringWeights) Apply(b ScoreBreakdown) float64 {
	return w.Usage*b.Usage + w.Recency*b.Recency + w.Tags*b.Tags + w.Category*b.Category
}

// ToMap returns the weights as a signal-keyed map.
func (w ScoringWeights) ToMap() map[string]float64 {
	return map[string]float64{
		SignalUsage:    w.Usage,
		SignalRecency:  w.Recency,
		SignalTags:     w.Tags,
		SignalCategory: w.Category,
	}
}

// Signal names used in partial-weight maps, breakdowns, and explanations.
const (
	SignalUsage    = "usage"
	SignalRecency  = "recency"
	SignalTags     = "tags"
	SignalCategory = "category"
)

// Strength classifies how strongly a signal contributed to a score.
type Strength string

const (
	// StrengthHigh marks a signal scoring at or above 0.75.
	StrengthHigh Strength = "high"
	// StrengthMedium marks a signal scoring at or above 0.40.
	StrengthMedium Strength = "medium"
	// StrengthLow marks a signal below 0.40.
	StrengthLow Strength = "low"
)

// Reason is one human-readable element of a score explanation.
type Reason struct {
	// Signal names the contributing signal, or "overall" for the
	// generic placeholder when no signal stands out.
	Signal string `json:"signal"`

	// Strength is the classified contribution level.
	Strength Strength `json:"strength"`

	// Detail is the human-readable explanation text.
	Detail string `json:"detail"`
}

// ScoredPreset is one ranked entry of a recommendation result.
type ScoredPreset struct {
	// PresetID identifies the scored preset.
	PresetID string `json:"preset_id"`

	// Score is the combined weighted score in [0, 1].
	Score float64 `json:"score"`

	// Breakdown is the per-signal decomposition of the score.
	Breakdown ScoreBreakdown `json:"breakdown"`

	// Reasons explains the score; only non-low signals are surfaced.
	Reasons []Reason `json:"reasons"`
}

// Result is the outcome of one scoring call.
type Result struct {
	// Presets is the ranked list, highest score first. Ties break on
	// preset ID for deterministic output.
	Presets []ScoredPreset `json:"presets"`

	// ComputedAt is when the result was computed. Memoized results keep
	// the timestamp of the original computation.
	ComputedAt time.Time `json:"computed_at"`

	// Debug carries diagnostic detail when requested via Options.
	Debug *DebugInfo `json:"debug,omitempty"`
}

// DebugInfo is the optional diagnostic payload of a Result.
type DebugInfo struct {
	// Profile is the profile name the weights were resolved from, or
	// "override" / "partial" when explicit weights were supplied.
	Profile string `json:"profile"`

	// ResolvedWeights is the normalized weight vector actually applied.
	ResolvedWeights ScoringWeights `json:"resolved_weights"`

	// Candidates is the number of presets scored.
	Candidates int `json:"candidates"`

	// MaxUsageCount is the usage ceiling the usage signal normalized against.
	MaxUsageCount int `json:"max_usage_count"`
}

// Options controls a single scoring call.
type Options struct {
	// TopN truncates the ranked list when positive; zero returns all.
	TopN int `json:"top_n,omitempty"`

	// Profile selects a named weight profile. Ignored when
	// WeightsOverride is set. Unknown names degrade to the default chain.
	Profile string `json:"profile,omitempty"`

	// Weights is a partial signal-keyed weight map merged over the
	// moderate defaults. Lowest priority of the three weight inputs.
	Weights map[string]float64 `json:"weights,omitempty"`

	// WeightsOverride is a full weight vector used verbatim after
	// normalization. Highest priority.
	WeightsOverride *ScoringWeights `json:"weights_override,omitempty"`

	// IncludeDebug attaches the DebugInfo payload to the result.
	IncludeDebug bool `json:"include_debug,omitempty"`

	// Now overrides the clock for recency scoring and timestamps.
	// Zero means time.Now().
	Now time.Time `json:"-"`
}
