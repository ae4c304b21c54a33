// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package feedback

import (
	"time"

	"github.com/tomtom215/presage/internal/recommend"
)

// Type classifies one feedback occurrence.
type Type string

// Implicit feedback types, derived from how the user acted on a
// recommendation without rating it.
const (
	// TypeSelected indicates the recommended preset was applied.
	TypeSelected Type = "selected"
	// TypeIgnored indicates the recommendation was shown and passed over.
	TypeIgnored Type = "ignored"
	// TypeSelectedOther indicates a different preset was applied instead.
	TypeSelectedOther Type = "selected_other"
	// TypeEngaged indicates the user interacted with the preset outside a
	// recommendation surface. Does not count as shown.
	TypeEngaged Type = "engaged"
)

// Explicit feedback types, deliberate ratings by the user.
const (
	// TypeUpvote is a positive rating.
	TypeUpvote Type = "upvote"
	// TypeDownvote is a negative rating.
	TypeDownvote Type = "downvote"
	// TypeHide removes the preset from future recommendations permanently.
	TypeHide Type = "hide"
	// TypePin anchors the preset as a favorite.
	TypePin Type = "pin"
)

// Implicit reports whether the type belongs to the implicit family.
func (t Type) Implicit() bool {
	switch t {
	case TypeSelected, TypeIgnored, TypeSelectedOther, TypeEngaged:
		return true
	default:
		return false
	}
}

// Explicit reports whether the type belongs to the explicit family.
func (t Type) Explicit() bool {
	switch t {
	case TypeUpvote, TypeDownvote, TypeHide, TypePin:
		return true
	default:
		return false
	}
}

// Valid reports whether the type is any known feedback type.
func (t Type) Valid() bool {
	return t.Implicit() || t.Explicit()
}

// Positive reports whether the type reinforces the preset's signals.
// Positive types push learned weights toward the breakdown that produced
// the recommendation; all others push away.
func (t Type) Positive() bool {
	switch t {
	case TypeSelected, TypeEngaged, TypeUpvote, TypePin:
		return true
	default:
		return false
	}
}

// RecommendationData carries the scoring context a feedback event refers
// to, captured at recommendation time.
type RecommendationData struct {
	// Rank is the 1-based position the preset held in the ranked list.
	Rank int `json:"rank,omitempty"`

	// Score is the combined score the preset received.
	Score float64 `json:"score,omitempty"`

	// Breakdown is the per-signal decomposition at recommendation time.
	// Required for reinforcement; optional otherwise.
	Breakdown *recommend.ScoreBreakdown `json:"breakdown,omitempty"`
}

// Event is an immutable record of one feedback occurrence.
type Event struct {
	// ID is the generated unique event identifier.
	ID string `json:"id"`

	// PresetID is the preset the feedback refers to.
	PresetID string `json:"preset_id"`

	// Type is the feedback type.
	Type Type `json:"type"`

	// Timestamp is when the event was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Context is the scoring context active when feedback occurred.
	Context recommend.Context `json:"context"`

	// Recommendation links the event to the recommendation it answers,
	// when the caller supplied one.
	Recommendation *RecommendationData `json:"recommendation,omitempty"`
}

// clone returns a deep copy of the event.
func (e Event) clone() Event {
	out := e
	out.Context.Tags = append([]string(nil), e.Context.Tags...)
	if e.Recommendation != nil {
		rec := *e.Recommendation
		if e.Recommendation.Breakdown != nil {
			b := *e.Recommendation.Breakdown
			rec.Breakdown = &b
		}
		out.Recommendation = &rec
	}
	return out
}

// PresetStats holds the monotonic counters and derived scores for one
// preset. Counters only grow; there is no decrement operation.
type PresetStats struct {
	// PresetID is the preset these stats describe.
	PresetID string `json:"preset_id"`

	// Shown counts recommendation impressions that carried feedback
	// (selected, ignored, selected_other). Engaged events do not count.
	Shown int `json:"shown"`

	// Selected counts "selected" events.
	Selected int `json:"selected"`

	// Ignored counts "ignored" events.
	Ignored int `json:"ignored"`

	// SelectedOther counts "selected_other" events.
	SelectedOther int `json:"selected_other"`

	// Engaged counts "engaged" events.
	Engaged int `json:"engaged"`

	// Upvotes counts "upvote" events.
	Upvotes int `json:"upvotes"`

	// Downvotes counts "downvote" events.
	Downvotes int `json:"downvotes"`

	// Hides counts "hide" events. Any value above zero permanently
	// filters the preset.
	Hides int `json:"hides"`

	// Pins counts "pin" events.
	Pins int `json:"pins"`

	// ImplicitScore is the Laplace posterior of the implicit evidence.
	ImplicitScore float64 `json:"implicit_score"`

	// ExplicitScore is the Laplace posterior of the explicit evidence.
	ExplicitScore float64 `json:"explicit_score"`

	// CombinedScore is 0.6*implicit + 0.4*explicit.
	CombinedScore float64 `json:"combined_score"`

	// WilsonLowerBound is the 95% Wilson lower bound over the pooled
	// successes and trials of both evidence families.
	WilsonLowerBound float64 `json:"wilson_lower_bound"`

	// LastEventAt is when the preset last received feedback.
	LastEventAt time.Time `json:"last_event_at"`
}

// TotalEvents returns the number of feedback events recorded for the
// preset. Shown is derived from other counters and does not contribute.
func (s PresetStats) TotalEvents() int {
	return s.Selected + s.Ignored + s.SelectedOther + s.Engaged +
		s.Upvotes + s.Downvotes + s.Hides + s.Pins
}

// WeightDeltas is the per-signal change produced by one reinforcement.
// Components may be negative; magnitudes are clamped per adjustment.
type WeightDeltas struct {
	// Usage is the delta applied to the usage weight.
	Usage float64 `json:"usage"`

	// Recency is the delta applied to the recency weight.
	Recency float64 `json:"recency"`

	// Tags is the delta applied to the tags weight.
	Tags float64 `json:"tags"`

	// Category is the delta applied to the category weight.
	Category float64 `json:"category"`
}

// IsZero reports whether all four deltas are zero.
func (d WeightDeltas) IsZero() bool {
	return d.Usage == 0 && d.Recency == 0 && d.Tags == 0 && d.Category == 0
}

// WeightAdjustment is the outcome of one ApplyReinforcement call.
type WeightAdjustment struct {
	// Profile is the recommendation profile that was adjusted.
	Profile string `json:"profile"`

	// PresetID is the preset whose feedback drove the adjustment.
	PresetID string `json:"preset_id"`

	// Type is the feedback type that drove the adjustment.
	Type Type `json:"type"`

	// Applied is false for threshold rejections and invalid input; the
	// deltas are then exactly zero and nothing was mutated.
	Applied bool `json:"applied"`

	// Deltas is the per-signal change that was applied.
	Deltas WeightDeltas `json:"deltas"`

	// Reason is the generated human-readable explanation, naming the
	// dominant contributing signal for applied adjustments.
	Reason string `json:"reason"`

	// Timestamp is when the adjustment was produced.
	Timestamp time.Time `json:"timestamp"`
}

// LearnedWeights is the per-profile record of behavioral adaptation.
type LearnedWeights struct {
	// Profile is the profile name.
	Profile string `json:"profile"`

	// Base is the weight vector the profile started from.
	Base recommend.ScoringWeights `json:"base"`

	// Adjusted is the current learned vector. Always sums to 1.0; the
	// per-component floor is soft after renormalization.
	Adjusted recommend.ScoringWeights `json:"adjusted"`

	// AdjustmentCount is how many reinforcements have been applied.
	AdjustmentCount int `json:"adjustment_count"`

	// UpdatedAt is when the profile was last adjusted.
	UpdatedAt time.Time `json:"updated_at"`
}

// Export is the full raw dump of the store, consumed by analytics.
type Export struct {
	// Stats is every tracked preset's current statistics.
	Stats map[string]PresetStats `json:"stats"`

	// Events is the bounded event history, oldest first.
	Events []Event `json:"events"`

	// Learned is every profile's learned weights.
	Learned map[string]LearnedWeights `json:"learned"`

	// Filtered is the sorted list of permanently hidden preset IDs.
	Filtered []string `json:"filtered"`
}
