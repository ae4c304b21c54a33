// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/recommend"
)

// Score handles POST /api/v1/score.
//
// The caller supplies the candidate presets; the engine owns no preset
// inventory. Hidden presets are dropped from the candidate set before
// scoring. When the request names no explicit weights, the profile's
// blended effective weights (defaults plus learned adjustments) are
// resolved through the sync manager so reinforcement feedback shapes
// subsequent rankings.
func (h *Handler) Score(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	start := time.Now()

	var req ScoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	for i, p := range req.Presets {
		if p.ID == "" {
			rw.BadRequestWithDetails("Preset without id", map[string]interface{}{"index": i})
			return
		}
		if p.Category != "" && !p.Category.Valid() {
			rw.BadRequestWithDetails("Unknown preset category", map[string]interface{}{
				"index":    i,
				"category": string(p.Category),
			})
			return
		}
	}

	candidates := h.filterHidden(req.Presets)
	profile := h.resolveProfile(req.Options.Profile)

	opts := req.Options
	usedEffective := false
	if opts.WeightsOverride == nil && len(opts.Weights) == 0 {
		ew := h.manager.EffectiveWeights(profile, nil)
		opts.WeightsOverride = &ew.Effective
		usedEffective = true
	}

	result := h.scorer.Score(candidates, req.Context, opts)
	if usedEffective && result.Debug != nil {
		// The override came from profile resolution, not the caller;
		// report the profile the weights were blended for.
		result.Debug.Profile = profile
	}

	topPresetID := ""
	if len(result.Presets) > 0 {
		topPresetID = result.Presets[0].PresetID
	}

	metrics.RecordRecommendation(profile, len(result.Presets), time.Since(start), false)
	if h.hub != nil {
		h.hub.BroadcastRecommendationServed(profile, len(result.Presets), topPresetID)
	}

	rw.Success(result)
}

// filterHidden drops presets the feedback store has marked hidden.
func (h *Handler) filterHidden(presets []recommend.Preset) []recommend.Preset {
	if h.store == nil {
		return presets
	}

	out := presets[:0:0]
	for _, p := range presets {
		if !h.store.ShouldFilterPreset(p.ID) {
			out = append(out, p)
		}
	}
	return out
}

// resolveProfile falls back to the configured default profile, then the
// engine default, for requests that name none.
func (h *Handler) resolveProfile(requested string) string {
	if requested != "" {
		return requested
	}
	if h.config != nil && h.config.Engine.DefaultProfile != "" {
		return h.config.Engine.DefaultProfile
	}
	return recommend.ProfileModerate
}
