// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/weightsync"
)

// profileEntry pairs a profile name with its default weight vector.
type profileEntry struct {
	Name    string                   `json:"name"`
	Weights recommend.ScoringWeights `json:"weights"`
	Default bool                     `json:"default"`
}

// WeightProfiles handles GET /api/v1/weights/profiles. The response
// lists the named profiles with their default vectors, in the engine's
// canonical order.
func (h *Handler) WeightProfiles(w http.ResponseWriter, r *http.Request) {
	defaultProfile := h.resolveProfile("")

	names := recommend.Profiles()
	entries := make([]profileEntry, 0, len(names))
	for _, name := range names {
		weights, _ := recommend.ProfileWeights(name)
		entries = append(entries, profileEntry{
			Name:    name,
			Weights: weights,
			Default: name == defaultProfile,
		})
	}

	NewResponseWriter(w, r).Success(map[string]interface{}{
		"profiles": entries,
		"default":  defaultProfile,
	})
}

// WeightsEffective handles GET /api/v1/weights/effective/{profile}.
//
// Optional alpha/beta query parameters override the configured blend
// shares (alpha weighs the global defaults, beta the learned local
// vector). Invalid overrides degrade to the configured blend rather
// than erroring. Unknown profiles resolve from the moderate defaults,
// so the endpoint is total over profile names.
func (h *Handler) WeightsEffective(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	profile := chi.URLParam(r, "profile")
	alpha, alphaSet := getFloatParam(r, "alpha")
	beta, betaSet := getFloatParam(r, "beta")

	v := EffectiveWeightsRequestValidation{Profile: profile, Alpha: alpha, Beta: beta}
	if apiErr := validateRequest(&v); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	var blend *weightsync.BlendConfig
	if alphaSet || betaSet {
		blend = &weightsync.BlendConfig{GlobalShare: alpha, LocalShare: beta}
	}

	start := time.Now()
	ew := h.manager.EffectiveWeights(profile, blend)

	// A cached blend carries the ComputedAt of an earlier request;
	// custom blends always bypass the cache.
	cacheHit := blend == nil && ew.ComputedAt.Before(start)
	metrics.RecordEffectiveWeights(cacheHit)

	rw.Success(ew)
}
