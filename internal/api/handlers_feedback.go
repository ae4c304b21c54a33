// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/metrics"
)

// feedbackResponse is the payload of the feedback recording endpoints.
// Adjustment is present when the event triggered automatic
// reinforcement.
type feedbackResponse struct {
	Event      feedback.Event             `json:"event"`
	Adjustment *feedback.WeightAdjustment `json:"adjustment,omitempty"`
}

// FeedbackImplicit handles POST /api/v1/feedback/implicit.
//
// When the recommendation data carries a score breakdown, reinforcement
// is applied automatically for the request's profile (or the configured
// default), so selections and ignores shape the learned weights without
// a separate reinforce call.
func (h *Handler) FeedbackImplicit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ImplicitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	typ := feedback.Type(req.Type)
	event, err := h.store.RecordImplicit(req.PresetID, typ, req.Context, req.Recommendation)
	if err != nil {
		h.respondFeedbackError(rw, err)
		return
	}

	metrics.RecordFeedbackEvent("implicit", req.Type)

	var adjustment *feedback.WeightAdjustment
	if req.Recommendation != nil && req.Recommendation.Breakdown != nil {
		profile := h.resolveProfile(req.Profile)
		adj := h.manager.Reinforce(profile, req.PresetID, typ, *req.Recommendation.Breakdown)
		adjustment = &adj
		metrics.RecordWeightAdjustment(profile, adj.Applied)
		if h.hub != nil {
			h.hub.BroadcastWeightsAdjusted(profile, req.PresetID, req.Type, adj.Applied, adj.Reason)
		}
	}

	if h.hub != nil {
		h.hub.BroadcastFeedbackRecorded(req.PresetID, req.Type, "implicit", h.store.ShouldFilterPreset(req.PresetID))
	}

	rw.Created(feedbackResponse{Event: event, Adjustment: adjustment})
}

// FeedbackExplicit handles POST /api/v1/feedback/explicit.
//
// Explicit events carry no recommendation breakdown, so they never
// reinforce automatically; the reinforce endpoint exists for that.
// A hide event permanently filters the preset from future scoring.
func (h *Handler) FeedbackExplicit(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ExplicitFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	typ := feedback.Type(req.Type)
	event, err := h.store.RecordExplicit(req.PresetID, typ, req.Context)
	if err != nil {
		h.respondFeedbackError(rw, err)
		return
	}

	metrics.RecordFeedbackEvent("explicit", req.Type)

	filtered := h.store.ShouldFilterPreset(req.PresetID)
	if typ == feedback.TypeHide {
		metrics.SetFilteredPresets(len(h.store.FilteredPresets()))
	}

	if h.hub != nil {
		h.hub.BroadcastFeedbackRecorded(req.PresetID, req.Type, "explicit", filtered)
	}

	rw.Created(feedbackResponse{Event: event})
}

// FeedbackStats handles GET /api/v1/feedback/stats/{presetID}.
func (h *Handler) FeedbackStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	presetID := chi.URLParam(r, "presetID")
	if presetID == "" {
		rw.BadRequest("Missing preset id")
		return
	}

	stats, ok := h.store.Stats(presetID)
	if !ok {
		rw.NotFound("No feedback recorded for preset")
		return
	}

	rw.Success(stats)
}

// FeedbackStatsAll handles GET /api/v1/feedback/stats.
func (h *Handler) FeedbackStatsAll(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.store.AllStats())
}

// FeedbackFiltered handles GET /api/v1/feedback/filtered. The response
// lists the preset ids hidden from scoring, sorted.
func (h *Handler) FeedbackFiltered(w http.ResponseWriter, r *http.Request) {
	filtered := h.store.FilteredPresets()
	NewResponseWriter(w, r).Success(map[string]interface{}{
		"preset_ids": filtered,
		"count":      len(filtered),
	})
}

// FeedbackEvents handles GET /api/v1/feedback/events with offset
// pagination over the bounded event history, oldest first.
func (h *Handler) FeedbackEvents(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit := getIntParam(r, "limit", h.defaultPageSize())
	offset := getIntParam(r, "offset", 0)

	v := EventsRequestValidation{Limit: limit, Offset: offset}
	if apiErr := validateRequest(&v); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	if max := h.maxPageSize(); max > 0 && limit > max {
		limit = max
	}

	events := h.store.Events()
	total := len(events)

	page := []feedback.Event{}
	if offset < total {
		end := offset + limit
		if end > total {
			end = total
		}
		page = events[offset:end]
	}

	rw.SuccessWithPagination(page, &PaginationMeta{
		Total:   int64(total),
		Count:   len(page),
		Offset:  offset,
		Limit:   limit,
		HasMore: offset+len(page) < total,
	})
}

// Reinforce handles POST /api/v1/reinforce. Admin-only: it moves
// learned weights directly from a supplied breakdown, outside the
// feedback recording path.
func (h *Handler) Reinforce(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ReinforceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	adj := h.manager.Reinforce(req.Profile, req.PresetID, feedback.Type(req.Type), req.Breakdown)
	metrics.RecordWeightAdjustment(req.Profile, adj.Applied)
	if h.hub != nil {
		h.hub.BroadcastWeightsAdjusted(req.Profile, req.PresetID, req.Type, adj.Applied, adj.Reason)
	}

	rw.Success(adj)
}

// respondFeedbackError maps store recording errors onto HTTP statuses.
func (h *Handler) respondFeedbackError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, feedback.ErrInvalidType), errors.Is(err, feedback.ErrEmptyPresetID):
		rw.BadRequest(err.Error())
	default:
		rw.InternalError("Failed to record feedback")
	}
}

func (h *Handler) defaultPageSize() int {
	if h.config != nil && h.config.API.DefaultPageSize > 0 {
		return h.config.API.DefaultPageSize
	}
	return 100
}

func (h *Handler) maxPageSize() int {
	if h.config != nil && h.config.API.MaxPageSize > 0 {
		return h.config.API.MaxPageSize
	}
	return 1000
}
