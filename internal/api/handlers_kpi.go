// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/metrics"
)

// KPIImpressions handles POST /api/v1/kpi/impressions. Each non-empty
// preset ID counts one impression and stamps the preset for
// time-to-select measurement; empty IDs are skipped, not rejected.
func (h *Handler) KPIImpressions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ImpressionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	recorded := h.manager.RecordImpression(req.PresetIDs)
	metrics.RecordImpressions(recorded)

	rw.Success(map[string]interface{}{
		"recorded": recorded,
	})
}

// KPISelections handles POST /api/v1/kpi/selections. A selection whose
// preset was shown earlier in the session consumes that impression stamp
// into the time-to-select samples.
func (h *Handler) KPISelections(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rw.BadRequest("Invalid request body")
		return
	}

	if apiErr := validateRequest(req.validation()); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	timeToSelect, sampled := h.manager.RecordSelection(req.PresetID, req.Rank)
	metrics.RecordSelection(timeToSelect, sampled)

	response := map[string]interface{}{
		"sampled": sampled,
	}
	if sampled {
		response["time_to_select_ms"] = timeToSelect.Milliseconds()
	}
	rw.Success(response)
}

// KPI handles GET /api/v1/kpi. The snapshot covers the current session
// only; reset starts a new one.
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(h.manager.KPI())
}

// KPIReset handles POST /api/v1/kpi/reset. Admin only.
func (h *Handler) KPIReset(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	h.manager.ResetKPI()
	kpi := h.manager.KPI()

	logging.Info().Str("session_id", kpi.SessionID).Msg("KPI metrics reset")

	rw.Success(map[string]interface{}{
		"session_id": kpi.SessionID,
		"reset_at":   kpi.UpdatedAt,
	})
}

// AnalyticsExport handles GET /api/v1/analytics/export.
//
// The response is the versioned analytics document itself rather than
// the standard envelope; consumers pin on the document's own version
// field. ?download=true serves it as a timestamped attachment.
func (h *Handler) AnalyticsExport(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	data, err := h.manager.ExportAnalyticsJSON()
	if err != nil {
		logging.Error().Err(err).Msg("Analytics export failed")
		rw.InternalError("Failed to build analytics export")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if r.URL.Query().Get("download") == "true" {
		filename := "presage-analytics-" + time.Now().UTC().Format("20060102-150405") + ".json"
		w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write analytics export")
	}
}
