// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestKPIImpressions_RecordsBatch(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := postJSON(t, "/api/v1/kpi/impressions", ImpressionsRequest{
		PresetIDs: []string{"latency-dash", "alert-rules", "sox-audit"},
	})
	rec := httptest.NewRecorder()
	h.KPIImpressions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if recorded, _ := data["recorded"].(float64); recorded != 3 {
		t.Errorf("Recorded = %v, want 3", data["recorded"])
	}

	if kpi := h.manager.KPI(); kpi.Impressions != 3 {
		t.Errorf("KPI impressions = %d, want 3", kpi.Impressions)
	}
}

func TestKPIImpressions_SkipsEmptyIDs(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := postJSON(t, "/api/v1/kpi/impressions", ImpressionsRequest{
		PresetIDs: []string{"latency-dash", "", "alert-rules"},
	})
	rec := httptest.NewRecorder()
	h.KPIImpressions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	data := dataMap(t, decodeResponse(t, rec))
	if recorded, _ := data["recorded"].(float64); recorded != 2 {
		t.Errorf("Recorded = %v, want 2 with one empty ID skipped", data["recorded"])
	}
}

func TestKPIImpressions_EmptyBatch(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := postJSON(t, "/api/v1/kpi/impressions", ImpressionsRequest{PresetIDs: []string{}})
	rec := httptest.NewRecorder()
	h.KPIImpressions(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400 for empty batch", rec.Code)
	}
}

func TestKPISelections_ConsumesImpressionStamp(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	impReq := postJSON(t, "/api/v1/kpi/impressions", ImpressionsRequest{
		PresetIDs: []string{"latency-dash"},
	})
	h.KPIImpressions(httptest.NewRecorder(), impReq)

	req := postJSON(t, "/api/v1/kpi/selections", SelectionRequest{
		PresetID: "latency-dash",
		Rank:     1,
	})
	rec := httptest.NewRecorder()
	h.KPISelections(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if sampled, _ := data["sampled"].(bool); !sampled {
		t.Fatal("Expected selection to consume the impression stamp")
	}
	if _, ok := data["time_to_select_ms"]; !ok {
		t.Error("Expected time_to_select_ms for a sampled selection")
	}

	kpi := h.manager.KPI()
	if kpi.Selections != 1 {
		t.Errorf("KPI selections = %d, want 1", kpi.Selections)
	}
	if kpi.HitAt1 != 1 {
		t.Errorf("KPI hit@1 = %d, want 1 for a rank-1 selection", kpi.HitAt1)
	}
}

func TestKPISelections_WithoutImpression(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := postJSON(t, "/api/v1/kpi/selections", SelectionRequest{
		PresetID: "never-shown",
		Rank:     2,
	})
	rec := httptest.NewRecorder()
	h.KPISelections(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if sampled, _ := data["sampled"].(bool); sampled {
		t.Error("Expected no sample without a prior impression")
	}
	if _, ok := data["time_to_select_ms"]; ok {
		t.Error("Expected no time_to_select_ms without a sample")
	}
}

func TestKPISelections_InvalidRank(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := postJSON(t, "/api/v1/kpi/selections", SelectionRequest{
		PresetID: "latency-dash",
		Rank:     0,
	})
	rec := httptest.NewRecorder()
	h.KPISelections(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400 for zero rank", rec.Code)
	}
}

func TestKPIReset_StartsNewSession(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	before := h.manager.KPI()

	impReq := postJSON(t, "/api/v1/kpi/impressions", ImpressionsRequest{
		PresetIDs: []string{"latency-dash"},
	})
	h.KPIImpressions(httptest.NewRecorder(), impReq)

	req := postJSON(t, "/api/v1/kpi/reset", nil)
	rec := httptest.NewRecorder()
	h.KPIReset(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	sessionID, _ := data["session_id"].(string)
	if sessionID == "" || sessionID == before.SessionID {
		t.Errorf("Session ID = %q, want a fresh session after reset", sessionID)
	}
	if _, ok := data["reset_at"]; !ok {
		t.Error("Expected reset_at in response")
	}

	if kpi := h.manager.KPI(); kpi.Impressions != 0 {
		t.Errorf("KPI impressions after reset = %d, want 0", kpi.Impressions)
	}
}

func TestAnalyticsExport_ServesVersionedDocument(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export", nil)
	rec := httptest.NewRecorder()
	h.AnalyticsExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	// The export bypasses the response envelope.
	var doc map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &doc); err != nil {
		t.Fatalf("Export is not valid JSON: %v", err)
	}
	if doc["version"] != "1.0" {
		t.Errorf("Export version = %v, want 1.0", doc["version"])
	}
	if _, enveloped := doc["success"]; enveloped {
		t.Error("Expected the raw document, not the API envelope")
	}
	for _, key := range []string{"exported_at", "presets", "profiles", "kpis", "feedback"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("Export missing %q section", key)
		}
	}
}

func TestAnalyticsExport_DownloadDisposition(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/export?download=true", nil)
	rec := httptest.NewRecorder()
	h.AnalyticsExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.HasPrefix(disposition, `attachment; filename="presage-analytics-`) {
		t.Errorf("Content-Disposition = %q, want timestamped attachment", disposition)
	}
}
