// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tomtom215/presage/internal/recommend"
)

func TestWeightProfiles_ListsCatalog(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/profiles", nil)
	rec := httptest.NewRecorder()
	h.WeightProfiles(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["default"] != recommend.ProfileModerate {
		t.Errorf("Default profile = %v, want %s", data["default"], recommend.ProfileModerate)
	}

	profiles, ok := data["profiles"].([]interface{})
	if !ok {
		t.Fatalf("profiles field is %T, want array", data["profiles"])
	}
	if len(profiles) != 3 {
		t.Fatalf("Profile count = %d, want 3", len(profiles))
	}

	defaults := 0
	for _, raw := range profiles {
		entry, ok := raw.(map[string]interface{})
		if !ok {
			t.Fatalf("profile entry is %T, want map", raw)
		}
		if isDefault, _ := entry["default"].(bool); isDefault {
			defaults++
			if entry["name"] != recommend.ProfileModerate {
				t.Errorf("Default entry name = %v, want %s", entry["name"], recommend.ProfileModerate)
			}
		}
		if _, hasWeights := entry["weights"].(map[string]interface{}); !hasWeights {
			t.Errorf("Entry %v missing weights object", entry["name"])
		}
	}
	if defaults != 1 {
		t.Errorf("Default entry count = %d, want exactly 1", defaults)
	}
}

func TestWeightsEffective_DefaultBlend(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/moderate", nil)
	req = withURLParam(req, "profile", recommend.ProfileModerate)
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["profile"] != recommend.ProfileModerate {
		t.Errorf("Profile = %v, want %s", data["profile"], recommend.ProfileModerate)
	}

	// No reinforcements yet, so the blend collapses to the profile
	// defaults regardless of shares.
	effective, ok := data["effective"].(map[string]interface{})
	if !ok {
		t.Fatalf("effective field is %T, want map", data["effective"])
	}
	if usage, _ := effective["usage"].(float64); usage < 0.29 || usage > 0.31 {
		t.Errorf("Effective usage = %v, want moderate default 0.30", effective["usage"])
	}
}

func TestWeightsEffective_UnknownProfileResolves(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/mystery", nil)
	req = withURLParam(req, "profile", "mystery")
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200 for unknown profile\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	if data["profile"] != "mystery" {
		t.Errorf("Profile = %v, want the requested name echoed back", data["profile"])
	}
}

func TestWeightsEffective_CustomBlendShares(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/moderate?alpha=1&beta=0", nil)
	req = withURLParam(req, "profile", recommend.ProfileModerate)
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200\nbody: %s", rec.Code, rec.Body.String())
	}

	data := dataMap(t, decodeResponse(t, rec))
	global, _ := data["global"].(map[string]interface{})
	effective, _ := data["effective"].(map[string]interface{})
	if global == nil || effective == nil {
		t.Fatal("Expected global and effective weight objects")
	}
	for _, signal := range []string{"usage", "recency", "tags", "category"} {
		g, _ := global[signal].(float64)
		e, _ := effective[signal].(float64)
		if diff := g - e; diff > 0.001 || diff < -0.001 {
			t.Errorf("Effective %s = %v, want global share only (%v)", signal, e, g)
		}
	}
}

func TestWeightsEffective_OutOfRangeAlpha(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/moderate?alpha=-1", nil)
	req = withURLParam(req, "profile", recommend.ProfileModerate)
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400 for negative alpha", rec.Code)
	}
}

func TestWeightsEffective_UnparsableAlphaIgnored(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/moderate?alpha=lots", nil)
	req = withURLParam(req, "profile", recommend.ProfileModerate)
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Status = %d, want 200 with unparsable alpha degrading to the configured blend", rec.Code)
	}
}

func TestWeightsEffective_MissingProfile(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weights/effective/", nil)
	rec := httptest.NewRecorder()
	h.WeightsEffective(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400 for empty profile segment", rec.Code)
	}
}
