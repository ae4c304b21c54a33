// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/recommend"
)

// AnalyticsExportVersion is the schema version of the export document.
const AnalyticsExportVersion = "1.0"

// PresetRollup condenses one preset's feedback into analytics form.
type PresetRollup struct {
	// PresetID is the preset.
	PresetID string `json:"preset_id"`

	// Shown counts recommendation impressions that carried feedback.
	Shown int `json:"shown"`

	// Clicks counts times the preset was selected.
	Clicks int `json:"clicks"`

	// Upvotes and Downvotes are the explicit rating counters.
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`

	// ImplicitScore, ExplicitScore, and CombinedScore are the Bayesian
	// posteriors at export time.
	ImplicitScore float64 `json:"implicit_score"`
	ExplicitScore float64 `json:"explicit_score"`
	CombinedScore float64 `json:"combined_score"`

	// WilsonLowerBound is the pooled 95% confidence floor.
	WilsonLowerBound float64 `json:"wilson_lower_bound"`
}

// ProfileRollup condenses one profile's weight state into analytics form.
type ProfileRollup struct {
	// Profile is the profile name.
	Profile string `json:"profile"`

	// Base is the profile's default vector.
	Base recommend.ScoringWeights `json:"base"`

	// Local is the learned vector.
	Local recommend.ScoringWeights `json:"local"`

	// Effective is the current default-blend result.
	Effective recommend.ScoringWeights `json:"effective"`

	// AdjustmentCount is how many reinforcements shaped Local.
	AdjustmentCount int `json:"adjustment_count"`
}

// AnalyticsExport is the versioned document downstream training and
// dashboards consume. It is self-contained and read-only for consumers.
type AnalyticsExport struct {
	// Version is the schema version, currently "1.0".
	Version string `json:"version"`

	// ExportedAt is when the document was assembled.
	ExportedAt time.Time `json:"exported_at"`

	// Presets holds per-preset rollups sorted by preset ID.
	Presets []PresetRollup `json:"presets"`

	// Profiles holds per-profile rollups sorted by profile name.
	Profiles []ProfileRollup `json:"profiles"`

	// KPIs is the session metrics at export time.
	KPIs KPIMetrics `json:"kpis"`

	// Feedback is the full raw feedback export.
	Feedback feedback.Export `json:"feedback"`
}

// ExportFromSnapshot assembles the analytics document from a sync
// snapshot. Rollups are derived from the snapshot alone, so consumers
// holding a snapshot (sync hooks, the warehouse tier) produce the same
// document the manager would.
func ExportFromSnapshot(snap Snapshot) AnalyticsExport {
	presets := make([]PresetRollup, 0, len(snap.Feedback.Stats))
	for id, stats := range snap.Feedback.Stats {
		presets = append(presets, PresetRollup{
			PresetID:         id,
			Shown:            stats.Shown,
			Clicks:           stats.Selected,
			Upvotes:          stats.Upvotes,
			Downvotes:        stats.Downvotes,
			ImplicitScore:    stats.ImplicitScore,
			ExplicitScore:    stats.ExplicitScore,
			CombinedScore:    stats.CombinedScore,
			WilsonLowerBound: stats.WilsonLowerBound,
		})
	}
	sort.Slice(presets, func(i, j int) bool { return presets[i].PresetID < presets[j].PresetID })

	profiles := make([]ProfileRollup, 0, len(snap.Profiles))
	for name, ew := range snap.Profiles {
		profiles = append(profiles, ProfileRollup{
			Profile:         name,
			Base:            ew.Global,
			Local:           ew.Local,
			Effective:       ew.Effective,
			AdjustmentCount: ew.AdjustmentCount,
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Profile < profiles[j].Profile })

	return AnalyticsExport{
		Version:    AnalyticsExportVersion,
		ExportedAt: snap.CreatedAt,
		Presets:    presets,
		Profiles:   profiles,
		KPIs:       snap.KPI,
		Feedback:   snap.Feedback,
	}
}

// BuildAnalyticsExport assembles the full analytics document from the
// feedback store, the learned weight state, and the session KPIs.
func (m *Manager) BuildAnalyticsExport() AnalyticsExport {
	return ExportFromSnapshot(m.buildSnapshot())
}

// ExportAnalyticsJSON serializes the analytics document.
func (m *Manager) ExportAnalyticsJSON() ([]byte, error) {
	data, err := json.Marshal(m.BuildAnalyticsExport())
	if err != nil {
		return nil, fmt.Errorf("marshal analytics export: %w", err)
	}
	return data, nil
}
