// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestScorer(t *testing.T, cfg *Config) *Scorer {
	t.Helper()
	s, err := NewScorer(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	return s
}

func testPresets(now time.Time) []Preset {
	recent := now.Add(-24 * time.Hour)
	stale := now.Add(-29 * 24 * time.Hour)

	return []Preset{
		{ID: "p-hot", Category: CategoryRisk, Tags: []string{"audit", "quarterly"}, UsageCount: 100, LastUsed: &recent},
		{ID: "p-warm", Category: CategoryRisk, Tags: []string{"audit"}, UsageCount: 40, LastUsed: &stale},
		{ID: "p-cold", Category: CategoryReporting, Tags: []string{"latency"}, UsageCount: 1, LastUsed: nil},
	}
}

func TestNewScorer(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *Config
		wantErr bool
	}{
		{name: "nil config uses defaults", cfg: nil, wantErr: false},
		{name: "valid config", cfg: DefaultConfig(), wantErr: false},
		{name: "zero memo ttl rejected", cfg: &Config{RecencyWindow: time.Hour, MemoTTL: 0, MemoCapacity: 10}, wantErr: true},
		{name: "zero memo capacity rejected", cfg: &Config{RecencyWindow: time.Hour, MemoTTL: time.Minute, MemoCapacity: 0}, wantErr: true},
		{name: "zero recency window rejected", cfg: &Config{RecencyWindow: 0, MemoTTL: time.Minute, MemoCapacity: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewScorer(tt.cfg, zerolog.Nop())
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewScorer() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && s == nil {
				t.Fatal("NewScorer() returned nil scorer")
			}
		})
	}
}

func TestScorer_ScoreRanking(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)

	result := s.Score(testPresets(now), Context{
		Category: CategoryRisk,
		Tags:     []string{"audit", "quarterly"},
	}, Options{Now: now})

	if len(result.Presets) != 3 {
		t.Fatalf("len(Presets) = %d, want 3", len(result.Presets))
	}

	if result.Presets[0].PresetID != "p-hot" {
		t.Errorf("top preset = %q, want p-hot", result.Presets[0].PresetID)
	}
	if result.Presets[2].PresetID != "p-cold" {
		t.Errorf("bottom preset = %q, want p-cold", result.Presets[2].PresetID)
	}

	for i := 1; i < len(result.Presets); i++ {
		if result.Presets[i].Score > result.Presets[i-1].Score {
			t.Errorf("presets not sorted: %f at %d above %f at %d",
				result.Presets[i].Score, i, result.Presets[i-1].Score, i-1)
		}
	}

	for _, sp := range result.Presets {
		if sp.Score < 0 || sp.Score > 1 {
			t.Errorf("preset %s score = %f, want in [0, 1]", sp.PresetID, sp.Score)
		}
		if len(sp.Reasons) == 0 {
			t.Errorf("preset %s has no reasons", sp.PresetID)
		}
	}
}

func TestScorer_ScoreDeterministicTieBreak(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)

	// Identical presets except for ID tie-break on equal scores.
	presets := []Preset{
		{ID: "p-b", Category: CategoryRisk, UsageCount: 10},
		{ID: "p-a", Category: CategoryRisk, UsageCount: 10},
		{ID: "p-c", Category: CategoryRisk, UsageCount: 10},
	}

	result := s.Score(presets, Context{}, Options{Now: now})

	want := []string{"p-a", "p-b", "p-c"}
	for i, id := range want {
		if result.Presets[i].PresetID != id {
			t.Errorf("Presets[%d] = %q, want %q", i, result.Presets[i].PresetID, id)
		}
	}
}

func TestScorer_MemoIdempotence(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)
	ctx := Context{Category: CategoryRisk, Tags: []string{"audit"}}

	first := s.Score(presets, ctx, Options{Now: now})
	second := s.Score(presets, ctx, Options{Now: now.Add(5 * time.Second)})

	if !second.ComputedAt.Equal(first.ComputedAt) {
		t.Errorf("ComputedAt changed on memo hit: %v vs %v", second.ComputedAt, first.ComputedAt)
	}
	if len(second.Presets) != len(first.Presets) {
		t.Fatalf("result length changed on memo hit: %d vs %d", len(second.Presets), len(first.Presets))
	}
	for i := range first.Presets {
		if first.Presets[i].PresetID != second.Presets[i].PresetID ||
			!almostEqual(first.Presets[i].Score, second.Presets[i].Score) {
			t.Errorf("Presets[%d] differs on memo hit: %+v vs %+v", i, first.Presets[i], second.Presets[i])
		}
	}

	m := s.Metrics()
	if m.MemoHits != 1 {
		t.Errorf("MemoHits = %d, want 1", m.MemoHits)
	}
	if m.MemoMisses != 1 {
		t.Errorf("MemoMisses = %d, want 1", m.MemoMisses)
	}
}

func TestScorer_MemoKeyedByResolvedWeights(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)

	// The moderate profile and its explicit vector resolve identically,
	// so the second call must hit the memo.
	s.Score(presets, Context{}, Options{Profile: ProfileModerate, Now: now})
	moderate := DefaultWeights()
	s.Score(presets, Context{}, Options{WeightsOverride: &moderate, Now: now.Add(time.Second)})

	if m := s.Metrics(); m.MemoHits != 1 {
		t.Errorf("MemoHits = %d, want 1 for equivalent weights", m.MemoHits)
	}

	// Different weights must miss.
	s.Score(presets, Context{}, Options{Profile: ProfileAggressive, Now: now})
	if m := s.Metrics(); m.MemoMisses != 2 {
		t.Errorf("MemoMisses = %d, want 2 after distinct weights", m.MemoMisses)
	}
}

func TestScorer_MemoExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.MemoTTL = 20 * time.Millisecond
	s := newTestScorer(t, cfg)
	presets := testPresets(now)

	s.Score(presets, Context{}, Options{Now: now})
	time.Sleep(30 * time.Millisecond)

	later := now.Add(time.Minute)
	result := s.Score(presets, Context{}, Options{Now: later})

	if !result.ComputedAt.Equal(later) {
		t.Errorf("ComputedAt = %v after expiry, want fresh %v", result.ComputedAt, later)
	}
	if m := s.Metrics(); m.MemoHits != 0 {
		t.Errorf("MemoHits = %d, want 0 after expiry", m.MemoHits)
	}
}

func TestScorer_TopN(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		maxTopN int
		topN    int
		wantLen int
	}{
		{name: "zero returns all", maxTopN: 100, topN: 0, wantLen: 3},
		{name: "truncates to top n", maxTopN: 100, topN: 2, wantLen: 2},
		{name: "top n beyond length returns all", maxTopN: 100, topN: 50, wantLen: 3},
		{name: "negative treated as all", maxTopN: 100, topN: -4, wantLen: 3},
		{name: "clamped to configured max", maxTopN: 1, topN: 3, wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.MaxTopN = tt.maxTopN
			s := newTestScorer(t, cfg)

			result := s.Score(testPresets(now), Context{}, Options{TopN: tt.topN, Now: now})
			if len(result.Presets) != tt.wantLen {
				t.Errorf("len(Presets) = %d, want %d", len(result.Presets), tt.wantLen)
			}
		})
	}
}

func TestScorer_TopNVariantsShareMemo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)

	full := s.Score(presets, Context{}, Options{Now: now})
	top1 := s.Score(presets, Context{}, Options{TopN: 1, Now: now.Add(time.Second)})

	if len(top1.Presets) != 1 {
		t.Fatalf("len(Presets) = %d, want 1", len(top1.Presets))
	}
	if top1.Presets[0].PresetID != full.Presets[0].PresetID {
		t.Errorf("truncated head = %q, want %q", top1.Presets[0].PresetID, full.Presets[0].PresetID)
	}
	if m := s.Metrics(); m.MemoHits != 1 {
		t.Errorf("MemoHits = %d, want 1; TopN must not fragment the memo", m.MemoHits)
	}
}

func TestScorer_Debug(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)

	plain := s.Score(presets, Context{}, Options{Now: now})
	if plain.Debug != nil {
		t.Error("Debug attached without IncludeDebug")
	}

	debugged := s.Score(presets, Context{}, Options{IncludeDebug: true, Profile: ProfileAggressive, Now: now})
	if debugged.Debug == nil {
		t.Fatal("Debug missing with IncludeDebug")
	}
	if debugged.Debug.Profile != ProfileAggressive {
		t.Errorf("Debug.Profile = %q, want %q", debugged.Debug.Profile, ProfileAggressive)
	}
	if debugged.Debug.Candidates != 3 {
		t.Errorf("Debug.Candidates = %d, want 3", debugged.Debug.Candidates)
	}
	if debugged.Debug.MaxUsageCount != 100 {
		t.Errorf("Debug.MaxUsageCount = %d, want 100", debugged.Debug.MaxUsageCount)
	}
}

func TestScorer_EmptyPresets(t *testing.T) {
	s := newTestScorer(t, nil)

	result := s.Score(nil, Context{}, Options{})
	if len(result.Presets) != 0 {
		t.Errorf("len(Presets) = %d for nil input, want 0", len(result.Presets))
	}
	if result.ComputedAt.IsZero() {
		t.Error("ComputedAt is zero")
	}
}

func TestScorer_ResultIsolation(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)

	first := s.Score(presets, Context{}, Options{Now: now})
	first.Presets[0].Score = -99
	first.Presets[0].Reasons[0].Detail = "tampered"

	second := s.Score(presets, Context{}, Options{Now: now})
	if second.Presets[0].Score == -99 {
		t.Error("memoized result mutated through a returned copy")
	}
	if second.Presets[0].Reasons[0].Detail == "tampered" {
		t.Error("memoized reasons mutated through a returned copy")
	}
}

func TestScorer_InvalidateMemo(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)
	presets := testPresets(now)

	s.Score(presets, Context{}, Options{Now: now})
	s.InvalidateMemo()

	later := now.Add(time.Second)
	result := s.Score(presets, Context{}, Options{Now: later})

	if !result.ComputedAt.Equal(later) {
		t.Errorf("ComputedAt = %v after invalidation, want %v", result.ComputedAt, later)
	}
	if m := s.Metrics(); m.MemoHits != 0 {
		t.Errorf("MemoHits = %d, want 0 after invalidation", m.MemoHits)
	}
}

func TestScorer_NeverUsedCatalogDegrades(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := newTestScorer(t, nil)

	// No usage anywhere: usage ceiling is zero, nothing has been used.
	presets := []Preset{
		{ID: "p-1", Category: CategoryAnalytics},
		{ID: "p-2", Category: CategoryMonitoring},
	}

	result := s.Score(presets, Context{Category: CategoryAnalytics}, Options{Now: now})

	for _, sp := range result.Presets {
		if sp.Breakdown.Usage != 0 {
			t.Errorf("preset %s usage signal = %f, want 0", sp.PresetID, sp.Breakdown.Usage)
		}
		if sp.Breakdown.Recency != 0 {
			t.Errorf("preset %s recency signal = %f, want 0", sp.PresetID, sp.Breakdown.Recency)
		}
	}
	if result.Presets[0].PresetID != "p-1" {
		t.Errorf("top preset = %q, want category match p-1", result.Presets[0].PresetID)
	}
}
