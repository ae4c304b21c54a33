// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/presage/internal/ringbuf"
)

// KPIMetrics is a snapshot of recommendation quality for one session.
type KPIMetrics struct {
	// SessionID identifies the measurement session. Reset starts a new one.
	SessionID string `json:"session_id"`

	// Impressions counts presets shown in recommendation lists.
	Impressions int `json:"impressions"`

	// Selections counts presets the user applied.
	Selections int `json:"selections"`

	// CTR is selections divided by impressions, zero with no impressions.
	// Selections without a recorded impression can push it above one.
	CTR float64 `json:"ctr"`

	// HitAt1 counts selections that were the top recommendation.
	HitAt1 int `json:"hit_at_1"`

	// HitAt3 counts selections ranked in the top three.
	HitAt3 int `json:"hit_at_3"`

	// TimeToSelect holds the bounded, oldest-first elapsed durations
	// between a preset's impression and its selection.
	TimeToSelect []time.Duration `json:"time_to_select"`

	// AvgTimeToSelect is the mean of the retained samples.
	AvgTimeToSelect time.Duration `json:"avg_time_to_select"`

	// UpdatedAt is when the metrics last changed.
	UpdatedAt time.Time `json:"updated_at"`
}

// kpiState is the manager's mutable KPI bookkeeping. Guarded by the
// manager's lock.
type kpiState struct {
	sessionID   string
	impressions int
	selections  int
	hitAt1      int
	hitAt3      int

	// shownAt stamps the latest impression per preset, consumed on
	// selection. Transient: never persisted or restored.
	shownAt map[string]time.Time

	samples   *ringbuf.Ring[time.Duration]
	updatedAt time.Time
}

func newKPIState(sampleCapacity int) kpiState {
	return kpiState{
		sessionID: uuid.NewString(),
		shownAt:   make(map[string]time.Time),
		samples:   ringbuf.New[time.Duration](sampleCapacity),
	}
}

// ctr returns selections over impressions, zero with no impressions.
func (k *kpiState) ctr() float64 {
	if k.impressions <= 0 {
		return 0
	}
	return float64(k.selections) / float64(k.impressions)
}

// averageSample returns the mean of the retained samples.
func (k *kpiState) averageSample() time.Duration {
	snapshot := k.samples.Snapshot()
	if len(snapshot) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range snapshot {
		total += d
	}
	return total / time.Duration(len(snapshot))
}

// snapshot assembles an exportable KPIMetrics copy.
func (k *kpiState) snapshot() KPIMetrics {
	return KPIMetrics{
		SessionID:       k.sessionID,
		Impressions:     k.impressions,
		Selections:      k.selections,
		CTR:             k.ctr(),
		HitAt1:          k.hitAt1,
		HitAt3:          k.hitAt3,
		TimeToSelect:    k.samples.Snapshot(),
		AvgTimeToSelect: k.averageSample(),
		UpdatedAt:       k.updatedAt,
	}
}

// RecordImpression counts one impression per non-empty preset ID and
// stamps each ID's shown-at time, overwriting any earlier stamp. It
// returns how many impressions were recorded.
func (m *Manager) RecordImpression(presetIDs []string) int {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := 0
	for _, id := range presetIDs {
		if id == "" {
			continue
		}
		m.kpi.impressions++
		m.kpi.shownAt[id] = now
		recorded++
	}
	if recorded == 0 {
		return 0
	}
	m.kpi.updatedAt = now

	m.requestLocalSyncLocked()
	return recorded
}

// RecordSelection counts one selection at the given 1-based rank. Rank 1
// scores Hit@1 and Hit@3; ranks 2 and 3 score Hit@3 only; ranks outside
// [1,3] and non-positive ranks score neither. A matching impression stamp
// is consumed into the time-to-selection samples; a selection without one
// still counts toward selections and CTR. The return values report the
// consumed sample, zero and false when no stamp matched.
func (m *Manager) RecordSelection(presetID string, rank int) (time.Duration, bool) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.kpi.selections++
	if rank == 1 {
		m.kpi.hitAt1++
	}
	if rank >= 1 && rank <= 3 {
		m.kpi.hitAt3++
	}

	var elapsed time.Duration
	var sampled bool
	if shownAt, ok := m.kpi.shownAt[presetID]; ok {
		elapsed = now.Sub(shownAt)
		if elapsed < 0 {
			elapsed = 0
		}
		m.kpi.samples.Append(elapsed)
		delete(m.kpi.shownAt, presetID)
		sampled = true
	}
	m.kpi.updatedAt = now

	m.logger.Debug().
		Str("preset_id", presetID).
		Int("rank", rank).
		Float64("ctr", m.kpi.ctr()).
		Msg("selection recorded")

	m.requestLocalSyncLocked()
	return elapsed, sampled
}

// KPI returns a snapshot of the current session's metrics.
func (m *Manager) KPI() KPIMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.kpi.snapshot()
}

// ResetKPI clears all metrics and starts a new session.
func (m *Manager) ResetKPI() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kpi = newKPIState(m.config.SampleCapacity)
	m.kpi.updatedAt = m.now()

	m.logger.Debug().Str("session_id", m.kpi.sessionID).Msg("kpi reset")
}

// RestoreKPI merges a previously persisted snapshot into the live state.
// The live session ID is preserved; counters and samples are adopted and
// the derived values recomputed. Impression stamps are transient and do
// not survive a restore.
func (m *Manager) RestoreKPI(loaded KPIMetrics) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.kpi.impressions = loaded.Impressions
	m.kpi.selections = loaded.Selections
	m.kpi.hitAt1 = loaded.HitAt1
	m.kpi.hitAt3 = loaded.HitAt3

	m.kpi.samples.Reset()
	for _, d := range loaded.TimeToSelect {
		m.kpi.samples.Append(d)
	}
	m.kpi.updatedAt = m.now()

	m.logger.Debug().
		Int("impressions", loaded.Impressions).
		Int("selections", loaded.Selections).
		Msg("kpi state restored")
}
