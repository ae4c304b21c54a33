// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/cache"
	"github.com/tomtom215/presage/internal/feedback"
	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/ringbuf"
)

// Manager blends weights, tracks KPIs, and drives the sync tiers over
// one feedback store.
type Manager struct {
	config *Config
	logger zerolog.Logger
	store  *feedback.Store

	// weights caches default-blend EffectiveWeights per profile.
	weights *cache.LRU[EffectiveWeights]

	mu         sync.Mutex
	kpi        kpiState
	lastSync   map[Tier]time.Time
	syncErrors *ringbuf.Ring[SyncError]
	hooks      map[Tier][]Hook
	errorHooks []ErrorHook
	debounce   *time.Timer
	closed     bool

	blendRequests atomic.Int64
	syncCycles    atomic.Int64
	hookFailures  atomic.Int64

	// now is injectable for deterministic tests.
	now func() time.Time
}

// ManagerMetrics is a snapshot of the manager's counters.
type ManagerMetrics struct {
	// BlendRequests counts EffectiveWeights calls.
	BlendRequests int64 `json:"blend_requests"`

	// WeightsCacheHits counts blends served from the cache.
	WeightsCacheHits int64 `json:"weights_cache_hits"`

	// WeightsCacheMisses counts blends computed fresh.
	WeightsCacheMisses int64 `json:"weights_cache_misses"`

	// WeightsCacheSize is the current number of cached blends.
	WeightsCacheSize int `json:"weights_cache_size"`

	// SyncCycles counts completed tier cycles across all tiers.
	SyncCycles int64 `json:"sync_cycles"`

	// HookFailures counts failed hook invocations.
	HookFailures int64 `json:"hook_failures"`

	// SyncErrors is the number of currently retained failure records.
	SyncErrors int `json:"sync_errors"`
}

// NewManager creates a weight-sync manager over the given feedback store.
// A nil config uses the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewManager(cfg *Config, store *feedback.Store, logger zerolog.Logger) (*Manager, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if store == nil {
		return nil, errors.New("feedback store is required")
	}

	return &Manager{
		config:     cfg,
		logger:     logger.With().Str("component", "weightsync").Logger(),
		store:      store,
		weights:    cache.NewLRU[EffectiveWeights](cfg.WeightsCapacity, cfg.WeightsTTL),
		kpi:        newKPIState(cfg.SampleCapacity),
		lastSync:   make(map[Tier]time.Time),
		syncErrors: ringbuf.New[SyncError](cfg.ErrorCapacity),
		hooks:      make(map[Tier][]Hook),
		now:        time.Now,
	}, nil
}

// Store returns the feedback store the manager operates on.
func (m *Manager) Store() *feedback.Store {
	return m.store
}

// Config returns a copy of the active configuration.
func (m *Manager) Config() *Config {
	return m.config.Clone()
}

// EffectiveWeights resolves the blended weight state for a profile. A nil
// blend uses the configured default shares and is served from the
// per-profile cache; a custom blend bypasses the cache entirely. Invalid
// custom shares degrade to the default blend.
//
// Unknown profiles resolve their base from the moderate defaults, so the
// call is total.
func (m *Manager) EffectiveWeights(profile string, blend *BlendConfig) EffectiveWeights {
	m.blendRequests.Add(1)

	custom := blend != nil && blend.valid()
	bc := BlendConfig{GlobalShare: m.config.GlobalShare, LocalShare: m.config.LocalShare}
	if custom {
		bc = *blend
	}

	if !custom {
		if cached, ok := m.weights.Get(profile); ok {
			return cached
		}
	}

	ew := m.computeEffective(profile, bc)
	if !custom {
		m.weights.Add(profile, ew)
	}
	return ew
}

// computeEffective builds the weight state fresh from the profile
// defaults and the store's learned record.
func (m *Manager) computeEffective(profile string, bc BlendConfig) EffectiveWeights {
	global := m.baseWeights(profile)

	local := global
	adjustments := 0
	if learned, ok := m.store.LearnedWeightsFor(profile); ok {
		local = learned.Adjusted
		adjustments = learned.AdjustmentCount
	}

	return EffectiveWeights{
		Profile:         profile,
		Global:          global,
		Local:           local,
		Effective:       Blend(global, local, bc),
		AdjustmentCount: adjustments,
		ComputedAt:      m.now(),
	}
}

// baseWeights resolves a profile's default vector, falling back to the
// moderate defaults for unknown names.
func (m *Manager) baseWeights(profile string) recommend.ScoringWeights {
	if w, ok := recommend.ProfileWeights(profile); ok {
		return w
	}
	return recommend.DefaultWeights()
}

// InvalidateWeights drops one profile's cached blend. Every code path
// that mutates learned weights must call this or stale blends persist up
// to the cache TTL.
func (m *Manager) InvalidateWeights(profile string) {
	m.weights.Remove(profile)
}

// InvalidateAllWeights drops every cached blend.
func (m *Manager) InvalidateAllWeights() {
	m.weights.Clear()
}

// Reinforce records the weight consequence of one piece of feedback: it
// applies the store's reinforcement with the profile's default vector as
// base and, when the adjustment lands, invalidates the cached blend and
// schedules a local sync.
func (m *Manager) Reinforce(profile, presetID string, typ feedback.Type, breakdown recommend.ScoreBreakdown) feedback.WeightAdjustment {
	adj := m.store.ApplyReinforcement(profile, m.baseWeights(profile), presetID, typ, breakdown)
	if adj.Applied {
		m.InvalidateWeights(profile)
		m.RequestLocalSync()
	}
	return adj
}

// RequestLocalSync schedules a debounced local-tier flush. Requests
// inside the coalescing window collapse into the already pending flush.
func (m *Manager) RequestLocalSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestLocalSyncLocked()
}

func (m *Manager) requestLocalSyncLocked() {
	if m.closed || m.debounce != nil {
		return
	}
	m.debounce = time.AfterFunc(m.config.DebounceWindow, m.flushLocal)
}

// flushLocal is the debounce timer's target.
func (m *Manager) flushLocal() {
	m.mu.Lock()
	m.debounce = nil
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return
	}

	m.SyncLocalNow(context.Background())
}

// SyncLocalNow flushes the local tier immediately, bypassing the
// debounce window.
func (m *Manager) SyncLocalNow(ctx context.Context) {
	m.runTier(ctx, TierLocal, m.buildSnapshot())
}

// SyncToBackend runs one backend-tier cycle over all registered hooks.
// Hook failures are recorded, not returned.
func (m *Manager) SyncToBackend(ctx context.Context) {
	m.runTier(ctx, TierBackend, m.buildSnapshot())
}

// SyncToLongTerm runs one long-term-tier cycle over all registered
// hooks. Hook failures are recorded, not returned.
func (m *Manager) SyncToLongTerm(ctx context.Context) {
	m.runTier(ctx, TierLongTerm, m.buildSnapshot())
}

// buildSnapshot assembles the consistent view a sync cycle hands to its
// hooks: every known profile's weight state, the KPIs, and the raw
// feedback export.
func (m *Manager) buildSnapshot() Snapshot {
	profiles := make(map[string]EffectiveWeights)
	for _, name := range recommend.Profiles() {
		profiles[name] = m.EffectiveWeights(name, nil)
	}
	for name := range m.store.AllLearned() {
		if _, ok := profiles[name]; !ok {
			profiles[name] = m.EffectiveWeights(name, nil)
		}
	}

	return Snapshot{
		CreatedAt: m.now(),
		Profiles:  profiles,
		KPI:       m.KPI(),
		Feedback:  m.store.Export(),
	}
}

// Metrics returns a snapshot of the manager's counters.
func (m *Manager) Metrics() ManagerMetrics {
	hits, misses, size := m.weights.Stats()

	m.mu.Lock()
	retained := m.syncErrors.Len()
	m.mu.Unlock()

	return ManagerMetrics{
		BlendRequests:      m.blendRequests.Load(),
		WeightsCacheHits:   hits,
		WeightsCacheMisses: misses,
		WeightsCacheSize:   size,
		SyncCycles:         m.syncCycles.Load(),
		HookFailures:       m.hookFailures.Load(),
		SyncErrors:         retained,
	}
}

// Reset clears KPI state (starting a new session), sync progress,
// recorded errors, and cached blends. Registered hooks stay; they are
// wiring, not state.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.kpi = newKPIState(m.config.SampleCapacity)
	m.kpi.updatedAt = m.now()
	m.lastSync = make(map[Tier]time.Time)
	m.syncErrors.Reset()
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	m.mu.Unlock()

	m.weights.Clear()
	m.logger.Debug().Msg("weightsync manager reset")
}

// Close cancels any pending debounce and performs one final synchronous
// local flush so pending state reaches the local tier. Subsequent sync
// requests are ignored.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	m.mu.Unlock()

	m.SyncLocalNow(context.Background())
}
