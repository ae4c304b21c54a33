// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/presage/internal/feedback"
)

// Snapshot is the consistent view handed to every hook in a sync cycle.
// It is built synchronously before the first hook runs; hooks must treat
// it as read-only.
type Snapshot struct {
	// CreatedAt is when the snapshot was assembled.
	CreatedAt time.Time `json:"created_at"`

	// Profiles maps every known profile to its current weight state.
	Profiles map[string]EffectiveWeights `json:"profiles"`

	// KPI is the session metrics at snapshot time.
	KPI KPIMetrics `json:"kpi"`

	// Feedback is the raw feedback store export.
	Feedback feedback.Export `json:"feedback"`
}

// Hook persists a snapshot to one sink. Hooks run under a per-invocation
// timeout and must honor ctx cancellation; a hook that keeps running past
// its deadline is abandoned, not awaited.
type Hook func(ctx context.Context, snap Snapshot) error

// ErrorHook observes sync failures as they are recorded.
type ErrorHook func(serr SyncError)

// RegisterLocalHook adds a sink to the debounced local tier.
func (m *Manager) RegisterLocalHook(h Hook) {
	m.registerHook(TierLocal, h)
}

// RegisterBackendHook adds a sink to the backend tier.
func (m *Manager) RegisterBackendHook(h Hook) {
	m.registerHook(TierBackend, h)
}

// RegisterLongTermHook adds a sink to the long-term tier.
func (m *Manager) RegisterLongTermHook(h Hook) {
	m.registerHook(TierLongTerm, h)
}

func (m *Manager) registerHook(tier Tier, h Hook) {
	if h == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.hooks[tier] = append(m.hooks[tier], h)
}

// RegisterErrorHook adds an observer for recorded sync failures.
func (m *Manager) RegisterErrorHook(h ErrorHook) {
	if h == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorHooks = append(m.errorHooks, h)
}

// runTier executes one sync cycle for a tier: every registered hook gets
// the same snapshot under its own timeout, failures are recorded without
// aborting siblings, and the tier's last-sync timestamp is stamped once
// the cycle completes.
func (m *Manager) runTier(ctx context.Context, tier Tier, snap Snapshot) {
	m.mu.Lock()
	hooks := append([]Hook(nil), m.hooks[tier]...)
	m.mu.Unlock()

	failures := 0
	for _, h := range hooks {
		if err := m.invokeHook(ctx, h, snap); err != nil {
			failures++
			m.recordSyncError(tier, err)
		}
	}

	completedAt := m.now()
	m.mu.Lock()
	m.lastSync[tier] = completedAt
	m.mu.Unlock()

	m.syncCycles.Add(1)
	m.logger.Debug().
		Str("tier", string(tier)).
		Int("hooks", len(hooks)).
		Int("failures", failures).
		Msg("sync cycle completed")
}

// invokeHook runs one hook under its own timeout. The hook executes on a
// separate goroutine so an unresponsive sink cannot stall the cycle; its
// eventual result is discarded once the deadline lapses.
func (m *Manager) invokeHook(ctx context.Context, h Hook, snap Snapshot) error {
	hookCtx, cancel := context.WithTimeout(ctx, m.config.HookTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("hook panicked: %v", r)
			}
		}()
		done <- h(hookCtx, snap)
	}()

	select {
	case err := <-done:
		return err
	case <-hookCtx.Done():
		return hookCtx.Err()
	}
}

// recordSyncError appends the failure to the bounded list and notifies
// error hooks outside the lock.
func (m *Manager) recordSyncError(tier Tier, err error) {
	serr := SyncError{
		Timestamp: m.now(),
		Tier:      tier,
		Message:   err.Error(),
	}

	m.mu.Lock()
	m.syncErrors.Append(serr)
	observers := append([]ErrorHook(nil), m.errorHooks...)
	m.mu.Unlock()

	m.hookFailures.Add(1)
	m.logger.Warn().
		Str("tier", string(tier)).
		Str("error", serr.Message).
		Msg("sync hook failed")

	for _, observe := range observers {
		observe(serr)
	}
}
