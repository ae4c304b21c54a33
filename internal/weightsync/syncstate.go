// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import "time"

// Tier identifies one of the three persistence tiers.
type Tier string

// Persistence tiers, ordered by durability.
const (
	// TierLocal is the debounced on-host cache.
	TierLocal Tier = "local"
	// TierBackend is the operational backend (hooks).
	TierBackend Tier = "backend"
	// TierLongTerm is the analytical long-term store (hooks).
	TierLongTerm Tier = "long_term"
)

// Valid reports whether the tier is one of the known three.
func (t Tier) Valid() bool {
	switch t {
	case TierLocal, TierBackend, TierLongTerm:
		return true
	default:
		return false
	}
}

// SyncError records one failed hook invocation.
type SyncError struct {
	// Timestamp is when the failure was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Tier is the tier whose hook failed.
	Tier Tier `json:"tier"`

	// Message is the failure description.
	Message string `json:"message"`
}

// SyncState is a snapshot of per-tier sync progress and the bounded
// failure history, oldest first.
type SyncState struct {
	// LastLocalSync is when the local tier last completed a flush.
	LastLocalSync time.Time `json:"last_local_sync"`

	// LastBackendSync is when the backend tier last completed a cycle.
	LastBackendSync time.Time `json:"last_backend_sync"`

	// LastLongTermSync is when the long-term tier last completed a cycle.
	LastLongTermSync time.Time `json:"last_long_term_sync"`

	// Errors is the bounded failure history across all tiers.
	Errors []SyncError `json:"errors"`
}

// SyncStatus returns a snapshot of sync progress and recorded failures.
func (m *Manager) SyncStatus() SyncState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return SyncState{
		LastLocalSync:    m.lastSync[TierLocal],
		LastBackendSync:  m.lastSync[TierBackend],
		LastLongTermSync: m.lastSync[TierLongTerm],
		Errors:           m.syncErrors.Snapshot(),
	}
}
