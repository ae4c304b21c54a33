// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/weightsync"
)

// SyncBackend handles POST /api/v1/sync/backend. It runs one backend
// cycle synchronously: every registered backend hook receives the
// current snapshot before the response is written.
func (h *Handler) SyncBackend(w http.ResponseWriter, r *http.Request) {
	h.triggerSync(w, r, weightsync.TierBackend)
}

// SyncLongTerm handles POST /api/v1/sync/longterm.
func (h *Handler) SyncLongTerm(w http.ResponseWriter, r *http.Request) {
	h.triggerSync(w, r, weightsync.TierLongTerm)
}

// SyncStatus handles GET /api/v1/sync/status. The error list is the
// bounded cross-tier failure history, oldest first.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(h.manager.SyncStatus())
}

// triggerSync runs one cycle for the tier. Hook failures are recorded in
// the manager's failure history rather than returned, so the handler
// scans for entries stamped during this cycle to decide the response.
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request, tier weightsync.Tier) {
	rw := NewResponseWriter(w, r)

	start := time.Now()
	switch tier {
	case weightsync.TierBackend:
		h.manager.SyncToBackend(r.Context())
	case weightsync.TierLongTerm:
		h.manager.SyncToLongTerm(r.Context())
	default:
		rw.InternalError("Unknown sync tier")
		return
	}
	duration := time.Since(start)

	metrics.RecordSyncCycle(string(tier))
	syncErr := h.syncErrorSince(tier, start)

	if h.hub != nil {
		h.hub.BroadcastSyncCompleted(string(tier), duration.Milliseconds(), syncErr)
	}

	if syncErr != nil {
		if tier == weightsync.TierBackend {
			rw.ExternalServiceError("backend", syncErr)
		} else {
			rw.StorageError(syncErr)
		}
		return
	}

	rw.Success(map[string]interface{}{
		"tier":        tier,
		"duration_ms": duration.Milliseconds(),
		"status":      h.manager.SyncStatus(),
	})
}

// syncErrorSince returns the newest failure recorded for the tier at or
// after start, nil when the cycle ran clean. A concurrent scheduled
// cycle for the same tier can attribute its failure here; the shared
// history does not distinguish triggers.
func (h *Handler) syncErrorSince(tier weightsync.Tier, start time.Time) error {
	state := h.manager.SyncStatus()
	for i := len(state.Errors) - 1; i >= 0; i-- {
		e := state.Errors[i]
		if e.Timestamp.Before(start) {
			break
		}
		if e.Tier == tier {
			return errors.New(e.Message)
		}
	}
	return nil
}
