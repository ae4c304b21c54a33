// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package services

import (
	"context"
	"time"

	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/weightsync"
)

// TierSyncer interface matches the weight sync manager's scheduled tiers.
//
// The local tier is debounced inside the manager and needs no schedule;
// only the backend and long-term cycles run on the wall clock.
//
// Satisfied by *weightsync.Manager from internal/weightsync/manager.go:
//   - SyncToBackend(ctx context.Context)
//   - SyncToLongTerm(ctx context.Context)
type TierSyncer interface {
	SyncToBackend(ctx context.Context)
	SyncToLongTerm(ctx context.Context)
}

// SyncSchedulerService drives the periodic backend and long-term sync
// cycles as a supervised service.
//
// Each tick triggers one cycle on the corresponding tier. Cycle
// outcomes are recorded by the manager itself (hook failures land in
// the sync error list, never here), so a cycle that fails does not
// crash the scheduler. The service only exits on context cancellation.
//
// Example usage:
//
//	svc := services.NewSyncSchedulerService(manager, 5*time.Minute, 30*time.Minute)
//	tree.AddSyncService(svc)
type SyncSchedulerService struct {
	syncer           TierSyncer
	backendInterval  time.Duration
	longTermInterval time.Duration
	name             string
}

// NewSyncSchedulerService creates a new sync scheduler service.
//
// Non-positive intervals fall back to the defaults: 5 minutes for the
// backend tier and 30 minutes for the long-term tier.
func NewSyncSchedulerService(syncer TierSyncer, backendInterval, longTermInterval time.Duration) *SyncSchedulerService {
	if backendInterval <= 0 {
		backendInterval = 5 * time.Minute
	}
	if longTermInterval <= 0 {
		longTermInterval = 30 * time.Minute
	}
	return &SyncSchedulerService{
		syncer:           syncer,
		backendInterval:  backendInterval,
		longTermInterval: longTermInterval,
		name:             "sync-scheduler",
	}
}

// Serve implements suture.Service.
//
// Runs both tickers in a single loop until the context is canceled.
// When both fire in the same select window the order between them is
// arbitrary, which is fine: the tiers are independent and each cycle
// builds its own snapshot.
func (s *SyncSchedulerService) Serve(ctx context.Context) error {
	backend := time.NewTicker(s.backendInterval)
	defer backend.Stop()
	longTerm := time.NewTicker(s.longTermInterval)
	defer longTerm.Stop()

	logging.Info().
		Dur("backend_interval", s.backendInterval).
		Dur("longterm_interval", s.longTermInterval).
		Msg("Sync scheduler started")

	for {
		select {
		case <-ctx.Done():
			logging.Info().Msg("Sync scheduler stopped")
			return ctx.Err()

		case <-backend.C:
			s.syncer.SyncToBackend(ctx)
			metrics.RecordSyncCycle(string(weightsync.TierBackend))

		case <-longTerm.C:
			s.syncer.SyncToLongTerm(ctx)
			metrics.RecordSyncCycle(string(weightsync.TierLongTerm))
		}
	}
}

// String implements fmt.Stringer for logging.
// Suture uses this to identify the service in log messages.
func (s *SyncSchedulerService) String() string {
	return s.name
}
