// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build !duckdb

package warehouse

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/weightsync"
)

// Warehouse is a stub when DuckDB is not compiled in.
// Build with -tags=duckdb to enable the long-term analytics tier.
type Warehouse struct{}

// Open returns an error when DuckDB is not compiled in.
// Build with -tags=duckdb to enable the long-term analytics tier.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *Config, logger zerolog.Logger) (*Warehouse, error) {
	return nil, fmt.Errorf("warehouse not available: build with -tags=duckdb")
}

// Config returns nil for the stub implementation.
func (w *Warehouse) Config() *Config {
	return nil
}

// Ping is a stub that returns an error.
func (w *Warehouse) Ping(ctx context.Context) error {
	return fmt.Errorf("warehouse not available: build with -tags=duckdb")
}

// InsertSnapshot is a stub that returns an error.
func (w *Warehouse) InsertSnapshot(ctx context.Context, snap weightsync.Snapshot) error {
	return fmt.Errorf("warehouse not available: build with -tags=duckdb")
}

// Hook returns a hook that always fails.
func (w *Warehouse) Hook() weightsync.Hook {
	return func(ctx context.Context, snap weightsync.Snapshot) error {
		return w.InsertSnapshot(ctx, snap)
	}
}

// Totals is a stub that returns an error.
func (w *Warehouse) Totals(ctx context.Context) (Totals, error) {
	return Totals{}, fmt.Errorf("warehouse not available: build with -tags=duckdb")
}

// Close is a no-op stub.
func (w *Warehouse) Close() error {
	return nil
}
