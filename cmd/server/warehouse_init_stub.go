// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build !duckdb

package main

import (
	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/warehouse"
)

// InitWarehouse is a no-op stub for non-DuckDB builds.
// Returns nil to indicate the warehouse tier is not available.
func InitWarehouse(cfg *config.Config) (*warehouse.Warehouse, error) {
	if cfg.Warehouse.Enabled {
		logging.Warn().Msg("WAREHOUSE_ENABLED=true but DuckDB support not compiled (build with -tags duckdb)")
	}
	return nil, nil
}
