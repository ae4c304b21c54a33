// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build duckdb

package main

import (
	"fmt"

	"github.com/tomtom215/presage/internal/config"
	"github.com/tomtom215/presage/internal/logging"
	"github.com/tomtom215/presage/internal/warehouse"
)

// InitWarehouse opens the DuckDB long-term analytics tier when
// WAREHOUSE_ENABLED=true. Returns nil when the tier is disabled.
func InitWarehouse(cfg *config.Config) (*warehouse.Warehouse, error) {
	if !cfg.Warehouse.Enabled {
		logging.Info().Msg("Warehouse tier disabled (WAREHOUSE_ENABLED=false)")
		return nil, nil
	}

	wh, err := warehouse.Open(&warehouse.Config{
		Path:          cfg.Warehouse.Path,
		InMemory:      cfg.Warehouse.InMemory,
		Threads:       cfg.Warehouse.Threads,
		RetentionDays: cfg.Warehouse.RetentionDays,
	}, logging.Logger())
	if err != nil {
		return nil, fmt.Errorf("open warehouse: %w", err)
	}

	logging.Info().
		Str("path", cfg.Warehouse.Path).
		Bool("in_memory", cfg.Warehouse.InMemory).
		Int("retention_days", cfg.Warehouse.RetentionDays).
		Msg("Warehouse tier initialized")
	return wh, nil
}
