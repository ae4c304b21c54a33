// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package warehouse

import (
	"errors"
	"fmt"
)

// ErrWarehouseClosed is returned when an operation runs against a
// closed warehouse.
var ErrWarehouseClosed = errors.New("warehouse is closed")

// Config holds DuckDB warehouse settings.
type Config struct {
	// Path is the DuckDB database file. Ignored when InMemory is set.
	Path string

	// InMemory runs DuckDB without a backing file. Historical rows are
	// lost on close; intended for tests and ephemeral deployments.
	InMemory bool

	// Threads is the DuckDB worker thread count. Zero or negative
	// selects the host CPU count.
	Threads int

	// RetentionDays bounds history by exported_at. Rows older than the
	// window are pruned after each insert. Zero keeps rows forever.
	RetentionDays int
}

// DefaultConfig returns warehouse settings for a single-node install.
func DefaultConfig() *Config {
	return &Config{
		Path:          "./data/presage.duckdb",
		InMemory:      false,
		Threads:       0,
		RetentionDays: 90,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("warehouse path is required for on-disk databases")
	}
	if c.RetentionDays < 0 {
		return fmt.Errorf("retention days must not be negative, got %d", c.RetentionDays)
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}

// Totals summarizes row counts across the warehouse tables.
type Totals struct {
	Exports     int64 `json:"exports"`
	PresetRows  int64 `json:"preset_rows"`
	ProfileRows int64 `json:"profile_rows"`
	KPIRows     int64 `json:"kpi_rows"`
}
