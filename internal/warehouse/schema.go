// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build duckdb

package warehouse

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the warehouse tables and indexes.
func (w *Warehouse) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := w.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

// tableCreationQueries returns the table and index creation SQL.
// Timestamps are written from Go, never by column defaults, so WAL
// replay never depends on extension functions.
func tableCreationQueries() []string {
	return []string{
		// One row per long-term sync. The document column carries the
		// full versioned export as JSON text; the summary columns
		// exist for cheap filtering without JSON parsing.
		`CREATE TABLE IF NOT EXISTS analytics_exports (
			export_id UUID PRIMARY KEY,
			version TEXT NOT NULL,
			exported_at TIMESTAMP NOT NULL,
			preset_count INTEGER NOT NULL,
			profile_count INTEGER NOT NULL,
			document TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,

		// Per-preset feedback counters and Bayesian scores at export
		// time.
		`CREATE TABLE IF NOT EXISTS preset_rollups (
			export_id UUID NOT NULL,
			exported_at TIMESTAMP NOT NULL,
			preset_id TEXT NOT NULL,
			shown INTEGER NOT NULL,
			clicks INTEGER NOT NULL,
			upvotes INTEGER NOT NULL,
			downvotes INTEGER NOT NULL,
			implicit_score DOUBLE NOT NULL,
			explicit_score DOUBLE NOT NULL,
			combined_score DOUBLE NOT NULL,
			wilson_lower_bound DOUBLE NOT NULL
		)`,

		// Per-profile weight vectors at export time. Vectors are
		// flattened into columns so SQL can chart drift per dimension.
		`CREATE TABLE IF NOT EXISTS profile_rollups (
			export_id UUID NOT NULL,
			exported_at TIMESTAMP NOT NULL,
			profile TEXT NOT NULL,
			base_usage DOUBLE NOT NULL,
			base_recency DOUBLE NOT NULL,
			base_tags DOUBLE NOT NULL,
			base_category DOUBLE NOT NULL,
			local_usage DOUBLE NOT NULL,
			local_recency DOUBLE NOT NULL,
			local_tags DOUBLE NOT NULL,
			local_category DOUBLE NOT NULL,
			effective_usage DOUBLE NOT NULL,
			effective_recency DOUBLE NOT NULL,
			effective_tags DOUBLE NOT NULL,
			effective_category DOUBLE NOT NULL,
			adjustment_count INTEGER NOT NULL
		)`,

		// Session KPI counters at export time.
		`CREATE TABLE IF NOT EXISTS kpi_snapshots (
			export_id UUID NOT NULL,
			exported_at TIMESTAMP NOT NULL,
			session_id TEXT NOT NULL,
			impressions INTEGER NOT NULL,
			selections INTEGER NOT NULL,
			ctr DOUBLE NOT NULL,
			hit_at_1 INTEGER NOT NULL,
			hit_at_3 INTEGER NOT NULL,
			avg_time_to_select_ms BIGINT NOT NULL
		)`,

		// Retention pruning and time-series queries filter on
		// exported_at; preset trend queries add preset_id.
		`CREATE INDEX IF NOT EXISTS idx_analytics_exports_exported_at ON analytics_exports(exported_at)`,
		`CREATE INDEX IF NOT EXISTS idx_preset_rollups_exported_at ON preset_rollups(exported_at)`,
		`CREATE INDEX IF NOT EXISTS idx_preset_rollups_preset ON preset_rollups(preset_id, exported_at)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_rollups_exported_at ON profile_rollups(exported_at)`,
		`CREATE INDEX IF NOT EXISTS idx_profile_rollups_profile ON profile_rollups(profile, exported_at)`,
		`CREATE INDEX IF NOT EXISTS idx_kpi_snapshots_exported_at ON kpi_snapshots(exported_at)`,
	}
}
