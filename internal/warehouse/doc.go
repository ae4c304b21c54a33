// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package warehouse provides the long-term analytics tier backed by
// DuckDB. Each long-term sync appends one versioned analytics export
// plus its derived rollup rows, giving downstream training jobs and
// dashboards a queryable history without touching the live engine.
//
// # Schema
//
// Every sync writes one row group keyed by a generated export ID:
//
//   - analytics_exports: the full export document as JSON plus summary
//     columns (version, counts, timestamps)
//   - preset_rollups: one row per preset with feedback counters and
//     Bayesian scores at export time
//   - profile_rollups: one row per profile with the base, learned, and
//     effective weight vectors
//   - kpi_snapshots: one row with the session KPI counters
//
// Rows are append-only. Retention is enforced by exported_at: rows
// older than the configured retention window are pruned after each
// successful insert.
//
// # Usage
//
//	wh, err := warehouse.Open(cfg, logger)
//	if err != nil {
//		return err
//	}
//	defer wh.Close()
//	manager.RegisterLongTermHook(wh.Hook())
//
// # Build Tags
//
// DuckDB is a CGO dependency. The full implementation compiles behind
// the duckdb build tag; without it a stub compiles in its place and
// Open returns an error, keeping the default build free of CGO.
package warehouse
