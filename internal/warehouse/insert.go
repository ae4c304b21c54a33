// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

//go:build duckdb

package warehouse

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/weightsync"
)

// InsertSnapshot derives the analytics export from the snapshot and
// appends it with its rollup rows in one transaction. Rows share a
// generated export ID so they can be joined. After a successful commit
// the retention window is enforced.
func (w *Warehouse) InsertSnapshot(ctx context.Context, snap weightsync.Snapshot) (err error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWarehouseClosed
	}
	w.mu.Unlock()

	start := time.Now()
	export := weightsync.ExportFromSnapshot(snap)

	document, err := json.Marshal(export)
	if err != nil {
		return fmt.Errorf("failed to marshal export document: %w", err)
	}

	tx, err := w.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				w.logger.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Transaction rollback failed")
			}
		}
	}()

	exportID := uuid.New()
	exportedAt := export.ExportedAt.UTC()

	if err = w.insertExportRow(ctx, tx, exportID, exportedAt, export, document); err != nil {
		return err
	}
	if err = w.insertPresetRollups(ctx, tx, exportID, exportedAt, export.Presets); err != nil {
		return err
	}
	if err = w.insertProfileRollups(ctx, tx, exportID, exportedAt, export.Profiles); err != nil {
		return err
	}
	if err = w.insertKPISnapshot(ctx, tx, exportID, exportedAt, export.KPIs); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	if pruneErr := w.pruneExpired(ctx); pruneErr != nil {
		w.logger.Warn().Err(pruneErr).Msg("Retention pruning failed")
	}

	metrics.ObserveWarehouseSnapshot(time.Since(start))
	w.logger.Debug().
		Str("export_id", exportID.String()).
		Int("presets", len(export.Presets)).
		Int("profiles", len(export.Profiles)).
		Dur("duration", time.Since(start)).
		Msg("Snapshot appended to warehouse")

	return nil
}

func (w *Warehouse) insertExportRow(ctx context.Context, tx *sql.Tx, exportID uuid.UUID, exportedAt time.Time, export weightsync.AnalyticsExport, document []byte) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO analytics_exports (
			export_id, version, exported_at, preset_count, profile_count, document, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exportID, export.Version, exportedAt,
		len(export.Presets), len(export.Profiles),
		string(document), time.Now().UTC(),
	)
	metrics.RecordWarehouseInsert("analytics_exports", 1, err)
	if err != nil {
		return fmt.Errorf("failed to insert analytics export: %w", err)
	}
	return nil
}

func (w *Warehouse) insertPresetRollups(ctx context.Context, tx *sql.Tx, exportID uuid.UUID, exportedAt time.Time, presets []weightsync.PresetRollup) error {
	if len(presets) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO preset_rollups (
			export_id, exported_at, preset_id,
			shown, clicks, upvotes, downvotes,
			implicit_score, explicit_score, combined_score, wilson_lower_bound
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.RecordWarehouseInsert("preset_rollups", 0, err)
		return fmt.Errorf("failed to prepare preset rollup insert: %w", err)
	}
	defer closeStmt(stmt, w.logger)

	for _, p := range presets {
		if _, err := stmt.ExecContext(ctx,
			exportID, exportedAt, p.PresetID,
			p.Shown, p.Clicks, p.Upvotes, p.Downvotes,
			p.ImplicitScore, p.ExplicitScore, p.CombinedScore, p.WilsonLowerBound,
		); err != nil {
			metrics.RecordWarehouseInsert("preset_rollups", 0, err)
			return fmt.Errorf("failed to insert preset rollup %s: %w", p.PresetID, err)
		}
	}
	metrics.RecordWarehouseInsert("preset_rollups", len(presets), nil)
	return nil
}

func (w *Warehouse) insertProfileRollups(ctx context.Context, tx *sql.Tx, exportID uuid.UUID, exportedAt time.Time, profiles []weightsync.ProfileRollup) error {
	if len(profiles) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO profile_rollups (
			export_id, exported_at, profile,
			base_usage, base_recency, base_tags, base_category,
			local_usage, local_recency, local_tags, local_category,
			effective_usage, effective_recency, effective_tags, effective_category,
			adjustment_count
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		metrics.RecordWarehouseInsert("profile_rollups", 0, err)
		return fmt.Errorf("failed to prepare profile rollup insert: %w", err)
	}
	defer closeStmt(stmt, w.logger)

	for _, p := range profiles {
		if _, err := stmt.ExecContext(ctx,
			exportID, exportedAt, p.Profile,
			p.Base.Usage, p.Base.Recency, p.Base.Tags, p.Base.Category,
			p.Local.Usage, p.Local.Recency, p.Local.Tags, p.Local.Category,
			p.Effective.Usage, p.Effective.Recency, p.Effective.Tags, p.Effective.Category,
			p.AdjustmentCount,
		); err != nil {
			metrics.RecordWarehouseInsert("profile_rollups", 0, err)
			return fmt.Errorf("failed to insert profile rollup %s: %w", p.Profile, err)
		}
	}
	metrics.RecordWarehouseInsert("profile_rollups", len(profiles), nil)
	return nil
}

func (w *Warehouse) insertKPISnapshot(ctx context.Context, tx *sql.Tx, exportID uuid.UUID, exportedAt time.Time, kpi weightsync.KPIMetrics) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO kpi_snapshots (
			export_id, exported_at, session_id,
			impressions, selections, ctr, hit_at_1, hit_at_3, avg_time_to_select_ms
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exportID, exportedAt, kpi.SessionID,
		kpi.Impressions, kpi.Selections, kpi.CTR,
		kpi.HitAt1, kpi.HitAt3, kpi.AvgTimeToSelect.Milliseconds(),
	)
	metrics.RecordWarehouseInsert("kpi_snapshots", 1, err)
	if err != nil {
		return fmt.Errorf("failed to insert kpi snapshot: %w", err)
	}
	return nil
}

// pruneExpired deletes rows older than the retention window.
func (w *Warehouse) pruneExpired(ctx context.Context) error {
	if w.cfg.RetentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -w.cfg.RetentionDays)

	tables := []string{"preset_rollups", "profile_rollups", "kpi_snapshots", "analytics_exports"}
	var pruned int64
	for _, table := range tables {
		query := fmt.Sprintf("DELETE FROM %s WHERE exported_at < ?", table) //nolint:gosec // table names are compile-time constants
		result, err := w.conn.ExecContext(ctx, query, cutoff)
		if err != nil {
			return fmt.Errorf("failed to prune %s: %w", table, err)
		}
		if rows, raErr := result.RowsAffected(); raErr == nil {
			pruned += rows
		}
	}
	if pruned > 0 {
		w.logger.Info().
			Int64("rows", pruned).
			Time("cutoff", cutoff).
			Int("retention_days", w.cfg.RetentionDays).
			Msg("Pruned expired warehouse rows")
	}
	return nil
}

func closeStmt(stmt *sql.Stmt, logger zerolog.Logger) {
	if err := stmt.Close(); err != nil {
		logger.Warn().Err(err).Msg("Failed to close prepared statement")
	}
}
