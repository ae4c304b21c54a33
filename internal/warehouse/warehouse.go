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
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/weightsync"
)

// Warehouse wraps a DuckDB connection holding the long-term analytics
// history.
type Warehouse struct {
	conn   *sql.DB
	cfg    *Config
	logger zerolog.Logger

	mu     sync.Mutex
	closed bool
}

// Open creates the DuckDB connection and initializes the schema.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *Config, logger zerolog.Logger) (*Warehouse, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid warehouse config: %w", err)
	}

	path := cfg.Path
	if cfg.InMemory {
		path = ":memory:"
	} else {
		// Parent directory must exist before DuckDB opens the file.
		dbDir := filepath.Dir(cfg.Path)
		if dbDir != "" && dbDir != "." {
			if err := os.MkdirAll(dbDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create warehouse directory %s: %w", dbDir, err)
			}
		}
	}

	numThreads := cfg.Threads
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}

	// Auto-install/auto-load are disabled to prevent hangs in
	// restricted network environments. The warehouse schema uses no
	// extensions.
	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, numThreads)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open warehouse database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(time.Hour)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	w := &Warehouse{
		conn:   conn,
		cfg:    cfg.Clone(),
		logger: logger.With().Str("component", "warehouse").Logger(),
	}

	if err := w.createTables(); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to initialize warehouse schema: %w", err)
	}

	// Flush the WAL after schema creation so a crash before the first
	// insert does not leave DDL pending replay.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.checkpoint(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to checkpoint after schema initialization")
	}

	w.logger.Info().
		Str("path", path).
		Bool("in_memory", cfg.InMemory).
		Int("retention_days", cfg.RetentionDays).
		Msg("Warehouse opened")

	return w, nil
}

// Config returns a copy of the active configuration.
func (w *Warehouse) Config() *Config {
	return w.cfg.Clone()
}

// Conn returns the underlying SQL connection for direct queries.
func (w *Warehouse) Conn() *sql.DB {
	return w.conn
}

// Ping checks whether the warehouse connection is alive.
func (w *Warehouse) Ping(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWarehouseClosed
	}
	w.mu.Unlock()
	return w.conn.PingContext(ctx)
}

// Hook returns a sync hook that appends the snapshot's analytics rows.
// Register it with Manager.RegisterLongTermHook.
func (w *Warehouse) Hook() weightsync.Hook {
	return func(ctx context.Context, snap weightsync.Snapshot) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return w.InsertSnapshot(ctx, snap)
	}
}

// Totals reports row counts across the warehouse tables.
func (w *Warehouse) Totals(ctx context.Context) (Totals, error) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return Totals{}, ErrWarehouseClosed
	}
	w.mu.Unlock()

	var totals Totals
	counts := []struct {
		table string
		dest  *int64
	}{
		{"analytics_exports", &totals.Exports},
		{"preset_rollups", &totals.PresetRows},
		{"profile_rollups", &totals.ProfileRows},
		{"kpi_snapshots", &totals.KPIRows},
	}
	for _, c := range counts {
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", c.table) //nolint:gosec // table names are compile-time constants
		if err := w.conn.QueryRowContext(ctx, query).Scan(c.dest); err != nil {
			return Totals{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return totals, nil
}

// Close checkpoints the WAL and closes the connection. It is safe to
// call more than once.
func (w *Warehouse) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := w.checkpoint(ctx); err != nil {
		w.logger.Warn().Err(err).Msg("Failed to checkpoint warehouse before close")
	}

	return w.conn.Close()
}

// checkpoint forces a WAL checkpoint.
func (w *Warehouse) checkpoint(ctx context.Context) error {
	if _, err := w.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

func closeQuietly(conn *sql.DB) {
	_ = conn.Close()
}
