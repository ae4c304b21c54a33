// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package localstore persists learned weight blends and KPI state in
// BadgerDB. It is the first sync tier: the weight sync manager's
// debounced local flush lands here, and on startup the stored KPI blob
// is merged back into the live session.
//
// Layout is one blob per key:
//
//	weights:<profile>  EffectiveWeights document for the profile
//	kpi:state          KPIMetrics document for the last flushed session
//
// The loader tolerates missing keys, so a fresh database behaves like an
// empty history rather than an error.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/metrics"
	"github.com/tomtom215/presage/internal/weightsync"
)

// Key prefixes for BadgerDB storage
const (
	weightsKeyPrefix = "weights:"
	kpiStateKey      = "kpi:state"
)

// ErrStoreClosed is returned when an operation runs against a closed store.
var ErrStoreClosed = errors.New("local store is closed")

// Config holds local store settings.
type Config struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `json:"path"`

	// InMemory runs Badger without disk files. Data is lost on close.
	InMemory bool `json:"in_memory"`

	// GCInterval is the cadence of value log garbage collection.
	// Default: 5m.
	GCInterval time.Duration `json:"gc_interval"`

	// GCRatio is the space reclamation threshold passed to Badger.
	// Default: 0.5.
	GCRatio float64 `json:"gc_ratio"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Path:       "./data/localstore",
		InMemory:   false,
		GCInterval: 5 * time.Minute,
		GCRatio:    0.5,
	}
}

// Validate checks configuration limits.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("path is required for on-disk storage")
	}
	if c.GCInterval <= 0 {
		return errors.New("gc interval must be positive")
	}
	if c.GCRatio <= 0 || c.GCRatio > 1 {
		return errors.New("gc ratio must be in (0, 1]")
	}
	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Store is a BadgerDB-backed persistence tier for weight and KPI state.
// All methods are safe for concurrent use.
type Store struct {
	db     *badger.DB
	config Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool

	stopGC chan struct{}
	gcDone chan struct{}
}

// Open creates (or reopens) the local store at the configured path.
// A nil config uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg *Config, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid local store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	// Badger's own logger is noisy at Info; route nothing through it.
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		config: *cfg,
		logger: logger.With().Str("component", "localstore").Logger(),
		stopGC: make(chan struct{}),
		gcDone: make(chan struct{}),
	}

	// Value log GC only applies to on-disk databases.
	if !cfg.InMemory {
		go s.gcLoop()
	} else {
		close(s.gcDone)
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("gc_interval", cfg.GCInterval).
		Msg("local store opened")

	return s, nil
}

// SaveSnapshot writes all profile weight blobs and the KPI blob from a
// sync snapshot in one transaction.
func (s *Store) SaveSnapshot(snap weightsync.Snapshot) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		for profile, ew := range snap.Profiles {
			data, err := json.Marshal(ew)
			if err != nil {
				return fmt.Errorf("marshal weights for %s: %w", profile, err)
			}
			if err := txn.Set([]byte(weightsKeyPrefix+profile), data); err != nil {
				return fmt.Errorf("set weights for %s: %w", profile, err)
			}
		}

		data, err := json.Marshal(snap.KPI)
		if err != nil {
			return fmt.Errorf("marshal kpi state: %w", err)
		}
		if err := txn.Set([]byte(kpiStateKey), data); err != nil {
			return fmt.Errorf("set kpi state: %w", err)
		}
		return nil
	})
	metrics.RecordLocalStoreWrite(err)
	if err != nil {
		return err
	}

	s.logger.Debug().
		Int("profiles", len(snap.Profiles)).
		Str("session_id", snap.KPI.SessionID).
		Msg("snapshot persisted")
	return nil
}

// Hook adapts the store to the weight sync hook signature for the local
// tier. The context is checked before writing; Badger transactions
// themselves are not cancelable.
func (s *Store) Hook() weightsync.Hook {
	return func(ctx context.Context, snap weightsync.Snapshot) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return s.SaveSnapshot(snap)
	}
}

// LoadWeights returns the persisted weight blob for a profile.
// found is false when no blob exists.
func (s *Store) LoadWeights(profile string) (weightsync.EffectiveWeights, bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return weightsync.EffectiveWeights{}, false, ErrStoreClosed
	}
	s.mu.RUnlock()

	var ew weightsync.EffectiveWeights
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(weightsKeyPrefix + profile))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get weights for %s: %w", profile, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &ew)
		})
	})
	metrics.RecordLocalStoreRead(err)
	if err != nil {
		return weightsync.EffectiveWeights{}, false, err
	}
	return ew, found, nil
}

// AllWeights returns every persisted profile weight blob keyed by profile.
func (s *Store) AllWeights() (map[string]weightsync.EffectiveWeights, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return nil, ErrStoreClosed
	}
	s.mu.RUnlock()

	out := make(map[string]weightsync.EffectiveWeights)
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(weightsKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			profile := strings.TrimPrefix(string(item.Key()), weightsKeyPrefix)

			var ew weightsync.EffectiveWeights
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &ew)
			}); err != nil {
				return fmt.Errorf("unmarshal weights for %s: %w", profile, err)
			}
			out[profile] = ew
		}
		return nil
	})
	metrics.RecordLocalStoreRead(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// LoadKPI returns the persisted KPI blob. found is false when no blob
// exists, which a fresh database treats as an empty history.
func (s *Store) LoadKPI() (weightsync.KPIMetrics, bool, error) {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return weightsync.KPIMetrics{}, false, ErrStoreClosed
	}
	s.mu.RUnlock()

	var kpi weightsync.KPIMetrics
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(kpiStateKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get kpi state: %w", err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &kpi)
		})
	})
	metrics.RecordLocalStoreRead(err)
	if err != nil {
		return weightsync.KPIMetrics{}, false, err
	}
	return kpi, found, nil
}

// Restore merges persisted state into a live manager: the stored KPI
// blob is adopted while the manager keeps its own session id. Missing
// blobs are not an error.
func (s *Store) Restore(m *weightsync.Manager) error {
	kpi, found, err := s.LoadKPI()
	if err != nil {
		return fmt.Errorf("load kpi state: %w", err)
	}
	if !found {
		s.logger.Debug().Msg("no persisted kpi state, starting fresh")
		return nil
	}

	m.RestoreKPI(kpi)
	s.logger.Info().
		Int("impressions", kpi.Impressions).
		Int("selections", kpi.Selections).
		Str("persisted_session", kpi.SessionID).
		Msg("kpi state restored")
	return nil
}

// RunGC runs value log garbage collection until Badger reports nothing
// left to rewrite.
func (s *Store) RunGC() error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrStoreClosed
	}
	s.mu.RUnlock()

	if s.config.InMemory {
		return nil
	}

	for {
		err := s.db.RunValueLogGC(s.config.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			metrics.RecordLocalStoreGC(nil)
			return nil
		}
		if err != nil {
			metrics.RecordLocalStoreGC(err)
			return fmt.Errorf("run value log gc: %w", err)
		}
	}
}

// gcLoop runs periodic value log garbage collection until Close.
func (s *Store) gcLoop() {
	defer close(s.gcDone)

	ticker := time.NewTicker(s.config.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopGC:
			return
		case <-ticker.C:
			if err := s.RunGC(); err != nil && !errors.Is(err, ErrStoreClosed) {
				s.logger.Warn().Err(err).Msg("value log gc failed")
			}
		}
	}
}

// Close stops background garbage collection and closes the database.
// Close is idempotent.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stopGC)
	<-s.gcDone

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("local store closed")
	return nil
}
