// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package feedback

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/recommend"
	"github.com/tomtom215/presage/internal/ringbuf"
)

// Sentinel errors returned by the recording APIs. Only structurally
// unusable input errors; degradable input never does.
var (
	// ErrInvalidType rejects a feedback type outside the expected family.
	ErrInvalidType = errors.New("invalid feedback type")
	// ErrEmptyPresetID rejects events without a preset identifier.
	ErrEmptyPresetID = errors.New("empty preset id")
)

// Store tracks per-preset feedback statistics, the bounded event history,
// and the per-profile learned weights. It is safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	config *Config
	logger zerolog.Logger

	stats   map[string]*PresetStats
	events  *ringbuf.Ring[Event]
	learned map[string]*learnedProfile

	// now is injectable for deterministic tests.
	now func() time.Time
}

// learnedProfile pairs a profile's weights with its bounded history.
type learnedProfile struct {
	weights LearnedWeights
	history *ringbuf.Ring[WeightAdjustment]
}

// NewStore creates a feedback store. A nil config uses the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewStore(cfg *Config, logger zerolog.Logger) (*Store, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Store{
		config:  cfg,
		logger:  logger.With().Str("component", "feedback").Logger(),
		stats:   make(map[string]*PresetStats),
		events:  ringbuf.New[Event](cfg.EventCapacity),
		learned: make(map[string]*learnedProfile),
		now:     time.Now,
	}, nil
}

// RecordImplicit records one implicit feedback event and returns it.
// Recommendation data is optional; when present it is captured on the
// event for later reinforcement.
func (s *Store) RecordImplicit(presetID string, typ Type, ctx recommend.Context, rec *RecommendationData) (Event, error) {
	if !typ.Implicit() {
		return Event{}, fmt.Errorf("%w: %q is not implicit", ErrInvalidType, typ)
	}
	return s.record(presetID, typ, ctx, rec)
}

// RecordExplicit records one explicit feedback event and returns it.
func (s *Store) RecordExplicit(presetID string, typ Type, ctx recommend.Context) (Event, error) {
	if !typ.Explicit() {
		return Event{}, fmt.Errorf("%w: %q is not explicit", ErrInvalidType, typ)
	}
	return s.record(presetID, typ, ctx, nil)
}

// record appends the event, updates counters, and recomputes scores.
func (s *Store) record(presetID string, typ Type, ctx recommend.Context, rec *RecommendationData) (Event, error) {
	if presetID == "" {
		return Event{}, ErrEmptyPresetID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	event := Event{
		ID:             uuid.NewString(),
		PresetID:       presetID,
		Type:           typ,
		Timestamp:      s.now(),
		Context:        ctx,
		Recommendation: rec,
	}
	event = event.clone()

	stats := s.statsLocked(presetID)
	applyCounters(stats, typ)
	stats.LastEventAt = event.Timestamp
	stats.recompute()

	s.events.Append(event)

	s.logger.Debug().
		Str("preset_id", presetID).
		Str("type", string(typ)).
		Float64("combined_score", stats.CombinedScore).
		Msg("feedback recorded")

	return event.clone(), nil
}

// statsLocked returns the preset's stats, creating them on first contact.
// Must be called with mu held.
func (s *Store) statsLocked(presetID string) *PresetStats {
	stats, ok := s.stats[presetID]
	if !ok {
		stats = &PresetStats{PresetID: presetID}
		stats.recompute()
		s.stats[presetID] = stats
	}
	return stats
}

// applyCounters increments the counters for one event type.
func applyCounters(stats *PresetStats, typ Type) {
	switch typ {
	case TypeSelected:
		stats.Shown++
		stats.Selected++
	case TypeIgnored:
		stats.Shown++
		stats.Ignored++
	case TypeSelectedOther:
		stats.Shown++
		stats.SelectedOther++
	case TypeEngaged:
		stats.Engaged++
	case TypeUpvote:
		stats.Upvotes++
	case TypeDownvote:
		stats.Downvotes++
	case TypeHide:
		stats.Hides++
	case TypePin:
		stats.Pins++
	}
}

// Stats returns a copy of one preset's statistics.
func (s *Store) Stats(presetID string) (PresetStats, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[presetID]
	if !ok {
		return PresetStats{}, false
	}
	return *stats, true
}

// AllStats returns a copy of every tracked preset's statistics.
func (s *Store) AllStats() map[string]PresetStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]PresetStats, len(s.stats))
	for id, stats := range s.stats {
		out[id] = *stats
	}
	return out
}

// Events returns the bounded event history, oldest first.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.events.Snapshot()
	out := make([]Event, len(snapshot))
	for i, e := range snapshot {
		out[i] = e.clone()
	}
	return out
}

// EventCount returns the number of events currently retained.
func (s *Store) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events.Len()
}

// ShouldFilterPreset reports whether the preset has ever been hidden.
// Hide is sticky: counters never decrement, so one hide filters forever.
func (s *Store) ShouldFilterPreset(presetID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats, ok := s.stats[presetID]
	return ok && stats.Hides > 0
}

// FilteredPresets returns the sorted IDs of all hidden presets.
func (s *Store) FilteredPresets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0)
	for id, stats := range s.stats {
		if stats.Hides > 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Export returns the full raw dump of the store for analytics.
func (s *Store) Export() Export {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]PresetStats, len(s.stats))
	filtered := make([]string, 0)
	for id, ps := range s.stats {
		stats[id] = *ps
		if ps.Hides > 0 {
			filtered = append(filtered, id)
		}
	}
	sort.Strings(filtered)

	snapshot := s.events.Snapshot()
	events := make([]Event, len(snapshot))
	for i, e := range snapshot {
		events[i] = e.clone()
	}

	learned := make(map[string]LearnedWeights, len(s.learned))
	for profile, lp := range s.learned {
		learned[profile] = lp.weights
	}

	return Export{
		Stats:    stats,
		Events:   events,
		Learned:  learned,
		Filtered: filtered,
	}
}

// Reset clears all statistics, events, and learned weights.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats = make(map[string]*PresetStats)
	s.events.Reset()
	s.learned = make(map[string]*learnedProfile)

	s.logger.Debug().Msg("feedback store reset")
}
