// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/presage/internal/cache"
)

// Scorer ranks candidate presets by the weighted four-signal model.
// It is safe for concurrent use.
type Scorer struct {
	config *Config
	logger zerolog.Logger

	// memo holds full, untruncated results keyed by a content hash of
	// (sorted preset IDs, canonical context, resolved weights).
	memo *cache.LRU[Result]

	requests   atomic.Int64
	memoHits   atomic.Int64
	memoMisses atomic.Int64
}

// ScorerMetrics is a snapshot of the scorer's internal counters.
type ScorerMetrics struct {
	// Requests is the total number of Score calls.
	Requests int64 `json:"requests"`

	// MemoHits is the number of calls served from the memo.
	MemoHits int64 `json:"memo_hits"`

	// MemoMisses is the number of calls that computed fresh results.
	MemoMisses int64 `json:"memo_misses"`

	// MemoSize is the current number of memoized results.
	MemoSize int `json:"memo_size"`
}

// NewScorer creates a scorer. A nil config uses the defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewScorer(cfg *Config, logger zerolog.Logger) (*Scorer, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Scorer{
		config: cfg,
		logger: logger.With().Str("component", "scorer").Logger(),
		memo:   cache.NewLRU[Result](cfg.MemoCapacity, cfg.MemoTTL),
	}, nil
}

// Score ranks the given presets under the resolved weights.
//
// Scoring is total: it never returns an error. Malformed input (nil
// slices, zero usage ceilings, unparsable timestamps) degrades to neutral
// or zero signals. Identical presets, context, and weights within the memo
// TTL return the original result, including its ComputedAt timestamp.
func (s *Scorer) Score(presets []Preset, ctx Context, opts Options) Result {
	s.requests.Add(1)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	opts.TopN = s.clampTopN(opts.TopN)

	weights, profile := ResolveWeights(opts)
	key := s.memoKey(presets, ctx, weights)

	if full, ok := s.memo.Get(key); ok {
		s.memoHits.Add(1)
		s.logger.Debug().Str("profile", profile).Msg("memo hit")
		return shapeResult(full, opts)
	}
	s.memoMisses.Add(1)

	full := s.computeResult(presets, ctx, weights, profile, now)
	s.memo.Add(key, full)

	s.logger.Debug().
		Str("profile", profile).
		Int("candidates", len(presets)).
		Int("top_n", opts.TopN).
		Msg("scored presets")

	return shapeResult(full, opts)
}

// InvalidateMemo drops all memoized results. Callers invoke this after
// anything that changes scoring inputs out of band, such as a weight
// profile being re-learned.
func (s *Scorer) InvalidateMemo() {
	s.memo.Clear()
}

// Reset clears the memo and all counters.
func (s *Scorer) Reset() {
	s.memo.Clear()
	s.requests.Store(0)
	s.memoHits.Store(0)
	s.memoMisses.Store(0)
}

// Metrics returns a snapshot of the scorer's counters.
func (s *Scorer) Metrics() ScorerMetrics {
	_, _, size := s.memo.Stats()
	return ScorerMetrics{
		Requests:   s.requests.Load(),
		MemoHits:   s.memoHits.Load(),
		MemoMisses: s.memoMisses.Load(),
		MemoSize:   size,
	}
}

// Config returns a copy of the scorer configuration.
func (s *Scorer) Config() *Config {
	return s.config.Clone()
}

// computeResult produces the full, untruncated ranked result.
func (s *Scorer) computeResult(presets []Preset, ctx Context, weights ScoringWeights, profile string, now time.Time) Result {
	maxUsage := maxUsageCount(presets)

	scored := make([]ScoredPreset, 0, len(presets))
	for _, p := range presets {
		breakdown := s.breakdownFor(p, ctx, maxUsage, now)
		scored = append(scored, ScoredPreset{
			PresetID:  p.ID,
			Score:     weights.Apply(breakdown),
			Breakdown: breakdown,
			Reasons:   BuildReasons(breakdown),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].PresetID < scored[j].PresetID
	})

	return Result{
		Presets:    scored,
		ComputedAt: now,
		Debug: &DebugInfo{
			Profile:         profile,
			ResolvedWeights: weights,
			Candidates:      len(presets),
			MaxUsageCount:   maxUsage,
		},
	}
}

// breakdownFor computes the four signals for one preset.
func (s *Scorer) breakdownFor(p Preset, ctx Context, maxUsage int, now time.Time) ScoreBreakdown {
	return ScoreBreakdown{
		Usage:    NormalizeUsage(p.UsageCount, maxUsage),
		Recency:  RecencyScore(p.LastUsed, now, s.config.RecencyWindow),
		Tags:     TagSimilarity(p.Tags, ctx.Tags),
		Category: CategoryMatch(p.Category, ctx.Category),
	}
}

// clampTopN bounds the requested TopN to the configured maximum.
func (s *Scorer) clampTopN(topN int) int {
	if topN < 0 {
		return 0
	}
	if s.config.MaxTopN > 0 && topN > s.config.MaxTopN {
		return s.config.MaxTopN
	}
	return topN
}

// memoKey builds the content-hash key for a scoring call. Preset IDs and
// context tags are canonicalized (sorted, folded) so equivalent calls
// collide; resolved weights are hashed at full float precision.
func (s *Scorer) memoKey(presets []Preset, ctx Context, weights ScoringWeights) string {
	ids := make([]string, len(presets))
	for i, p := range presets {
		ids[i] = p.ID
	}
	sort.Strings(ids)

	h := xxhash.New()
	for _, id := range ids {
		_, _ = h.WriteString(id)
		_, _ = h.WriteString("\x1f")
	}
	_, _ = h.WriteString("\x1e")
	_, _ = h.WriteString(strings.ToLower(string(ctx.Category)))
	_, _ = h.WriteString("\x1e")
	for _, tag := range foldedSortedTags(ctx.Tags) {
		_, _ = h.WriteString(tag)
		_, _ = h.WriteString("\x1f")
	}
	_, _ = h.WriteString("\x1e")
	for _, w := range []float64{weights.Usage, weights.Recency, weights.Tags, weights.Category} {
		_, _ = h.WriteString(strconv.FormatFloat(w, 'g', -1, 64))
		_, _ = h.WriteString("\x1f")
	}

	return strconv.FormatUint(h.Sum64(), 16)
}

// shapeResult deep-copies a full result and applies the caller's TopN and
// debug options. The copy keeps the original ComputedAt so memoized calls
// are indistinguishable from the first computation.
func shapeResult(full Result, opts Options) Result {
	n := len(full.Presets)
	if opts.TopN > 0 && opts.TopN < n {
		n = opts.TopN
	}

	presets := make([]ScoredPreset, n)
	for i := 0; i < n; i++ {
		presets[i] = copyScoredPreset(full.Presets[i])
	}

	out := Result{
		Presets:    presets,
		ComputedAt: full.ComputedAt,
	}
	if opts.IncludeDebug && full.Debug != nil {
		debug := *full.Debug
		out.Debug = &debug
	}
	return out
}

// copyScoredPreset copies one entry including its reasons slice.
func copyScoredPreset(sp ScoredPreset) ScoredPreset {
	out := sp
	out.Reasons = make([]Reason, len(sp.Reasons))
	copy(out.Reasons, sp.Reasons)
	return out
}

// maxUsageCount returns the largest usage count among the presets.
func maxUsageCount(presets []Preset) int {
	maxCount := 0
	for _, p := range presets {
		if p.UsageCount > maxCount {
			maxCount = p.UsageCount
		}
	}
	return maxCount
}
