// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package recommend

import (
	"fmt"
	"time"
)

// Config contains the scorer's operational parameters.
type Config struct {
	// RecencyWindow is the age beyond which recency scores zero.
	// Default: 720h (30 days).
	RecencyWindow time.Duration `json:"recency_window"`

	// MemoTTL is how long a memoized result stays valid.
	// Default: 60s.
	MemoTTL time.Duration `json:"memo_ttl"`

	// MemoCapacity is the maximum number of memoized results.
	// Default: 512.
	MemoCapacity int `json:"memo_capacity"`

	// MaxTopN caps the TopN a caller may request. Zero means no cap.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		RecencyWindow: DefaultRecencyWindow,
		MemoTTL:       60 * time.Second,
		MemoCapacity:  512,
		MaxTopN:       100,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.RecencyWindow <= 0 {
		return fmt.Errorf("recency_window must be positive, got %v", c.RecencyWindow)
	}
	if c.MemoTTL <= 0 {
		return fmt.Errorf("memo_ttl must be positive, got %v", c.MemoTTL)
	}
	if c.MemoCapacity < 1 {
		return fmt.Errorf("memo_capacity must be positive, got %d", c.MemoCapacity)
	}
	if c.MaxTopN < 0 {
		return fmt.Errorf("max_top_n must be non-negative, got %d", c.MaxTopN)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
