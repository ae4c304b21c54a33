// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package weightsync

import (
	"fmt"
	"time"
)

// Config contains the manager's operational parameters.
type Config struct {
	// GlobalShare is the default blend share of the profile's base
	// weights.
	// Default: 0.7.
	GlobalShare float64 `json:"global_share"`

	// LocalShare is the default blend share of the learned weights.
	// Default: 0.3.
	LocalShare float64 `json:"local_share"`

	// WeightsTTL is how long a cached effective-weights blend stays
	// valid without an explicit invalidation.
	// Default: 30s.
	WeightsTTL time.Duration `json:"weights_ttl"`

	// WeightsCapacity bounds the effective-weights cache.
	// Default: 64 profiles.
	WeightsCapacity int `json:"weights_capacity"`

	// DebounceWindow is the coalescing window for local-tier sync
	// requests. Requests inside the window collapse into one flush.
	// Default: 1s.
	DebounceWindow time.Duration `json:"debounce_window"`

	// HookTimeout bounds each individual hook invocation. A hook still
	// running when the timeout lapses is abandoned, not awaited.
	// Default: 10s.
	HookTimeout time.Duration `json:"hook_timeout"`

	// SampleCapacity bounds the time-to-selection sample list.
	// Default: 100.
	SampleCapacity int `json:"sample_capacity"`

	// ErrorCapacity bounds the sync error list.
	// Default: 100.
	ErrorCapacity int `json:"error_capacity"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		GlobalShare:     0.7,
		LocalShare:      0.3,
		WeightsTTL:      30 * time.Second,
		WeightsCapacity: 64,
		DebounceWindow:  time.Second,
		HookTimeout:     10 * time.Second,
		SampleCapacity:  100,
		ErrorCapacity:   100,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.GlobalShare < 0 || c.LocalShare < 0 {
		return fmt.Errorf("blend shares must be non-negative, got global=%f local=%f", c.GlobalShare, c.LocalShare)
	}
	if c.GlobalShare+c.LocalShare <= 0 {
		return fmt.Errorf("blend shares must sum to a positive value, got %f", c.GlobalShare+c.LocalShare)
	}
	if c.WeightsTTL <= 0 {
		return fmt.Errorf("weights_ttl must be positive, got %s", c.WeightsTTL)
	}
	if c.WeightsCapacity < 1 {
		return fmt.Errorf("weights_capacity must be positive, got %d", c.WeightsCapacity)
	}
	if c.DebounceWindow <= 0 {
		return fmt.Errorf("debounce_window must be positive, got %s", c.DebounceWindow)
	}
	if c.HookTimeout <= 0 {
		return fmt.Errorf("hook_timeout must be positive, got %s", c.HookTimeout)
	}
	if c.SampleCapacity < 1 {
		return fmt.Errorf("sample_capacity must be positive, got %d", c.SampleCapacity)
	}
	if c.ErrorCapacity < 1 {
		return fmt.Errorf("error_capacity must be positive, got %d", c.ErrorCapacity)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
