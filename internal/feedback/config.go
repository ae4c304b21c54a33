// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package feedback

import "fmt"

// Config contains the store's operational parameters.
type Config struct {
	// EventCapacity bounds the event history FIFO.
	// Default: 1000.
	EventCapacity int `json:"event_capacity"`

	// AdjustmentCapacity bounds each profile's adjustment history FIFO.
	// Default: 100.
	AdjustmentCapacity int `json:"adjustment_capacity"`

	// MinFeedback is the event count a preset needs before its feedback
	// can move learned weights.
	// Default: 5.
	MinFeedback int `json:"min_feedback"`

	// AdjustmentStep scales raw per-signal deltas.
	// Default: 0.01.
	AdjustmentStep float64 `json:"adjustment_step"`

	// MaxAdjustment clamps the magnitude of each per-signal delta.
	// Default: 0.02.
	MaxAdjustment float64 `json:"max_adjustment"`

	// MinWeight is the per-component floor applied before renormalizing.
	// Soft: renormalization may push a component back below it.
	// Default: 0.05.
	MinWeight float64 `json:"min_weight"`

	// MaxWeight is the per-component ceiling applied before renormalizing.
	// Default: 0.50.
	MaxWeight float64 `json:"max_weight"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		EventCapacity:      1000,
		AdjustmentCapacity: 100,
		MinFeedback:        5,
		AdjustmentStep:     0.01,
		MaxAdjustment:      0.02,
		MinWeight:          0.05,
		MaxWeight:          0.50,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.EventCapacity < 1 {
		return fmt.Errorf("event_capacity must be positive, got %d", c.EventCapacity)
	}
	if c.AdjustmentCapacity < 1 {
		return fmt.Errorf("adjustment_capacity must be positive, got %d", c.AdjustmentCapacity)
	}
	if c.MinFeedback < 0 {
		return fmt.Errorf("min_feedback must be non-negative, got %d", c.MinFeedback)
	}
	if c.AdjustmentStep <= 0 {
		return fmt.Errorf("adjustment_step must be positive, got %f", c.AdjustmentStep)
	}
	if c.MaxAdjustment <= 0 {
		return fmt.Errorf("max_adjustment must be positive, got %f", c.MaxAdjustment)
	}
	if c.MinWeight < 0 || c.MaxWeight <= c.MinWeight {
		return fmt.Errorf("weight bounds must satisfy 0 <= min < max, got [%f, %f]", c.MinWeight, c.MaxWeight)
	}
	if c.MaxWeight > 1 {
		return fmt.Errorf("max_weight must not exceed 1, got %f", c.MaxWeight)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	out := *c
	return &out
}
