// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

// Package config provides centralized configuration management for all
// Presage components.
//
// Configuration is loaded with Koanf v2 from three layered sources with
// clear precedence (highest wins):
//
//  1. Environment variables (HTTP_PORT, NATS_URL, FEEDBACK_MIN_EVENTS, ...)
//  2. Optional YAML config file (config.yaml, or CONFIG_PATH)
//  3. Built-in defaults
//
// Every setting has a sensible default, so a bare
//
//	cfg, err := config.LoadWithKoanf()
//
// produces a runnable development configuration: recommendation scoring
// and feedback learning fully active, HTTP API on :8090, persistence and
// messaging tiers disabled until explicitly enabled.
//
// # Sections
//
//   - Server: HTTP listener (port, host, timeout, environment mode)
//   - API: pagination bounds for list endpoints
//   - Security: auth mode, JWT settings, admin credentials, rate limits, CORS
//   - Logging: zerolog level and output format
//   - Engine: recommendation scoring knobs (recency window, memo cache)
//   - Feedback: event history bounds and reinforcement learning rates
//   - WeightSync: blend shares, effective-weights cache, sync debounce
//   - LocalStore: BadgerDB local persistence tier
//   - NATS: backend sync tier over NATS JetStream (optional, embeddable)
//   - Warehouse: DuckDB long-term analytics tier
//   - Scheduler: periodic backend and long-term sync cadence
//
// Config is immutable after loading and safe for concurrent reads.
package config
