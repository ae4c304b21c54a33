// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the recommendation engine with the Prometheus client
library, exposing metrics for monitoring scoring performance, feedback volume,
weight learning, sync health, and storage tiers.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8090/metrics

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint
  - http_requests_in_flight: Active requests (gauge)

Recommendation Metrics:
  - recommendations_total: Recommendation requests served (counter)
    Labels: profile
  - recommendation_duration_seconds: Scoring pass latency (histogram)
  - recommendation_memo_hits_total / recommendation_memo_misses_total:
    Memoization cache efficiency (counters)
  - presets_scored_total: Individual presets scored (counter)

Feedback Metrics:
  - feedback_events_total: Feedback events recorded (counter)
    Labels: family (implicit, explicit), type
  - weight_adjustments_total: Reinforcement outcomes (counter)
    Labels: profile, outcome (applied, skipped)
  - filtered_presets: Presets currently hidden by explicit feedback (gauge)

Weight Sync Metrics:
  - effective_weights_requests_total: Blend computations requested (counter)
  - weights_cache_hits_total / weights_cache_misses_total: Effective-weights
    cache efficiency (counters)
  - sync_cycles_total / sync_errors_total: Per-tier sync health (counters)
    Labels: tier (local, backend, long_term)
  - sync_hook_duration_seconds: Per-tier hook latency (histogram)
    Labels: tier

KPI Metrics:
  - kpi_impressions_total / kpi_selections_total: Engagement volume (counters)
  - kpi_time_to_select_seconds: Impression-to-selection latency (histogram)

Storage and Transport Metrics:
  - localstore_writes_total / localstore_reads_total / localstore_errors_total:
    BadgerDB tier activity (errors labeled by operation)
  - nats_publishes_total / nats_publish_errors_total: Backend tier activity
  - circuit_breaker_state: Breaker state per name (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - warehouse_rows_inserted_total / warehouse_insert_errors_total: DuckDB tier
    activity, labeled by table
  - websocket_connections: Active live-update connections (gauge)
  - websocket_messages_sent_total: Messages pushed to clients (counter)
  - websocket_errors_total: Dispatch failures (counter)
    Labels: error_type

# Usage

Metrics are recorded through helper functions rather than direct metric access:

	metrics.RecordAPIRequest("GET", "/api/v1/recommendations", "200", elapsed)
	metrics.RecordFeedbackEvent("explicit", "upvote")
	metrics.RecordSyncCycle("backend")

All helpers are safe for concurrent use; the Prometheus client library handles
synchronization internally.

# Cardinality Management

Endpoint labels use route patterns, never raw URLs with IDs. Feedback type
and tier labels come from closed enumerations. No user-specific labels are
recorded.
*/
package metrics
