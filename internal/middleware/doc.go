// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for Prometheus metrics
instrumentation, response compression, and request latency monitoring.
These components plug into the chi router in internal/api through its
adapter for func(http.HandlerFunc) http.HandlerFunc middleware.

Key Components:

  - Prometheus Metrics: HTTP request/response instrumentation
  - Compression: Gzip compression for large JSON responses
  - Performance Monitor: Request latency tracking with percentile calculations

Usage Example - Prometheus Metrics:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))

	// Records request count, duration, and in-flight gauge per route.
	// The endpoint label uses the matched chi route pattern
	// (e.g. /api/v1/feedback/stats/{presetID}), not the raw path,
	// so path parameters cannot explode label cardinality.

Usage Example - Compression:

	r.Use(chiMiddleware(middleware.Compression))

	// Responses are gzip-compressed when the client sends
	// Accept-Encoding: gzip. WebSocket upgrades pass through.

Usage Example - Performance Monitoring:

	perfMon := middleware.NewPerformanceMonitor(1000)
	r.Use(perfMon.Middleware)

	// Get performance statistics
	stats := perfMon.GetStats()
	fmt.Printf("p50: %d, p95: %d, p99: %d\n",
	    stats[0].P50Duration, stats[0].P95Duration, stats[0].P99Duration)

Performance Characteristics:

  - Compression: 70-90% size reduction for JSON payloads
  - Compression overhead: ~1-2ms for typical responses
  - Metrics overhead: <0.1ms per request
  - Performance monitor: sliding window of the most recent requests

Thread Safety:

All middleware components are thread-safe:
  - Compression uses pooled per-request gzip writers
  - Performance monitor uses sync.RWMutex
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: chi router and handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
