// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being served",
		},
	)

	// Recommendation Metrics
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Total number of recommendation requests served",
		},
		[]string{"profile"},
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Duration of recommendation scoring passes in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendationMemoHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_memo_hits_total",
			Help: "Total number of recommendation requests served from the memo cache",
		},
	)

	RecommendationMemoMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_memo_misses_total",
			Help: "Total number of recommendation requests that required a scoring pass",
		},
	)

	PresetsScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "presets_scored_total",
			Help: "Total number of individual presets scored",
		},
	)

	// Feedback Metrics
	FeedbackEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_events_total",
			Help: "Total number of feedback events recorded",
		},
		[]string{"family", "type"},
	)

	WeightAdjustmentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weight_adjustments_total",
			Help: "Total number of reinforcement passes by outcome",
		},
		[]string{"profile", "outcome"}, // outcome: "applied", "skipped"
	)

	FilteredPresets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filtered_presets",
			Help: "Current number of presets hidden by explicit feedback",
		},
	)

	// Weight Sync Metrics
	EffectiveWeightsRequests = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "effective_weights_requests_total",
			Help: "Total number of effective-weights blend requests",
		},
	)

	WeightsCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weights_cache_hits_total",
			Help: "Total number of effective-weights cache hits",
		},
	)

	WeightsCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "weights_cache_misses_total",
			Help: "Total number of effective-weights cache misses",
		},
	)

	SyncCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_cycles_total",
			Help: "Total number of sync cycles run per tier",
		},
		[]string{"tier"}, // "local", "backend", "long_term"
	)

	SyncErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sync_errors_total",
			Help: "Total number of sync hook failures per tier",
		},
		[]string{"tier"},
	)

	SyncHookDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sync_hook_duration_seconds",
			Help:    "Duration of individual sync hook invocations in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"tier"},
	)

	// KPI Metrics
	KPIImpressions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_impressions_total",
			Help: "Total number of preset impressions recorded",
		},
	)

	KPISelections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kpi_selections_total",
			Help: "Total number of preset selections recorded",
		},
	)

	KPITimeToSelect = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kpi_time_to_select_seconds",
			Help:    "Time between a preset impression and its selection in seconds",
			Buckets: []float64{.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
	)

	// Local Store Metrics
	LocalStoreWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localstore_writes_total",
			Help: "Total number of local store write transactions",
		},
	)

	LocalStoreReads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localstore_reads_total",
			Help: "Total number of local store read transactions",
		},
	)

	LocalStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "localstore_errors_total",
			Help: "Total number of local store failures",
		},
		[]string{"operation"}, // "read", "write", "gc"
	)

	LocalStoreGCRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "localstore_gc_runs_total",
			Help: "Total number of value log garbage collection passes",
		},
	)

	// Backend (NATS) Metrics
	NATSPublishes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publishes_total",
			Help: "Total number of messages published to NATS",
		},
	)

	NATSPublishErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "nats_publish_errors_total",
			Help: "Total number of failed NATS publishes",
		},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	BreakerTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_trips_total",
			Help: "Total number of circuit breaker open transitions",
		},
		[]string{"name"},
	)

	// Warehouse (DuckDB) Metrics
	WarehouseRowsInserted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_rows_inserted_total",
			Help: "Total number of rows inserted into the analytics warehouse",
		},
		[]string{"table"},
	)

	WarehouseInsertErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warehouse_insert_errors_total",
			Help: "Total number of failed warehouse inserts",
		},
		[]string{"table"},
	)

	WarehouseSnapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warehouse_snapshot_duration_seconds",
			Help:    "Duration of warehouse snapshot writes in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30},
		},
	)

	// WebSocket Dispatch Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of live-update WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of messages pushed to WebSocket clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket dispatch failures",
		},
		[]string{"error_type"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRecommendation records a served recommendation request.
// memoHit indicates whether the result came from the memo cache.
func RecordRecommendation(profile string, presetCount int, duration time.Duration, memoHit bool) {
	RecommendationsTotal.WithLabelValues(profile).Inc()
	if memoHit {
		RecommendationMemoHits.Inc()
		return
	}
	RecommendationMemoMisses.Inc()
	RecommendationDuration.Observe(duration.Seconds())
	PresetsScored.Add(float64(presetCount))
}

// RecordFeedbackEvent records a feedback event by family and type
func RecordFeedbackEvent(family, eventType string) {
	FeedbackEventsTotal.WithLabelValues(family, eventType).Inc()
}

// RecordWeightAdjustment records a reinforcement pass outcome
func RecordWeightAdjustment(profile string, applied bool) {
	outcome := "skipped"
	if applied {
		outcome = "applied"
	}
	WeightAdjustmentsTotal.WithLabelValues(profile, outcome).Inc()
}

// SetFilteredPresets updates the hidden preset gauge
func SetFilteredPresets(count int) {
	FilteredPresets.Set(float64(count))
}

// RecordEffectiveWeights records an effective-weights request and whether
// the blend was served from cache
func RecordEffectiveWeights(cacheHit bool) {
	EffectiveWeightsRequests.Inc()
	if cacheHit {
		WeightsCacheHits.Inc()
	} else {
		WeightsCacheMisses.Inc()
	}
}

// RecordSyncCycle records a completed sync cycle for a tier
func RecordSyncCycle(tier string) {
	SyncCycles.WithLabelValues(tier).Inc()
}

// RecordSyncError records a sync hook failure for a tier
func RecordSyncError(tier string) {
	SyncErrors.WithLabelValues(tier).Inc()
}

// ObserveSyncHook records the duration of one sync hook invocation
func ObserveSyncHook(tier string, duration time.Duration) {
	SyncHookDuration.WithLabelValues(tier).Observe(duration.Seconds())
}

// RecordImpressions records preset impressions
func RecordImpressions(count int) {
	KPIImpressions.Add(float64(count))
}

// RecordSelection records a preset selection. When the selection matched
// a live impression stamp, sampled is true and timeToSelect holds the
// elapsed time.
func RecordSelection(timeToSelect time.Duration, sampled bool) {
	KPISelections.Inc()
	if sampled {
		KPITimeToSelect.Observe(timeToSelect.Seconds())
	}
}

// RecordLocalStoreWrite records a local store write transaction
func RecordLocalStoreWrite(err error) {
	LocalStoreWrites.Inc()
	if err != nil {
		LocalStoreErrors.WithLabelValues("write").Inc()
	}
}

// RecordLocalStoreRead records a local store read transaction
func RecordLocalStoreRead(err error) {
	LocalStoreReads.Inc()
	if err != nil {
		LocalStoreErrors.WithLabelValues("read").Inc()
	}
}

// RecordLocalStoreGC records a value log garbage collection pass
func RecordLocalStoreGC(err error) {
	LocalStoreGCRuns.Inc()
	if err != nil {
		LocalStoreErrors.WithLabelValues("gc").Inc()
	}
}

// RecordNATSPublish records a NATS publish attempt
func RecordNATSPublish(err error) {
	NATSPublishes.Inc()
	if err != nil {
		NATSPublishErrors.Inc()
	}
}

// SetBreakerState updates the circuit breaker state gauge.
// State values follow gobreaker: 0=closed, 1=half-open, 2=open.
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordBreakerTrip records a closed-to-open breaker transition
func RecordBreakerTrip(name string) {
	BreakerTrips.WithLabelValues(name).Inc()
}

// RecordWarehouseInsert records rows written to a warehouse table
func RecordWarehouseInsert(table string, rows int, err error) {
	if err != nil {
		WarehouseInsertErrors.WithLabelValues(table).Inc()
		return
	}
	WarehouseRowsInserted.WithLabelValues(table).Add(float64(rows))
}

// ObserveWarehouseSnapshot records the duration of a snapshot write
func ObserveWarehouseSnapshot(duration time.Duration) {
	WarehouseSnapshotDuration.Observe(duration.Seconds())
}

// TrackWSConnection tracks WebSocket connection lifecycle
func TrackWSConnection(inc bool) {
	if inc {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordWSMessage records a message pushed to a WebSocket client
func RecordWSMessage() {
	WSMessagesSent.Inc()
}

// RecordWSError records a WebSocket dispatch failure
func RecordWSError(errorType string) {
	WSErrors.WithLabelValues(errorType).Inc()
}
