// Presage - Glass-Box Preset Recommendation and Adaptive Weight Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/presage

package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	io_prometheus_client "github.com/prometheus/client_model/go"
)

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{
			name:       "successful recommendation request",
			method:     "GET",
			endpoint:   "/api/v1/recommendations",
			statusCode: "200",
			duration:   25 * time.Millisecond,
		},
		{
			name:       "successful feedback post",
			method:     "POST",
			endpoint:   "/api/v1/feedback/explicit",
			statusCode: "202",
			duration:   5 * time.Millisecond,
		},
		{
			name:       "unauthorized request",
			method:     "GET",
			endpoint:   "/api/v1/analytics/export",
			statusCode: "401",
			duration:   2 * time.Millisecond,
		},
		{
			name:       "rate limited request",
			method:     "POST",
			endpoint:   "/api/v1/kpi/impressions",
			statusCode: "429",
			duration:   time.Millisecond,
		},
		{
			name:       "internal server error",
			method:     "GET",
			endpoint:   "/api/v1/weights/effective",
			statusCode: "500",
			duration:   150 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Record the request - should not panic
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
		})
	}
}

func TestTrackActiveRequest_RequestLifecycle(t *testing.T) {
	for i := 0; i < 10; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 5; i++ {
		TrackActiveRequest(false)
	}
	for i := 0; i < 3; i++ {
		TrackActiveRequest(true)
	}
	for i := 0; i < 8; i++ {
		TrackActiveRequest(false)
	}
}

func TestRecordRecommendation(t *testing.T) {
	tests := []struct {
		name        string
		profile     string
		presetCount int
		duration    time.Duration
		memoHit     bool
	}{
		{
			name:        "scored pass for moderate profile",
			profile:     "moderate",
			presetCount: 40,
			duration:    3 * time.Millisecond,
			memoHit:     false,
		},
		{
			name:        "memo hit skips scoring observations",
			profile:     "moderate",
			presetCount: 0,
			duration:    0,
			memoHit:     true,
		},
		{
			name:        "aggressive profile",
			profile:     "aggressive",
			presetCount: 120,
			duration:    12 * time.Millisecond,
			memoHit:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			RecordRecommendation(tt.profile, tt.presetCount, tt.duration, tt.memoHit)
		})
	}
}

func TestRecordRecommendationMemoHitSkipsScoring(t *testing.T) {
	scoredBefore := testutil.ToFloat64(PresetsScored)
	hitsBefore := testutil.ToFloat64(RecommendationMemoHits)

	RecordRecommendation("conservative", 999, time.Second, true)

	if got := testutil.ToFloat64(PresetsScored); got != scoredBefore {
		t.Errorf("PresetsScored = %v after memo hit, want unchanged %v", got, scoredBefore)
	}
	if got := testutil.ToFloat64(RecommendationMemoHits); got != hitsBefore+1 {
		t.Errorf("RecommendationMemoHits = %v, want %v", got, hitsBefore+1)
	}
}

func TestRecordFeedbackEvent(t *testing.T) {
	events := []struct {
		family    string
		eventType string
	}{
		{"implicit", "selected"},
		{"implicit", "ignored"},
		{"implicit", "selected_other"},
		{"implicit", "engaged"},
		{"explicit", "upvote"},
		{"explicit", "downvote"},
		{"explicit", "hide"},
		{"explicit", "pin"},
	}

	for _, ev := range events {
		t.Run(ev.family+"_"+ev.eventType, func(t *testing.T) {
			RecordFeedbackEvent(ev.family, ev.eventType)
		})
	}
}

func TestRecordWeightAdjustment(t *testing.T) {
	appliedBefore := testutil.ToFloat64(WeightAdjustmentsTotal.WithLabelValues("moderate", "applied"))
	skippedBefore := testutil.ToFloat64(WeightAdjustmentsTotal.WithLabelValues("moderate", "skipped"))

	RecordWeightAdjustment("moderate", true)
	RecordWeightAdjustment("moderate", false)
	RecordWeightAdjustment("moderate", false)

	if got := testutil.ToFloat64(WeightAdjustmentsTotal.WithLabelValues("moderate", "applied")); got != appliedBefore+1 {
		t.Errorf("applied count = %v, want %v", got, appliedBefore+1)
	}
	if got := testutil.ToFloat64(WeightAdjustmentsTotal.WithLabelValues("moderate", "skipped")); got != skippedBefore+2 {
		t.Errorf("skipped count = %v, want %v", got, skippedBefore+2)
	}
}

func TestRecordEffectiveWeights(t *testing.T) {
	hitsBefore := testutil.ToFloat64(WeightsCacheHits)
	missesBefore := testutil.ToFloat64(WeightsCacheMisses)

	RecordEffectiveWeights(true)
	RecordEffectiveWeights(false)
	RecordEffectiveWeights(true)

	if got := testutil.ToFloat64(WeightsCacheHits); got != hitsBefore+2 {
		t.Errorf("WeightsCacheHits = %v, want %v", got, hitsBefore+2)
	}
	if got := testutil.ToFloat64(WeightsCacheMisses); got != missesBefore+1 {
		t.Errorf("WeightsCacheMisses = %v, want %v", got, missesBefore+1)
	}
}

func TestSyncTierMetrics(t *testing.T) {
	tiers := []string{"local", "backend", "long_term"}

	for _, tier := range tiers {
		t.Run(tier, func(t *testing.T) {
			cyclesBefore := testutil.ToFloat64(SyncCycles.WithLabelValues(tier))
			errorsBefore := testutil.ToFloat64(SyncErrors.WithLabelValues(tier))
			samplesBefore := getHistogramSampleCount(t, SyncHookDuration.WithLabelValues(tier))

			RecordSyncCycle(tier)
			RecordSyncError(tier)
			ObserveSyncHook(tier, 50*time.Millisecond)

			if got := testutil.ToFloat64(SyncCycles.WithLabelValues(tier)); got != cyclesBefore+1 {
				t.Errorf("SyncCycles[%s] = %v, want %v", tier, got, cyclesBefore+1)
			}
			if got := testutil.ToFloat64(SyncErrors.WithLabelValues(tier)); got != errorsBefore+1 {
				t.Errorf("SyncErrors[%s] = %v, want %v", tier, got, errorsBefore+1)
			}
			if got := getHistogramSampleCount(t, SyncHookDuration.WithLabelValues(tier)); got != samplesBefore+1 {
				t.Errorf("SyncHookDuration[%s] samples = %v, want %v", tier, got, samplesBefore+1)
			}
		})
	}
}

// getHistogramSampleCount extracts the observation count from a
// Prometheus histogram. testutil.ToFloat64 only handles counters and
// gauges.
func getHistogramSampleCount(t *testing.T, observer prometheus.Observer) uint64 {
	t.Helper()

	metric, ok := observer.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", observer)
	}

	var m io_prometheus_client.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("write histogram metric: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestRecordSelection(t *testing.T) {
	selectionsBefore := testutil.ToFloat64(KPISelections)

	RecordSelection(2*time.Second, true)
	RecordSelection(0, false)

	if got := testutil.ToFloat64(KPISelections); got != selectionsBefore+2 {
		t.Errorf("KPISelections = %v, want %v", got, selectionsBefore+2)
	}
}

func TestRecordImpressions(t *testing.T) {
	before := testutil.ToFloat64(KPIImpressions)

	RecordImpressions(5)
	RecordImpressions(3)

	if got := testutil.ToFloat64(KPIImpressions); got != before+8 {
		t.Errorf("KPIImpressions = %v, want %v", got, before+8)
	}
}

func TestLocalStoreMetrics(t *testing.T) {
	errBefore := testutil.ToFloat64(LocalStoreErrors.WithLabelValues("write"))

	RecordLocalStoreWrite(nil)
	RecordLocalStoreWrite(errors.New("disk full"))
	RecordLocalStoreRead(nil)
	RecordLocalStoreGC(nil)
	RecordLocalStoreGC(errors.New("value log rewrite failed"))

	if got := testutil.ToFloat64(LocalStoreErrors.WithLabelValues("write")); got != errBefore+1 {
		t.Errorf("write errors = %v, want %v", got, errBefore+1)
	}
}

func TestNATSAndBreakerMetrics(t *testing.T) {
	publishErrBefore := testutil.ToFloat64(NATSPublishErrors)

	RecordNATSPublish(nil)
	RecordNATSPublish(errors.New("no responders"))
	SetBreakerState("nats_publish", 0)
	SetBreakerState("nats_publish", 2)
	RecordBreakerTrip("nats_publish")

	if got := testutil.ToFloat64(NATSPublishErrors); got != publishErrBefore+1 {
		t.Errorf("NATSPublishErrors = %v, want %v", got, publishErrBefore+1)
	}
	if got := testutil.ToFloat64(BreakerState.WithLabelValues("nats_publish")); got != 2 {
		t.Errorf("BreakerState = %v, want 2", got)
	}
}

func TestWarehouseMetrics(t *testing.T) {
	rowsBefore := testutil.ToFloat64(WarehouseRowsInserted.WithLabelValues("preset_rollups"))
	errsBefore := testutil.ToFloat64(WarehouseInsertErrors.WithLabelValues("preset_rollups"))

	RecordWarehouseInsert("preset_rollups", 12, nil)
	RecordWarehouseInsert("preset_rollups", 4, errors.New("constraint violation"))
	ObserveWarehouseSnapshot(120 * time.Millisecond)

	if got := testutil.ToFloat64(WarehouseRowsInserted.WithLabelValues("preset_rollups")); got != rowsBefore+12 {
		t.Errorf("rows inserted = %v, want %v (failed insert must not count rows)", got, rowsBefore+12)
	}
	if got := testutil.ToFloat64(WarehouseInsertErrors.WithLabelValues("preset_rollups")); got != errsBefore+1 {
		t.Errorf("insert errors = %v, want %v", got, errsBefore+1)
	}
}

func TestWebSocketMetrics(t *testing.T) {
	TrackWSConnection(true)
	TrackWSConnection(true)
	RecordWSMessage()
	RecordWSError("write_failed")
	TrackWSConnection(false)
	TrackWSConnection(false)
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	numGoroutines := 100
	operationsPerGoroutine := 50

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordAPIRequest("GET", "/api/v1/recommendations", "200", time.Duration(j)*time.Millisecond)
			}
		}()
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				RecordFeedbackEvent("implicit", "selected")
				RecordEffectiveWeights(j%2 == 0)
			}
		}()
	}

	wg.Add(numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}

	wg.Wait()
}

// TestMetricLabels verifies that labeled metrics accept their expected label sets
func TestMetricLabels(t *testing.T) {
	APIRequestsTotal.WithLabelValues("GET", "/api/test", "200").Inc()
	APIRequestsTotal.WithLabelValues("POST", "/api/test", "500").Inc()

	FeedbackEventsTotal.WithLabelValues("explicit", "pin").Inc()

	SyncCycles.WithLabelValues("local").Inc()
	SyncErrors.WithLabelValues("backend").Inc()

	LocalStoreErrors.WithLabelValues("gc").Inc()

	WarehouseRowsInserted.WithLabelValues("kpi_snapshots").Add(3)

	WSErrors.WithLabelValues("connection_closed").Inc()
}

// TestMetricsLint checks all registered metrics against Prometheus
// naming conventions
func TestMetricsLint(t *testing.T) {
	// Touch one metric from each family so gathering sees them
	RecordAPIRequest("GET", "/lint", "200", time.Millisecond)
	RecordRecommendation("moderate", 1, time.Millisecond, false)
	RecordFeedbackEvent("implicit", "selected")
	RecordSyncCycle("local")
	RecordImpressions(1)

	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Fatalf("GatherAndLint() error = %v", err)
	}
	for _, p := range problems {
		t.Errorf("metric lint problem: %s: %s", p.Metric, p.Text)
	}
}
