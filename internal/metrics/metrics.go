// Platepick - Restaurant Discovery and Recommendation Service
// Copyright 2026 Platepick Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/platepick/platepick

// Package metrics defines the Prometheus instrumentation for Platepick:
// API latency and throughput, recommendation engine behavior, result
// cache efficiency, session churn and upstream business lookups.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API endpoint metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	// Recommendation engine metrics
	RecommendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommend_requests_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"}, // "ok", "cold_start", "error"
	)

	RecommendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_duration_seconds",
			Help:    "Recommendation computation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	RecommendCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommend_candidates",
			Help:    "Number of candidate restaurants per recommendation request",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000, 10000},
		},
	)

	// Result cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_hits_total",
			Help: "Total number of recommendation cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommend_cache_misses_total",
			Help: "Total number of recommendation cache misses",
		},
	)

	// Corpus metrics
	CorpusRestaurants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_restaurants",
			Help: "Number of restaurants in the loaded corpus",
		},
	)

	CorpusStates = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "corpus_states",
			Help: "Number of states in the loaded corpus",
		},
	)

	// Session metrics
	SessionsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_sessions_started_total",
			Help: "Total number of rating sessions started",
		},
	)

	SessionRatings = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rating_sessions_ratings_total",
			Help: "Total number of ratings submitted across sessions",
		},
	)

	// Upstream business lookup metrics
	BusinessLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "business_lookups_total",
			Help: "Total number of upstream business lookups",
		},
		[]string{"kind", "outcome"}, // kind: "info", "reviews"
	)

	BusinessLookupDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "business_lookup_duration_seconds",
			Help:    "Upstream business lookup duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
)

// RecordAPIRequest records one finished API request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordRecommendation records one engine invocation.
func RecordRecommendation(coldStart bool, candidates int, duration time.Duration, err error) {
	outcome := "ok"
	switch {
	case err != nil:
		outcome = "error"
	case coldStart:
		outcome = "cold_start"
	}
	RecommendRequestsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		RecommendDuration.Observe(duration.Seconds())
		RecommendCandidates.Observe(float64(candidates))
	}
}

// RecordBusinessLookup records one upstream lookup.
func RecordBusinessLookup(kind string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BusinessLookups.WithLabelValues(kind, outcome).Inc()
	BusinessLookupDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetCorpusSize publishes the loaded corpus dimensions.
func SetCorpusSize(restaurants, states int) {
	CorpusRestaurants.Set(float64(restaurants))
	CorpusStates.Set(float64(states))
}
