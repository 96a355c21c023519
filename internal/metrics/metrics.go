// Stridefit - Review-Driven Running Shoe Recommendations
// Copyright 2026 Stridefit Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/stridefit/stridefit

// Package metrics exposes Prometheus instrumentation for the scoring
// engine, the ingestion pipeline, extraction, the feedback loop, and
// the optimizer.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
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

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)

	// Scoring metrics
	ScoringDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_duration_seconds",
			Help:    "Duration of recommendation scoring in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"category"},
	)

	ScoringCandidates = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoring_candidates",
			Help:    "Number of candidate products scored per request",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"category"},
	)

	ScoringExclusions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoring_exclusions_total",
			Help: "Candidates excluded by a zero factor score",
		},
		[]string{"factor"},
	)

	// Ingestion metrics
	IngestJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_jobs_total",
			Help: "Total ingestion jobs by terminal state",
		},
		[]string{"state"},
	)

	IngestReviewsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_reviews_fetched_total",
			Help: "Reviews fetched per source, including duplicates",
		},
		[]string{"source"},
	)

	IngestReviewsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_reviews_stored_total",
			Help: "New reviews stored per source after deduplication",
		},
		[]string{"source"},
	)

	IngestSourceErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_source_errors_total",
			Help: "Fetch failures per source",
		},
		[]string{"source"},
	)

	IngestBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingest_breaker_open",
			Help: "Whether a source circuit breaker is currently open (1) or closed (0)",
		},
		[]string{"source"},
	)

	// Extraction metrics
	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "extractions_total",
			Help: "Fit profile extraction attempts by outcome",
		},
		[]string{"outcome"}, // "updated", "rejected", "skipped", "error"
	)

	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_duration_seconds",
			Help:    "End-to-end duration of one fit profile extraction",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	ExtractionConfidence = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "extraction_confidence",
			Help:    "Reported confidence of accepted extractions",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	// Feedback metrics
	FeedbackDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_decisions_total",
			Help: "Admin decisions recorded on match results",
		},
		[]string{"decision"},
	)

	FeedbackSignals = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_signals_total",
			Help: "Engagement signals recorded on match results",
		},
		[]string{"kind"},
	)

	// Optimizer metrics
	OptimizerRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "optimizer_runs_total",
			Help: "Optimizer runs by outcome",
		},
		[]string{"outcome"}, // "promoted", "held", "skipped", "error"
	)

	OptimizerHoldoutNDCG = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "optimizer_holdout_ndcg",
			Help: "Hold-out NDCG of the last evaluated candidate vector",
		},
	)

	ActiveWeightVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_weight_version",
			Help: "Version number of the active weight vector",
		},
	)

	// Cache metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Cache hits per cache name",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Cache misses per cache name",
		},
		[]string{"cache"},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordScoring records one scoring pass.
func RecordScoring(category string, candidates int, duration time.Duration) {
	ScoringDuration.WithLabelValues(category).Observe(duration.Seconds())
	ScoringCandidates.WithLabelValues(category).Observe(float64(candidates))
}

// RecordIngestFetch records a source fetch outcome.
func RecordIngestFetch(source string, fetched, stored int, err error) {
	IngestReviewsFetched.WithLabelValues(source).Add(float64(fetched))
	IngestReviewsStored.WithLabelValues(source).Add(float64(stored))
	if err != nil {
		IngestSourceErrors.WithLabelValues(source).Inc()
	}
}

// SetBreakerOpen reflects a source circuit breaker state change.
func SetBreakerOpen(source string, open bool) {
	v := 0.0
	if open {
		v = 1.0
	}
	IngestBreakerState.WithLabelValues(source).Set(v)
}

// RecordExtraction records one extraction attempt.
func RecordExtraction(outcome string, confidence float64, duration time.Duration) {
	ExtractionsTotal.WithLabelValues(outcome).Inc()
	ExtractionDuration.Observe(duration.Seconds())
	if outcome == "updated" {
		ExtractionConfidence.Observe(confidence)
	}
}
