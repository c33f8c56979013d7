package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Inference Metrics
var (
	// PredictionsTotal tracks predictions by predicted label
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_predictions_total",
			Help: "Total sentiment predictions by label",
		},
		[]string{"label"},
	)

	// InferenceDuration tracks forward pass latency in seconds
	InferenceDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_inference_duration_seconds",
			Help:    "Model forward pass duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
	)

	// InferenceErrors tracks failed classifications
	InferenceErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_inference_errors_total",
			Help: "Total failed sentiment classifications",
		},
	)

	// PredictionCacheHits tracks cache hits and misses
	PredictionCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_prediction_cache_total",
			Help: "Prediction cache lookups by result (hit/miss)",
		},
		[]string{"result"},
	)

	// ModelHealthy is 1 when a model is loaded and validated
	ModelHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_model_healthy",
			Help: "Whether the sentiment model is loaded and validated (1) or not (0)",
		},
	)

	// ModelReloads tracks reload attempts by status
	ModelReloads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_model_reloads_total",
			Help: "Model reload attempts by status",
		},
		[]string{"status"},
	)
)

// History Metrics
var (
	// HistoryWrites tracks history appends by status
	HistoryWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_history_writes_total",
			Help: "History appends by status",
		},
		[]string{"status"},
	)

	// HistoryCleanupDeleted tracks entries removed by retention cleanup
	HistoryCleanupDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_history_cleanup_deleted_total",
			Help: "History entries removed by retention cleanup",
		},
	)
)

// HTTP Metrics
var (
	// HTTPRequestsTotal tracks requests by route and status code
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)

	// HTTPRequestDuration tracks request latency in seconds
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// RateLimitedTotal tracks rejected requests
	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Requests rejected by the per-session rate limiter",
		},
	)
)
