package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts finished requests by telemetry event type
	// (cache_hit, success, origin_error, error).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_requests_total",
			Help: "Total number of requests handled by the gateway",
		},
		[]string{"event_type"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)

	// CacheErrors counts swallowed cache store faults by operation
	// ("get", "put").
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"},
	)

	// OriginFetches counts origin fetches by outcome
	// ("success", "failure", "transport_error").
	OriginFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_origin_fetches_total",
			Help: "Total number of origin fetches",
		},
		[]string{"outcome"},
	)

	OriginFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "gateway_origin_fetch_duration_seconds",
			Help:    "Origin fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	TelemetryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_telemetry_failures_total",
			Help: "Total number of telemetry records that could not be delivered",
		},
	)
)
