package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OptimizeTotal counts optimizer runs by result ("ok", "infeasible", "error").
	OptimizeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_optimize_total",
		Help: "Total route optimizations by result",
	}, []string{"result"})

	OptimizeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_optimize_duration_seconds",
		Help:    "Route optimization duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
	})

	// OptimizeAttempts tracks how many radius relaxations a run needed.
	OptimizeAttempts = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_optimize_attempts",
		Help:    "Search attempts per successful optimization",
		Buckets: []float64{1, 2, 3, 5, 10, 20, 50, 100, 250},
	})

	OptimizeRadiusMiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_optimize_radius_miles",
		Help:    "Maximum hop distance of the successful attempt",
		Buckets: prometheus.LinearBuckets(100, 250, 12),
	})

	OptimizeImprovedMiles = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_optimize_refined_miles",
		Help:    "Miles removed by 2-opt refinement",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})

	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "route_cache_lookups_total",
		Help: "Route snapshot cache lookups by result",
	}, []string{"result"}) // "hit", "miss" or "error"

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route pattern and status",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)
