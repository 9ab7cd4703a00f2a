package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Chat endpoint metrics
	chatRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_requests_total",
			Help: "Total number of chat requests processed",
		},
		[]string{"status"},
	)

	upstreamLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chat_upstream_latency_seconds",
			Help:    "Latency of upstream LLM completions",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Response cache metrics
	cacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_cache_hits_total",
			Help: "Total number of chat response cache hits",
		},
	)

	cacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_cache_misses_total",
			Help: "Total number of chat response cache misses",
		},
	)

	// Load-test harness metrics
	loadTestRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loadtest_runs_total",
			Help: "Total number of load test runs",
		},
		[]string{"result"},
	)

	virtualUsersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "loadtest_virtual_users_active",
			Help: "Number of virtual users currently issuing requests",
		},
	)
)

// RecordChatRequest records one handled chat request
func RecordChatRequest(status string) {
	chatRequestsTotal.WithLabelValues(status).Inc()
}

// RecordUpstreamLatency records the duration of one upstream completion
func RecordUpstreamLatency(d time.Duration) {
	upstreamLatency.Observe(d.Seconds())
}

// RecordCacheHit records a chat response cache hit
func RecordCacheHit() {
	cacheHits.Inc()
}

// RecordCacheMiss records a chat response cache miss
func RecordCacheMiss() {
	cacheMisses.Inc()
}

// RecordLoadTestRun records one finished load test run
func RecordLoadTestRun(result string) {
	loadTestRunsTotal.WithLabelValues(result).Inc()
}

// VirtualUserStarted marks one virtual user as active
func VirtualUserStarted() {
	virtualUsersActive.Inc()
}

// VirtualUserStopped marks one virtual user as stopped
func VirtualUserStopped() {
	virtualUsersActive.Dec()
}
