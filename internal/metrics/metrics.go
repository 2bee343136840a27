// Package metrics exposes the matcher's Prometheus collectors.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "presta_matcher"

// Search outcomes.
const (
	SearchOK     = "ok"
	SearchEmpty  = "empty"
	SearchFailed = "failed"
)

// Oracle call outcomes, matching the enhancer's analysis status.
const (
	OracleOK       = "ok"
	OracleDegraded = "degraded"
	OracleFailed   = "failed"
)

var (
	registerOnce sync.Once

	searches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "searches_total",
		Help:      "Total number of searches by outcome",
	}, []string{"outcome"})
	searchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "search_duration_seconds",
		Help:      "Histogram of search durations in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"enhanced"})
	oracleCalls = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "oracle_calls_total",
		Help:      "Total number of scoring oracle calls by backend and outcome",
	}, []string{"oracle", "outcome"})
	rosterGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "roster_providers",
		Help:      "Number of providers in the last fetched roster",
	})
	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by route and status",
	}, []string{"method", "route", "status"})
)

// Register initializes metrics with the global Prometheus registry (idempotent)
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(searches, searchDuration, oracleCalls, rosterGauge, httpRequests)
	})
}

func Handler() http.Handler { return promhttp.Handler() }

func IncSearch(outcome string) { searches.WithLabelValues(outcome).Inc() }
func ObserveSearchDuration(enhanced bool, d time.Duration) {
	label := "false"
	if enhanced {
		label = "true"
	}
	searchDuration.WithLabelValues(label).Observe(d.Seconds())
}

func IncOracleCall(oracle, outcome string) {
	if oracle == "" {
		oracle = "unknown"
	}
	oracleCalls.WithLabelValues(oracle, outcome).Inc()
}

func SetRosterSize(n int) { rosterGauge.Set(float64(n)) }

func IncHTTPRequest(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}
