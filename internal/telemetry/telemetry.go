// Package telemetry holds the Prometheus collectors for crawl runs and the HTTP surface that
// exposes them.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcrawler_pages_total",
			Help: "Listing and detail pages fetched, labeled by kind and result.",
		},
		[]string{"kind", "result"},
	)

	recordsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventcrawler_records_total",
			Help: "Event records written to the output sinks.",
		},
	)

	detailFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventcrawler_detail_failures_total",
			Help: "Detail pages skipped because the fetch failed.",
		},
	)

	fieldGapsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcrawler_field_gaps_total",
			Help: "Fields that fell back to their sentinel, labeled by field.",
		},
		[]string{"field"},
	)

	terminationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcrawler_terminations_total",
			Help: "Crawl runs by termination reason.",
		},
		[]string{"reason"},
	)

	politenessWaitSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventcrawler_politeness_wait_seconds",
			Help:    "Time spent waiting for the per-kind request delay.",
			Buckets: []float64{0, 0.5, 1, 2, 4, 7, 10, 30},
		},
		[]string{"kind"},
	)

	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventcrawler_http_requests_total",
			Help: "Requests served by the metrics endpoint, labeled by method and code.",
		},
		[]string{"method", "code"},
	)

	httpRequestDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventcrawler_http_request_duration_seconds",
			Help:    "Latency of requests served by the metrics endpoint.",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"method", "route"},
	)
)

// ObservePage counts one fetched page.
func ObservePage(kind, result string) {
	pagesTotal.WithLabelValues(kind, result).Inc()
}

// ObserveRecord counts one record handed to the sinks.
func ObserveRecord() {
	recordsTotal.Inc()
}

// ObserveDetailFailure counts a skipped detail page.
func ObserveDetailFailure() {
	detailFailuresTotal.Inc()
}

// ObserveFieldGap counts a field that degraded to its sentinel.
func ObserveFieldGap(field string) {
	fieldGapsTotal.WithLabelValues(field).Inc()
}

// ObserveTermination counts a finished run.
func ObserveTermination(reason string) {
	terminationsTotal.WithLabelValues(reason).Inc()
}

// ObservePolitenessWait records how long a fetch was held back.
func ObservePolitenessWait(kind string, waited time.Duration) {
	politenessWaitSeconds.WithLabelValues(kind).Observe(waited.Seconds())
}

// ObserveHTTPRequest records metrics for a request to the metrics server.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
