// Package metrics exposes Prometheus collectors for the directory service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	linksSubmittedTotal        *prometheus.CounterVec
	linkTransitionsTotal       *prometheus.CounterVec
	linkViewsRecordedTotal     prometheus.Counter
	linkClicksRecordedTotal    prometheus.Counter
	metadataFetchesTotal       *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkboard_http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "linkboard_http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)

		linksSubmittedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkboard_links_submitted_total",
				Help: "Total number of submitted links, labeled by initial status.",
			},
			[]string{"status"},
		)

		linkTransitionsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkboard_link_transitions_total",
				Help: "Total number of moderation transitions, labeled by target status.",
			},
			[]string{"status"},
		)

		linkViewsRecordedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "linkboard_link_views_recorded_total",
				Help: "Total number of view events recorded.",
			},
		)

		linkClicksRecordedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "linkboard_link_clicks_recorded_total",
				Help: "Total number of click events recorded.",
			},
		)

		metadataFetchesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "linkboard_metadata_fetches_total",
				Help: "Total number of metadata extractions, labeled by outcome.",
			},
			[]string{"outcome"},
		)
	})
}

// Handler returns an http.Handler exposing the Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest records one served HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSubmission increments the submission counter for the initial status.
func ObserveSubmission(status string) {
	linksSubmittedTotal.WithLabelValues(status).Inc()
}

// ObserveTransition increments the transition counter for the target status.
func ObserveTransition(status string) {
	linkTransitionsTotal.WithLabelValues(status).Inc()
}

// ObserveView increments the recorded view counter.
func ObserveView() {
	linkViewsRecordedTotal.Inc()
}

// ObserveClick increments the recorded click counter.
func ObserveClick() {
	linkClicksRecordedTotal.Inc()
}

// ObserveMetadataFetch increments the extraction counter for the outcome
// ("ok" or "error").
func ObserveMetadataFetch(outcome string) {
	metadataFetchesTotal.WithLabelValues(outcome).Inc()
}
