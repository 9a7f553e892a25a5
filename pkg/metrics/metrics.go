// Package metrics collects Prometheus counters for a download run.
//
// A run is short-lived, so instead of serving /metrics the registry can be
// written once to a node_exporter textfile collector path.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gimgdl"

// Metrics bundles Prometheus collectors for the downloader.
type Metrics struct {
	Registry         *prometheus.Registry
	SearchesTotal    *prometheus.CounterVec
	ImagesSavedTotal prometheus.Counter
	SkippedTotal     *prometheus.CounterVec
	FailuresTotal    *prometheus.CounterVec
	BytesTotal       prometheus.Counter
	FetchDuration    prometheus.Histogram
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Search API requests by outcome.",
		},
		[]string{"outcome"},
	)
	saved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_saved_total",
			Help:      "Images written to the output directory.",
		},
	)
	skipped := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_skipped_total",
			Help:      "Result items skipped before download by reason.",
		},
		[]string{"reason"},
	)
	failures := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failures by severity and error type.",
		},
		[]string{"severity", "error_type"},
	)
	bytesTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written_total",
			Help:      "Bytes written for saved images.",
		},
	)
	fetchDuration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Time to download and save one image.",
			Buckets:   prometheus.DefBuckets,
		},
	)

	registry.MustRegister(searches, saved, skipped, failures, bytesTotal, fetchDuration)

	return &Metrics{
		Registry:         registry,
		SearchesTotal:    searches,
		ImagesSavedTotal: saved,
		SkippedTotal:     skipped,
		FailuresTotal:    failures,
		BytesTotal:       bytesTotal,
		FetchDuration:    fetchDuration,
	}
}

// IncSearch counts one search request with its outcome ("ok" or "error").
func (m *Metrics) IncSearch(outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

// AddSaved records one saved image of n bytes.
func (m *Metrics) AddSaved(n int64) {
	if m == nil {
		return
	}
	m.ImagesSavedTotal.Inc()
	if n > 0 {
		m.BytesTotal.Add(float64(n))
	}
}

// IncSkipped counts an item skipped for reason.
func (m *Metrics) IncSkipped(reason string) {
	if m == nil {
		return
	}
	m.SkippedTotal.WithLabelValues(reason).Inc()
}

// IncFailure counts a failure.
func (m *Metrics) IncFailure(severity, errorType string) {
	if m == nil {
		return
	}
	m.FailuresTotal.WithLabelValues(severity, errorType).Inc()
}

// ObserveFetch records how long one fetch took.
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.FetchDuration.Observe(d.Seconds())
}

// WriteTextfile writes the registry in text exposition format to path.
// An empty path is a no-op.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
