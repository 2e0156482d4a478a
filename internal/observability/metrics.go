// Package observability holds the Prometheus instruments for the batch
// pipeline. Long rendering runs expose them on an optional listen address
// so operators can watch progress.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "flighttrack"

// Metrics holds the counters and histograms shared by both pipeline
// stages.
type Metrics struct {
	FlightsProcessed prometheus.Counter
	FlightsSkipped   prometheus.Counter
	FramesRendered   prometheus.Counter
	FramesFailed     prometheus.Counter

	TrackPoints    prometheus.Histogram
	RenderDuration prometheus.Histogram
}

// NewMetrics creates and registers all pipeline metrics with the default
// registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FlightsProcessed,
		m.FlightsSkipped,
		m.FramesRendered,
		m.FramesFailed,
		m.TrackPoints,
		m.RenderDuration,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics across tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FlightsProcessed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_processed_total",
			Help:      "Flights that produced or already had a track artifact.",
		}),
		FlightsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flights_skipped_total",
			Help:      "Flights skipped for bad filenames, empty logs, or I/O errors.",
		}),
		FramesRendered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_rendered_total",
			Help:      "Radar frames rendered and written.",
		}),
		FramesFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_failed_total",
			Help:      "Radar frames dropped after decode or render failures.",
		}),
		TrackPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "track_points",
			Help:      "Retained samples per processed flight.",
			Buckets:   []float64{10, 100, 500, 1000, 5000, 10000, 50000},
		}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Wall time of one flight's full rendering stage.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
}
