// Package metrics Prometheus collectors of the API.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "eeris"

var (
	histogramResponseTime = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "histogram_response_time_seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)

	mutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "expenses",
			Name:      "mutations_total",
		},
		[]string{"op", "ok"},
	)

	scansTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "receipts",
			Name:      "scans_total",
		},
		[]string{"outcome"},
	)

	liveSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "subscriptions",
			Help:      "Open live summary streams.",
		},
	)
)

// ObserveResponse records one handled request. route is the matched pattern, not the raw path.
func ObserveResponse(method, route string, status int, elapsed time.Duration) {
	histogramResponseTime.
		WithLabelValues(method, route, strconv.Itoa(status)).
		Observe(elapsed.Seconds())
}

// CountMutation op is created, updated or deleted.
func CountMutation(op string, err error) {
	mutationsTotal.WithLabelValues(op, strconv.FormatBool(err == nil)).Inc()
}

// Receipt intake outcomes counted by CountScan.
const (
	ScanScanned = "scanned"
	ScanFailed  = "failed"
	ScanSkipped = "skipped"
)

// CountScan outcome is ScanScanned, ScanFailed or ScanSkipped.
func CountScan(outcome string) {
	scansTotal.WithLabelValues(outcome).Inc()
}

// LiveOpened and LiveClosed track open summary streams.
func LiveOpened() { liveSubscriptions.Inc() }

func LiveClosed() { liveSubscriptions.Dec() }
