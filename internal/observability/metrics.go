// Package observability exposes process metrics for the print pipeline.
package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	printAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelctl",
			Subsystem: "print",
			Name:      "attempts_total",
			Help:      "Total print attempts by terminal outcome.",
		},
		[]string{"outcome"},
	)
	printDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "labelctl",
			Subsystem: "print",
			Name:      "duration_seconds",
			Help:      "Print workflow duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)
	corrections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "labelctl",
			Subsystem: "readiness",
			Name:      "corrections_total",
			Help:      "Auto-corrections attempted by name and success.",
		},
		[]string{"correction", "success"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(printAttempts, printDuration, corrections)
	})
}

func RecordPrint(outcome string, duration time.Duration) {
	RegisterMetrics()
	printAttempts.WithLabelValues(outcome).Inc()
	printDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func RecordCorrection(name string, success bool) {
	RegisterMetrics()
	corrections.WithLabelValues(name, strconv.FormatBool(success)).Inc()
}
