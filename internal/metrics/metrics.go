// Package metrics defines the Prometheus collectors for payload building.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeFitted     = "fitted"
	OutcomeNoFit      = "no_fit"
	OutcomeAlreadyFit = "already_fit"
	OutcomeBusy       = "busy"
	OutcomeCancelled  = "cancelled"
)

// Registry holds every collector in this package.
var Registry = prometheus.NewRegistry()

var (
	// FitSearches counts fit searches by outcome.
	FitSearches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactqr",
		Name:      "fit_searches_total",
		Help:      "Photo fit searches by outcome.",
	}, []string{"outcome"})

	// FitProbes observes how many re-encodes a search needed.
	FitProbes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contactqr",
		Name:      "fit_search_probes",
		Help:      "Photo re-encodes performed per fit search.",
		Buckets:   []float64{0, 1, 2, 4, 8, 16, 32, 64, 128, 256},
	})

	// ReencodeFailures counts re-encodes that failed and were skipped.
	ReencodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactqr",
		Name:      "photo_reencode_failures_total",
		Help:      "Photo re-encodes that failed during a fit search.",
	})

	// Payloads counts composed payloads by kind and final level.
	Payloads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "contactqr",
		Name:      "payloads_total",
		Help:      "Composed QR payloads by kind and error-correction level.",
	}, []string{"kind", "level"})

	// PayloadBytes observes composed payload sizes.
	PayloadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "contactqr",
		Name:      "payload_bytes",
		Help:      "Size of composed QR payloads in bytes.",
		Buckets:   []float64{128, 256, 512, 1024, 1270, 1660, 2330, 2950},
	})

	// CapacityExceeded counts payloads rejected for size.
	CapacityExceeded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "contactqr",
		Name:      "capacity_exceeded_total",
		Help:      "Payloads that did not fit any allowed error-correction level.",
	})
)

func init() {
	Registry.MustRegister(FitSearches, FitProbes, ReencodeFailures, Payloads, PayloadBytes, CapacityExceeded)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
