package metrics

import "github.com/prometheus/client_golang/prometheus"

// Remote search outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeAborted = "aborted"
)

// Search Prometheus metrics.
var (
	RemoteSearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storesearch",
			Name:      "remote_search_requests_total",
			Help:      "Total number of remote search requests by outcome",
		},
		[]string{"outcome"},
	)

	RemoteSearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storesearch",
			Name:      "remote_search_duration_seconds",
			Help:      "Remote search request duration in seconds",
			Buckets:   []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"outcome"},
	)

	RemoteSearchItemsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storesearch",
			Name:      "remote_search_items_dropped_total",
			Help:      "Remote items rejected at the client boundary",
		},
		[]string{"reason"}, // "unknown_domain" / "missing_id"
	)

	DebounceSupersededTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storesearch",
			Name:      "debounce_superseded_total",
			Help:      "Pending or in-flight remote searches cancelled by newer input",
		},
	)

	PaletteKeystrokesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storesearch",
			Name:      "palette_keystrokes_total",
			Help:      "Query changes processed by command palettes",
		},
	)

	PaletteActivationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storesearch",
			Name:      "palette_activations_total",
			Help:      "Palette item activations by item kind and action",
		},
		[]string{"kind", "action"},
	)

	PaletteSessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storesearch",
			Name:      "palette_sessions_active",
			Help:      "Palette sessions currently held by the server",
		},
	)
)

var registered bool

// Register registers the HTTP and search metrics on the default registry.
// Repeated calls are no-ops.
func Register() {
	if registered {
		return
	}
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestsInFlight)
	prometheus.MustRegister(RemoteSearchRequestsTotal)
	prometheus.MustRegister(RemoteSearchDuration)
	prometheus.MustRegister(RemoteSearchItemsDropped)
	prometheus.MustRegister(DebounceSupersededTotal)
	prometheus.MustRegister(PaletteKeystrokesTotal)
	prometheus.MustRegister(PaletteActivationsTotal)
	prometheus.MustRegister(PaletteSessionsActive)
	registered = true
}
