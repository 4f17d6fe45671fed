package storesearch

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/storesearch/internal/domain"
)

// Operation statuses.
const (
	statusOK       = "ok"
	statusRejected = "rejected"
	statusError    = "error"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	results    *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storesearch",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storesearch",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"operation"}),
		results: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "storesearch",
			Subsystem: "sdk",
			Name:      "operation_results",
			Help:      "Rows returned by local search and filter operations.",
			Buckets:   []float64{0, 1, 5, 10, 30, 50, 100, 500},
		}, []string{"operation"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.results); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("storesearch: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("storesearch: register metric: %w", err)
	}
	return nil
}

// statusOf separates caller mistakes from dependency failures.
func statusOf(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSessionClosed),
		errors.Is(err, domain.ErrNoSelection),
		errors.Is(err, domain.ErrUnknownAction):
		return statusRejected
	default:
		return statusError
	}
}

// observer provides logging and metrics for SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func (o *observer) observe(op string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := statusOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch status {
	case statusOK:
		o.logger.Debug("operation completed", "op", op, "duration", dur)
	case statusRejected:
		o.logger.Info("operation rejected", "op", op, "duration", dur, "error", err)
	default:
		o.logger.Warn("operation failed", "op", op, "duration", dur, "error", err)
	}
}

// observeResults records how many rows a search or filter returned.
func (o *observer) observeResults(op string, start time.Time, n int) {
	if o == nil {
		return
	}
	o.observe(op, start, nil)
	if o.metrics != nil {
		o.metrics.results.WithLabelValues(op).Observe(float64(n))
	}
}
