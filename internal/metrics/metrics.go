package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for booking and payment attempts.
const (
	OutcomeSuccess           = "success"
	OutcomeSameDayConflict   = "same_day_conflict"
	OutcomeCapacityExceeded  = "capacity_exceeded"
	OutcomeInsufficientFunds = "insufficient_funds"
	OutcomeNotFound          = "not_found"
	OutcomeConflictExhausted = "conflict_exhausted"
	OutcomeError             = "error"
)

// Metrics holds the application's prometheus collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	BookingsTotal *prometheus.CounterVec
	PaymentsTotal *prometheus.CounterVec

	// TxRetriesTotal counts serialization/deadlock rollbacks that were
	// retried, per operation.
	TxRetriesTotal *prometheus.CounterVec
}

// New registers the collectors on the default registry.
func New() *Metrics {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry registers the collectors on the given registry.
func NewWithRegistry(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		BookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookings_total",
				Help: "Total number of booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		PaymentsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "payments_total",
				Help: "Total number of payment attempts by outcome",
			},
			[]string{"outcome"},
		),
		TxRetriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tx_retries_total",
				Help: "Serialization conflicts rolled back and retried",
			},
			[]string{"operation"},
		),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.BookingsTotal,
		m.PaymentsTotal,
		m.TxRetriesTotal,
	)

	return m
}
