package service

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "reviewdesk"

// Metrics holds the collectors shared by the review and chat services.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	degraded   prometheus.Counter
	registerer prometheus.Registerer
}

// NewMetrics registers the service collectors on reg. A nil reg falls back to
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "operations_total",
				Help:      "Completed service operations by outcome.",
			},
			[]string{"operation", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "operation_duration_seconds",
				Help:      "Service operation latency, model calls included.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"operation"},
		),
		degraded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "extractions_degraded_total",
			Help:      "Extractions that fell back to the default record.",
		}),
		registerer: reg,
	}
	reg.MustRegister(m.operations, m.duration, m.degraded)
	return m
}

// TrackSessions exposes count as the active chat sessions gauge.
func (m *Metrics) TrackSessions(count func() int) {
	m.registerer.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "chat_sessions_active",
			Help:      "Chat sessions currently held in memory.",
		},
		func() float64 { return float64(count()) },
	))
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.operations.WithLabelValues(operation, outcome).Inc()
	m.duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// Operation counts completed calls of operation with the given outcome label.
func (m *Metrics) Operation(operation, outcome string) prometheus.Counter {
	return m.operations.WithLabelValues(operation, outcome)
}

func (m *Metrics) Degraded() prometheus.Counter {
	return m.degraded
}
