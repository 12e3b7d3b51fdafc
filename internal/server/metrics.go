package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type serverMetrics struct {
	activeSessions prometheus.Gauge
	sessionTotal   prometheus.Counter
	eventErrors    *prometheus.CounterVec
	eventLatency   *prometheus.HistogramVec
	messagesTotal  *prometheus.CounterVec
	deliveries     prometheus.Counter
	authFailures   prometheus.Counter
}

func newServerMetrics(reg prometheus.Registerer) *serverMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &serverMetrics{
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "yellowgram_sessions_active",
			Help: "Current number of live WebSocket sessions.",
		}),
		sessionTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yellowgram_sessions_total",
			Help: "Total number of sessions handled since start.",
		}),
		eventErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yellowgram_event_errors_total",
			Help: "Event validation or domain errors by code.",
		}, []string{"code"}),
		eventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "yellowgram_event_latency_seconds",
			Help:    "Latency for handling client events.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"op"}),
		messagesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "yellowgram_messages_total",
			Help: "Chat messages routed, by direct/group kind.",
		}, []string{"kind"}),
		deliveries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yellowgram_deliveries_total",
			Help: "Individual message pushes to live connections.",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "yellowgram_auth_failures_total",
			Help: "Failed registration or login attempts.",
		}),
	}

	reg.MustRegister(
		m.activeSessions,
		m.sessionTotal,
		m.eventErrors,
		m.eventLatency,
		m.messagesTotal,
		m.deliveries,
		m.authFailures,
	)
	return m
}

func (m *serverMetrics) incSession() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
	m.sessionTotal.Inc()
}

func (m *serverMetrics) decSession() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}

func (m *serverMetrics) recordError(code string) {
	if m == nil {
		return
	}
	m.eventErrors.WithLabelValues(code).Inc()
}

func (m *serverMetrics) observeLatency(op string, dur time.Duration) {
	if m == nil || op == "" {
		return
	}
	m.eventLatency.WithLabelValues(op).Observe(dur.Seconds())
}

// RecordMessage implements chat.Metrics.
func (m *serverMetrics) RecordMessage(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.messagesTotal.WithLabelValues(kind).Inc()
}

// RecordDelivery implements chat.Metrics.
func (m *serverMetrics) RecordDelivery() {
	if m == nil {
		return
	}
	m.deliveries.Inc()
}

// RecordAuthFailure implements chat.Metrics.
func (m *serverMetrics) RecordAuthFailure() {
	if m == nil {
		return
	}
	m.authFailures.Inc()
}
