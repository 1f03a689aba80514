// Package metrics provides Prometheus instrumentation for chat sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SessionsTotal counts handshakes by result (started, rejected, error).
	SessionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uccx_chat_sessions_total",
			Help: "Chat session handshakes by result",
		},
		[]string{"result"},
	)

	// SessionsActive tracks sessions that are currently polling.
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uccx_chat_sessions_active",
			Help: "Number of chat sessions currently polling",
		},
	)

	// PollDuration tracks the round trip of one poll tick.
	PollDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "uccx_chat_poll_duration_seconds",
			Help:    "Duration of one event poll in seconds",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"result"},
	)

	// EventsTotal counts dispatched events by wire type.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uccx_chat_events_total",
			Help: "Chat events dispatched by type",
		},
		[]string{"type"},
	)

	// MessagesSentTotal counts outbound customer messages by result.
	MessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "uccx_chat_messages_sent_total",
			Help: "Outbound chat messages by result",
		},
		[]string{"result"},
	)

	// Participants tracks the participant count of the most recent presence change.
	Participants = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "uccx_chat_participants",
			Help: "Participant count of the chat session",
		},
	)
)

// RecordPoll records the outcome of one poll tick.
func RecordPoll(result string, duration float64) {
	PollDuration.WithLabelValues(result).Observe(duration)
}

// RecordEvent counts one dispatched event.
func RecordEvent(eventType string) {
	EventsTotal.WithLabelValues(eventType).Inc()
}

// RecordSend counts one outbound message attempt.
func RecordSend(result string) {
	MessagesSentTotal.WithLabelValues(result).Inc()
}

// RecordSession counts one handshake attempt.
func RecordSession(result string) {
	SessionsTotal.WithLabelValues(result).Inc()
}
