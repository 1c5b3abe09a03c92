// Package metrics defines the Prometheus instrumentation for the reply
// orchestrator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Webhook ingestion metrics.
var (
	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_received_total",
			Help: "Validated inbound events by channel kind",
		},
		[]string{"kind"},
	)

	EventsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_dropped_total",
			Help: "Inbound events dropped before scheduling, by reason",
		},
		[]string{"reason"},
	)
)

// Scheduler metrics.
var (
	DebounceReschedulesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_debounce_reschedules_total",
			Help: "Times a pending reply timer was superseded by a new event",
		},
	)

	StaleFiresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduler_stale_fires_total",
			Help: "Fired timers rejected by the generation fence",
		},
	)

	SendsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduler_sends_total",
			Help: "Send cycles by channel kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	SendDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduler_send_duration_seconds",
			Help:    "Duration of a complete send cycle including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
	)
)

// Content resolution metrics.
var (
	LLMFallbacksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reply_llm_fallbacks_total",
			Help: "Times the generative client failed and a template was used",
		},
	)
)

// Event log metrics.
var (
	EventLogSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "event_log_subscribers",
			Help: "Currently connected decision stream subscribers",
		},
	)

	EventLogDroppedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "event_log_dropped_total",
			Help: "Decision records dropped because a subscriber was too slow",
		},
	)
)

// Conversation store metrics.
var (
	ConversationsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "conversations_evicted_total",
			Help: "Idle conversations removed by the eviction sweep",
		},
	)
)
