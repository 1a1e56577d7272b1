package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	EventsReceivedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "hookgate_events_received_total",
			Help: "Total number of webhook events admitted to the queue.",
		},
	)

	EventsRejectedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookgate_events_rejected_total",
			Help: "Total number of webhook events rejected at the boundary by reason.",
		},
		[]string{"reason"}, // e.g. invalid_signature, bad_request
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookgate_deliveries_total",
			Help: "Total number of terminal delivery outcomes by status.",
		},
		[]string{"status"}, // delivered, dropped
	)

	RetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hookgate_retries_total",
			Help: "Total number of failed delivery attempts by reason.",
		},
		[]string{"reason"}, // e.g. http_5xx, timeout, connection_refused, other
	)

	QueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "hookgate_queue_depth",
			Help: "Number of items currently pending in the delivery queue.",
		},
	)

	DeliveryLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hookgate_delivery_latency_seconds",
			Help:    "Latency of individual delivery attempts.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

func MustRegister(reg *prometheus.Registry) {
	reg.MustRegister(EventsReceivedTotal, EventsRejectedTotal, DeliveriesTotal, RetriesTotal, QueueDepth, DeliveryLatency)
}

// RecordEventReceived increments the admitted-events counter.
func RecordEventReceived() {
	EventsReceivedTotal.Inc()
}

// RecordEventRejected increments the rejected-events counter for a reason.
func RecordEventRejected(reason string) {
	EventsRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordDelivery records a terminal delivery outcome and its attempt latency.
func RecordDelivery(status string, latency time.Duration) {
	DeliveriesTotal.WithLabelValues(status).Inc()
	DeliveryLatency.Observe(latency.Seconds())
}

// RecordRetry increments the failed-attempt counter for a reason.
func RecordRetry(reason string) {
	RetriesTotal.WithLabelValues(reason).Inc()
}

// SetQueueDepth updates the pending-queue gauge.
func SetQueueDepth(n int) {
	QueueDepth.Set(float64(n))
}
