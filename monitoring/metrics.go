package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	paymentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_operations_total",
			Help: "Payment operations by kind and outcome",
		},
		[]string{"operation", "kind", "status"},
	)

	webhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_events_total",
			Help: "Received gateway webhook events",
		},
		[]string{"event_type", "result"},
	)

	ticketsSold = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_sold_total",
			Help: "Confirmed ticket sales per event",
		},
		[]string{"event_id"},
	)

	donationAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "donation_amount_total",
			Help: "Total confirmed donation amount",
		},
	)

	verifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_verify_duration_seconds",
			Help:    "Duration of gateway verify calls",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
		[]string{"kind"},
	)
)

// TrackPaymentOperation records a payment operation outcome.
func TrackPaymentOperation(operation, kind, status string) {
	paymentOperations.WithLabelValues(operation, kind, status).Inc()
}

// TrackWebhookEvent records a received webhook event and its result.
func TrackWebhookEvent(eventType, result string) {
	webhookEvents.WithLabelValues(eventType, result).Inc()
}

// TrackTicketsSold records confirmed ticket sales for an event.
func TrackTicketsSold(eventID string, quantity int) {
	ticketsSold.WithLabelValues(eventID).Add(float64(quantity))
}

// TrackDonation records a confirmed donation amount.
func TrackDonation(amount float64) {
	donationAmount.Add(amount)
}

// TrackVerifyDuration records how long a gateway verify call took.
func TrackVerifyDuration(kind string, seconds float64) {
	verifyDuration.WithLabelValues(kind).Observe(seconds)
}
