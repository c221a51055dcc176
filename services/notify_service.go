package services

import (
	"log/slog"

	pubnub "github.com/pubnub/go/v7"
)

const paymentsChannel = "payment-notifications"

// NotifyService publishes realtime payment outcomes so open dashboards
// update without polling. A nil PubNub client disables publishing.
type NotifyService struct {
	pubnub *pubnub.PubNub
}

func NewNotifyService(pn *pubnub.PubNub) *NotifyService {
	return &NotifyService{pubnub: pn}
}

// PaymentSettled announces a settled payment on the shared payments
// channel and on the paying customer's own channel.
func (s *NotifyService) PaymentSettled(kind, reference, customerEmail, status string, amount float64) {
	if s.pubnub == nil {
		return
	}

	message := map[string]any{
		"type":      "payment_" + status,
		"kind":      kind,
		"reference": reference,
		"amount":    amount,
	}

	if _, _, err := s.pubnub.Publish().
		Channel(paymentsChannel).
		Message(message).
		Execute(); err != nil {
		slog.Error("notify: publish to payments channel failed", "reference", reference, "error", err)
	}

	if customerEmail == "" {
		return
	}
	if _, _, err := s.pubnub.Publish().
		Channel("customer-" + customerEmail).
		Message(message).
		Execute(); err != nil {
		slog.Error("notify: publish to customer channel failed", "reference", reference, "error", err)
	}
}
