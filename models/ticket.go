package models

import (
	"time"
)

// TicketPurchase is a customer's attempt to buy tickets for an event.
// Rows are created pending/pending and moved to confirmed/success only
// by the verification flow or the payment webhook.
type TicketPurchase struct {
	ID               string     `json:"id"`
	EventID          string     `json:"event_id"`
	CustomerName     string     `json:"customer_name"`
	CustomerEmail    string     `json:"customer_email"`
	CustomerPhone    string     `json:"customer_phone,omitempty"`
	Quantity         int        `json:"quantity"`
	TotalAmount      float64    `json:"total_amount"`
	PaymentReference string     `json:"payment_reference"`
	Status           string     `json:"status"`         // pending, confirmed, cancelled
	PaymentStatus    string     `json:"payment_status"` // pending, success, failed
	VerifiedAt       *time.Time `json:"verified_at,omitempty"`
	Created          time.Time  `json:"created"`
	Updated          time.Time  `json:"updated"`
}

const (
	PurchasePending   = "pending"
	PurchaseConfirmed = "confirmed"
	PurchaseCancelled = "cancelled"

	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)
