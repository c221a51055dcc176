package models

import (
	"time"
)

type Donation struct {
	ID               string    `json:"id"`
	DonorName        string    `json:"donor_name"`
	DonorEmail       string    `json:"donor_email"`
	Amount           float64   `json:"amount"`
	Message          string    `json:"message,omitempty"`
	Anonymous        bool      `json:"anonymous"`
	PaymentReference string    `json:"payment_reference"`
	PaymentStatus    string    `json:"payment_status"` // pending, success, failed
	Created          time.Time `json:"created"`
	Updated          time.Time `json:"updated"`
}
