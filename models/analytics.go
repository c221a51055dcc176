package models

import (
	"time"
)

// MonthlyTotal is one month bucket of a revenue series, keyed
// "2006-01".
type MonthlyTotal struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
	Count int     `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// DashboardStats is the admin dashboard payload. Each section is
// computed independently; a failed read leaves its section zeroed
// rather than failing the whole response.
type DashboardStats struct {
	DonationTotal    float64        `json:"donation_total"`
	DonationCount    int            `json:"donation_count"`
	TicketRevenue    float64        `json:"ticket_revenue"`
	TicketsSold      int            `json:"tickets_sold"`
	OrderRevenue     float64        `json:"order_revenue"`
	OrderCount       int            `json:"order_count"`
	EventsByStatus   []StatusCount  `json:"events_by_status"`
	OrdersByStatus   []StatusCount  `json:"orders_by_status"`
	DonationsByMonth []MonthlyTotal `json:"donations_by_month"`
	SubscriberCount  int            `json:"subscriber_count"`
	UnreadMessages   int            `json:"unread_messages"`
	GeneratedAt      time.Time      `json:"generated_at"`
	FromCache        bool           `json:"from_cache,omitempty"`
}
