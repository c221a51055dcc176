package models

import (
	"time"
)

type Event struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	StartAt          time.Time `json:"start_at"`
	EndAt            time.Time `json:"end_at"`
	Location         string    `json:"location"`
	Venue            string    `json:"venue"`
	TicketPrice      float64   `json:"ticket_price"`
	MaxTickets       int       `json:"max_tickets"`
	AvailableTickets int       `json:"available_tickets"`
	Status           string    `json:"status"` // draft, published, ongoing, completed, cancelled
	ImageURL         string    `json:"image_url,omitempty"`
	Created          time.Time `json:"created"`
	Updated          time.Time `json:"updated"`
}

// EventStatuses are the statuses an event may carry. Only published
// events are purchasable.
var EventStatuses = []string{"draft", "published", "ongoing", "completed", "cancelled"}
