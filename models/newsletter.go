package models

import (
	"time"
)

type NewsletterSubscriber struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	UnsubscribeToken string    `json:"-"`
	Subscribed       bool      `json:"subscribed"`
	Created          time.Time `json:"created"`
}

type ContactMessage struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Email   string    `json:"email"`
	Subject string    `json:"subject"`
	Message string    `json:"message"`
	Read    bool      `json:"read"`
	Created time.Time `json:"created"`
}
