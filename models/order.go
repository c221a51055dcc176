package models

import (
	"time"
)

type Product struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stock_quantity"`
	InStock       bool      `json:"in_stock"`
	ImageURL      string    `json:"image_url,omitempty"`
	Category      string    `json:"category,omitempty"`
	Created       time.Time `json:"created"`
	Updated       time.Time `json:"updated"`
}

// OrderItem is a purchase-time snapshot of a product line. Unit prices
// are resolved server-side from the products table, never taken from
// the client.
type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	UnitPrice   float64 `json:"unit_price"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type Order struct {
	ID               string      `json:"id"`
	UserID           string      `json:"user_id,omitempty"`
	CustomerName     string      `json:"customer_name"`
	CustomerEmail    string      `json:"customer_email"`
	ShippingAddress  string      `json:"shipping_address"`
	Items            []OrderItem `json:"items"`
	Subtotal         float64     `json:"subtotal"`
	Shipping         float64     `json:"shipping"`
	Total            float64     `json:"total"`
	PaymentReference string      `json:"payment_reference"`
	Status           string      `json:"status"`         // pending, confirmed, shipped, delivered, cancelled
	PaymentStatus    string      `json:"payment_status"` // pending, success, failed
	Created          time.Time   `json:"created"`
	Updated          time.Time   `json:"updated"`
}
