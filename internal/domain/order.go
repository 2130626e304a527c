package domain

import "time"

// Order.CustomerID references a customer owned by another service. It is checked
// once at admission time and never re-verified by the orders store.
type Order struct {
	ID         int64     `json:"id"`
	CustomerID int64     `json:"customer_id"`
	Date       time.Time `json:"date"`
	Total      float64   `json:"total"`
}

// NewOrder carries only the client-settable fields of an order.
type NewOrder struct {
	CustomerID int64
	Total      float64
}
