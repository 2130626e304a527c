package domain

import "time"

type OrderAdmittedEvent struct {
	EventID    string    `json:"event_id"`
	OrderID    int64     `json:"order_id"`
	CustomerID int64     `json:"customer_id"`
	Decision   string    `json:"decision"`
	AdmittedAt time.Time `json:"admitted_at"`
}
