package models

import "time"

// Order is a single order line: one book, one customer.
type Order struct {
	ID         string    `json:"order_id"`
	CustomerID string    `json:"customer_id"`
	BookID     string    `json:"book_id"`
	Quantity   int       `json:"quantity"`
	OrderDate  time.Time `json:"order_date"`
}
