package models

import (
	"time"

	"github.com/lib/pq"
)

// Customer is a resolved customer identity with running lifetime aggregates.
// Field order matches schema: id, name, phone, normalized_phone, ...
type Customer struct {
	ID              string         `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	Phone           string         `json:"phone" db:"phone"`
	NormalizedPhone string         `json:"normalized_phone" db:"normalized_phone"`
	FirstOrderDate  *time.Time     `json:"first_order_date,omitempty" db:"first_order_date"`
	LastOrderDate   *time.Time     `json:"last_order_date,omitempty" db:"last_order_date"`
	TotalOrders     int            `json:"total_orders" db:"total_orders"`
	TotalAmount     float64        `json:"total_amount" db:"total_amount"`
	Channels        pq.StringArray `json:"channels" db:"channels"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// CustomerRef is the slim projection returned by batch inserts. Rows that lost
// an insert race are absent from the returned set.
type CustomerRef struct {
	ID              string `json:"id" db:"id"`
	Name            string `json:"name" db:"name"`
	NormalizedPhone string `json:"normalized_phone" db:"normalized_phone"`
}

// CustomerDelta is an additive change to one customer's aggregates. The
// repository applies the arithmetic server-side so concurrent deltas never
// lose writes.
type CustomerDelta struct {
	CustomerID     string
	OrderCount     int
	Amount         float64
	FirstOrderDate *time.Time
	LastOrderDate  *time.Time
	Channels       []string
}

// CustomerListResponse is the response for listing customers
type CustomerListResponse struct {
	Items      []Customer `json:"items"`
	TotalCount int        `json:"total_count"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
}
