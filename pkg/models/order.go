package models

import "time"

// RawOrder is one order record as received from upstream ingestion. There is
// no stable customer id on the wire; identity comes from buyer name + phone.
type RawOrder struct {
	OrderID      string     `json:"order_id" validate:"required"`
	BuyerName    string     `json:"buyer_name"`
	BuyerPhone   string     `json:"buyer_phone"`
	Amount       float64    `json:"amount"`
	OrderedAt    *time.Time `json:"ordered_at,omitempty"`
	SalesChannel string     `json:"sales_channel,omitempty"`
}

// OrderBatchMessage is the envelope for a batch of raw orders published by
// storefront/marketplace ingestion.
type OrderBatchMessage struct {
	Source    string     `json:"source"`
	BatchID   string     `json:"batch_id"`
	Channel   string     `json:"channel,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Orders    []RawOrder `json:"orders"`
}
