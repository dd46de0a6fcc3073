package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType defines the type of event
type EventType string

const (
	// Customer events
	EventTypeCustomerCreated EventType = "customer.created"

	// Batch events
	EventTypeBatchResolved EventType = "batch.resolved"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventType     EventType `json:"event_type"`
	SchemaVersion string    `json:"schema_version"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// BatchResolvedEvent summarizes a resolved order batch
type BatchResolvedEvent struct {
	BaseEvent
	Source           string `json:"source"`
	BatchID          string `json:"batch_id"`
	CreatedCustomers int64  `json:"created_customers"`
	MatchedCustomers int64  `json:"matched_customers"`
	SkippedOrders    int64  `json:"skipped_orders"`
	LinkedOrders     int64  `json:"linked_orders"`
}

// NewBaseEvent creates a base event with a fresh correlation id
func NewBaseEvent(eventType EventType) BaseEvent {
	return BaseEvent{
		EventType:     eventType,
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC(),
		CorrelationID: uuid.New().String(),
	}
}
