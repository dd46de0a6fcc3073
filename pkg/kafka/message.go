package kafka

import (
	"encoding/json"
	"time"

	"github.com/Ramsey-B/clover/pkg/models"
)

// IncomingMessage wraps a raw Kafka message with parsed headers
type IncomingMessage struct {
	Key       string
	Value     []byte
	Headers   map[string]string
	Partition int
	Offset    int64
	Timestamp time.Time
	Topic     string

	// Trace context (extracted from Kafka headers)
	TraceParent string
	TraceState  string

	// Parsed content
	OrderBatch *models.OrderBatchMessage
}

// ParseOrderBatch parses the message value as an order batch envelope
func (m *IncomingMessage) ParseOrderBatch() error {
	var batch models.OrderBatchMessage
	if err := json.Unmarshal(m.Value, &batch); err != nil {
		return err
	}
	m.OrderBatch = &batch
	return nil
}

// GetSource returns the upstream source that produced this batch
func (m *IncomingMessage) GetSource() string {
	if m.OrderBatch != nil && m.OrderBatch.Source != "" {
		return m.OrderBatch.Source
	}
	// Fallback to header
	return m.Headers["source"]
}

// GetBatchID returns the batch id, falling back to the message key
func (m *IncomingMessage) GetBatchID() string {
	if m.OrderBatch != nil && m.OrderBatch.BatchID != "" {
		return m.OrderBatch.BatchID
	}
	return m.Key
}

// GetChannel returns the batch-level sales channel, if any
func (m *IncomingMessage) GetChannel() string {
	if m.OrderBatch != nil && m.OrderBatch.Channel != "" {
		return m.OrderBatch.Channel
	}
	return m.Headers["channel"]
}

// GetOrders returns the raw orders in the batch with the batch-level channel
// filled in for orders that carry none of their own.
func (m *IncomingMessage) GetOrders() []models.RawOrder {
	if m.OrderBatch == nil {
		return nil
	}
	channel := m.GetChannel()
	orders := make([]models.RawOrder, len(m.OrderBatch.Orders))
	copy(orders, m.OrderBatch.Orders)
	if channel != "" {
		for i := range orders {
			if orders[i].SalesChannel == "" {
				orders[i].SalesChannel = channel
			}
		}
	}
	return orders
}
