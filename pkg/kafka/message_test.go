package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderBatch(t *testing.T) {
	msg := &IncomingMessage{
		Key: "fallback-key",
		Value: []byte(`{
			"source": "marketplace-a",
			"batch_id": "batch-42",
			"channel": "web",
			"timestamp": "2026-03-01T10:00:00Z",
			"orders": [
				{"order_id": "o-1", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222", "amount": 120.5, "ordered_at": "2026-03-01T09:00:00Z"},
				{"order_id": "o-2", "buyer_name": "John Roe", "buyer_phone": "090-3333-4444", "amount": 50, "sales_channel": "app"}
			]
		}`),
	}

	require.NoError(t, msg.ParseOrderBatch())
	assert.Equal(t, "marketplace-a", msg.GetSource())
	assert.Equal(t, "batch-42", msg.GetBatchID())
	assert.Equal(t, "web", msg.GetChannel())

	orders := msg.GetOrders()
	require.Len(t, orders, 2)
	assert.Equal(t, "o-1", orders[0].OrderID)
	assert.Equal(t, 120.5, orders[0].Amount)
	require.NotNil(t, orders[0].OrderedAt)
	// Batch-level channel fills in orders that carry none
	assert.Equal(t, "web", orders[0].SalesChannel)
	// Per-order channel wins
	assert.Equal(t, "app", orders[1].SalesChannel)
	// The envelope copy is not mutated
	assert.Equal(t, "", msg.OrderBatch.Orders[0].SalesChannel)
}

func TestParseOrderBatchInvalidJSON(t *testing.T) {
	msg := &IncomingMessage{Value: []byte("not json")}
	assert.Error(t, msg.ParseOrderBatch())
	assert.Nil(t, msg.OrderBatch)
	assert.Nil(t, msg.GetOrders())
}

func TestEnvelopeFallbacks(t *testing.T) {
	msg := &IncomingMessage{
		Key:     "key-7",
		Headers: map[string]string{"source": "header-source", "channel": "header-channel"},
		Value:   []byte(`{"orders": []}`),
	}
	require.NoError(t, msg.ParseOrderBatch())
	assert.Equal(t, "header-source", msg.GetSource())
	assert.Equal(t, "key-7", msg.GetBatchID())
	assert.Equal(t, "header-channel", msg.GetChannel())
}
