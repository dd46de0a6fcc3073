package processor

import (
	"context"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolution"
)

type fakeResolver struct {
	result   *resolution.Result
	err      error
	calls    int
	received []models.RawOrder
}

func (f *fakeResolver) Resolve(_ context.Context, orders []models.RawOrder) (*resolution.Result, error) {
	f.calls++
	f.received = orders
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeEmitter struct {
	createdCalls  int
	resolvedCalls int
	emitErr       error
	lastBatchID   string
}

func (f *fakeEmitter) EmitCustomersCreated(_ context.Context, batchID string, _ []models.CustomerRef) error {
	f.createdCalls++
	f.lastBatchID = batchID
	return f.emitErr
}

func (f *fakeEmitter) EmitBatchResolved(_ context.Context, _ string, batchID string, _ *resolution.Result) error {
	f.resolvedCalls++
	f.lastBatchID = batchID
	return f.emitErr
}

func testLogger() ectologger.Logger {
	return ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
}

func batchMessage(t *testing.T, payload string) *kafka.IncomingMessage {
	t.Helper()
	msg := &kafka.IncomingMessage{Key: "key-1", Value: []byte(payload)}
	require.NoError(t, msg.ParseOrderBatch())
	return msg
}

func TestProcessMessageResolvesBatch(t *testing.T) {
	resolver := &fakeResolver{result: &resolution.Result{
		Created:          []models.CustomerRef{{ID: "c-1", Name: "Jane Doe", NormalizedPhone: "09011112222"}},
		CreatedCustomers: 1,
		LinkedOrders:     2,
	}}
	emitter := &fakeEmitter{}
	p := NewProcessor(testLogger(), resolver, emitter)

	msg := batchMessage(t, `{
		"source": "marketplace-a",
		"batch_id": "batch-1",
		"channel": "web",
		"orders": [
			{"order_id": "o-1", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222", "amount": 100},
			{"order_id": "o-2", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222", "amount": 50}
		]
	}`)

	require.NoError(t, p.ProcessMessage(context.Background(), msg))
	assert.Equal(t, 1, resolver.calls)
	require.Len(t, resolver.received, 2)
	// Batch channel is applied before resolution
	assert.Equal(t, "web", resolver.received[0].SalesChannel)
	assert.Equal(t, 1, emitter.createdCalls)
	assert.Equal(t, 1, emitter.resolvedCalls)
	assert.Equal(t, "batch-1", emitter.lastBatchID)
}

func TestProcessMessageEmptyBatch(t *testing.T) {
	resolver := &fakeResolver{result: &resolution.Result{}}
	p := NewProcessor(testLogger(), resolver, &fakeEmitter{})

	msg := batchMessage(t, `{"source": "marketplace-a", "batch_id": "batch-2", "orders": []}`)
	require.NoError(t, p.ProcessMessage(context.Background(), msg))
	assert.Equal(t, 0, resolver.calls)
}

func TestProcessMessageResolverErrorPropagates(t *testing.T) {
	resolver := &fakeResolver{err: errors.New("db down")}
	emitter := &fakeEmitter{}
	p := NewProcessor(testLogger(), resolver, emitter)

	msg := batchMessage(t, `{
		"batch_id": "batch-3",
		"orders": [{"order_id": "o-1", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222"}]
	}`)

	err := p.ProcessMessage(context.Background(), msg)
	require.Error(t, err)
	assert.Equal(t, 0, emitter.createdCalls)
	assert.Equal(t, 0, emitter.resolvedCalls)
}

func TestProcessMessageEmitterErrorIsNonFatal(t *testing.T) {
	resolver := &fakeResolver{result: &resolution.Result{CreatedCustomers: 1, Created: []models.CustomerRef{{ID: "c-1"}}}}
	emitter := &fakeEmitter{emitErr: errors.New("broker down")}
	p := NewProcessor(testLogger(), resolver, emitter)

	msg := batchMessage(t, `{
		"batch_id": "batch-4",
		"orders": [{"order_id": "o-1", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222"}]
	}`)

	require.NoError(t, p.ProcessMessage(context.Background(), msg))
	assert.Equal(t, 1, emitter.createdCalls)
}

func TestProcessMessageNilEmitter(t *testing.T) {
	resolver := &fakeResolver{result: &resolution.Result{}}
	p := NewProcessor(testLogger(), resolver, nil)

	msg := batchMessage(t, `{
		"batch_id": "batch-5",
		"orders": [{"order_id": "o-1", "buyer_name": "Jane Doe", "buyer_phone": "090-1111-2222"}]
	}`)

	require.NoError(t, p.ProcessMessage(context.Background(), msg))
	assert.Equal(t, 1, resolver.calls)
}
