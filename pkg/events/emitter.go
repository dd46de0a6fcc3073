// Package events handles event emission for customer lifecycle changes
package events

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolution"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// SchemaVersion is the current event schema version
const SchemaVersion = "1.0"

// Emitter handles event emission for Clover
type Emitter struct {
	producer *kafka.Producer
	logger   ectologger.Logger
}

// NewEmitter creates a new event emitter
func NewEmitter(producer *kafka.Producer, logger ectologger.Logger) *Emitter {
	return &Emitter{
		producer: producer,
		logger:   logger,
	}
}

// EmitCustomersCreated emits a customer.created event for every customer row
// that a batch inserted
func (e *Emitter) EmitCustomersCreated(ctx context.Context, batchID string, created []models.CustomerRef) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitCustomersCreated")
	defer span.End()

	if len(created) == 0 {
		return nil
	}

	events := make([]*kafka.CustomerEvent, len(created))
	for i, ref := range created {
		events[i] = &kafka.CustomerEvent{
			EventType:       string(EventTypeCustomerCreated),
			CustomerID:      ref.ID,
			Name:            ref.Name,
			NormalizedPhone: ref.NormalizedPhone,
			BatchID:         batchID,
		}
	}

	if err := e.producer.PublishCustomerEvents(ctx, events); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit customer.created events")
		return err
	}

	return nil
}

// EmitBatchResolved emits a summary event after a batch finishes resolution
func (e *Emitter) EmitBatchResolved(ctx context.Context, source string, batchID string, result *resolution.Result) error {
	ctx, span := tracing.StartSpan(ctx, "events.Emitter.EmitBatchResolved")
	defer span.End()

	payload := BatchResolvedEvent{
		BaseEvent:        NewBaseEvent(EventTypeBatchResolved),
		Source:           source,
		BatchID:          batchID,
		CreatedCustomers: int64(result.CreatedCustomers),
		MatchedCustomers: int64(result.MatchedCustomers),
		SkippedOrders:    int64(result.SkippedOrders),
		LinkedOrders:     result.LinkedOrders,
	}
	dataJSON, _ := json.Marshal(payload)

	event := &kafka.CustomerEvent{
		EventType: string(EventTypeBatchResolved),
		BatchID:   batchID,
		Data:      dataJSON,
	}

	if err := e.producer.PublishCustomerEvent(ctx, event); err != nil {
		e.logger.WithContext(ctx).WithError(err).Error("Failed to emit batch.resolved event")
		return err
	}

	return nil
}
