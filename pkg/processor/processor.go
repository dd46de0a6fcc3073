// Package processor handles incoming order batch messages. It is the ingestion
// layer - each Kafka message carries one batch of raw orders that gets resolved
// into customer rows and linked back to its orders.
package processor

import (
	"context"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/resolution"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Resolver resolves a batch of raw orders into customer rows
type Resolver interface {
	Resolve(ctx context.Context, orders []models.RawOrder) (*resolution.Result, error)
}

// EventEmitter publishes customer lifecycle events after a batch resolves
type EventEmitter interface {
	EmitCustomersCreated(ctx context.Context, batchID string, created []models.CustomerRef) error
	EmitBatchResolved(ctx context.Context, source string, batchID string, result *resolution.Result) error
}

// Processor handles order batch messages
type Processor struct {
	logger   ectologger.Logger
	resolver Resolver
	emitter  EventEmitter
}

// NewProcessor creates a new message processor. The emitter may be nil when
// event emission is disabled.
func NewProcessor(logger ectologger.Logger, resolver Resolver, emitter EventEmitter) *Processor {
	return &Processor{
		logger:   logger,
		resolver: resolver,
		emitter:  emitter,
	}
}

// ProcessMessage handles an incoming Kafka message
func (p *Processor) ProcessMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.ProcessMessage")
	defer span.End()

	source := msg.GetSource()
	if source == "" {
		source = "unknown"
	}
	batchID := msg.GetBatchID()

	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"source":   source,
		"batch_id": batchID,
		"topic":    msg.Topic,
		"offset":   msg.Offset,
	})

	orders := msg.GetOrders()
	if len(orders) == 0 {
		log.Debug("Empty order batch, skipping")
		return nil
	}

	start := time.Now()
	result, err := p.resolver.Resolve(ctx, orders)
	if err != nil {
		metrics.RecordBatch(source, "error", time.Since(start).Seconds())
		log.WithError(err).Error("Failed to resolve order batch")
		return err
	}
	metrics.RecordBatch(source, "success", time.Since(start).Seconds())

	metrics.OrdersIngestedTotal.WithLabelValues(source).Add(float64(len(orders) - int(result.SkippedOrders)))
	if result.SkippedOrders > 0 {
		metrics.OrdersSkippedTotal.WithLabelValues(source).Add(float64(result.SkippedOrders))
	}

	log.WithFields(map[string]any{
		"orders":            len(orders),
		"created_customers": result.CreatedCustomers,
		"matched_customers": result.MatchedCustomers,
		"skipped_orders":    result.SkippedOrders,
		"linked_orders":     result.LinkedOrders,
	}).Info("Order batch resolved")

	// Event emission is best-effort; the batch is already durable in Postgres
	if p.emitter != nil {
		if err := p.emitter.EmitCustomersCreated(ctx, batchID, result.Created); err != nil {
			log.WithError(err).Warn("Failed to emit customer.created events")
		}
		if err := p.emitter.EmitBatchResolved(ctx, source, batchID, result); err != nil {
			log.WithError(err).Warn("Failed to emit batch.resolved event")
		}
	}

	return nil
}
