package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	requiredAcks := kafka.RequiredAcks(cfg.RequiredAcks)

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           requiredAcks,
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// CustomerEvent represents a customer lifecycle event
type CustomerEvent struct {
	EventType       string          `json:"event_type"` // customer.created, batch.resolved
	CustomerID      string          `json:"customer_id,omitempty"`
	Name            string          `json:"name,omitempty"`
	NormalizedPhone string          `json:"normalized_phone,omitempty"`
	BatchID         string          `json:"batch_id,omitempty"`
	Data            json.RawMessage `json:"data,omitempty"`
	Timestamp       time.Time       `json:"timestamp"`
}

// PublishCustomerEvent publishes a single customer event
func (p *Producer) PublishCustomerEvent(ctx context.Context, event *CustomerEvent) error {
	return p.PublishCustomerEvents(ctx, []*CustomerEvent{event})
}

// PublishCustomerEvents publishes multiple customer events in a batch
func (p *Producer) PublishCustomerEvents(ctx context.Context, events []*CustomerEvent) error {
	ctx, span := tracing.StartSpan(ctx, "kafka.Producer.PublishCustomerEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		key := event.CustomerID
		if key == "" {
			key = event.BatchID
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(key),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "schema_version", Value: []byte("1.0")},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		metrics.RecordKafkaPublish(p.topic, "error")
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish customer events batch")
		return err
	}

	metrics.RecordKafkaPublish(p.topic, "success")
	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published customer events batch")

	return nil
}
