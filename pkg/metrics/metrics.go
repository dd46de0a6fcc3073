// Package metrics provides Prometheus metrics for the Clover service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersIngestedTotal tracks raw orders received for resolution
	OrdersIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "orders_ingested_total",
			Help:      "Total number of raw orders received for resolution",
		},
		[]string{"source"},
	)

	// OrdersSkippedTotal tracks orders skipped for missing identity fields
	OrdersSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "orders_skipped_total",
			Help:      "Total number of orders skipped because no identity could be built",
		},
		[]string{"source"},
	)

	// CustomersCreatedTotal tracks new customer identities created
	CustomersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "customers_created_total",
			Help:      "Total number of new customer identities created",
		},
	)

	// CustomersMatchedTotal tracks identities resolved to a customer id,
	// new and existing alike
	CustomersMatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "customers_matched_total",
			Help:      "Total number of identities resolved to a customer id",
		},
	)

	// InsertConflictsTotal tracks insert races absorbed by the unique constraint
	InsertConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "insert_conflicts_total",
			Help:      "Total number of customer inserts absorbed by the uniqueness constraint",
		},
	)

	// ResolutionDuration tracks end-to-end batch resolution duration
	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "batch_duration_seconds",
			Help:      "Duration of batch resolutions in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// BatchesTotal tracks resolved batches by status
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "resolution",
			Name:      "batches_total",
			Help:      "Total number of order batches processed by status",
		},
		[]string{"source", "status"},
	)

	// OrdersLinkedTotal tracks orders linked back to a resolved customer
	OrdersLinkedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "linking",
			Name:      "orders_linked_total",
			Help:      "Total number of orders linked to a resolved customer",
		},
	)

	// KafkaMessagesPublished tracks Kafka messages published
	KafkaMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "clover",
			Subsystem: "kafka",
			Name:      "messages_published_total",
			Help:      "Total number of messages published to Kafka",
		},
		[]string{"topic", "status"},
	)
)

// RecordBatch records the outcome of one batch resolution
func RecordBatch(source, status string, durationSeconds float64) {
	BatchesTotal.WithLabelValues(source, status).Inc()
	ResolutionDuration.Observe(durationSeconds)
}

// RecordKafkaPublish records a Kafka publish operation
func RecordKafkaPublish(topic, status string) {
	KafkaMessagesPublished.WithLabelValues(topic, status).Inc()
}
