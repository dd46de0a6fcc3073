package resolution

import (
	"context"

	"github.com/Gobusters/ectologger"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// CustomerStore is the persistence surface the engine needs for customers.
type CustomerStore interface {
	// FindByNormalizedPhones returns every customer whose normalized phone is
	// in the given set.
	FindByNormalizedPhones(ctx context.Context, phones []string) ([]models.Customer, error)
	// InsertBatch inserts new customers, skipping any row that loses the race
	// on the (name, normalized_phone) constraint. It returns refs for the rows
	// that actually won.
	InsertBatch(ctx context.Context, customers []*models.Customer) ([]models.CustomerRef, error)
	// ApplyDeltas applies additive aggregate deltas server-side. Update-only;
	// it can never create a row.
	ApplyDeltas(ctx context.Context, deltas []models.CustomerDelta) error
}

// OrderStore links resolved customers back onto order rows.
type OrderStore interface {
	// LinkCustomer sets customer_id on the given orders and reports how many
	// rows were touched. Update-only and idempotent.
	LinkCustomer(ctx context.Context, customerID string, orderIDs []string) (int64, error)
}

// Result summarizes one batch resolution.
type Result struct {
	CustomerIDByOrderID map[string]string    `json:"customer_id_by_order_id"`
	Created             []models.CustomerRef `json:"created,omitempty"`
	MatchedCustomers    int                  `json:"matched_customers"`
	CreatedCustomers    int                  `json:"created_customers"`
	SkippedOrders       int                  `json:"skipped_orders"`
	LinkedOrders        int64                `json:"linked_orders"`
}

// Engine runs the resolution pipeline: aggregate, match, write, reconcile,
// link. Concurrent invocations are coordinated solely through the uniqueness
// constraint in the customer store; the engine itself holds no locks.
type Engine struct {
	customers CustomerStore
	orders    OrderStore
	logger    ectologger.Logger
}

func NewEngine(customers CustomerStore, orders OrderStore, logger ectologger.Logger) *Engine {
	return &Engine{
		customers: customers,
		orders:    orders,
		logger:    logger,
	}
}

// Resolve processes one batch of raw orders end to end.
func (e *Engine) Resolve(ctx context.Context, orders []models.RawOrder) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "resolution.Engine.Resolve")
	defer span.End()

	aggregates, skipped := Aggregate(orders)
	result := &Result{
		CustomerIDByOrderID: make(map[string]string),
		SkippedOrders:       skipped,
	}
	if len(aggregates) == 0 {
		return result, nil
	}

	keys := sortedKeys(aggregates)
	phones := uniquePhones(aggregates)

	existing, err := e.customers.FindByNormalizedPhones(ctx, phones)
	if err != nil {
		return nil, err
	}
	idByKey := make(map[string]string, len(existing))
	for _, c := range existing {
		idByKey[IdentityKey(c.Name, c.NormalizedPhone)] = c.ID
	}

	var toInsert []*models.Customer
	var insertKeys []string
	var deltas []models.CustomerDelta
	for _, key := range keys {
		agg := aggregates[key]
		if id, ok := idByKey[key]; ok {
			deltas = append(deltas, agg.delta(id))
		} else {
			toInsert = append(toInsert, agg.newCustomer())
			insertKeys = append(insertKeys, key)
		}
	}

	if len(toInsert) > 0 {
		result.Created, err = e.customers.InsertBatch(ctx, toInsert)
		if err != nil {
			return nil, err
		}
		if conflicts := len(toInsert) - len(result.Created); conflicts > 0 {
			metrics.InsertConflictsTotal.Add(float64(conflicts))
			e.logger.WithContext(ctx).WithFields(map[string]any{
				"conflicts": conflicts,
			}).Debug("Insert races absorbed by uniqueness constraint")
		}
	}
	result.CreatedCustomers = len(result.Created)

	if len(deltas) > 0 {
		if err := e.customers.ApplyDeltas(ctx, deltas); err != nil {
			return nil, err
		}
	}

	// Reconciliation read: after concurrent writers race on the constraint,
	// the database is the only arbiter of which row owns each identity.
	current, err := e.customers.FindByNormalizedPhones(ctx, phones)
	if err != nil {
		return nil, err
	}
	resolved := make(map[string]string, len(current))
	for _, c := range current {
		resolved[IdentityKey(c.Name, c.NormalizedPhone)] = c.ID
	}

	// An aggregate scheduled for insert that lost the race still owes its
	// deltas to the winning row.
	won := make(map[string]struct{}, len(result.Created))
	for _, ref := range result.Created {
		won[IdentityKey(ref.Name, ref.NormalizedPhone)] = struct{}{}
	}
	var lostDeltas []models.CustomerDelta
	for _, key := range insertKeys {
		if _, ok := won[key]; ok {
			continue
		}
		id, ok := resolved[key]
		if !ok {
			// Counted as skipped in the linking pass below.
			continue
		}
		lostDeltas = append(lostDeltas, aggregates[key].delta(id))
	}
	if len(lostDeltas) > 0 {
		e.logger.WithContext(ctx).WithFields(map[string]any{
			"count": len(lostDeltas),
		}).Debug("Re-applying deltas for lost insert races")
		if err := e.customers.ApplyDeltas(ctx, lostDeltas); err != nil {
			return nil, err
		}
	}

	// matchedCustomers counts every distinct identity the batch resolved to an
	// id, new and existing alike, as established by the reconciliation read.
	for _, key := range keys {
		agg := aggregates[key]
		id, ok := resolved[key]
		if !ok {
			// Identity absent even after the reconciliation read. A data-quality
			// signal, not a crash: the orders stay unlinked and count as skipped.
			result.SkippedOrders += len(agg.OrderIDs)
			e.logger.WithContext(ctx).WithFields(map[string]any{
				"normalized_phone": agg.NormalizedPhone,
				"orders":           len(agg.OrderIDs),
			}).Warn("Identity missing after reconciliation, skipping its orders")
			continue
		}
		result.MatchedCustomers++
		linked, err := e.orders.LinkCustomer(ctx, id, agg.OrderIDs)
		if err != nil {
			return nil, err
		}
		result.LinkedOrders += linked
		for _, orderID := range agg.OrderIDs {
			result.CustomerIDByOrderID[orderID] = id
		}
	}

	metrics.CustomersCreatedTotal.Add(float64(result.CreatedCustomers))
	metrics.CustomersMatchedTotal.Add(float64(result.MatchedCustomers))
	metrics.OrdersLinkedTotal.Add(float64(result.LinkedOrders))
	tracing.AddSpanAttributes(ctx,
		attribute.Int("resolution.orders", len(orders)),
		attribute.Int("resolution.customers_created", result.CreatedCustomers),
		attribute.Int("resolution.customers_matched", result.MatchedCustomers),
		attribute.Int("resolution.orders_skipped", result.SkippedOrders),
	)

	return result, nil
}
