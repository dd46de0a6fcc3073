package order

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository links orders to resolved customers. It never inserts or deletes
// order rows; ingestion owns those.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new order repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// LinkCustomer sets customer_id on the given orders in one batched update and
// returns the number of rows touched. Idempotent; re-linking the same orders
// to the same customer is a no-op beyond updated_at.
func (r *Repository) LinkCustomer(ctx context.Context, customerID string, orderIDs []string) (int64, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Repository.LinkCustomer")
	defer span.End()

	if len(orderIDs) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("orders")
	sb.Set(
		sb.Assign("customer_id", customerID),
		sb.Assign("updated_at", now),
	)
	sb.Where(sb.In("id", sqlbuilder.Flatten(orderIDs)...))

	query, args := sb.Build()
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"customer_id": customerID,
			"order_count": len(orderIDs),
		}).Error("Failed to link orders to customer")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to link orders")
	}

	rows, _ := result.RowsAffected()
	r.logger.WithContext(ctx).WithFields(map[string]any{
		"customer_id": customerID,
		"linked":      rows,
	}).Debug("Linked orders to customer")
	return rows, nil
}

// CountByCustomer reports how many order rows are linked to a customer
func (r *Repository) CountByCustomer(ctx context.Context, customerID string) (int, error) {
	ctx, span := tracing.StartSpan(ctx, "order.Repository.CountByCustomer")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From("orders")
	sb.Where(sb.Equal("customer_id", customerID))

	query, args := sb.Build()
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count orders for customer")
		return 0, httperror.NewHTTPError(http.StatusInternalServerError, "failed to count orders")
	}

	return count, nil
}
