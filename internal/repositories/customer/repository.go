package customer

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"
	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

var columns = []string{"id", "name", "phone", "normalized_phone", "first_order_date", "last_order_date", "total_orders", "total_amount", "channels", "created_at", "updated_at"}

// Repository handles customer persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new customer repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// FindByNormalizedPhones retrieves all customers whose normalized phone is in
// the given set. One bulk read covers a whole batch.
func (r *Repository) FindByNormalizedPhones(ctx context.Context, phones []string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByNormalizedPhones")
	defer span.End()

	if len(phones) == 0 {
		return nil, nil
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("customers")
	sb.Where(sb.In("normalized_phone", sqlbuilder.Flatten(phones)...))

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find customers by normalized phones")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find customers")
	}

	return customers, nil
}

// InsertBatch inserts new customers in one statement. Rows that collide with
// an existing (name, normalized_phone) pair are skipped by the constraint;
// only the rows that won the insert come back.
func (r *Repository) InsertBatch(ctx context.Context, customers []*models.Customer) ([]models.CustomerRef, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.InsertBatch")
	defer span.End()

	if len(customers) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("customers")
	sb.Cols(columns...)

	for _, c := range customers {
		if c.ID == "" {
			c.ID = uuid.New().String()
		}
		if c.Channels == nil {
			c.Channels = pq.StringArray{}
		}
		c.CreatedAt = now
		c.UpdatedAt = now
		sb.Values(c.ID, c.Name, c.Phone, c.NormalizedPhone, c.FirstOrderDate, c.LastOrderDate, c.TotalOrders, c.TotalAmount, c.Channels, c.CreatedAt, c.UpdatedAt)
	}

	query, args := sb.Build()
	// Lost races are absorbed, not errors. RETURNING exposes who won.
	query += " ON CONFLICT (name, normalized_phone) DO NOTHING RETURNING id, name, normalized_phone"

	var refs []models.CustomerRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"count": len(customers)}).Error("Failed to insert customers batch")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to insert customers")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(refs)}).Debug("Inserted customers batch")
	return refs, nil
}

// ApplyDeltas applies additive aggregate deltas in one statement. All
// arithmetic happens server-side so concurrent batches cannot lose updates:
// counts and amounts add, date bounds widen, channel sets union. Update-only.
func (r *Repository) ApplyDeltas(ctx context.Context, deltas []models.CustomerDelta) error {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.ApplyDeltas")
	defer span.End()

	if len(deltas) == 0 {
		return nil
	}

	valueRows := make([]string, 0, len(deltas))
	args := make([]any, 0, len(deltas)*6)
	p := 1
	for _, d := range deltas {
		valueRows = append(valueRows, fmt.Sprintf("($%d::uuid, $%d::int, $%d::numeric, $%d::timestamptz, $%d::timestamptz, $%d::text[])", p, p+1, p+2, p+3, p+4, p+5))
		args = append(args, d.CustomerID, d.OrderCount, d.Amount, d.FirstOrderDate, d.LastOrderDate, pq.Array(d.Channels))
		p += 6
	}

	query := fmt.Sprintf(`
		UPDATE customers AS c SET
			total_orders = c.total_orders + v.order_count,
			total_amount = c.total_amount + v.amount,
			first_order_date = LEAST(COALESCE(c.first_order_date, v.first_order_date), COALESCE(v.first_order_date, c.first_order_date)),
			last_order_date = GREATEST(COALESCE(c.last_order_date, v.last_order_date), COALESCE(v.last_order_date, c.last_order_date)),
			channels = ARRAY(SELECT DISTINCT ch FROM unnest(c.channels || v.channels) AS ch ORDER BY ch),
			updated_at = NOW()
		FROM (VALUES %s) AS v(id, order_count, amount, first_order_date, last_order_date, channels)
		WHERE c.id = v.id
	`, strings.Join(valueRows, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"count": len(deltas)}).Error("Failed to apply customer deltas")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to apply customer deltas")
	}

	r.logger.WithContext(ctx).WithFields(map[string]any{"count": len(deltas)}).Debug("Applied customer deltas")
	return nil
}

// Get retrieves a customer by ID
func (r *Repository) Get(ctx context.Context, id string) (*models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.Get")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("customers")
	sb.Where(sb.Equal("id", id))

	query, args := sb.Build()
	var customer models.Customer
	if err := r.db.GetContext(ctx, &customer, query, args...); err != nil {
		if err.Error() == "sql: no rows in result set" {
			return nil, httperror.NewHTTPError(http.StatusNotFound, fmt.Sprintf("customer %s not found", id))
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get customer")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get customer")
	}

	return &customer, nil
}

// List retrieves customers ordered by most recently updated
func (r *Repository) List(ctx context.Context, page, pageSize int) (*models.CustomerListResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.List")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 100
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM customers"); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to count customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("customers")
	sb.OrderBy("updated_at DESC", "id")
	sb.Limit(pageSize)
	sb.Offset((page - 1) * pageSize)

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list customers")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list customers")
	}

	return &models.CustomerListResponse{
		Items:      customers,
		TotalCount: total,
		Page:       page,
		PageSize:   pageSize,
	}, nil
}

// FindByNormalizedPhone retrieves all customers sharing one normalized phone.
// Distinct names on the same phone are distinct customers.
func (r *Repository) FindByNormalizedPhone(ctx context.Context, phone string) ([]models.Customer, error) {
	ctx, span := tracing.StartSpan(ctx, "customer.Repository.FindByNormalizedPhone")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(columns...)
	sb.From("customers")
	sb.Where(sb.Equal("normalized_phone", phone))
	sb.OrderBy("name")

	query, args := sb.Build()
	var customers []models.Customer
	if err := r.db.SelectContext(ctx, &customers, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to find customers by phone")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to find customers")
	}

	return customers, nil
}
