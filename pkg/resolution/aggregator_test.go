package resolution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramsey-B/clover/pkg/models"
)

func ts(t *testing.T, value string) *time.Time {
	t.Helper()
	parsed, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &parsed
}

func TestAggregateGroupsByIdentity(t *testing.T) {
	orders := []models.RawOrder{
		{OrderID: "o-1", BuyerName: "Jane Doe", BuyerPhone: "090-1111-2222", Amount: 100, OrderedAt: ts(t, "2026-03-02T10:00:00Z"), SalesChannel: "web"},
		{OrderID: "o-2", BuyerName: " Jane Doe ", BuyerPhone: "090 1111 2222", Amount: 50, OrderedAt: ts(t, "2026-03-01T10:00:00Z"), SalesChannel: "app"},
		{OrderID: "o-3", BuyerName: "John Roe", BuyerPhone: "090-1111-2222", Amount: 75, SalesChannel: "web"},
	}

	aggregates, skipped := Aggregate(orders)
	require.Len(t, aggregates, 2)
	assert.Equal(t, 0, skipped)

	jane := aggregates[IdentityKey("Jane Doe", "09011112222")]
	require.NotNil(t, jane)
	assert.Equal(t, 2, jane.OrderCount)
	assert.Equal(t, 150.0, jane.TotalAmount)
	assert.Equal(t, []string{"o-1", "o-2"}, jane.OrderIDs)
	assert.Equal(t, []string{"app", "web"}, jane.Channels())
	require.NotNil(t, jane.FirstOrderDate)
	require.NotNil(t, jane.LastOrderDate)
	assert.Equal(t, "2026-03-01T10:00:00Z", jane.FirstOrderDate.Format(time.RFC3339))
	assert.Equal(t, "2026-03-02T10:00:00Z", jane.LastOrderDate.Format(time.RFC3339))

	// Same phone, different name is a different customer
	john := aggregates[IdentityKey("John Roe", "09011112222")]
	require.NotNil(t, john)
	assert.Equal(t, 1, john.OrderCount)
	// No timestamp on the order: bounds default to the time of aggregation
	require.NotNil(t, john.FirstOrderDate)
	require.NotNil(t, john.LastOrderDate)
	assert.WithinDuration(t, time.Now().UTC(), *john.FirstOrderDate, time.Minute)
}

func TestAggregateTimestamplessOrderDefaultsToNow(t *testing.T) {
	orders := []models.RawOrder{
		{OrderID: "o-1", BuyerName: "Jane Doe", BuyerPhone: "090-1111-2222", Amount: 10},
	}

	before := time.Now().UTC()
	aggregates, _ := Aggregate(orders)
	after := time.Now().UTC()

	agg := aggregates[IdentityKey("Jane Doe", "09011112222")]
	require.NotNil(t, agg)
	require.NotNil(t, agg.FirstOrderDate)
	require.NotNil(t, agg.LastOrderDate)
	assert.False(t, agg.FirstOrderDate.Before(before))
	assert.False(t, agg.LastOrderDate.After(after))

	// A timestamped order older than "now" still becomes the lower bound
	orders = append(orders, models.RawOrder{
		OrderID: "o-2", BuyerName: "Jane Doe", BuyerPhone: "090-1111-2222", OrderedAt: ts(t, "2026-03-01T10:00:00Z"),
	})
	aggregates, _ = Aggregate(orders)
	agg = aggregates[IdentityKey("Jane Doe", "09011112222")]
	assert.Equal(t, "2026-03-01T10:00:00Z", agg.FirstOrderDate.Format(time.RFC3339))
	assert.False(t, agg.LastOrderDate.Before(before))
}

func TestAggregateNormalizesTimestampsToUTC(t *testing.T) {
	loc := time.FixedZone("JST", 9*60*60)
	local := time.Date(2026, 3, 1, 9, 0, 0, 0, loc)
	orders := []models.RawOrder{
		{OrderID: "o-1", BuyerName: "Jane Doe", BuyerPhone: "090-1111-2222", OrderedAt: &local},
	}

	aggregates, _ := Aggregate(orders)
	agg := aggregates[IdentityKey("Jane Doe", "09011112222")]
	require.NotNil(t, agg)
	require.NotNil(t, agg.FirstOrderDate)
	assert.Equal(t, time.UTC, agg.FirstOrderDate.Location())
	assert.Equal(t, "2026-03-01T00:00:00Z", agg.FirstOrderDate.Format(time.RFC3339))
}

func TestAggregateSkipsUnresolvableRecords(t *testing.T) {
	orders := []models.RawOrder{
		{OrderID: "o-1", BuyerName: "", BuyerPhone: "090-1111-2222", Amount: 10},
		{OrderID: "o-2", BuyerName: "   ", BuyerPhone: "090-1111-2222", Amount: 10},
		{OrderID: "o-3", BuyerName: "Jane Doe", BuyerPhone: " - ", Amount: 10},
		{OrderID: "o-4", BuyerName: "Jane Doe", BuyerPhone: "090-1111-2222", Amount: 10},
	}

	aggregates, skipped := Aggregate(orders)
	assert.Equal(t, 3, skipped)
	require.Len(t, aggregates, 1)
	assert.Equal(t, 1, aggregates[IdentityKey("Jane Doe", "09011112222")].OrderCount)
}

func TestAggregateEmptyBatch(t *testing.T) {
	aggregates, skipped := Aggregate(nil)
	assert.Empty(t, aggregates)
	assert.Equal(t, 0, skipped)
}
