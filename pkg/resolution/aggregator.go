// Package resolution resolves raw order records to canonical customer
// identities and maintains their lifetime aggregates.
package resolution

import (
	"sort"
	"time"

	"github.com/lib/pq"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/normalizers"
)

const keySeparator = "::"

// IdentityKey builds the identity key for a trimmed buyer name and normalized
// phone. The pair mirrors the customers uniqueness constraint.
func IdentityKey(name, normalizedPhone string) string {
	return name + keySeparator + normalizedPhone
}

// CustomerAggregate accumulates everything one batch knows about a single
// identity. Batch-scoped, never persisted.
type CustomerAggregate struct {
	Name            string
	Phone           string
	NormalizedPhone string
	OrderCount      int
	TotalAmount     float64
	FirstOrderDate  *time.Time
	LastOrderDate   *time.Time
	OrderIDs        []string

	channels map[string]struct{}
}

// Channels returns the sorted set of sales channels seen for this identity.
func (a *CustomerAggregate) Channels() []string {
	channels := make([]string, 0, len(a.channels))
	for ch := range a.channels {
		channels = append(channels, ch)
	}
	sort.Strings(channels)
	return channels
}

func (a *CustomerAggregate) observe(order models.RawOrder) {
	a.OrderCount++
	a.TotalAmount += order.Amount
	// An order without a timestamp still widens the date bounds, using "now".
	t := time.Now().UTC()
	if order.OrderedAt != nil {
		t = order.OrderedAt.UTC()
	}
	if a.FirstOrderDate == nil || t.Before(*a.FirstOrderDate) {
		a.FirstOrderDate = &t
	}
	if a.LastOrderDate == nil || t.After(*a.LastOrderDate) {
		a.LastOrderDate = &t
	}
	if order.SalesChannel != "" {
		a.channels[order.SalesChannel] = struct{}{}
	}
	a.OrderIDs = append(a.OrderIDs, order.OrderID)
}

func (a *CustomerAggregate) newCustomer() *models.Customer {
	return &models.Customer{
		Name:            a.Name,
		Phone:           a.Phone,
		NormalizedPhone: a.NormalizedPhone,
		FirstOrderDate:  a.FirstOrderDate,
		LastOrderDate:   a.LastOrderDate,
		TotalOrders:     a.OrderCount,
		TotalAmount:     a.TotalAmount,
		Channels:        pq.StringArray(a.Channels()),
	}
}

func (a *CustomerAggregate) delta(customerID string) models.CustomerDelta {
	return models.CustomerDelta{
		CustomerID:     customerID,
		OrderCount:     a.OrderCount,
		Amount:         a.TotalAmount,
		FirstOrderDate: a.FirstOrderDate,
		LastOrderDate:  a.LastOrderDate,
		Channels:       a.Channels(),
	}
}

// Aggregate folds a raw batch into per-identity aggregates in a single pass.
// Records with no usable name or phone are counted as skipped; nothing is
// synthesized for them.
func Aggregate(orders []models.RawOrder) (map[string]*CustomerAggregate, int) {
	aggregates := make(map[string]*CustomerAggregate)
	skipped := 0

	for _, order := range orders {
		name := normalizers.Trim(order.BuyerName)
		phone := normalizers.NormalizePhone(order.BuyerPhone)
		if name == "" || phone == "" {
			skipped++
			continue
		}

		key := IdentityKey(name, phone)
		agg, ok := aggregates[key]
		if !ok {
			agg = &CustomerAggregate{
				Name:            name,
				Phone:           normalizers.Trim(order.BuyerPhone),
				NormalizedPhone: phone,
				channels:        make(map[string]struct{}),
			}
			aggregates[key] = agg
		}
		agg.observe(order)
	}

	return aggregates, skipped
}

func sortedKeys(aggregates map[string]*CustomerAggregate) []string {
	keys := make([]string, 0, len(aggregates))
	for key := range aggregates {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func uniquePhones(aggregates map[string]*CustomerAggregate) []string {
	seen := make(map[string]struct{}, len(aggregates))
	phones := make([]string, 0, len(aggregates))
	for _, agg := range aggregates {
		if _, ok := seen[agg.NormalizedPhone]; ok {
			continue
		}
		seen[agg.NormalizedPhone] = struct{}{}
		phones = append(phones, agg.NormalizedPhone)
	}
	sort.Strings(phones)
	return phones
}
