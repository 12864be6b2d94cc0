package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
)

func doc(path string, version int64, data map[string]interface{}) docstore.Document {
	return docstore.Document{Path: path, Version: version, Data: data}
}

func TestAggregatePrecedence(t *testing.T) {
	f := orderrepo.Fragments{
		AllOrders: []docstore.Document{doc("allOrders/o1", 3, map[string]interface{}{
			"status":    "processing",
			"email":     "all@example.com",
			"total":     float64(1598),
			"createdAt": "2024-03-01T10:00:00.000Z",
			"address":   map[string]interface{}{"fullName": "A", "city": "Pune"},
		})},
		Orders: []docstore.Document{doc("orders/o1", 5, map[string]interface{}{
			"status":  "shipped",
			"address": map[string]interface{}{"fullName": "B"},
		})},
		UserOrders: []docstore.Document{doc("users/u1/orders/o1", 7, map[string]interface{}{
			"status": "delivered",
		})},
	}

	orders := Aggregate(f)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, "o1", o.ID)
	assert.Equal(t, "delivered", o.Status)
	assert.Equal(t, "all@example.com", o.Email)
	assert.Equal(t, domain.Amount(1598), o.Total)
	assert.Equal(t, "users/u1/orders/o1", o.SourcePath)
	assert.Equal(t, int64(7), o.Version)
	assert.Equal(t, "u1", o.UserID)

	// Shallow merge: the orders copy replaced the address object wholesale.
	require.NotNil(t, o.Address)
	assert.Equal(t, "B", o.Address.FullName)
	assert.Empty(t, o.Address.City)
}

func TestAggregateMissingStatusIsPending(t *testing.T) {
	orders := Aggregate(orderrepo.Fragments{
		AllOrders: []docstore.Document{doc("allOrders/o9", 1, map[string]interface{}{"total": float64(10)})},
	})
	require.Len(t, orders, 1)
	assert.Equal(t, domain.StatusPending, orders[0].Status)
	assert.Equal(t, "allOrders/o9", orders[0].SourcePath)
}

func TestAggregateEmailFallback(t *testing.T) {
	f := orderrepo.Fragments{
		AllOrders: []docstore.Document{
			doc("allOrders/a", 1, map[string]interface{}{"email": "order@example.com", "address": map[string]interface{}{"email": "addr@example.com"}}),
			doc("allOrders/b", 1, map[string]interface{}{"address": map[string]interface{}{"email": "addr@example.com"}}),
			doc("allOrders/c", 1, map[string]interface{}{"shippingAddress": map[string]interface{}{"email": "ship@example.com"}}),
			doc("allOrders/d", 1, map[string]interface{}{"userId": "u2"}),
			doc("allOrders/e", 1, map[string]interface{}{}),
		},
		UserOrders: []docstore.Document{doc("users/u3/orders/f", 1, map[string]interface{}{})},
		Emails:     map[string]string{"u2": "profile2@example.com", "u3": "profile3@example.com"},
	}

	got := map[string]string{}
	for _, o := range Aggregate(f) {
		got[o.ID] = o.Email
	}
	assert.Equal(t, map[string]string{
		"a": "order@example.com",
		"b": "addr@example.com",
		"c": "ship@example.com",
		"d": "profile2@example.com",
		"e": NoEmail,
		"f": "profile3@example.com",
	}, got)
}

func TestAggregateSortNewestFirstUnparsableLast(t *testing.T) {
	f := orderrepo.Fragments{
		AllOrders: []docstore.Document{
			doc("allOrders/old", 1, map[string]interface{}{"createdAt": "2023-01-01T00:00:00Z"}),
			doc("allOrders/bad", 1, map[string]interface{}{"createdAt": "yesterday-ish"}),
			doc("allOrders/none", 1, map[string]interface{}{}),
			doc("allOrders/ms", 1, map[string]interface{}{"timestamp": float64(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).UnixMilli())}),
			doc("allOrders/new", 1, map[string]interface{}{"createdAt": "2024-07-01T00:00:00Z"}),
		},
	}

	orders := Aggregate(f)
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []string{"new", "ms", "old", "bad", "none"}, ids)

	for i := 1; i < 3; i++ {
		assert.False(t, orders[i].CreatedAt.After(orders[i-1].CreatedAt), "order list must be non-increasing")
	}
}

func TestAggregateTotalFromItems(t *testing.T) {
	orders := Aggregate(orderrepo.Fragments{
		Orders: []docstore.Document{doc("orders/ORD1", 1, map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"name": "Kurta", "price": "₹799", "quantity": float64(2)},
				map[string]interface{}{"name": "Dupatta", "price": "₹350"},
			},
		})},
	})
	require.Len(t, orders, 1)
	assert.Equal(t, domain.Amount(1948), orders[0].Total)
	require.Len(t, orders[0].Items, 2)
	assert.Equal(t, 1, orders[0].Items[1].Quantity)
}

func TestAggregateSingleItemAndRefund(t *testing.T) {
	orders := Aggregate(orderrepo.Fragments{
		UserOrders: []docstore.Document{doc("users/u1/orders/ORD2", 2, map[string]interface{}{
			"item":          map[string]interface{}{"id": "p1", "name": "Saree", "price": 2499},
			"totalAmount":   "₹2,499",
			"refundRequest": map[string]interface{}{"reason": "torn", "amount": float64(2499)},
		})},
	})
	require.Len(t, orders, 1)
	o := orders[0]
	require.Len(t, o.Items, 1)
	assert.Equal(t, "p1", o.Items[0].ProductID)
	assert.Equal(t, "2499", o.Items[0].PriceText)
	assert.Equal(t, domain.Amount(2499), o.Total)
	require.NotNil(t, o.RefundRequest)
	assert.Equal(t, domain.RefundPending, o.RefundRequest.Status)
	assert.Equal(t, domain.Amount(2499), o.RefundRequest.Amount)
}
