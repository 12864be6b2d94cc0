package refund

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
)

type countingStore struct {
	docstore.Store
	commits [][]docstore.Write
}

func (c *countingStore) Commit(ctx context.Context, writes ...docstore.Write) error {
	c.commits = append(c.commits, writes)
	return c.Store.Commit(ctx, writes...)
}

var now = time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

func setup(t *testing.T, seed ...docstore.Write) (*Service, *countingStore) {
	t.Helper()
	mem := docstore.NewMemory()
	if len(seed) > 0 {
		require.NoError(t, mem.Commit(context.Background(), seed...))
	}
	store := &countingStore{Store: mem}
	svc := New(orderrepo.New(store, nil), 0, "INR", nil)
	svc.now = func() time.Time { return now }
	return svc, store
}

func deliveredOrder() []docstore.Write {
	return []docstore.Write{
		docstore.Replace("allOrders/o1", map[string]interface{}{
			"status":    "delivered",
			"total":     1598,
			"createdAt": "2024-05-20T10:00:00.000Z",
		}),
		docstore.Replace("users/u1/orders/o1", map[string]interface{}{
			"status":      "delivered",
			"total":       1598,
			"createdAt":   "2024-05-20T10:00:00.000Z",
			"deliveredAt": "2024-06-01T10:00:00.000Z",
		}),
	}
}

func TestRequestWritesBothCopies(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, deliveredOrder()...)

	req, err := svc.Request(ctx, "u1", "o1", "  Wrong size  ")
	require.NoError(t, err)
	assert.Equal(t, "Wrong size", req.Reason)
	assert.Equal(t, domain.RefundPending, req.Status)
	assert.Equal(t, domain.Amount(1598), req.Amount)

	require.Len(t, store.commits, 1)
	assert.Equal(t, []string{"users/u1/orders/o1", "allOrders/o1"}, docstore.Paths(store.commits[0]))

	user, err := store.Get(ctx, "users/u1/orders/o1")
	require.NoError(t, err)
	all, err := store.Get(ctx, "allOrders/o1")
	require.NoError(t, err)
	ur := user.Data["refundRequest"].(map[string]interface{})
	ar := all.Data["refundRequest"].(map[string]interface{})
	assert.Equal(t, ur["requestedAt"], ar["requestedAt"])
	assert.Equal(t, "pending", ar["status"])
	assert.Equal(t, "delivered", user.Data["status"])
}

func TestSecondRequestIsRejectedWithoutWrite(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, deliveredOrder()...)

	_, err := svc.Request(ctx, "u1", "o1", "Wrong size")
	require.NoError(t, err)
	require.Len(t, store.commits, 1)

	_, err = svc.Request(ctx, "u1", "o1", "Changed my mind")
	require.ErrorIs(t, err, domain.ErrRefundExists)
	assert.Len(t, store.commits, 1)
}

func TestRequestGates(t *testing.T) {
	cases := []struct {
		name    string
		order   map[string]interface{}
		reason  string
		wantErr error
	}{
		{
			name:    "empty reason",
			order:   map[string]interface{}{"status": "delivered", "deliveredAt": "2024-06-01T00:00:00Z"},
			reason:  "   ",
			wantErr: domain.ErrInvalid,
		},
		{
			name:    "reason too long",
			order:   map[string]interface{}{"status": "delivered", "deliveredAt": "2024-06-01T00:00:00Z"},
			reason:  strings.Repeat("x", MaxReasonLength+1),
			wantErr: domain.ErrInvalid,
		},
		{
			name:    "not delivered yet",
			order:   map[string]interface{}{"status": "shipped", "updatedAt": "2024-06-01T00:00:00Z"},
			reason:  "late",
			wantErr: domain.ErrRefundNotAllowed,
		},
		{
			name:    "missing status is pending",
			order:   map[string]interface{}{"createdAt": "2024-06-01T00:00:00Z"},
			reason:  "late",
			wantErr: domain.ErrRefundNotAllowed,
		},
		{
			name:    "window closed",
			order:   map[string]interface{}{"status": "delivered", "deliveredAt": "2024-05-01T00:00:00Z"},
			reason:  "torn",
			wantErr: domain.ErrRefundNotAllowed,
		},
		{
			name:    "window falls back to createdAt",
			order:   map[string]interface{}{"status": "cancelled", "createdAt": "2024-01-01T00:00:00Z"},
			reason:  "torn",
			wantErr: domain.ErrRefundNotAllowed,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := setup(t, docstore.Replace("users/u1/orders/o1", tc.order))
			_, err := svc.Request(context.Background(), "u1", "o1", tc.reason)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Len(t, store.commits, 0)
		})
	}
}

func TestRequestCancelledWithinWindowByUpdatedAt(t *testing.T) {
	svc, store := setup(t, docstore.Replace("users/u1/orders/o1", map[string]interface{}{
		"status":    "cancelled",
		"createdAt": "2024-01-01T00:00:00Z",
		"updatedAt": "2024-06-05T00:00:00Z",
	}))
	_, err := svc.Request(context.Background(), "u1", "o1", "cancelled but charged")
	require.NoError(t, err)
	assert.Len(t, store.commits, 1)
}

func TestRequestNeedsUserCopy(t *testing.T) {
	svc, store := setup(t, docstore.Replace("allOrders/o1", map[string]interface{}{
		"status": "delivered", "deliveredAt": "2024-06-01T00:00:00Z", "userId": "u1",
	}))
	_, err := svc.Request(context.Background(), "u1", "o1", "torn")
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, store.commits, 0)
}

func TestDecideIsOneCommitOfThreeWrites(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, deliveredOrder()...)
	_, err := svc.Request(ctx, "u1", "o1", "Wrong size")
	require.NoError(t, err)

	o, err := svc.Decide(ctx, "o1", Decision{Status: "Approved", Note: "pickup booked"})
	require.NoError(t, err)
	assert.Equal(t, domain.RefundApproved, o.RefundRequest.Status)

	require.Len(t, store.commits, 2)
	decision := store.commits[1]
	require.Len(t, decision, 3)
	assert.Equal(t, "users/u1/orders/o1", decision[0].Path)
	assert.Equal(t, "allOrders/o1", decision[1].Path)
	assert.True(t, strings.HasPrefix(decision[2].Path, "users/u1/notifications/"))

	for _, p := range []string{"users/u1/orders/o1", "allOrders/o1"} {
		d, err := store.Get(ctx, p)
		require.NoError(t, err)
		rr := d.Data["refundRequest"].(map[string]interface{})
		assert.Equal(t, "approved", rr["status"], p)
		assert.Equal(t, "pickup booked", rr["adminNote"], p)
		assert.NotEmpty(t, rr["processedAt"], p)
		assert.Equal(t, "Wrong size", rr["reason"], p)
	}

	notes, err := store.List(ctx, "users/u1/notifications")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "o1", notes[0].Data["orderId"])
	assert.Contains(t, notes[0].Data["message"], "₹1,598")
}

func TestDecideOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, deliveredOrder()...)
	_, err := svc.Request(ctx, "u1", "o1", "Wrong size")
	require.NoError(t, err)
	_, err = svc.Decide(ctx, "o1", Decision{Status: "rejected"})
	require.NoError(t, err)

	_, err = svc.Decide(ctx, "o1", Decision{Status: "approved"})
	require.ErrorIs(t, err, domain.ErrRefundDecided)
	assert.Len(t, store.commits, 2)
}

func TestDecideValidation(t *testing.T) {
	ctx := context.Background()
	svc, store := setup(t, deliveredOrder()...)

	_, err := svc.Decide(ctx, "o1", Decision{Status: "maybe"})
	require.ErrorIs(t, err, domain.ErrInvalid)

	_, err = svc.Decide(ctx, "o1", Decision{Status: "approved"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Decide(ctx, "missing", Decision{Status: "approved"})
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Len(t, store.commits, 0)
}
