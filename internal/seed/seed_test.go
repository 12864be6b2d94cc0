package seed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"latthi-storefront/internal/docstore"
	"latthi-storefront/internal/domain"
	orderrepo "latthi-storefront/internal/repository/order"
	ordersvc "latthi-storefront/internal/service/order"
)

func TestApplyIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := docstore.NewMemory()
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	require.NoError(t, Apply(ctx, store, now))
	require.NoError(t, Apply(ctx, store, now))

	docs, err := store.List(ctx, docstore.Products)
	require.NoError(t, err)
	assert.Len(t, docs, len(products))

	orders, err := ordersvc.New(orderrepo.New(store, nil), nil).ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)

	buyNow, legacy := orders[0], orders[1]
	assert.Equal(t, domain.Amount(899), buyNow.Total)
	assert.Equal(t, domain.PaymentStatusPaid, buyNow.PaymentStatus)

	assert.Equal(t, "LEGACY-1001", legacy.ID)
	assert.Equal(t, domain.StatusShipped, legacy.Status)
	assert.Equal(t, docstore.UserOrderPath(DemoUser, "LEGACY-1001"), legacy.SourcePath)
	assert.Equal(t, "demo.customer@example.com", legacy.Email)
	assert.Equal(t, domain.Amount(1299+2*450), legacy.Total)
	require.NotNil(t, legacy.Address)
	assert.Equal(t, "302001", legacy.Address.Pincode)
}
