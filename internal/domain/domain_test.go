package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]Amount{
		"₹799":      799,
		"Rs. 450/-": 450,
		"1,299":     1299,
		"799":       799,
		"":          0,
		"free":      0,

		"₹1000000000000":        MaxAmount,
		"₹9999999999999999999":  MaxAmount,
		"₹18446744073709551617": MaxAmount,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAmount(in), in)
	}
}

func TestValidPrice(t *testing.T) {
	assert.True(t, ValidPrice("₹799"))
	assert.True(t, ValidPrice("₹1000000000000"))
	assert.False(t, ValidPrice("₹1000000000001"))
	assert.False(t, ValidPrice("₹18446744073709551617"))
	assert.False(t, ValidPrice("Rs. 0"))
	assert.False(t, ValidPrice(""))
}

func TestCartTotalDoesNotWrap(t *testing.T) {
	lines := []CartLine{{ProductID: "1", Quantity: 2, PriceText: "₹9223372036854775807"}}
	assert.Equal(t, MaxAmount, CartTotal(lines))
	assert.Equal(t, MaxAmount, Amount(MaxAmount/2+1).Times(2))
	assert.Equal(t, Amount(2397), Amount(799).Times(3))
}

func TestAmountFormat(t *testing.T) {
	assert.Equal(t, "₹799", Amount(799).Format("INR"))
	assert.Equal(t, "₹1,23,45,678", Amount(12345678).Format("INR"))
	assert.Equal(t, "$12,345,678", Amount(12345678).Format("USD"))
	assert.Equal(t, "-₹1,000", Amount(-1000).Format("inr"))
	assert.Equal(t, int64(239700), Amount(2397).Minor())
}

func TestAddLineMergesSameKey(t *testing.T) {
	var lines []CartLine
	lines = AddLine(lines, CartLine{ProductID: "1", Size: "M", Quantity: 2, PriceText: "₹799"})
	lines = AddLine(lines, CartLine{ProductID: "1", Size: "M", Quantity: 1, PriceText: "₹799"})

	require.Len(t, lines, 1)
	assert.Equal(t, 3, lines[0].Quantity)
	assert.Equal(t, Amount(2397), CartTotal(lines))
	assert.Equal(t, 3, ItemCount(lines))
}

func TestAddLineKeepsSizesApart(t *testing.T) {
	lines := AddLine(nil, CartLine{ProductID: "1", Size: "M", Quantity: 1, PriceText: "₹799"})
	lines = AddLine(lines, CartLine{ProductID: "1", Size: "L", Quantity: 0, PriceText: "₹799"})

	require.Len(t, lines, 2)
	assert.Equal(t, 1, lines[1].Quantity, "quantity floors to 1")
	assert.Equal(t, Amount(1598), NewCart(lines).Total)
}

func TestAddLineDoesNotMutateInput(t *testing.T) {
	orig := []CartLine{{ProductID: "1", Size: "M", Quantity: 1}}
	_ = AddLine(orig, CartLine{ProductID: "1", Size: "M", Quantity: 4})
	assert.Equal(t, 1, orig[0].Quantity)
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, v := range []interface{}{
		"2024-03-01T10:00:00Z",
		"2024-03-01T10:00:00.000Z",
		float64(want.UnixMilli()),
		want.UnixMilli(),
		"1709287200000",
	} {
		got, ok := ParseTimestamp(v)
		require.True(t, ok, "%v", v)
		assert.True(t, got.Equal(want), "%v parsed as %v", v, got)
	}

	for _, v := range []interface{}{nil, "", "soon", float64(0), -5, true} {
		_, ok := ParseTimestamp(v)
		assert.False(t, ok, "%v", v)
	}
}

func TestDeliveryProgress(t *testing.T) {
	steps := DeliveryProgress(StatusPending)
	require.Len(t, steps, 4)
	assert.True(t, steps[0].Done)
	assert.False(t, steps[1].Done)

	steps = DeliveryProgress(StatusDelivered)
	for _, s := range steps {
		assert.True(t, s.Done, s.Status)
	}

	steps = DeliveryProgress(StatusCancelled)
	require.Len(t, steps, 2)
	assert.Equal(t, StatusCancelled, steps[1].Status)
}

func TestValidStatus(t *testing.T) {
	for _, s := range []string{"processing", "shipped", "delivered", "cancelled"} {
		assert.True(t, ValidStatus(s), s)
	}
	assert.False(t, ValidStatus("pending"))
	assert.False(t, ValidStatus("Shipped"))
}

func TestValidateAddress(t *testing.T) {
	good := Address{
		FullName: " Asha Rao ",
		Phone:    "+91 98765-43210",
		Line1:    "12 MG Road",
		City:     "Bengaluru",
		State:    "Karnataka",
		Pincode:  "560 001",
	}
	a, err := ValidateAddress(good)
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", a.FullName)
	assert.Equal(t, "9876543210", a.Phone)
	assert.Equal(t, "560001", a.Pincode)

	bad := good
	bad.Phone = "12345"
	bad.Pincode = "5600"
	bad.City = " "
	_, err = ValidateAddress(bad)
	require.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), "phone")
	assert.Contains(t, err.Error(), "pincode")
	assert.Contains(t, err.Error(), "city")
	assert.NotContains(t, err.Error(), "line1")
}

func TestNormalizeEmail(t *testing.T) {
	got, ok := NormalizeEmail("  Asha@Example.COM ")
	require.True(t, ok)
	assert.Equal(t, "asha@example.com", got)

	for _, in := range []string{"", "asha", "asha@", "asha@localhost", "Asha <asha@example.com>", "a b@example.com"} {
		_, ok := NormalizeEmail(in)
		assert.False(t, ok, in)
	}
}
