//go:build unit

package order_test

import (
	"testing"
	"time"

	"cart-reservation-service/internal/domain/order"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validItems(t *testing.T) []order.Item {
	t.Helper()
	a, err := order.NewItem(uuid.New(), "Trail Shirt", "Olive", "M", 4500, 2)
	require.NoError(t, err)
	b, err := order.NewItem(uuid.New(), "Canvas Belt", "", "L", 1900, 1)
	require.NoError(t, err)
	return []order.Item{a, b}
}

func TestNewItem(t *testing.T) {
	skuID := uuid.New()

	cases := []struct {
		name       string
		priceCents int32
		quantity   int32
		errIs      error
	}{
		{name: "valid item", priceCents: 1200, quantity: 3},
		{name: "free item is allowed", priceCents: 0, quantity: 1},
		{name: "zero quantity", priceCents: 1200, quantity: 0, errIs: order.ErrInvalidItem},
		{name: "negative quantity", priceCents: 1200, quantity: -1, errIs: order.ErrInvalidItem},
		{name: "negative price", priceCents: -1, quantity: 1, errIs: order.ErrInvalidItem},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := order.NewItem(skuID, "Trail Shirt", "Olive", "M", c.priceCents, c.quantity)
			if c.errIs == nil {
				require.NoError(t, err)
				assert.Equal(t, c.quantity, actual.Quantity())
				assert.Equal(t, int64(c.priceCents)*int64(c.quantity), actual.TotalCents())
			} else {
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}

func TestNewOrder(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	contact := order.Contact{Email: "jo@example.com", Name: "Jo Fields"}
	shipping := order.ShippingAddress{
		Line1:      "12 Harbor Way",
		City:       "Portsmouth",
		PostalCode: "PO1 2AB",
		Country:    "GB",
	}

	t.Run("basic success case", func(t *testing.T) {
		items := validItems(t)
		actual, err := order.NewOrder("pay_123", contact, shipping, items, 11400, now)
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.Equal(t, "pay_123", actual.PaymentReference())
		assert.Equal(t, order.StatusPaid, actual.Status())
		assert.Equal(t, now, actual.CreatedAt())
		// 2*4500 + 1*1900
		assert.Equal(t, int64(10900), actual.SubtotalCents())
		assert.Equal(t, int64(11400), actual.TotalCents())
		assert.Len(t, actual.Items(), 2)
	})

	t.Run("zero total falls back to the subtotal", func(t *testing.T) {
		actual, err := order.NewOrder("pay_123", contact, shipping, validItems(t), 0, now)
		require.NoError(t, err)

		assert.Equal(t, int64(10900), actual.TotalCents())
	})

	t.Run("negative total", func(t *testing.T) {
		actual, err := order.NewOrder("pay_123", contact, shipping, validItems(t), -1, now)
		require.Nil(t, actual)
		require.ErrorIs(t, err, order.ErrNegativeTotal)
	})

	t.Run("empty payment reference", func(t *testing.T) {
		actual, err := order.NewOrder("", contact, shipping, validItems(t), 0, now)
		require.Nil(t, actual)
		require.ErrorIs(t, err, order.ErrEmptyPaymentReference)
	})

	t.Run("no items", func(t *testing.T) {
		actual, err := order.NewOrder("pay_123", contact, shipping, nil, 0, now)
		require.Nil(t, actual)
		require.ErrorIs(t, err, order.ErrNoItems)
	})

	t.Run("UUID uniqueness", func(t *testing.T) {
		o1, err1 := order.NewOrder("pay_a", contact, shipping, validItems(t), 0, now)
		o2, err2 := order.NewOrder("pay_b", contact, shipping, validItems(t), 0, now)
		require.NoError(t, err1)
		require.NoError(t, err2)

		assert.NotEqual(t, o1.ID(), o2.ID())
	})
}
