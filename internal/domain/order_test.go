package domain_test

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderValidate(t *testing.T) {
	idr := mustMoney(t, 0, "IDR")

	validItems := []domain.OrderItem{
		{ProductID: uuid.New(), Quantity: 2, UnitPrice: mustMoney(t, 25_000, "IDR")},
		{ProductID: uuid.New(), Quantity: 1, UnitPrice: mustMoney(t, 50_000, "IDR")},
	}

	tests := []struct {
		name      string
		order     domain.Order
		wantError string
	}{
		{
			name:  "total equals items sum: ok",
			order: domain.Order{OwnerID: "u1", Items: validItems, Total: mustMoney(t, 100_000, "IDR")},
		},
		{
			name:      "empty owner: fail",
			order:     domain.Order{Items: validItems, Total: mustMoney(t, 100_000, "IDR")},
			wantError: "owner id is empty",
		},
		{
			name:      "no items: fail",
			order:     domain.Order{OwnerID: "u1", Total: idr},
			wantError: "no items in order",
		},
		{
			name: "zero quantity: fail",
			order: domain.Order{OwnerID: "u1", Total: idr, Items: []domain.OrderItem{
				{ProductID: uuid.New(), Quantity: 0, UnitPrice: mustMoney(t, 1, "IDR")},
			}},
			wantError: "item[0]: quantity must be at least 1",
		},
		{
			name: "quantity above int32: fail",
			order: domain.Order{OwnerID: "u1", Total: mustMoney(t, 1<<32+1, "IDR"), Items: []domain.OrderItem{
				{ProductID: uuid.New(), Quantity: 1<<32 + 1, UnitPrice: mustMoney(t, 1, "IDR")},
			}},
			wantError: "item[0]: quantity must be at most 2147483647",
		},
		{
			name: "subtotal overflows: fail",
			order: domain.Order{OwnerID: "u1", Total: idr, Items: []domain.OrderItem{
				{ProductID: uuid.New(), Quantity: math.MaxInt32, UnitPrice: mustMoney(t, math.MaxInt64/2, "IDR")},
			}},
			wantError: "item[0]: subtotal: 4611686018427387903 × 2147483647: amount overflows int64",
		},
		{
			name: "total overflows: fail",
			order: domain.Order{OwnerID: "u1", Total: idr, Items: []domain.OrderItem{
				{ProductID: uuid.New(), Quantity: 1, UnitPrice: mustMoney(t, math.MaxInt64, "IDR")},
				{ProductID: uuid.New(), Quantity: 1, UnitPrice: mustMoney(t, 1, "IDR")},
			}},
			wantError: "item[1]: total: 9223372036854775807 + 1: amount overflows int64",
		},
		{
			name:      "total mismatch: fail",
			order:     domain.Order{OwnerID: "u1", Items: validItems, Total: mustMoney(t, 99_999, "IDR")},
			wantError: "total 99999 does not match items sum 100000",
		},
		{
			name: "mixed currency: fail",
			order: domain.Order{OwnerID: "u1", Total: idr, Items: []domain.OrderItem{
				{ProductID: uuid.New(), Quantity: 1, UnitPrice: mustMoney(t, 1, "USD")},
			}},
			wantError: "item[0]: currency USD differs from order currency IDR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.order.Validate()
			if tt.wantError != "" {
				require.EqualError(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	price := mustMoney(t, 4, "IDR")

	product, err := price.Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, int64(12), product.Amount)

	_, err = price.Multiply(math.MaxInt64/2 + 1)
	require.ErrorIs(t, err, domain.ErrAmountOverflow)

	_, err = price.Multiply(-1)
	require.Error(t, err)

	sum, err := product.Add(price)
	require.NoError(t, err)
	assert.Equal(t, int64(16), sum.Amount)

	_, err = mustMoney(t, math.MaxInt64, "IDR").Add(price)
	require.ErrorIs(t, err, domain.ErrAmountOverflow)

	_, err = mustMoney(t, math.MinInt64, "IDR").Add(mustMoney(t, -1, "IDR"))
	require.ErrorIs(t, err, domain.ErrAmountOverflow)
}

func TestOrderApplyStatusChange(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	paidAt := at.Add(-time.Hour)

	order := domain.Order{Status: domain.OrderStatusPaid, PaidAt: &paidAt}

	order.ApplyStatusChange(domain.StatusChange{
		From:     domain.OrderStatusPaid,
		To:       domain.OrderStatusShipped,
		At:       at,
		Stamp:    true,
		Shipment: &domain.ShipmentInfo{Courier: "JNE", TrackingNumber: "JNE123"},
	})

	assert.Equal(t, domain.OrderStatusShipped, order.Status)
	assert.Equal(t, at, lo.FromPtr(order.ShippedAt))
	assert.Equal(t, paidAt, lo.FromPtr(order.PaidAt))
	assert.Equal(t, "JNE", lo.FromPtr(order.Courier))
	assert.Equal(t, "JNE123", lo.FromPtr(order.TrackingNumber))

	completedAt := at.Add(time.Hour)
	order.CompletedAt = &completedAt
	order.Status = domain.OrderStatusReturnRequested

	// revert keeps the original timestamp
	order.ApplyStatusChange(domain.StatusChange{
		From: domain.OrderStatusReturnRequested,
		To:   domain.OrderStatusCompleted,
		At:   at.Add(2 * time.Hour),
	})
	assert.Equal(t, completedAt, lo.FromPtr(order.CompletedAt))
}

func TestMoneyString(t *testing.T) {
	assert.Equal(t, "USD 12.34", mustMoney(t, 1234, "USD").String())
	assert.Equal(t, "JPY 500", mustMoney(t, 500, "JPY").String())
}

func mustMoney(t *testing.T, amount int64, code string) domain.Money {
	t.Helper()

	m, err := domain.NewMoney(amount, code)
	require.NoError(t, err)
	return m
}
