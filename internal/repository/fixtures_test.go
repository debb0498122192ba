package repository_test

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/repository"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func truncateAll(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	_, err := pool.Exec(t.Context(),
		"TRUNCATE TABLE notifications, return_requests, order_status_history, order_items, orders, products CASCADE")
	require.NoError(t, err)
}

func insertProducts(ctx context.Context, t *testing.T, pool *pgxpool.Pool, n int) []uuid.UUID {
	t.Helper()

	repo := repository.NewProduct(pool)

	var ids []uuid.UUID
	for i := 0; i < n; i++ {
		id, err := repo.InsertProduct(ctx, randomProduct())
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func randomProduct() domain.Product {
	return domain.Product{
		Name:   gofakeit.ProductName(),
		Images: []string{"https://media.test/products/" + gofakeit.UUID() + ".jpg"},
	}
}

// randomOrder builds a valid pending order over the given products.
func randomOrder(productIDs ...uuid.UUID) domain.Order {
	currencyUnit := randomCurrency() // it has to be the same for all items

	total := domain.Money{Currency: currencyUnit}

	var items []domain.OrderItem
	for _, productID := range productIDs {
		item := domain.OrderItem{
			ProductID: productID,
			Quantity:  gofakeit.Number(1, 5),
			UnitPrice: domain.Money{Amount: int64(gofakeit.Number(100, 100_000)), Currency: currencyUnit},
		}
		total = lo.Must(total.Add(lo.Must(item.Subtotal())))
		items = append(items, item)
	}

	return domain.Order{
		OwnerID:         gofakeit.UUID(),
		Items:           items,
		Total:           total,
		ShippingAddress: gofakeit.Address().Address,
	}
}

func randomCurrency() currency.Unit {
	var (
		result currency.Unit
		err    error
	)

	for {
		// tag is not a recognized currency
		result, err = currency.ParseISO(gofakeit.CurrencyShort())
		if err == nil {
			break
		}
	}

	return result
}

func assertOrder(t *testing.T, expected, actual domain.Order) {
	t.Helper()

	currencyComparer := cmp.Comparer(func(x, y currency.Unit) bool {
		return x.String() == y.String()
	})

	opts := cmp.Options{
		cmpopts.IgnoreFields(domain.OrderItem{}, "CreatedAt"),
		cmpopts.IgnoreFields(domain.Order{}, "ID", "Status", "CreatedAt", "UpdatedAt",
			"PaidAt", "ShippedAt", "CompletedAt", "CancelledAt", "ReturnedAt"),
		cmpopts.EquateEmpty(),
		currencyComparer,
	}

	diff := cmp.Diff(expected, actual, opts)
	assert.Empty(t, diff)

	assert.False(t, actual.CreatedAt.IsZero())
	assert.False(t, actual.UpdatedAt.IsZero())
	assert.NotEqual(t, uuid.Nil, actual.ID)
}
