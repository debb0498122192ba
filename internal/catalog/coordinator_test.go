package catalog_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/nikolayk812/orderflow/internal/catalog"
	"github.com/nikolayk812/orderflow/internal/domain"
	"github.com/nikolayk812/orderflow/internal/metrics"
	"github.com/nikolayk812/orderflow/internal/repository/memrepo"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeMedia struct {
	mu       sync.Mutex
	uploaded map[string]string
	deleted  []string
	failOn   map[string]bool
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{uploaded: map[string]string{}, failOn: map[string]bool{}}
}

func (f *fakeMedia) Upload(_ context.Context, key string, body io.Reader, _ string) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	ref := "https://cdn.example.com/" + key
	f.uploaded[ref] = string(data)
	return ref, nil
}

func (f *fakeMedia) Delete(ctx context.Context, ref string) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failOn[ref] {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, ref)
	return nil
}

type fixture struct {
	store   *memrepo.Store
	media   *fakeMedia
	metrics *metrics.Metrics
	logs    *observer.ObservedLogs
	coord   *catalog.Coordinator
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := memrepo.NewStore()
	media := newFakeMedia()
	m := metrics.New()
	core, logs := observer.New(zapcore.InfoLevel)

	coord, err := catalog.NewCoordinator(store.Products(), media, m, zap.New(core))
	require.NoError(t, err)

	return fixture{store: store, media: media, metrics: m, logs: logs, coord: coord}
}

func (f fixture) product(t *testing.T, name string, images ...string) uuid.UUID {
	t.Helper()

	id, err := f.store.Products().InsertProduct(t.Context(), domain.Product{Name: name, Images: images})
	require.NoError(t, err)
	return id
}

func (f fixture) orderFor(t *testing.T, productID uuid.UUID) {
	t.Helper()

	price, err := domain.NewMoney(10_000, "IDR")
	require.NoError(t, err)

	_, err = f.store.Orders().InsertOrder(t.Context(), domain.Order{
		OwnerID: "cust-1",
		Items:   []domain.OrderItem{{ProductID: productID, Quantity: 1, UnitPrice: price}},
		Total:   price,
	})
	require.NoError(t, err)
}

func TestDeleteReferencedUnreferencedProduct(t *testing.T) {
	f := newFixture(t)
	id := f.product(t, "lamp", "https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg")

	outcome, err := f.coord.DeleteReferenced(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, catalog.OutcomeDeleted, outcome)

	_, err = f.store.Products().GetProduct(t.Context(), id)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.ElementsMatch(t, []string{"https://cdn.example.com/a.jpg", "https://cdn.example.com/b.jpg"}, f.media.deleted)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.DeletionsTotal.WithLabelValues("single", "deleted")))
}

func TestDeleteReferencedFallsBackToSoftDelete(t *testing.T) {
	f := newFixture(t)
	id := f.product(t, "lamp", "https://cdn.example.com/a.jpg")
	f.orderFor(t, id)

	outcome, err := f.coord.DeleteReferenced(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, catalog.OutcomeSoftDeletedInstead, outcome)

	product, err := f.store.Products().GetProduct(t.Context(), id)
	require.NoError(t, err)
	assert.False(t, product.Active)
	assert.Empty(t, f.media.deleted, "media of a soft-deleted product stays")
}

func TestDeleteReferencedMediaFailureIsLogged(t *testing.T) {
	f := newFixture(t)
	f.media.failOn["https://cdn.example.com/broken.jpg"] = true
	id := f.product(t, "lamp", "https://cdn.example.com/broken.jpg", "https://cdn.example.com/ok.jpg")

	outcome, err := f.coord.DeleteReferenced(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, catalog.OutcomeDeleted, outcome)

	assert.Equal(t, []string{"https://cdn.example.com/ok.jpg"}, f.media.deleted)
	require.Len(t, f.logs.FilterMessage("delete media").All(), 1)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.MediaDeleteErrors))
}

func TestDeleteReferencedMissingProduct(t *testing.T) {
	f := newFixture(t)

	_, err := f.coord.DeleteReferenced(t.Context(), uuid.New())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteAllReferenced(t *testing.T) {
	tests := []struct {
		name         string
		reference    bool
		wantOutcome  catalog.Outcome
		wantAffected int64
		wantDeleted  int
	}{
		{name: "nothing referenced: all deleted", wantOutcome: catalog.OutcomeDeleted, wantAffected: 3, wantDeleted: 3},
		{name: "one referenced: all deactivated", reference: true, wantOutcome: catalog.OutcomeSoftDeletedInstead, wantAffected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ids := []uuid.UUID{
				f.product(t, "a", "https://cdn.example.com/a.jpg"),
				f.product(t, "b", "https://cdn.example.com/b.jpg"),
				f.product(t, "c", "https://cdn.example.com/c.jpg"),
			}
			if tt.reference {
				f.orderFor(t, ids[1])
			}

			result, err := f.coord.DeleteAllReferenced(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tt.wantOutcome, result.Outcome)
			assert.Equal(t, tt.wantAffected, result.Affected)
			assert.Len(t, f.media.deleted, tt.wantDeleted)

			products, err := f.store.Products().ListProducts(t.Context(), domain.Page{})
			require.NoError(t, err)
			if tt.reference {
				require.Len(t, products, 3, "no partial hard delete")
				for _, p := range products {
					assert.False(t, p.Active)
				}
			} else {
				assert.Empty(t, products)
			}
		})
	}
}

func TestAttachImage(t *testing.T) {
	f := newFixture(t)
	id := f.product(t, "lamp")

	ref, err := f.coord.AttachImage(t.Context(), id, "../../front.png", strings.NewReader("png"), "image/png")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ref, "https://cdn.example.com/products/"+id.String()+"/"))
	assert.True(t, strings.HasSuffix(ref, "-front.png"))
	assert.Equal(t, "png", f.media.uploaded[ref])

	product, err := f.store.Products().GetProduct(t.Context(), id)
	require.NoError(t, err)
	assert.Equal(t, []string{ref}, product.Images)

	_, err = f.coord.AttachImage(t.Context(), id, "notes.txt", strings.NewReader("x"), "text/plain")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.coord.AttachImage(t.Context(), uuid.New(), "a.png", strings.NewReader("x"), "image/png")
	require.ErrorIs(t, err, domain.ErrNotFound)
}
