package service_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
	"github.com/isabelayared/pharmastock-system/internal/inventory/events"
	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/messaging"
	"github.com/isabelayared/pharmastock-system/pkg/testutil"
)

func newInventoryService(store *fakeStore) *service.InventoryService {
	log := testLogger()
	return service.NewInventoryService(
		store, store,
		catalog.NewStaticResolver(),
		events.NewWithSink(testutil.NewMockPublisher(), log),
		log,
	)
}

func newInventoryServiceWithSink(store *fakeStore) (*service.InventoryService, *testutil.MockPublisher) {
	log := testLogger()
	sink := testutil.NewMockPublisher()
	svc := service.NewInventoryService(
		store, store,
		catalog.NewStaticResolver(),
		events.NewWithSink(sink, log),
		log,
	)
	return svc, sink
}

func TestRegisterStock_KnownCodeAddsBatch(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	product := store.addProduct("7891058001421", "Neosaldina", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: 100},
	)
	svc, sink := newInventoryServiceWithSink(store)

	batch, err := svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "7891058001421",
		Quantity:       20,
		ExpirationDate: base.AddDate(0, 6, 0),
		BatchCode:      "LOT-2",
	})
	require.NoError(t, err)

	assert.Equal(t, product.ID, batch.ProductID)
	assert.Equal(t, "LOT-2", batch.Code)
	assert.Equal(t, 30, store.totalQuantity())
	sink.AssertEventPublished(t, messaging.EventProductRegistered)
}

func TestRegisterStock_DuplicateLotCodeCreatesSecondBatch(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	store.addProduct("7891058001421", "Neosaldina", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: 100},
	)
	svc := newInventoryService(store)

	// Re-registering the same lot code does not merge quantities; it adds
	// an independent batch row.
	_, err := svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "7891058001421",
		Quantity:       5,
		ExpirationDate: base.AddDate(0, 3, 0),
		BatchCode:      "LOT-1",
	})
	require.NoError(t, err)

	batches, err := store.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, batches, 2)
	assert.Equal(t, 15, store.totalQuantity())
}

func TestRegisterStock_NewCodeCreatesProductFromCatalog(t *testing.T) {
	store := newFakeStore()
	svc, sink := newInventoryServiceWithSink(store)

	// Code present in the reference catalog: name and category come from it
	batch, err := svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "7891058001421",
		Quantity:       12,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)

	product, err := store.GetByCode(context.Background(), "7891058001421")
	require.NoError(t, err)
	assert.Equal(t, "Neosaldina 30 Drágeas", product.Name)
	assert.NotEmpty(t, product.Category)
	assert.Equal(t, product.ID, batch.ProductID)

	// Omitted lot codes get a generated one derived from the product code
	assert.True(t, strings.HasPrefix(batch.Code, "7891058001421-"))

	sink.AssertEventPublished(t, messaging.EventProductRegistered)
}

func TestRegisterStock_UnknownCodeRequiresName(t *testing.T) {
	store := newFakeStore()
	svc := newInventoryService(store)

	_, err := svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "1112223334445",
		Quantity:       5,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	// Same code with a name succeeds
	_, err = svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "1112223334445",
		Name:           "Manipulado XYZ",
		Quantity:       5,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	})
	require.NoError(t, err)
}

func TestRegisterStock_RejectsInvalidInput(t *testing.T) {
	store := newFakeStore()
	svc := newInventoryService(store)

	_, err := svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:           "7891058001421",
		Quantity:       0,
		ExpirationDate: time.Now().AddDate(1, 0, 0),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))

	_, err = svc.RegisterStock(context.Background(), service.RegisterRequest{
		Code:     "7891058001421",
		Quantity: 5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrBadRequest))
}

func TestSell_PublishesStockDebitedEvent(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	store.addProduct("7896006200021", "Dorflex", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: 60},
	)
	svc, sink := newInventoryServiceWithSink(store)

	outcome, err := svc.Sell(context.Background(), service.AllocationRequest{
		ProductCode: "7896006200021",
		Quantity:    4,
	})
	require.NoError(t, err)

	assert.Equal(t, service.StatusSuccess, outcome.Status)
	sink.AssertEventPublished(t, messaging.EventStockDebited)
}

func TestSell_NotFoundPublishesNothing(t *testing.T) {
	store := newFakeStore()
	svc, sink := newInventoryServiceWithSink(store)

	outcome, err := svc.Sell(context.Background(), service.AllocationRequest{
		ProductCode: "0000000000000",
		Quantity:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, service.StatusNotFound, outcome.Status)
	assert.Empty(t, sink.Events())
}

func TestListProducts_EnrichesWithStockAndExpiry(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	store.addProduct("7891058001421", "Neosaldina", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: 40},
		fakeBatch{code: "LOT-2", quantity: 5, daysOut: 300},
	)
	svc := newInventoryService(store)

	products, err := svc.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.Equal(t, 15, p.TotalStock)
	require.NotNil(t, p.NearestExpiry)
	// Nearest batch (40 days out) drives the classification
	assert.Equal(t, service.BucketAttention, p.ExpiryStatus)
	assert.Len(t, p.Batches, 2)
}

func TestDeleteProduct_RemovesBatchesAndPublishes(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	product := store.addProduct("7891058001421", "Neosaldina", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: 40},
	)
	svc, sink := newInventoryServiceWithSink(store)

	require.NoError(t, svc.DeleteProduct(context.Background(), product.ID))

	_, err := store.GetByID(context.Background(), product.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Equal(t, 0, store.totalQuantity())
	sink.AssertEventPublished(t, messaging.EventProductDeleted)

	// Deleting again reports not found
	err = svc.DeleteProduct(context.Background(), product.ID)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestDashboardStats_CountsProductsByBucket(t *testing.T) {
	base := time.Now()
	store := newFakeStore()
	store.addProduct("7891058001421", "Neosaldina", base,
		fakeBatch{code: "LOT-1", quantity: 10, daysOut: -5},
	)
	store.addProduct("7896006200021", "Dorflex", base,
		fakeBatch{code: "LOT-2", quantity: 10, daysOut: 500},
	)
	svc := newInventoryService(store)

	stats, err := svc.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Expired)
	assert.Equal(t, 1, stats.Safe)
}
