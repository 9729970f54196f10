package service_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New("test", "test")
}

// fakeStore is an in-memory ProductStore + BatchStore. Debit is guarded by
// a mutex so concurrency tests exercise the engine against a store with the
// same never-below-zero guarantee the SQL conditional update gives.
type fakeStore struct {
	mu       sync.Mutex
	products map[string]*repository.Product // by id
	batches  map[string]*repository.Batch   // by id
	order    []string                       // batch insertion order
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: make(map[string]*repository.Product),
		batches:  make(map[string]*repository.Batch),
	}
}

// addProduct seeds a product with batches; batch expirations are given as
// day offsets from base.
func (f *fakeStore) addProduct(code, name string, base time.Time, batches ...fakeBatch) *repository.Product {
	f.mu.Lock()
	defer f.mu.Unlock()

	p := &repository.Product{
		ID:   uuid.New().String(),
		Code: code,
		Name: name,
	}
	f.products[p.ID] = p

	for _, fb := range batches {
		b := &repository.Batch{
			ID:             uuid.New().String(),
			ProductID:      p.ID,
			Code:           fb.code,
			Quantity:       fb.quantity,
			ExpirationDate: base.AddDate(0, 0, fb.daysOut),
		}
		f.batches[b.ID] = b
		f.order = append(f.order, b.ID)
	}

	return p
}

type fakeBatch struct {
	code     string
	quantity int
	daysOut  int
}

func (f *fakeStore) GetByID(_ context.Context, id string) (*repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, errors.NotFound("product")
}

func (f *fakeStore) GetByCode(_ context.Context, code string) (*repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, errors.NotFound("product")
}

func (f *fakeStore) CreateWithBatch(_ context.Context, product *repository.Product, batch *repository.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	batch.ProductID = product.ID
	f.products[product.ID] = product
	f.batches[batch.ID] = batch
	f.order = append(f.order, batch.ID)
	return nil
}

func (f *fakeStore) List(_ context.Context) ([]*repository.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products := make([]*repository.Product, 0, len(f.products))
	for _, p := range f.products {
		products = append(products, p)
	}
	return products, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return errors.NotFound("product")
	}
	delete(f.products, id)
	for bid, b := range f.batches {
		if b.ProductID == id {
			delete(f.batches, bid)
		}
	}
	return nil
}

func (f *fakeStore) Create(_ context.Context, batch *repository.Batch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	f.batches[batch.ID] = batch
	f.order = append(f.order, batch.ID)
	return nil
}

func (f *fakeStore) ListByProduct(_ context.Context, productID string) ([]*repository.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var batches []*repository.Batch
	for _, id := range f.order {
		b, ok := f.batches[id]
		if ok && b.ProductID == productID {
			copied := *b
			batches = append(batches, &copied)
		}
	}
	return batches, nil
}

func (f *fakeStore) ListAll(_ context.Context) ([]*repository.Batch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var batches []*repository.Batch
	for _, id := range f.order {
		if b, ok := f.batches[id]; ok {
			copied := *b
			batches = append(batches, &copied)
		}
	}
	return batches, nil
}

func (f *fakeStore) Debit(_ context.Context, id string, amount int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok || b.Quantity < amount {
		return false, nil
	}
	b.Quantity -= amount
	return true, nil
}

// quantity reads the live quantity of a batch in the store
func (f *fakeStore) quantity(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.batches[id]; ok {
		return b.Quantity
	}
	return -1
}

// batchByCode finds a seeded batch by lot code
func (f *fakeStore) batchByCode(code string) *repository.Batch {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.batches {
		if b.Code == code {
			return b
		}
	}
	return nil
}

// totalQuantity sums live quantities across all batches
func (f *fakeStore) totalQuantity() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, b := range f.batches {
		total += b.Quantity
	}
	return total
}
