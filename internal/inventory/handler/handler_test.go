package handler_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
	"github.com/isabelayared/pharmastock-system/internal/inventory/events"
	"github.com/isabelayared/pharmastock-system/internal/inventory/handler"
	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/internal/inventory/service"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
	"github.com/isabelayared/pharmastock-system/pkg/metrics"
	"github.com/isabelayared/pharmastock-system/pkg/testutil"
)

// memStore is an in-memory ProductStore + BatchStore for handler tests
type memStore struct {
	mu       sync.Mutex
	products []*repository.Product
	batches  []*repository.Batch
}

func (m *memStore) seed(code, name string, batches ...*repository.Batch) *repository.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := &repository.Product{ID: uuid.New().String(), Code: code, Name: name}
	m.products = append(m.products, p)
	for _, b := range batches {
		if b.ID == "" {
			b.ID = uuid.New().String()
		}
		b.ProductID = p.ID
		m.batches = append(m.batches, b)
	}
	return p
}

func (m *memStore) GetByID(_ context.Context, id string) (*repository.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, errors.NotFound("product")
}

func (m *memStore) GetByCode(_ context.Context, code string) (*repository.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.products {
		if p.Code == code {
			return p, nil
		}
	}
	return nil, errors.NotFound("product")
}

func (m *memStore) CreateWithBatch(_ context.Context, product *repository.Product, batch *repository.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	batch.ProductID = product.ID
	m.products = append(m.products, product)
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memStore) List(_ context.Context) ([]*repository.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*repository.Product{}, m.products...), nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, p := range m.products {
		if p.ID == id {
			m.products = append(m.products[:i], m.products[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("product")
}

func (m *memStore) Create(_ context.Context, batch *repository.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	m.batches = append(m.batches, batch)
	return nil
}

func (m *memStore) ListByProduct(_ context.Context, productID string) ([]*repository.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*repository.Batch
	for _, b := range m.batches {
		if b.ProductID == productID {
			result = append(result, b)
		}
	}
	return result, nil
}

func (m *memStore) ListAll(_ context.Context) ([]*repository.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*repository.Batch{}, m.batches...), nil
}

func (m *memStore) Debit(_ context.Context, id string, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.batches {
		if b.ID == id {
			if b.Quantity < amount {
				return false, nil
			}
			b.Quantity -= amount
			return true, nil
		}
	}
	return false, nil
}

// newTestRouter wires every inventory handler over an in-memory store
func newTestRouter(store *memStore) chi.Router {
	log := logger.New("test", "test")
	resolver := catalog.NewStaticResolver()
	publisher := events.NewWithSink(testutil.NewMockPublisher(), log)
	svc := service.NewInventoryService(store, store, resolver, publisher, log)
	m := metrics.New(prometheus.NewRegistry())

	r := chi.NewRouter()
	handler.NewProductHandler(svc, log).RegisterRoutes(r)
	handler.NewSaleHandler(svc, m, log).RegisterRoutes(r)
	handler.NewAlertHandler(svc, 30, log).RegisterRoutes(r)
	handler.NewDashboardHandler(svc, log).RegisterRoutes(r)
	handler.NewCatalogHandler(resolver, log).RegisterRoutes(r)
	return r
}

func doJSON(r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func futureDate(days int) time.Time {
	return time.Now().AddDate(0, 0, days)
}
