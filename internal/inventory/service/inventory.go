package service

import (
	"context"
	"fmt"
	"time"

	"github.com/isabelayared/pharmastock-system/internal/inventory/catalog"
	"github.com/isabelayared/pharmastock-system/internal/inventory/events"
	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
	"github.com/isabelayared/pharmastock-system/pkg/messaging"
)

// InventoryService orchestrates registration, sale allocation and the
// dashboard reads over the product and batch stores.
type InventoryService struct {
	products  ProductStore
	batches   BatchStore
	catalog   catalog.Resolver
	engine    *AllocationEngine
	publisher *events.InventoryEventPublisher
	logger    *logger.Logger
}

// NewInventoryService creates a new inventory service
func NewInventoryService(
	products ProductStore,
	batches BatchStore,
	cat catalog.Resolver,
	publisher *events.InventoryEventPublisher,
	log *logger.Logger,
) *InventoryService {
	return &InventoryService{
		products:  products,
		batches:   batches,
		catalog:   cat,
		engine:    NewAllocationEngine(products, batches, log),
		publisher: publisher,
		logger:    log,
	}
}

// RegisterRequest is a validated stock registration
type RegisterRequest struct {
	Code           string
	Name           string
	Category       string
	Quantity       int
	ExpirationDate time.Time
	BatchCode      string
}

// ProductWithStock is a product enriched with its batches and derived
// stock figures for listing and dashboard views
type ProductWithStock struct {
	*repository.Product
	TotalStock    int        `json:"total_stock"`
	NearestExpiry *time.Time `json:"nearest_expiry,omitempty"`
	ExpiryStatus  Bucket     `json:"expiry_status,omitempty"`
}

// RegisterStock registers a quantity of stock under a product code. An
// unseen code creates the product and its first batch atomically; a known
// code always gets a fresh batch row, even when the lot code matches an
// existing batch. A missing name is filled from the catalog; registration
// of a code neither known nor named is rejected.
func (s *InventoryService) RegisterStock(ctx context.Context, req RegisterRequest) (*repository.Batch, error) {
	if req.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be a positive integer")
	}
	if req.ExpirationDate.IsZero() {
		return nil, errors.BadRequest("expiration date is required")
	}

	batchCode := req.BatchCode
	if batchCode == "" {
		batchCode = fmt.Sprintf("%s-%d", req.Code, time.Now().UnixMilli())
	}

	batch := &repository.Batch{
		Code:           batchCode,
		Quantity:       req.Quantity,
		ExpirationDate: req.ExpirationDate,
	}

	existing, err := s.products.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		return nil, err
	}

	if existing != nil {
		batch.ProductID = existing.ID
		if err := s.batches.Create(ctx, batch); err != nil {
			return nil, err
		}

		s.publisher.PublishProductRegistered(ctx, messaging.ProductRegisteredEvent{
			ProductID:   existing.ID,
			ProductCode: existing.Code,
			BatchID:     batch.ID,
			BatchCode:   batch.Code,
			Quantity:    batch.Quantity,
		})
		return batch, nil
	}

	name, category := req.Name, req.Category
	if name == "" || category == "" {
		if entry, err := s.catalog.Resolve(ctx, req.Code); err == nil && entry != nil {
			if name == "" {
				name = entry.Name
			}
			if category == "" {
				category = entry.Category
			}
		}
	}
	if name == "" {
		return nil, errors.BadRequest("product name is required for unknown codes")
	}

	product := &repository.Product{
		Code:     req.Code,
		Name:     name,
		Category: category,
	}

	if err := s.products.CreateWithBatch(ctx, product, batch); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_code", product.Code).
		Str("batch_code", batch.Code).
		Int("quantity", batch.Quantity).
		Msg("product registered")

	s.publisher.PublishProductRegistered(ctx, messaging.ProductRegisteredEvent{
		ProductID:   product.ID,
		ProductCode: product.Code,
		BatchID:     batch.ID,
		BatchCode:   batch.Code,
		Quantity:    batch.Quantity,
		NewProduct:  true,
	})

	return batch, nil
}

// Sell runs a sale allocation against a product's batches
func (s *InventoryService) Sell(ctx context.Context, req AllocationRequest) (*AllocationOutcome, error) {
	outcome, err := s.engine.Allocate(ctx, req)
	if err != nil {
		return nil, err
	}

	if outcome.Status == StatusSuccess || outcome.Status == StatusPartial {
		productID := ""
		if product, err := s.products.GetByCode(ctx, req.ProductCode); err == nil {
			productID = product.ID
		}

		debits := make([]messaging.BatchDebit, 0, len(outcome.DebitedBatches))
		for _, d := range outcome.DebitedBatches {
			debits = append(debits, messaging.BatchDebit{BatchID: d.BatchID, Amount: d.Amount})
		}

		s.publisher.PublishStockDebited(ctx, messaging.StockDebitedEvent{
			ProductID:   productID,
			ProductCode: req.ProductCode,
			Status:      string(outcome.Status),
			Requested:   req.Quantity,
			Shortfall:   outcome.Shortfall,
			Debits:      debits,
		})
	}

	return outcome, nil
}

// GetProduct gets a product with its batches by ID
func (s *InventoryService) GetProduct(ctx context.Context, id string) (*ProductWithStock, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, product)
}

// GetProductByCode gets a product with its batches by business code
func (s *InventoryService) GetProductByCode(ctx context.Context, code string) (*ProductWithStock, error) {
	product, err := s.products.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, product)
}

// ListProducts lists all products with batches and stock figures
func (s *InventoryService) ListProducts(ctx context.Context) ([]*ProductWithStock, error) {
	products, err := s.loadProductsWithBatches(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := make([]*ProductWithStock, len(products))
	for i, product := range products {
		result[i] = enrichProduct(product, now)
	}
	return result, nil
}

// DeleteProduct removes a product and all of its batches
func (s *InventoryService) DeleteProduct(ctx context.Context, id string) error {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}

	s.publisher.PublishProductDeleted(ctx, product.ID, product.Code)
	return nil
}

// Alerts returns expiry alerts for batches inside the horizon
func (s *InventoryService) Alerts(ctx context.Context, horizonDays int) ([]Alert, error) {
	if horizonDays <= 0 {
		horizonDays = DefaultAlertHorizonDays
	}

	products, err := s.loadProductsWithBatches(ctx)
	if err != nil {
		return nil, err
	}

	return ComputeAlerts(products, time.Now(), horizonDays), nil
}

// DashboardStats returns the per-bucket product counts
func (s *InventoryService) DashboardStats(ctx context.Context) (*Stats, error) {
	products, err := s.loadProductsWithBatches(ctx)
	if err != nil {
		return nil, err
	}

	return ComputeStats(products, time.Now()), nil
}

// loadProductsWithBatches loads every product and attaches its batches.
// One batch scan instead of a query per product.
func (s *InventoryService) loadProductsWithBatches(ctx context.Context) ([]*repository.Product, error) {
	products, err := s.products.List(ctx)
	if err != nil {
		return nil, err
	}

	batches, err := s.batches.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byProduct := make(map[string][]*repository.Batch)
	for _, b := range batches {
		byProduct[b.ProductID] = append(byProduct[b.ProductID], b)
	}

	for _, p := range products {
		p.Batches = byProduct[p.ID]
	}

	return products, nil
}

func (s *InventoryService) enrich(ctx context.Context, product *repository.Product) (*ProductWithStock, error) {
	batches, err := s.batches.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	product.Batches = batches
	return enrichProduct(product, time.Now()), nil
}

func enrichProduct(product *repository.Product, now time.Time) *ProductWithStock {
	result := &ProductWithStock{Product: product}

	for _, b := range product.Batches {
		result.TotalStock += b.Quantity
	}

	if nearest := nearestBatch(product.Batches); nearest != nil {
		expiry := nearest.ExpirationDate
		result.NearestExpiry = &expiry
		result.ExpiryStatus = Classify(expiry, now)
	}

	return result
}
