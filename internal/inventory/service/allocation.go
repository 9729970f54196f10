package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/isabelayared/pharmastock-system/internal/inventory/repository"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
	"github.com/isabelayared/pharmastock-system/pkg/logger"
)

// AllocationStatus is the terminal state of one sale allocation
type AllocationStatus string

const (
	// StatusSuccess means the full requested quantity was debited
	StatusSuccess AllocationStatus = "SUCCESS"
	// StatusPartial means the FEFO walk exhausted stock before satisfying
	// the request; debits already applied are kept
	StatusPartial AllocationStatus = "PARTIAL"
	// StatusError means an explicitly selected batch had insufficient
	// quantity; nothing was debited
	StatusError AllocationStatus = "ERROR"
	// StatusNotFound means the product code is unknown
	StatusNotFound AllocationStatus = "NOT_FOUND"
)

// AllocationRequest is a validated sale request. BatchID and BatchCode are
// optional selectors for a specific lot; when neither matches, allocation
// falls back to FEFO.
type AllocationRequest struct {
	ProductCode string
	Quantity    int
	BatchID     string
	BatchCode   string
}

// DebitedBatch records a single debit applied by an allocation
type DebitedBatch struct {
	BatchID string `json:"batch_id"`
	Amount  int    `json:"amount"`
}

// AllocationOutcome reports what an allocation did. Callers must branch on
// Status; Shortfall is only meaningful for PARTIAL.
type AllocationOutcome struct {
	Status         AllocationStatus `json:"status"`
	Message        string           `json:"message"`
	DebitedBatches []DebitedBatch   `json:"debited_batches"`
	Shortfall      int              `json:"shortfall,omitempty"`
}

// ProductStore is the product lookup the engine needs from persistence
type ProductStore interface {
	GetByID(ctx context.Context, id string) (*repository.Product, error)
	GetByCode(ctx context.Context, code string) (*repository.Product, error)
	CreateWithBatch(ctx context.Context, product *repository.Product, batch *repository.Batch) error
	List(ctx context.Context) ([]*repository.Product, error)
	Delete(ctx context.Context, id string) error
}

// BatchStore owns the durable batch collection and the quantity-update
// primitive. Debit must be conditional: it only applies when the batch
// still holds at least amount units, and reports whether it did.
type BatchStore interface {
	Create(ctx context.Context, batch *repository.Batch) error
	ListByProduct(ctx context.Context, productID string) ([]*repository.Batch, error)
	ListAll(ctx context.Context) ([]*repository.Batch, error)
	Debit(ctx context.Context, id string, amount int) (bool, error)
}

// AllocationEngine debits sale quantities against a product's batches,
// either from an explicitly selected batch or oldest-expiry-first.
type AllocationEngine struct {
	products ProductStore
	batches  BatchStore
	locks    sync.Map // product code -> *sync.Mutex
	logger   *logger.Logger
}

// NewAllocationEngine creates a new allocation engine
func NewAllocationEngine(products ProductStore, batches BatchStore, log *logger.Logger) *AllocationEngine {
	return &AllocationEngine{
		products: products,
		batches:  batches,
		logger:   log,
	}
}

// Allocate runs one sale allocation. The whole call holds a per-product
// lock so concurrent sales against the same product serialize; the store's
// conditional debit guards against other service instances.
//
// Explicit batch selection is all-or-nothing: if the selected batch cannot
// cover the request the outcome is ERROR and nothing changes. A selector
// that matches no batch on the product is advisory and falls through to
// FEFO. The FEFO walk may short-fill; the PARTIAL outcome keeps the debits
// already applied and reports the shortfall.
func (e *AllocationEngine) Allocate(ctx context.Context, req AllocationRequest) (*AllocationOutcome, error) {
	if req.Quantity <= 0 {
		return nil, errors.BadRequest("quantity must be a positive integer")
	}
	if req.ProductCode == "" {
		return nil, errors.BadRequest("product code is required")
	}

	mu := e.lockFor(req.ProductCode)
	mu.Lock()
	defer mu.Unlock()

	product, err := e.products.GetByCode(ctx, req.ProductCode)
	if err != nil {
		if errors.Is(err, errors.ErrNotFound) {
			return &AllocationOutcome{
				Status:  StatusNotFound,
				Message: fmt.Sprintf("product %s not found in stock", req.ProductCode),
			}, nil
		}
		return nil, err
	}

	batches, err := e.batches.ListByProduct(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	if target := resolveTarget(batches, req); target != nil {
		return e.allocateExplicit(ctx, target, req.Quantity)
	}

	return e.allocateFEFO(ctx, batches, req.Quantity)
}

// resolveTarget finds the explicitly selected batch, by id first, then by
// lot code. Nil means no selector or no match; the caller falls back to FEFO.
func resolveTarget(batches []*repository.Batch, req AllocationRequest) *repository.Batch {
	if req.BatchID != "" {
		for _, b := range batches {
			if b.ID == req.BatchID {
				return b
			}
		}
	}
	if req.BatchCode != "" {
		for _, b := range batches {
			if b.Code == req.BatchCode {
				return b
			}
		}
	}
	return nil
}

func (e *AllocationEngine) allocateExplicit(ctx context.Context, target *repository.Batch, quantity int) (*AllocationOutcome, error) {
	if target.Quantity < quantity {
		return &AllocationOutcome{
			Status:  StatusError,
			Message: fmt.Sprintf("insufficient stock in batch %s: %d available, %d requested", target.Code, target.Quantity, quantity),
		}, nil
	}

	applied, err := e.batches.Debit(ctx, target.ID, quantity)
	if err != nil {
		return nil, err
	}
	if !applied {
		// Another instance drained the batch between the read and the
		// conditional update. Still all-or-nothing, so report ERROR.
		return &AllocationOutcome{
			Status:  StatusError,
			Message: fmt.Sprintf("insufficient stock in batch %s", target.Code),
		}, nil
	}

	target.Quantity -= quantity

	return &AllocationOutcome{
		Status:         StatusSuccess,
		Message:        fmt.Sprintf("sale debited from batch %s", target.Code),
		DebitedBatches: []DebitedBatch{{BatchID: target.ID, Amount: quantity}},
	}, nil
}

func (e *AllocationEngine) allocateFEFO(ctx context.Context, batches []*repository.Batch, quantity int) (*AllocationOutcome, error) {
	// The store already orders by expiry, but the walk must not depend on
	// it. Stable sort keeps insertion order among equal expirations.
	sorted := make([]*repository.Batch, len(batches))
	copy(sorted, batches)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ExpirationDate.Before(sorted[j].ExpirationDate)
	})

	remaining := quantity
	var debits []DebitedBatch

	for _, batch := range sorted {
		if remaining == 0 {
			break
		}
		if batch.Quantity <= 0 {
			continue
		}

		take := remaining
		if batch.Quantity < take {
			take = batch.Quantity
		}

		applied, err := e.batches.Debit(ctx, batch.ID, take)
		if err != nil {
			return nil, err
		}
		if !applied {
			// Lost the batch to a concurrent debit from elsewhere; the
			// walk just moves on to the next lot.
			continue
		}

		batch.Quantity -= take
		debits = append(debits, DebitedBatch{BatchID: batch.ID, Amount: take})
		remaining -= take
	}

	if remaining > 0 {
		return &AllocationOutcome{
			Status:         StatusPartial,
			Message:        fmt.Sprintf("insufficient total stock: %d units short", remaining),
			DebitedBatches: debits,
			Shortfall:      remaining,
		}, nil
	}

	return &AllocationOutcome{
		Status:         StatusSuccess,
		Message:        fmt.Sprintf("sale allocated across %d batch(es)", len(debits)),
		DebitedBatches: debits,
	}, nil
}

// DebitedTotal sums the units this outcome debited
func (o *AllocationOutcome) DebitedTotal() int {
	total := 0
	for _, d := range o.DebitedBatches {
		total += d.Amount
	}
	return total
}

func (e *AllocationEngine) lockFor(productCode string) *sync.Mutex {
	mu, _ := e.locks.LoadOrStore(productCode, &sync.Mutex{})
	return mu.(*sync.Mutex)
}
