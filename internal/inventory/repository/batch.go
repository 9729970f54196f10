package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/isabelayared/pharmastock-system/pkg/database"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
)

// Batch represents a dated lot of a product's stock. Quantity is kept
// non-negative by the conditional debit; the schema enforces it as well.
type Batch struct {
	ID             string    `db:"id" json:"id"`
	ProductID      string    `db:"product_id" json:"product_id"`
	Code           string    `db:"code" json:"code"`
	Quantity       int       `db:"quantity" json:"quantity"`
	ExpirationDate time.Time `db:"expiration_date" json:"expiration_date"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// BatchRepository handles batch persistence
type BatchRepository struct {
	db *database.DB
}

// NewBatchRepository creates a new batch repository
func NewBatchRepository(db *database.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

// Create creates a new batch. Re-registering a lot code that already exists
// under the product deliberately creates a second independent row.
func (r *BatchRepository) Create(ctx context.Context, batch *Batch) error {
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `
		INSERT INTO batches (id, product_id, code, quantity, expiration_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at
	`

	return r.db.QueryRowxContext(ctx, query,
		batch.ID, batch.ProductID, batch.Code, batch.Quantity, batch.ExpirationDate,
	).Scan(&batch.CreatedAt, &batch.UpdatedAt)
}

// GetByID gets a batch by ID
func (r *BatchRepository) GetByID(ctx context.Context, id string) (*Batch, error) {
	var batch Batch
	query := `SELECT * FROM batches WHERE id = $1`
	if err := r.db.GetContext(ctx, &batch, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("batch")
		}
		return nil, err
	}
	return &batch, nil
}

// ListByProduct lists a product's batches ordered for the FEFO walk:
// ascending expiration date, insertion order breaking ties.
func (r *BatchRepository) ListByProduct(ctx context.Context, productID string) ([]*Batch, error) {
	var batches []*Batch
	query := `
		SELECT * FROM batches
		WHERE product_id = $1
		ORDER BY expiration_date, created_at, id
	`
	if err := r.db.SelectContext(ctx, &batches, query, productID); err != nil {
		return nil, err
	}
	return batches, nil
}

// ListAll lists every batch, grouped by product and ordered by expiry
func (r *BatchRepository) ListAll(ctx context.Context) ([]*Batch, error) {
	var batches []*Batch
	query := `SELECT * FROM batches ORDER BY product_id, expiration_date, created_at, id`
	if err := r.db.SelectContext(ctx, &batches, query); err != nil {
		return nil, err
	}
	return batches, nil
}

// Debit decrements a batch quantity by amount, only if enough stock is
// available. The conditional update means two overlapping sales can never
// jointly draw a batch below zero, even across service instances. Returns
// false when the condition did not hold.
func (r *BatchRepository) Debit(ctx context.Context, id string, amount int) (bool, error) {
	query := `
		UPDATE batches SET quantity = quantity - $2, updated_at = NOW()
		WHERE id = $1 AND quantity >= $2
	`
	result, err := r.db.ExecContext(ctx, query, id, amount)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}
