package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/isabelayared/pharmastock-system/pkg/database"
	"github.com/isabelayared/pharmastock-system/pkg/errors"
)

// Product represents a tracked pharmaceutical product. Batches is populated
// by the service layer, not by product queries.
type Product struct {
	ID        string    `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Batches []*Batch `db:"-" json:"batches,omitempty"`
}

// ProductRepository handles product persistence
type ProductRepository struct {
	db *database.DB
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// CreateWithBatch creates a product together with its first batch in one
// transaction. Registration of an unseen code must leave either both rows
// or neither.
func (r *ProductRepository) CreateWithBatch(ctx context.Context, product *Product, batch *Batch) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}
	batch.ProductID = product.ID

	return r.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		productQuery := `
			INSERT INTO products (id, code, name, category)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at
		`
		if err := tx.QueryRowxContext(ctx, productQuery,
			product.ID, product.Code, product.Name, product.Category,
		).Scan(&product.CreatedAt, &product.UpdatedAt); err != nil {
			return err
		}

		batchQuery := `
			INSERT INTO batches (id, product_id, code, quantity, expiration_date)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING created_at, updated_at
		`
		return tx.QueryRowxContext(ctx, batchQuery,
			batch.ID, batch.ProductID, batch.Code, batch.Quantity, batch.ExpirationDate,
		).Scan(&batch.CreatedAt, &batch.UpdatedAt)
	})
}

// GetByID gets a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*Product, error) {
	var product Product
	query := `SELECT id, code, name, category, created_at, updated_at FROM products WHERE id = $1`
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

// GetByCode gets a product by its business code (EAN)
func (r *ProductRepository) GetByCode(ctx context.Context, code string) (*Product, error) {
	var product Product
	query := `SELECT id, code, name, category, created_at, updated_at FROM products WHERE code = $1`
	if err := r.db.GetContext(ctx, &product, query, code); err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound("product")
		}
		return nil, err
	}
	return &product, nil
}

// List lists all products in insertion order
func (r *ProductRepository) List(ctx context.Context) ([]*Product, error) {
	var products []*Product
	query := `SELECT id, code, name, category, created_at, updated_at FROM products ORDER BY created_at, id`
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}
	return products, nil
}

// Delete removes a product. Its batches go with it via the FK cascade.
func (r *ProductRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM products WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return errors.NotFound("product")
	}

	return nil
}
