package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"radiator-erp/internal/models"
)

// ProductRepository covers finished-radiator lookups and stock adjustments.
type ProductRepository interface {
	WithTx(tx DBTX) ProductRepository

	GetByID(ctx context.Context, id int) (*models.Product, error)
	ListRefs(ctx context.Context) ([]*models.ProductRef, error)

	// LockByID reads the product row FOR UPDATE. Call inside a transaction.
	LockByID(ctx context.Context, id int) (*models.Product, error)
	AdjustStock(ctx context.Context, id int, delta decimal.Decimal) error
}

type productRepository struct {
	db DBTX
}

func NewProductRepository(db DBTX) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) WithTx(tx DBTX) ProductRepository {
	return &productRepository{db: tx}
}

const productColumns = `id, name, size, section_count, category, unit_price, stock_qty, min_stock, stock_updated_at, created_at`

func (r *productRepository) GetByID(ctx context.Context, id int) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *productRepository) LockByID(ctx context.Context, id int) (*models.Product, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	return scanProduct(row)
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Size, &p.SectionCount, &p.Category,
		&p.UnitPrice, &p.StockQty, &p.MinStock, &p.StockUpdatedAt, &p.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &p, nil
}

func (r *productRepository) ListRefs(ctx context.Context) ([]*models.ProductRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit_price, stock_qty
		FROM products
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	var refs []*models.ProductRef
	for rows.Next() {
		var ref models.ProductRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.UnitPrice, &ref.StockQty); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

// AdjustStock applies a signed delta to the product stock quantity.
func (r *productRepository) AdjustStock(ctx context.Context, id int, delta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE products
		SET stock_qty = stock_qty + $1,
		    stock_updated_at = NOW()
		WHERE id = $2
	`, delta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust product stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no product found with id %d", id)
	}
	return nil
}
