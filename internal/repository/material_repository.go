package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"radiator-erp/internal/models"
)

// MaterialRepository covers raw-material lookups and stock adjustments.
type MaterialRepository interface {
	WithTx(tx DBTX) MaterialRepository

	GetByID(ctx context.Context, id int) (*models.Material, error)
	ListRefs(ctx context.Context) ([]*models.MaterialRef, error)

	// LockByID reads the material row FOR UPDATE so concurrent writers
	// serialize on the same stock check. Call inside a transaction.
	LockByID(ctx context.Context, id int) (*models.Material, error)
	AdjustStock(ctx context.Context, id int, warehouseDelta, factoryDelta decimal.Decimal) error
}

type materialRepository struct {
	db DBTX
}

func NewMaterialRepository(db DBTX) MaterialRepository {
	return &materialRepository{db: db}
}

func (r *materialRepository) WithTx(tx DBTX) MaterialRepository {
	return &materialRepository{db: tx}
}

const materialColumns = `id, name, unit, list_price, warehouse_qty, factory_qty, min_stock, source_type, stock_updated_at, created_at`

func (r *materialRepository) GetByID(ctx context.Context, id int) (*models.Material, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1`, id)
	return scanMaterial(row)
}

func (r *materialRepository) LockByID(ctx context.Context, id int) (*models.Material, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+materialColumns+` FROM materials WHERE id = $1 FOR UPDATE`, id)
	return scanMaterial(row)
}

func scanMaterial(row *sql.Row) (*models.Material, error) {
	var m models.Material
	err := row.Scan(
		&m.ID, &m.Name, &m.Unit, &m.ListPrice, &m.WarehouseQty, &m.FactoryQty,
		&m.MinStock, &m.SourceType, &m.StockUpdatedAt, &m.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get material: %w", err)
	}
	return &m, nil
}

func (r *materialRepository) ListRefs(ctx context.Context) ([]*models.MaterialRef, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, unit, list_price, warehouse_qty
		FROM materials
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list materials: %w", err)
	}
	defer rows.Close()

	var refs []*models.MaterialRef
	for rows.Next() {
		var ref models.MaterialRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Unit, &ref.ListPrice, &ref.WarehouseQty); err != nil {
			return nil, fmt.Errorf("failed to scan material: %w", err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}

// AdjustStock applies signed deltas to the warehouse and factory quantities.
// Callers are responsible for having locked the row and checked the result
// stays non-negative.
func (r *materialRepository) AdjustStock(ctx context.Context, id int, warehouseDelta, factoryDelta decimal.Decimal) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE materials
		SET warehouse_qty = warehouse_qty + $1,
		    factory_qty = factory_qty + $2,
		    stock_updated_at = NOW()
		WHERE id = $3
	`, warehouseDelta, factoryDelta, id)
	if err != nil {
		return fmt.Errorf("failed to adjust material stock: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no material found with id %d", id)
	}
	return nil
}
