package repository

import (
	"context"
	"fmt"

	"radiator-erp/internal/models"
)

// LedgerRepository maintains the stock_movements audit ledger. Every row is
// keyed by (source_kind, source_id) so the movement that caused it can be
// corrected or reversed in lockstep.
type LedgerRepository interface {
	WithTx(tx DBTX) LedgerRepository

	Insert(ctx context.Context, mv *models.StockMovement) error
	UpdateBySource(ctx context.Context, mv *models.StockMovement) error
	DeleteBySource(ctx context.Context, kind models.MovementSource, sourceID int) error

	ListRecent(ctx context.Context, limit int) ([]*models.StockMovement, error)
	MaterialTotals(ctx context.Context, materialID int) (*models.StockTotals, error)
	ProductTotals(ctx context.Context, productID int) (*models.StockTotals, error)
}

type ledgerRepository struct {
	db DBTX
}

func NewLedgerRepository(db DBTX) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) WithTx(tx DBTX) LedgerRepository {
	return &ledgerRepository{db: tx}
}

func (r *ledgerRepository) Insert(ctx context.Context, mv *models.StockMovement) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO stock_movements
		(item_kind, material_id, product_id, direction, quantity, unit_price, source_kind, source_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, occurred_at
	`, mv.ItemKind, mv.MaterialID, mv.ProductID, mv.Direction, mv.Quantity,
		mv.UnitPrice, mv.SourceKind, mv.SourceID,
	).Scan(&mv.ID, &mv.OccurredAt)
	if err != nil {
		return fmt.Errorf("failed to insert stock movement: %w", err)
	}
	return nil
}

// UpdateBySource rewrites the ledger row that mirrors an edited movement line.
func (r *ledgerRepository) UpdateBySource(ctx context.Context, mv *models.StockMovement) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stock_movements
		SET item_kind = $1, material_id = $2, product_id = $3,
		    direction = $4, quantity = $5, unit_price = $6
		WHERE source_kind = $7 AND source_id = $8
	`, mv.ItemKind, mv.MaterialID, mv.ProductID, mv.Direction, mv.Quantity,
		mv.UnitPrice, mv.SourceKind, mv.SourceID)
	if err != nil {
		return fmt.Errorf("failed to update stock movement: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no ledger row for %s/%d", mv.SourceKind, mv.SourceID)
	}
	return nil
}

func (r *ledgerRepository) DeleteBySource(ctx context.Context, kind models.MovementSource, sourceID int) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM stock_movements WHERE source_kind = $1 AND source_id = $2
	`, kind, sourceID)
	if err != nil {
		return fmt.Errorf("failed to delete stock movement: %w", err)
	}
	return nil
}

func (r *ledgerRepository) ListRecent(ctx context.Context, limit int) ([]*models.StockMovement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, occurred_at, item_kind, material_id, product_id,
		       direction, quantity, unit_price, source_kind, source_id
		FROM stock_movements
		ORDER BY occurred_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	var movements []*models.StockMovement
	for rows.Next() {
		var mv models.StockMovement
		err := rows.Scan(
			&mv.ID, &mv.OccurredAt, &mv.ItemKind, &mv.MaterialID, &mv.ProductID,
			&mv.Direction, &mv.Quantity, &mv.UnitPrice, &mv.SourceKind, &mv.SourceID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		movements = append(movements, &mv)
	}
	return movements, rows.Err()
}

func (r *ledgerRepository) MaterialTotals(ctx context.Context, materialID int) (*models.StockTotals, error) {
	return r.totals(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
		FROM stock_movements
		WHERE item_kind = 'material' AND material_id = $1
	`, materialID)
}

func (r *ledgerRepository) ProductTotals(ctx context.Context, productID int) (*models.StockTotals, error) {
	return r.totals(ctx, `
		SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
		       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
		FROM stock_movements
		WHERE item_kind = 'product' AND product_id = $1
	`, productID)
}

func (r *ledgerRepository) totals(ctx context.Context, query string, id int) (*models.StockTotals, error) {
	var t models.StockTotals
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&t.TotalIn, &t.TotalOut); err != nil {
		return nil, fmt.Errorf("failed to aggregate stock movements: %w", err)
	}
	return &t, nil
}
