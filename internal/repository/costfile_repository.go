package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radiator-erp/internal/models"
)

// CostFileRepository persists bill-of-materials lines per product.
type CostFileRepository interface {
	WithTx(tx DBTX) CostFileRepository

	GetByProduct(ctx context.Context, productID int) ([]*models.CostFileLineDetail, error)
	GetLineByID(ctx context.Context, id int) (*models.CostFileLine, error)
	InsertLine(ctx context.Context, line *models.CostFileLine) error
	UpdateLine(ctx context.Context, line *models.CostFileLine) error
	DeleteLine(ctx context.Context, id int) error
	DeleteByProduct(ctx context.Context, productID int) error
	NextLineNo(ctx context.Context, productID int) (int, error)
}

type costFileRepository struct {
	db DBTX
}

func NewCostFileRepository(db DBTX) CostFileRepository {
	return &costFileRepository{db: db}
}

func (r *costFileRepository) WithTx(tx DBTX) CostFileRepository {
	return &costFileRepository{db: tx}
}

func (r *costFileRepository) GetByProduct(ctx context.Context, productID int) ([]*models.CostFileLineDetail, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT cfl.id, cfl.product_id, cfl.material_id, cfl.line_no, cfl.quantity_per_unit,
		       cfl.cost, cfl.created_at, m.name, m.unit, m.list_price
		FROM cost_file_lines cfl
		JOIN materials m ON m.id = cfl.material_id
		WHERE cfl.product_id = $1
		ORDER BY cfl.line_no
	`, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost file lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.CostFileLineDetail
	for rows.Next() {
		var line models.CostFileLineDetail
		err := rows.Scan(
			&line.ID, &line.ProductID, &line.MaterialID, &line.LineNo, &line.QuantityPerUnit,
			&line.Cost, &line.CreatedAt, &line.MaterialName, &line.Unit, &line.ListPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cost file line: %w", err)
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

func (r *costFileRepository) GetLineByID(ctx context.Context, id int) (*models.CostFileLine, error) {
	var line models.CostFileLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, product_id, material_id, line_no, quantity_per_unit, cost, created_at
		FROM cost_file_lines
		WHERE id = $1
	`, id).Scan(&line.ID, &line.ProductID, &line.MaterialID, &line.LineNo,
		&line.QuantityPerUnit, &line.Cost, &line.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cost file line: %w", err)
	}
	return &line, nil
}

func (r *costFileRepository) InsertLine(ctx context.Context, line *models.CostFileLine) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO cost_file_lines (product_id, material_id, line_no, quantity_per_unit, cost)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, line.ProductID, line.MaterialID, line.LineNo, line.QuantityPerUnit, line.Cost).Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert cost file line: %w", err)
	}
	return nil
}

func (r *costFileRepository) UpdateLine(ctx context.Context, line *models.CostFileLine) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE cost_file_lines
		SET material_id = $1, quantity_per_unit = $2, cost = $3
		WHERE id = $4
	`, line.MaterialID, line.QuantityPerUnit, line.Cost, line.ID)
	if err != nil {
		return fmt.Errorf("failed to update cost file line: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no cost file line found with id %d", line.ID)
	}
	return nil
}

func (r *costFileRepository) DeleteLine(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cost_file_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete cost file line: %w", err)
	}
	return nil
}

func (r *costFileRepository) DeleteByProduct(ctx context.Context, productID int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM cost_file_lines WHERE product_id = $1`, productID)
	if err != nil {
		return fmt.Errorf("failed to delete cost file: %w", err)
	}
	return nil
}

func (r *costFileRepository) NextLineNo(ctx context.Context, productID int) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(line_no), 0) + 1 FROM cost_file_lines WHERE product_id = $1
	`, productID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to get next line number: %w", err)
	}
	return next, nil
}
