package services

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/database"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// CostFileService maintains bill-of-materials files. Line cost is always
// rederived from the material's current list price at write time.
type CostFileService interface {
	GetByProduct(ctx context.Context, productID int) (*models.CostFile, error)
	Replace(ctx context.Context, productID int, req *models.SaveCostFileRequest) (*models.CostFile, error)
	AddLine(ctx context.Context, productID int, req *models.AddCostFileLineRequest) (*models.CostFileLine, error)
	UpdateLine(ctx context.Context, lineID int, req *models.UpdateCostFileLineRequest) (*models.CostFileLine, error)
	DeleteLine(ctx context.Context, lineID int) error
	DeleteByProduct(ctx context.Context, productID int) error
}

type costFileService struct {
	db        *database.PostgresDB
	costFiles repository.CostFileRepository
	materials repository.MaterialRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

func NewCostFileService(db *database.PostgresDB, costFiles repository.CostFileRepository,
	materials repository.MaterialRepository, products repository.ProductRepository,
	logger *zap.Logger) CostFileService {
	return &costFileService{
		db:        db,
		costFiles: costFiles,
		materials: materials,
		products:  products,
		logger:    logger,
	}
}

func (s *costFileService) GetByProduct(ctx context.Context, productID int) (*models.CostFile, error) {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to load product", err)
	}
	if product == nil {
		return nil, apperr.NotFound("product %d not found", productID)
	}

	lines, err := s.costFiles.GetByProduct(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to load cost file", err)
	}

	file := &models.CostFile{ProductID: productID, ProductName: product.Name}
	for _, line := range lines {
		file.Lines = append(file.Lines, *line)
		file.TotalCost = file.TotalCost.Add(line.Cost)
	}
	return file, nil
}

// Replace swaps the whole cost file: every existing line is removed and the
// submitted rows reinserted in order. Blank rows are skipped silently.
func (s *costFileService) Replace(ctx context.Context, productID int, req *models.SaveCostFileRequest) (*models.CostFile, error) {
	logger := s.logger.With(
		zap.String("operation", "replace_cost_file"),
		zap.Int("product_id", productID),
		zap.Int("submitted_lines", len(req.Lines)),
	)

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	costFiles := s.costFiles.WithTx(tx)
	materials := s.materials.WithTx(tx)
	products := s.products.WithTx(tx)

	product, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to load product", err)
	}
	if product == nil {
		return nil, apperr.NotFound("product %d not found", productID)
	}

	if err := costFiles.DeleteByProduct(ctx, productID); err != nil {
		return nil, apperr.Internal("failed to clear cost file", err)
	}

	lineNo := 0
	for _, row := range req.Lines {
		if row.MaterialID <= 0 || !row.QuantityPerUnit.IsPositive() {
			continue
		}
		cost, err := s.lineCost(ctx, materials, row.MaterialID, row.QuantityPerUnit)
		if err != nil {
			return nil, err
		}

		lineNo++
		line := &models.CostFileLine{
			ProductID:       productID,
			MaterialID:      row.MaterialID,
			LineNo:          lineNo,
			QuantityPerUnit: row.QuantityPerUnit,
			Cost:            cost,
		}
		if err := costFiles.InsertLine(ctx, line); err != nil {
			return nil, apperr.Internal("failed to insert cost file line", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ cost file replaced", zap.Int("lines", lineNo))
	return s.GetByProduct(ctx, productID)
}

func (s *costFileService) AddLine(ctx context.Context, productID int, req *models.AddCostFileLineRequest) (*models.CostFileLine, error) {
	logger := s.logger.With(
		zap.String("operation", "add_cost_file_line"),
		zap.Int("product_id", productID),
		zap.Int("material_id", req.MaterialID),
	)

	if !req.QuantityPerUnit.IsPositive() {
		return nil, apperr.Validation("quantity per unit must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	costFiles := s.costFiles.WithTx(tx)
	materials := s.materials.WithTx(tx)
	products := s.products.WithTx(tx)

	product, err := products.GetByID(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to load product", err)
	}
	if product == nil {
		return nil, apperr.NotFound("product %d not found", productID)
	}

	cost, err := s.lineCost(ctx, materials, req.MaterialID, req.QuantityPerUnit)
	if err != nil {
		return nil, err
	}

	lineNo, err := costFiles.NextLineNo(ctx, productID)
	if err != nil {
		return nil, apperr.Internal("failed to get next line number", err)
	}

	line := &models.CostFileLine{
		ProductID:       productID,
		MaterialID:      req.MaterialID,
		LineNo:          lineNo,
		QuantityPerUnit: req.QuantityPerUnit,
		Cost:            cost,
	}
	if err := costFiles.InsertLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to insert cost file line", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ cost file line added", zap.Int("line_id", line.ID))
	return line, nil
}

func (s *costFileService) UpdateLine(ctx context.Context, lineID int, req *models.UpdateCostFileLineRequest) (*models.CostFileLine, error) {
	logger := s.logger.With(zap.String("operation", "update_cost_file_line"), zap.Int("line_id", lineID))

	if !req.QuantityPerUnit.IsPositive() {
		return nil, apperr.Validation("quantity per unit must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	costFiles := s.costFiles.WithTx(tx)
	materials := s.materials.WithTx(tx)

	line, err := costFiles.GetLineByID(ctx, lineID)
	if err != nil {
		return nil, apperr.Internal("failed to load cost file line", err)
	}
	if line == nil {
		return nil, apperr.NotFound("cost file line %d not found", lineID)
	}

	cost, err := s.lineCost(ctx, materials, line.MaterialID, req.QuantityPerUnit)
	if err != nil {
		return nil, err
	}

	line.QuantityPerUnit = req.QuantityPerUnit
	line.Cost = cost
	if err := costFiles.UpdateLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to update cost file line", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ cost file line updated")
	return line, nil
}

func (s *costFileService) DeleteLine(ctx context.Context, lineID int) error {
	line, err := s.costFiles.GetLineByID(ctx, lineID)
	if err != nil {
		return apperr.Internal("failed to load cost file line", err)
	}
	if line == nil {
		return apperr.NotFound("cost file line %d not found", lineID)
	}
	if err := s.costFiles.DeleteLine(ctx, lineID); err != nil {
		return apperr.Internal("failed to delete cost file line", err)
	}
	s.logger.Info("✅ cost file line deleted",
		zap.String("operation", "delete_cost_file_line"), zap.Int("line_id", lineID))
	return nil
}

func (s *costFileService) DeleteByProduct(ctx context.Context, productID int) error {
	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return apperr.Internal("failed to load product", err)
	}
	if product == nil {
		return apperr.NotFound("product %d not found", productID)
	}
	if err := s.costFiles.DeleteByProduct(ctx, productID); err != nil {
		return apperr.Internal("failed to delete cost file", err)
	}
	s.logger.Info("✅ cost file deleted",
		zap.String("operation", "delete_cost_file"), zap.Int("product_id", productID))
	return nil
}

// lineCost derives a line's cost from the material's current list price.
func (s *costFileService) lineCost(ctx context.Context, materials repository.MaterialRepository,
	materialID int, qtyPerUnit decimal.Decimal) (decimal.Decimal, error) {
	material, err := materials.GetByID(ctx, materialID)
	if err != nil {
		return decimal.Zero, apperr.Internal("failed to load material", err)
	}
	if material == nil {
		return decimal.Zero, apperr.NotFound("material %d not found", materialID)
	}
	return material.ListPrice.Mul(qtyPerUnit), nil
}
