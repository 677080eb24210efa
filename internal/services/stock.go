package services

import (
	"context"

	"github.com/shopspring/decimal"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// stockTx bundles the entity repositories bound to one transaction. Every
// mutation locks the entity row first so the sufficiency check and the
// adjustment happen under the same row lock.
type stockTx struct {
	materials repository.MaterialRepository
	products  repository.ProductRepository
	ledger    repository.LedgerRepository
}

func newStockTx(tx repository.DBTX, materials repository.MaterialRepository,
	products repository.ProductRepository, ledger repository.LedgerRepository) *stockTx {
	return &stockTx{
		materials: materials.WithTx(tx),
		products:  products.WithTx(tx),
		ledger:    ledger.WithTx(tx),
	}
}

func (s *stockTx) lockMaterial(ctx context.Context, id int) (*models.Material, error) {
	material, err := s.materials.LockByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load material", err)
	}
	if material == nil {
		return nil, apperr.NotFound("material %d not found", id)
	}
	return material, nil
}

func (s *stockTx) lockProduct(ctx context.Context, id int) (*models.Product, error) {
	product, err := s.products.LockByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load product", err)
	}
	if product == nil {
		return nil, apperr.NotFound("product %d not found", id)
	}
	return product, nil
}

// materialWarehouseIn adds purchased quantity to the warehouse.
func (s *stockTx) materialWarehouseIn(ctx context.Context, id int, qty decimal.Decimal) (*models.Material, error) {
	material, err := s.lockMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.materials.AdjustStock(ctx, id, qty, decimal.Zero); err != nil {
		return nil, apperr.Internal("failed to adjust material stock", err)
	}
	return material, nil
}

// materialWarehouseOut removes quantity from the warehouse, failing when the
// warehouse does not hold enough.
func (s *stockTx) materialWarehouseOut(ctx context.Context, id int, qty decimal.Decimal) (*models.Material, error) {
	material, err := s.lockMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if material.WarehouseQty.LessThan(qty) {
		return nil, apperr.Validation("insufficient warehouse stock for %s: have %s, need %s",
			material.Name, material.WarehouseQty.String(), qty.String())
	}
	if err := s.materials.AdjustStock(ctx, id, qty.Neg(), decimal.Zero); err != nil {
		return nil, apperr.Internal("failed to adjust material stock", err)
	}
	return material, nil
}

// materialWarehouseReverse undoes a warehouse movement without a sufficiency
// check. Reversals restore the pre-movement state even if later movements
// already spent the quantity.
func (s *stockTx) materialWarehouseReverse(ctx context.Context, id int, delta decimal.Decimal) error {
	if _, err := s.lockMaterial(ctx, id); err != nil {
		return err
	}
	if err := s.materials.AdjustStock(ctx, id, delta, decimal.Zero); err != nil {
		return apperr.Internal("failed to adjust material stock", err)
	}
	return nil
}

// materialToFactory moves quantity from warehouse to factory under one lock.
func (s *stockTx) materialToFactory(ctx context.Context, id int, qty decimal.Decimal) (*models.Material, error) {
	material, err := s.lockMaterial(ctx, id)
	if err != nil {
		return nil, err
	}
	if material.WarehouseQty.LessThan(qty) {
		return nil, apperr.Validation("insufficient warehouse stock for %s: have %s, need %s",
			material.Name, material.WarehouseQty.String(), qty.String())
	}
	if err := s.materials.AdjustStock(ctx, id, qty.Neg(), qty); err != nil {
		return nil, apperr.Internal("failed to adjust material stock", err)
	}
	return material, nil
}

// materialFromFactory undoes a warehouse-to-factory transfer. No sufficiency
// check: reversals always restore the pre-dispatch state.
func (s *stockTx) materialFromFactory(ctx context.Context, id int, qty decimal.Decimal) error {
	if _, err := s.lockMaterial(ctx, id); err != nil {
		return err
	}
	if err := s.materials.AdjustStock(ctx, id, qty, qty.Neg()); err != nil {
		return apperr.Internal("failed to adjust material stock", err)
	}
	return nil
}

// materialFactoryConsume books theoretical production consumption against the
// factory quantity. The figure is derived from the BOM, so it may legitimately
// drive the factory balance negative when real yield differs.
func (s *stockTx) materialFactoryConsume(ctx context.Context, id int, qty decimal.Decimal) error {
	if _, err := s.lockMaterial(ctx, id); err != nil {
		return err
	}
	if err := s.materials.AdjustStock(ctx, id, decimal.Zero, qty.Neg()); err != nil {
		return apperr.Internal("failed to adjust material stock", err)
	}
	return nil
}

// productIn adds finished units to product stock.
func (s *stockTx) productIn(ctx context.Context, id int, qty decimal.Decimal) (*models.Product, error) {
	product, err := s.lockProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.products.AdjustStock(ctx, id, qty); err != nil {
		return nil, apperr.Internal("failed to adjust product stock", err)
	}
	return product, nil
}

// productOut removes finished units, failing when stock is insufficient.
func (s *stockTx) productOut(ctx context.Context, id int, qty decimal.Decimal) (*models.Product, error) {
	product, err := s.lockProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.StockQty.LessThan(qty) {
		return nil, apperr.Validation("insufficient stock for %s: have %s, need %s",
			product.Name, product.StockQty.String(), qty.String())
	}
	if err := s.products.AdjustStock(ctx, id, qty.Neg()); err != nil {
		return nil, apperr.Internal("failed to adjust product stock", err)
	}
	return product, nil
}

// productReverse undoes a product movement without a sufficiency check.
func (s *stockTx) productReverse(ctx context.Context, id int, qty decimal.Decimal) error {
	if _, err := s.lockProduct(ctx, id); err != nil {
		return err
	}
	if err := s.products.AdjustStock(ctx, id, qty); err != nil {
		return apperr.Internal("failed to adjust product stock", err)
	}
	return nil
}
