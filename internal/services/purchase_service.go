package services

import (
	"context"

	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/database"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// PurchaseService implements the raw-material purchase operations. Every
// mutation keeps the line, its ledger row, the warehouse quantity and the
// invoice header consistent inside one transaction.
type PurchaseService interface {
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error)
	ListGrouped(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error)
	Create(ctx context.Context, req *models.PurchaseRequest) (*models.PurchaseLine, error)
	CreateBatch(ctx context.Context, req *models.BatchPurchaseRequest) (*models.BatchResult, error)
	Update(ctx context.Context, id int, req *models.PurchaseRequest) (*models.PurchaseLine, error)
	Delete(ctx context.Context, id int) error
	InvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error)
	DocumentNumbers(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (*models.DateRange, error)
	Suppliers(ctx context.Context) ([]*models.PartyRef, error)
}

type purchaseService struct {
	db        *database.PostgresDB
	purchases repository.PurchaseRepository
	materials repository.MaterialRepository
	products  repository.ProductRepository
	ledger    repository.LedgerRepository
	logger    *zap.Logger
}

func NewPurchaseService(db *database.PostgresDB, purchases repository.PurchaseRepository,
	materials repository.MaterialRepository, products repository.ProductRepository,
	ledger repository.LedgerRepository, logger *zap.Logger) PurchaseService {
	return &purchaseService{
		db:        db,
		purchases: purchases,
		materials: materials,
		products:  products,
		ledger:    ledger,
		logger:    logger,
	}
}

func (s *purchaseService) List(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error) {
	list, summary, err := s.purchases.ListMovements(ctx, filter)
	if err != nil {
		return nil, nil, apperr.Internal("failed to list purchases", err)
	}
	return list, summary, nil
}

func (s *purchaseService) ListGrouped(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error) {
	list, summary, err := s.purchases.ListInvoices(ctx, filter)
	if err != nil {
		return nil, nil, apperr.Internal("failed to list purchase invoices", err)
	}
	return list, summary, nil
}

func (s *purchaseService) Create(ctx context.Context, req *models.PurchaseRequest) (*models.PurchaseLine, error) {
	logger := s.logger.With(
		zap.String("operation", "create_purchase"),
		zap.Int("supplier_id", req.SupplierID),
		zap.Int("material_id", req.MaterialID),
		zap.String("document_no", req.DocumentNo),
	)

	if !req.Quantity.IsPositive() || !req.UnitPrice.IsPositive() {
		return nil, apperr.Validation("quantity and unit price must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	purchases := s.purchases.WithTx(tx)

	if _, err := st.materialWarehouseIn(ctx, req.MaterialID, req.Quantity); err != nil {
		logger.Error("❌ stock update failed", zap.Error(err))
		return nil, err
	}

	invoiceID, err := s.upsertHeader(ctx, purchases, req.DocumentNo, req.SupplierID, req.Date)
	if err != nil {
		return nil, err
	}

	line := &models.PurchaseLine{
		InvoiceID:  &invoiceID,
		SupplierID: req.SupplierID,
		MaterialID: req.MaterialID,
		Quantity:   req.Quantity,
		Unit:       defaultUnit(req.Unit),
		UnitPrice:  req.UnitPrice,
		DocumentNo: req.DocumentNo,
		LineDate:   req.Date,
	}
	if err := purchases.InsertLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to insert purchase line", err)
	}

	if err := st.ledger.Insert(ctx, purchaseLedgerRow(line)); err != nil {
		return nil, apperr.Internal("failed to insert ledger row", err)
	}

	if _, err := purchases.RefreshInvoice(ctx, invoiceID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ purchase created", zap.Int("line_id", line.ID), zap.Int("invoice_id", invoiceID))
	return line, nil
}

func (s *purchaseService) CreateBatch(ctx context.Context, req *models.BatchPurchaseRequest) (*models.BatchResult, error) {
	logger := s.logger.With(
		zap.String("operation", "create_purchase_batch"),
		zap.Int("supplier_id", req.SupplierID),
		zap.Int("submitted_lines", len(req.Items)),
	)

	valid := make([]models.BatchPurchaseItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.MaterialID > 0 && item.Quantity.IsPositive() && item.UnitPrice.IsPositive() {
			valid = append(valid, item)
		}
	}
	if len(valid) == 0 {
		return nil, apperr.Validation("no valid lines in batch")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	purchases := s.purchases.WithTx(tx)

	documentNo := req.DocumentNo
	if documentNo == "" {
		prefix := movementDocPrefix("SF", req.Date)
		last, err := purchases.LastDocumentNo(ctx, prefix)
		if err != nil {
			return nil, apperr.Internal("failed to generate document number", err)
		}
		documentNo = nextInSequence(prefix, last, 3)
	}

	if existing, err := purchases.GetInvoiceByDocument(ctx, documentNo, req.SupplierID); err != nil {
		return nil, apperr.Internal("failed to check invoice", err)
	} else if existing != nil {
		return nil, apperr.Conflict("invoice %s already exists for this supplier", documentNo)
	}

	invoice := &models.PurchaseInvoice{DocumentNo: documentNo, SupplierID: req.SupplierID, InvoiceDate: req.Date}
	if err := purchases.CreateInvoice(ctx, invoice); err != nil {
		return nil, apperr.Internal("failed to create invoice", err)
	}

	result := &models.BatchResult{InvoiceID: invoice.ID, DocumentNo: documentNo}
	for _, item := range valid {
		if _, err := st.materialWarehouseIn(ctx, item.MaterialID, item.Quantity); err != nil {
			logger.Error("❌ batch aborted", zap.Int("material_id", item.MaterialID), zap.Error(err))
			return nil, err
		}

		line := &models.PurchaseLine{
			InvoiceID:  &invoice.ID,
			SupplierID: req.SupplierID,
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			Unit:       defaultUnit(item.Unit),
			UnitPrice:  item.UnitPrice,
			DocumentNo: documentNo,
			LineDate:   req.Date,
		}
		if err := purchases.InsertLine(ctx, line); err != nil {
			return nil, apperr.Internal("failed to insert purchase line", err)
		}
		if err := st.ledger.Insert(ctx, purchaseLedgerRow(line)); err != nil {
			return nil, apperr.Internal("failed to insert ledger row", err)
		}

		total := item.Quantity.Mul(item.UnitPrice)
		result.TotalQuantity = result.TotalQuantity.Add(item.Quantity)
		result.TotalAmount = result.TotalAmount.Add(total)
		result.Lines = append(result.Lines, models.BatchLineResult{
			LineID:    line.ID,
			ItemID:    item.MaterialID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     total,
		})
	}

	if _, err := purchases.RefreshInvoice(ctx, invoice.ID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ purchase batch created",
		zap.Int("invoice_id", invoice.ID),
		zap.String("document_no", documentNo),
		zap.Int("lines", len(result.Lines)),
		zap.Int("skipped", len(req.Items)-len(valid)),
	)
	return result, nil
}

func (s *purchaseService) Update(ctx context.Context, id int, req *models.PurchaseRequest) (*models.PurchaseLine, error) {
	logger := s.logger.With(zap.String("operation", "update_purchase"), zap.Int("line_id", id))

	if !req.Quantity.IsPositive() || !req.UnitPrice.IsPositive() {
		return nil, apperr.Validation("quantity and unit price must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	purchases := s.purchases.WithTx(tx)

	line, err := purchases.GetLineByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load purchase line", err)
	}
	if line == nil {
		return nil, apperr.NotFound("purchase %d not found", id)
	}

	// Reverse the old movement, then apply the new values.
	if err := st.materialWarehouseReverse(ctx, line.MaterialID, line.Quantity.Neg()); err != nil {
		return nil, err
	}
	if _, err := st.materialWarehouseIn(ctx, req.MaterialID, req.Quantity); err != nil {
		return nil, err
	}

	oldInvoiceID := line.InvoiceID
	invoiceID, err := s.upsertHeader(ctx, purchases, req.DocumentNo, req.SupplierID, req.Date)
	if err != nil {
		return nil, err
	}

	line.InvoiceID = &invoiceID
	line.SupplierID = req.SupplierID
	line.MaterialID = req.MaterialID
	line.Quantity = req.Quantity
	line.Unit = defaultUnit(req.Unit)
	line.UnitPrice = req.UnitPrice
	line.DocumentNo = req.DocumentNo
	line.LineDate = req.Date
	if err := purchases.UpdateLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to update purchase line", err)
	}

	if err := st.ledger.UpdateBySource(ctx, purchaseLedgerRow(line)); err != nil {
		return nil, apperr.Internal("failed to update ledger row", err)
	}

	if oldInvoiceID != nil && *oldInvoiceID != invoiceID {
		if _, err := purchases.RefreshInvoice(ctx, *oldInvoiceID); err != nil {
			return nil, apperr.Internal("failed to refresh invoice", err)
		}
	}
	if _, err := purchases.RefreshInvoice(ctx, invoiceID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ purchase updated", zap.Int("invoice_id", invoiceID))
	return line, nil
}

func (s *purchaseService) Delete(ctx context.Context, id int) error {
	logger := s.logger.With(zap.String("operation", "delete_purchase"), zap.Int("line_id", id))

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	purchases := s.purchases.WithTx(tx)

	line, err := purchases.GetLineByID(ctx, id)
	if err != nil {
		return apperr.Internal("failed to load purchase line", err)
	}
	if line == nil {
		return apperr.NotFound("purchase %d not found", id)
	}

	if err := st.materialWarehouseReverse(ctx, line.MaterialID, line.Quantity.Neg()); err != nil {
		return err
	}
	if err := st.ledger.DeleteBySource(ctx, models.SourcePurchase, line.ID); err != nil {
		return apperr.Internal("failed to delete ledger row", err)
	}
	if err := purchases.DeleteLine(ctx, id); err != nil {
		return apperr.Internal("failed to delete purchase line", err)
	}

	if line.InvoiceID != nil {
		if _, err := purchases.RefreshInvoice(ctx, *line.InvoiceID); err != nil {
			return apperr.Internal("failed to refresh invoice", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ purchase deleted")
	return nil
}

func (s *purchaseService) InvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error) {
	detail, err := s.purchases.GetInvoiceDetail(ctx, invoiceID)
	if err != nil {
		return nil, apperr.Internal("failed to load invoice", err)
	}
	if detail == nil {
		return nil, apperr.NotFound("invoice %d not found", invoiceID)
	}
	return detail, nil
}

func (s *purchaseService) DocumentNumbers(ctx context.Context) ([]string, error) {
	numbers, err := s.purchases.ListDocumentNumbers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list document numbers", err)
	}
	return numbers, nil
}

func (s *purchaseService) DateRange(ctx context.Context) (*models.DateRange, error) {
	dr, err := s.purchases.GetDateRange(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load date range", err)
	}
	return dr, nil
}

func (s *purchaseService) Suppliers(ctx context.Context) ([]*models.PartyRef, error) {
	refs, err := s.purchases.ListSupplierRefs(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list suppliers", err)
	}
	return refs, nil
}

// upsertHeader finds the invoice for (document_no, supplier) or creates it.
func (s *purchaseService) upsertHeader(ctx context.Context, purchases repository.PurchaseRepository,
	documentNo string, supplierID int, date string) (int, error) {
	invoice, err := purchases.GetInvoiceByDocument(ctx, documentNo, supplierID)
	if err != nil {
		return 0, apperr.Internal("failed to load invoice", err)
	}
	if invoice != nil {
		return invoice.ID, nil
	}

	invoice = &models.PurchaseInvoice{DocumentNo: documentNo, SupplierID: supplierID, InvoiceDate: date}
	if err := purchases.CreateInvoice(ctx, invoice); err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.Conflict("invoice %s already belongs to another supplier", documentNo)
		}
		return 0, apperr.Internal("failed to create invoice", err)
	}
	return invoice.ID, nil
}

func purchaseLedgerRow(line *models.PurchaseLine) *models.StockMovement {
	return &models.StockMovement{
		ItemKind:   models.ItemMaterial,
		MaterialID: &line.MaterialID,
		Direction:  models.DirectionIn,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		SourceKind: models.SourcePurchase,
		SourceID:   line.ID,
	}
}

func defaultUnit(unit string) string {
	if unit == "" {
		return "kg"
	}
	return unit
}
