package services

import (
	"context"

	"go.uber.org/zap"

	"radiator-erp/internal/apperr"
	"radiator-erp/internal/database"
	"radiator-erp/internal/models"
	"radiator-erp/internal/repository"
)

// SalesService mirrors PurchaseService for radiator sales. Sales move product
// stock OUT, so every create and the re-apply half of every update check
// sufficiency under the product row lock.
type SalesService interface {
	List(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error)
	ListGrouped(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error)
	Create(ctx context.Context, req *models.SaleRequest) (*models.SaleLine, error)
	CreateBatch(ctx context.Context, req *models.BatchSaleRequest) (*models.BatchResult, error)
	Update(ctx context.Context, id int, req *models.SaleRequest) (*models.SaleLine, error)
	Delete(ctx context.Context, id int) error
	InvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error)
	DocumentNumbers(ctx context.Context) ([]string, error)
	DateRange(ctx context.Context) (*models.DateRange, error)
	Customers(ctx context.Context) ([]*models.PartyRef, error)
}

type salesService struct {
	db        *database.PostgresDB
	sales     repository.SalesRepository
	materials repository.MaterialRepository
	products  repository.ProductRepository
	ledger    repository.LedgerRepository
	logger    *zap.Logger
}

func NewSalesService(db *database.PostgresDB, sales repository.SalesRepository,
	materials repository.MaterialRepository, products repository.ProductRepository,
	ledger repository.LedgerRepository, logger *zap.Logger) SalesService {
	return &salesService{
		db:        db,
		sales:     sales,
		materials: materials,
		products:  products,
		ledger:    ledger,
		logger:    logger,
	}
}

func (s *salesService) List(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error) {
	list, summary, err := s.sales.ListMovements(ctx, filter)
	if err != nil {
		return nil, nil, apperr.Internal("failed to list sales", err)
	}
	return list, summary, nil
}

func (s *salesService) ListGrouped(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error) {
	list, summary, err := s.sales.ListInvoices(ctx, filter)
	if err != nil {
		return nil, nil, apperr.Internal("failed to list sales invoices", err)
	}
	return list, summary, nil
}

func (s *salesService) Create(ctx context.Context, req *models.SaleRequest) (*models.SaleLine, error) {
	logger := s.logger.With(
		zap.String("operation", "create_sale"),
		zap.Int("customer_id", req.CustomerID),
		zap.Int("product_id", req.ProductID),
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
	sales := s.sales.WithTx(tx)

	if _, err := st.productOut(ctx, req.ProductID, req.Quantity); err != nil {
		logger.Error("❌ stock update failed", zap.Error(err))
		return nil, err
	}

	invoiceID, err := s.upsertHeader(ctx, sales, req.DocumentNo, req.CustomerID, req.Date)
	if err != nil {
		return nil, err
	}

	line := &models.SaleLine{
		InvoiceID:  &invoiceID,
		CustomerID: req.CustomerID,
		ProductID:  req.ProductID,
		Quantity:   req.Quantity,
		UnitPrice:  req.UnitPrice,
		DocumentNo: req.DocumentNo,
		LineDate:   req.Date,
	}
	if err := sales.InsertLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to insert sale line", err)
	}

	if err := st.ledger.Insert(ctx, saleLedgerRow(line)); err != nil {
		return nil, apperr.Internal("failed to insert ledger row", err)
	}

	if _, err := sales.RefreshInvoice(ctx, invoiceID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ sale created", zap.Int("line_id", line.ID), zap.Int("invoice_id", invoiceID))
	return line, nil
}

func (s *salesService) CreateBatch(ctx context.Context, req *models.BatchSaleRequest) (*models.BatchResult, error) {
	logger := s.logger.With(
		zap.String("operation", "create_sale_batch"),
		zap.Int("customer_id", req.CustomerID),
		zap.Int("submitted_lines", len(req.Items)),
	)

	valid := make([]models.BatchSaleItem, 0, len(req.Items))
	for _, item := range req.Items {
		if item.ProductID > 0 && item.Quantity.IsPositive() && item.UnitPrice.IsPositive() {
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
	sales := s.sales.WithTx(tx)

	documentNo := req.DocumentNo
	if documentNo == "" {
		prefix := movementDocPrefix("ST", req.Date)
		last, err := sales.LastDocumentNo(ctx, prefix)
		if err != nil {
			return nil, apperr.Internal("failed to generate document number", err)
		}
		documentNo = nextInSequence(prefix, last, 3)
	}

	if existing, err := sales.GetInvoiceByDocument(ctx, documentNo, req.CustomerID); err != nil {
		return nil, apperr.Internal("failed to check invoice", err)
	} else if existing != nil {
		return nil, apperr.Conflict("invoice %s already exists for this customer", documentNo)
	}

	invoice := &models.SalesInvoice{DocumentNo: documentNo, CustomerID: req.CustomerID, InvoiceDate: req.Date}
	if err := sales.CreateInvoice(ctx, invoice); err != nil {
		return nil, apperr.Internal("failed to create invoice", err)
	}

	result := &models.BatchResult{InvoiceID: invoice.ID, DocumentNo: documentNo}
	for _, item := range valid {
		if _, err := st.productOut(ctx, item.ProductID, item.Quantity); err != nil {
			logger.Error("❌ batch aborted", zap.Int("product_id", item.ProductID), zap.Error(err))
			return nil, err
		}

		line := &models.SaleLine{
			InvoiceID:  &invoice.ID,
			CustomerID: req.CustomerID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			DocumentNo: documentNo,
			LineDate:   req.Date,
		}
		if err := sales.InsertLine(ctx, line); err != nil {
			return nil, apperr.Internal("failed to insert sale line", err)
		}
		if err := st.ledger.Insert(ctx, saleLedgerRow(line)); err != nil {
			return nil, apperr.Internal("failed to insert ledger row", err)
		}

		total := item.Quantity.Mul(item.UnitPrice)
		result.TotalQuantity = result.TotalQuantity.Add(item.Quantity)
		result.TotalAmount = result.TotalAmount.Add(total)
		result.Lines = append(result.Lines, models.BatchLineResult{
			LineID:    line.ID,
			ItemID:    item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Total:     total,
		})
	}

	if _, err := sales.RefreshInvoice(ctx, invoice.ID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ sale batch created",
		zap.Int("invoice_id", invoice.ID),
		zap.String("document_no", documentNo),
		zap.Int("lines", len(result.Lines)),
		zap.Int("skipped", len(req.Items)-len(valid)),
	)
	return result, nil
}

func (s *salesService) Update(ctx context.Context, id int, req *models.SaleRequest) (*models.SaleLine, error) {
	logger := s.logger.With(zap.String("operation", "update_sale"), zap.Int("line_id", id))

	if !req.Quantity.IsPositive() || !req.UnitPrice.IsPositive() {
		return nil, apperr.Validation("quantity and unit price must be positive")
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	sales := s.sales.WithTx(tx)

	line, err := sales.GetLineByID(ctx, id)
	if err != nil {
		return nil, apperr.Internal("failed to load sale line", err)
	}
	if line == nil {
		return nil, apperr.NotFound("sale %d not found", id)
	}

	// Give the old quantity back, then sell the new quantity with a fresh
	// sufficiency check against the restored balance.
	if err := st.productReverse(ctx, line.ProductID, line.Quantity); err != nil {
		return nil, err
	}
	if _, err := st.productOut(ctx, req.ProductID, req.Quantity); err != nil {
		return nil, err
	}

	oldInvoiceID := line.InvoiceID
	invoiceID, err := s.upsertHeader(ctx, sales, req.DocumentNo, req.CustomerID, req.Date)
	if err != nil {
		return nil, err
	}

	line.InvoiceID = &invoiceID
	line.CustomerID = req.CustomerID
	line.ProductID = req.ProductID
	line.Quantity = req.Quantity
	line.UnitPrice = req.UnitPrice
	line.DocumentNo = req.DocumentNo
	line.LineDate = req.Date
	if err := sales.UpdateLine(ctx, line); err != nil {
		return nil, apperr.Internal("failed to update sale line", err)
	}

	if err := st.ledger.UpdateBySource(ctx, saleLedgerRow(line)); err != nil {
		return nil, apperr.Internal("failed to update ledger row", err)
	}

	if oldInvoiceID != nil && *oldInvoiceID != invoiceID {
		if _, err := sales.RefreshInvoice(ctx, *oldInvoiceID); err != nil {
			return nil, apperr.Internal("failed to refresh invoice", err)
		}
	}
	if _, err := sales.RefreshInvoice(ctx, invoiceID); err != nil {
		return nil, apperr.Internal("failed to refresh invoice", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ sale updated", zap.Int("invoice_id", invoiceID))
	return line, nil
}

func (s *salesService) Delete(ctx context.Context, id int) error {
	logger := s.logger.With(zap.String("operation", "delete_sale"), zap.Int("line_id", id))

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return apperr.Internal("failed to begin transaction", err)
	}
	defer tx.Rollback()

	st := newStockTx(tx, s.materials, s.products, s.ledger)
	sales := s.sales.WithTx(tx)

	line, err := sales.GetLineByID(ctx, id)
	if err != nil {
		return apperr.Internal("failed to load sale line", err)
	}
	if line == nil {
		return apperr.NotFound("sale %d not found", id)
	}

	if err := st.productReverse(ctx, line.ProductID, line.Quantity); err != nil {
		return err
	}
	if err := st.ledger.DeleteBySource(ctx, models.SourceSale, line.ID); err != nil {
		return apperr.Internal("failed to delete ledger row", err)
	}
	if err := sales.DeleteLine(ctx, id); err != nil {
		return apperr.Internal("failed to delete sale line", err)
	}

	if line.InvoiceID != nil {
		if _, err := sales.RefreshInvoice(ctx, *line.InvoiceID); err != nil {
			return apperr.Internal("failed to refresh invoice", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperr.Internal("failed to commit transaction", err)
	}

	logger.Info("✅ sale deleted")
	return nil
}

func (s *salesService) InvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error) {
	detail, err := s.sales.GetInvoiceDetail(ctx, invoiceID)
	if err != nil {
		return nil, apperr.Internal("failed to load invoice", err)
	}
	if detail == nil {
		return nil, apperr.NotFound("invoice %d not found", invoiceID)
	}
	return detail, nil
}

func (s *salesService) DocumentNumbers(ctx context.Context) ([]string, error) {
	numbers, err := s.sales.ListDocumentNumbers(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list document numbers", err)
	}
	return numbers, nil
}

func (s *salesService) DateRange(ctx context.Context) (*models.DateRange, error) {
	dr, err := s.sales.GetDateRange(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to load date range", err)
	}
	return dr, nil
}

func (s *salesService) Customers(ctx context.Context) ([]*models.PartyRef, error) {
	refs, err := s.sales.ListCustomerRefs(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list customers", err)
	}
	return refs, nil
}

func (s *salesService) upsertHeader(ctx context.Context, sales repository.SalesRepository,
	documentNo string, customerID int, date string) (int, error) {
	invoice, err := sales.GetInvoiceByDocument(ctx, documentNo, customerID)
	if err != nil {
		return 0, apperr.Internal("failed to load invoice", err)
	}
	if invoice != nil {
		return invoice.ID, nil
	}

	invoice = &models.SalesInvoice{DocumentNo: documentNo, CustomerID: customerID, InvoiceDate: date}
	if err := sales.CreateInvoice(ctx, invoice); err != nil {
		if isUniqueViolation(err) {
			return 0, apperr.Conflict("invoice %s already belongs to another customer", documentNo)
		}
		return 0, apperr.Internal("failed to create invoice", err)
	}
	return invoice.ID, nil
}

func saleLedgerRow(line *models.SaleLine) *models.StockMovement {
	return &models.StockMovement{
		ItemKind:   models.ItemProduct,
		ProductID:  &line.ProductID,
		Direction:  models.DirectionOut,
		Quantity:   line.Quantity,
		UnitPrice:  line.UnitPrice,
		SourceKind: models.SourceSale,
		SourceID:   line.ID,
	}
}
