package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radiator-erp/internal/models"
)

// PurchaseRepository persists raw-material purchase lines and their invoice
// headers. Header totals are always recomputed from the child lines.
type PurchaseRepository interface {
	WithTx(tx DBTX) PurchaseRepository

	InsertLine(ctx context.Context, line *models.PurchaseLine) error
	GetLineByID(ctx context.Context, id int) (*models.PurchaseLine, error)
	UpdateLine(ctx context.Context, line *models.PurchaseLine) error
	DeleteLine(ctx context.Context, id int) error

	GetInvoiceByDocument(ctx context.Context, documentNo string, supplierID int) (*models.PurchaseInvoice, error)
	CreateInvoice(ctx context.Context, inv *models.PurchaseInvoice) error
	// RefreshInvoice recomputes the header totals from its lines and deletes
	// the header when no line remains. Returns true if the header survived.
	RefreshInvoice(ctx context.Context, invoiceID int) (bool, error)

	ListMovements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error)
	ListInvoices(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error)
	GetInvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error)

	ListDocumentNumbers(ctx context.Context) ([]string, error)
	GetDateRange(ctx context.Context) (*models.DateRange, error)
	// LastDocumentNo returns the highest generated document number with the
	// given prefix, or "" when none exists yet.
	LastDocumentNo(ctx context.Context, prefix string) (string, error)

	ListSupplierRefs(ctx context.Context) ([]*models.PartyRef, error)
}

type purchaseRepository struct {
	db DBTX
}

func NewPurchaseRepository(db DBTX) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) WithTx(tx DBTX) PurchaseRepository {
	return &purchaseRepository{db: tx}
}

func (r *purchaseRepository) InsertLine(ctx context.Context, line *models.PurchaseLine) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO purchase_lines
		(invoice_id, supplier_id, material_id, quantity, unit, unit_price, document_no, line_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, line.InvoiceID, line.SupplierID, line.MaterialID, line.Quantity,
		line.Unit, line.UnitPrice, line.DocumentNo, line.LineDate,
	).Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert purchase line: %w", err)
	}
	return nil
}

func (r *purchaseRepository) GetLineByID(ctx context.Context, id int) (*models.PurchaseLine, error) {
	var line models.PurchaseLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, supplier_id, material_id, quantity, unit, unit_price,
		       COALESCE(document_no, ''), line_date::text, created_at
		FROM purchase_lines
		WHERE id = $1
	`, id).Scan(
		&line.ID, &line.InvoiceID, &line.SupplierID, &line.MaterialID, &line.Quantity,
		&line.Unit, &line.UnitPrice, &line.DocumentNo, &line.LineDate, &line.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase line: %w", err)
	}
	return &line, nil
}

func (r *purchaseRepository) UpdateLine(ctx context.Context, line *models.PurchaseLine) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE purchase_lines
		SET invoice_id = $1, supplier_id = $2, material_id = $3, quantity = $4,
		    unit = $5, unit_price = $6, document_no = $7, line_date = $8
		WHERE id = $9
	`, line.InvoiceID, line.SupplierID, line.MaterialID, line.Quantity,
		line.Unit, line.UnitPrice, line.DocumentNo, line.LineDate, line.ID)
	if err != nil {
		return fmt.Errorf("failed to update purchase line: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no purchase line found with id %d", line.ID)
	}
	return nil
}

func (r *purchaseRepository) DeleteLine(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM purchase_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete purchase line: %w", err)
	}
	return nil
}

func (r *purchaseRepository) GetInvoiceByDocument(ctx context.Context, documentNo string, supplierID int) (*models.PurchaseInvoice, error) {
	var inv models.PurchaseInvoice
	err := r.db.QueryRowContext(ctx, `
		SELECT id, document_no, supplier_id, invoice_date::text, total_quantity, total_amount, created_at
		FROM purchase_invoices
		WHERE document_no = $1 AND supplier_id = $2
	`, documentNo, supplierID).Scan(
		&inv.ID, &inv.DocumentNo, &inv.SupplierID, &inv.InvoiceDate,
		&inv.TotalQuantity, &inv.TotalAmount, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase invoice: %w", err)
	}
	return &inv, nil
}

func (r *purchaseRepository) CreateInvoice(ctx context.Context, inv *models.PurchaseInvoice) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO purchase_invoices (document_no, supplier_id, invoice_date, total_quantity, total_amount)
		VALUES ($1, $2, $3, 0, 0)
		RETURNING id, created_at
	`, inv.DocumentNo, inv.SupplierID, inv.InvoiceDate).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create purchase invoice: %w", err)
	}
	return nil
}

func (r *purchaseRepository) RefreshInvoice(ctx context.Context, invoiceID int) (bool, error) {
	var lineCount int
	err := r.db.QueryRowContext(ctx, `
		UPDATE purchase_invoices inv
		SET total_quantity = agg.qty, total_amount = agg.amount
		FROM (
			SELECT COALESCE(SUM(quantity), 0) AS qty,
			       COALESCE(SUM(quantity * unit_price), 0) AS amount,
			       COUNT(*) AS line_count
			FROM purchase_lines
			WHERE invoice_id = $1
		) agg
		WHERE inv.id = $1
		RETURNING agg.line_count
	`, invoiceID).Scan(&lineCount)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to refresh purchase invoice: %w", err)
	}

	if lineCount == 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM purchase_invoices WHERE id = $1`, invoiceID); err != nil {
			return false, fmt.Errorf("failed to delete empty purchase invoice: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func purchaseFilter(filter *models.MovementFilter) *whereBuilder {
	w := &whereBuilder{}
	if filter == nil {
		return w
	}
	if filter.FromDate != "" {
		w.add("pl.line_date >= ?", filter.FromDate)
	}
	if filter.ToDate != "" {
		w.add("pl.line_date <= ?", filter.ToDate)
	}
	w.addIDList("pl.supplier_id", filter.PartyIDs)
	w.addIDList("pl.material_id", filter.ItemIDs)
	if filter.DocumentNo != "" {
		w.add("pl.document_no ILIKE ?", "%"+filter.DocumentNo+"%")
	}
	return w
}

func (r *purchaseRepository) ListMovements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error) {
	w := purchaseFilter(filter)

	query := `
		SELECT pl.id, pl.line_date::text, s.name, m.name, pl.quantity, pl.unit,
		       pl.unit_price, pl.quantity * pl.unit_price, COALESCE(pl.document_no, ''), pl.invoice_id
		FROM purchase_lines pl
		JOIN suppliers s ON s.id = pl.supplier_id
		JOIN materials m ON m.id = pl.material_id` + w.clause() + `
		ORDER BY pl.line_date DESC, pl.id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	var list []*models.MovementRow
	summary := &models.MovementSummary{}
	for rows.Next() {
		var row models.MovementRow
		err := rows.Scan(
			&row.ID, &row.Date, &row.PartyName, &row.ItemName, &row.Quantity,
			&row.Unit, &row.UnitPrice, &row.TotalAmount, &row.DocumentNo, &row.InvoiceID,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		summary.TotalQuantity = summary.TotalQuantity.Add(row.Quantity)
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
		list = append(list, &row)
	}
	return list, summary, rows.Err()
}

func (r *purchaseRepository) ListInvoices(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error) {
	w := &whereBuilder{}
	if filter != nil {
		if filter.FromDate != "" {
			w.add("inv.invoice_date >= ?", filter.FromDate)
		}
		if filter.ToDate != "" {
			w.add("inv.invoice_date <= ?", filter.ToDate)
		}
		w.addIDList("inv.supplier_id", filter.PartyIDs)
		if filter.DocumentNo != "" {
			w.add("inv.document_no ILIKE ?", "%"+filter.DocumentNo+"%")
		}
	}

	query := `
		SELECT inv.id, inv.document_no, inv.invoice_date::text, s.name,
		       inv.total_quantity, inv.total_amount,
		       COUNT(pl.id),
		       COALESCE(STRING_AGG(DISTINCT m.name, ', ' ORDER BY m.name), '')
		FROM purchase_invoices inv
		JOIN suppliers s ON s.id = inv.supplier_id
		LEFT JOIN purchase_lines pl ON pl.invoice_id = inv.id
		LEFT JOIN materials m ON m.id = pl.material_id` + w.clause() + `
		GROUP BY inv.id, s.name
		ORDER BY inv.invoice_date DESC, inv.id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list purchase invoices: %w", err)
	}
	defer rows.Close()

	var list []*models.InvoiceRow
	summary := &models.InvoiceListSummary{}
	for rows.Next() {
		var row models.InvoiceRow
		err := rows.Scan(
			&row.InvoiceID, &row.DocumentNo, &row.Date, &row.PartyName,
			&row.TotalQuantity, &row.TotalAmount, &row.LineCount, &row.ItemsSummary,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan purchase invoice: %w", err)
		}
		summary.InvoiceCount++
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
		list = append(list, &row)
	}
	return list, summary, rows.Err()
}

func (r *purchaseRepository) GetInvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error) {
	var detail models.InvoiceDetail
	err := r.db.QueryRowContext(ctx, `
		SELECT inv.id, inv.document_no, inv.invoice_date::text, s.name, s.phone, s.address,
		       inv.total_quantity, inv.total_amount
		FROM purchase_invoices inv
		JOIN suppliers s ON s.id = inv.supplier_id
		WHERE inv.id = $1
	`, invoiceID).Scan(
		&detail.InvoiceID, &detail.DocumentNo, &detail.Date, &detail.PartyName,
		&detail.PartyPhone, &detail.PartyAddress, &detail.TotalQuantity, &detail.TotalAmount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase invoice detail: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pl.id, m.name, pl.quantity, pl.unit, pl.unit_price, pl.quantity * pl.unit_price
		FROM purchase_lines pl
		JOIN materials m ON m.id = pl.material_id
		WHERE pl.invoice_id = $1
		ORDER BY pl.id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchase invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.InvoiceLineDetail
		err := rows.Scan(&line.ID, &line.ItemName, &line.Quantity, &line.Unit, &line.UnitPrice, &line.Total)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase invoice line: %w", err)
		}
		detail.Lines = append(detail.Lines, line)
	}
	return &detail, rows.Err()
}

func (r *purchaseRepository) ListDocumentNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT document_no
		FROM purchase_lines
		WHERE document_no IS NOT NULL AND document_no <> ''
		ORDER BY document_no
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list document numbers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan document number: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}

func (r *purchaseRepository) GetDateRange(ctx context.Context) (*models.DateRange, error) {
	var dr models.DateRange
	var earliest, latest sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MIN(line_date)::text, MAX(line_date)::text FROM purchase_lines
	`).Scan(&earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get date range: %w", err)
	}
	dr.Earliest = earliest.String
	dr.Latest = latest.String
	return &dr, nil
}

func (r *purchaseRepository) LastDocumentNo(ctx context.Context, prefix string) (string, error) {
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(document_no)
		FROM purchase_lines
		WHERE document_no LIKE $1 || '%'
	`, prefix).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to get last document number: %w", err)
	}
	return last.String, nil
}

func (r *purchaseRepository) ListSupplierRefs(ctx context.Context) ([]*models.PartyRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list suppliers: %w", err)
	}
	defer rows.Close()

	var refs []*models.PartyRef
	for rows.Next() {
		var ref models.PartyRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan supplier: %w", err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}
