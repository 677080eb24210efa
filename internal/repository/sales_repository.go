package repository

import (
	"context"
	"database/sql"
	"fmt"

	"radiator-erp/internal/models"
)

// SalesRepository mirrors PurchaseRepository for radiator sales.
type SalesRepository interface {
	WithTx(tx DBTX) SalesRepository

	InsertLine(ctx context.Context, line *models.SaleLine) error
	GetLineByID(ctx context.Context, id int) (*models.SaleLine, error)
	UpdateLine(ctx context.Context, line *models.SaleLine) error
	DeleteLine(ctx context.Context, id int) error

	GetInvoiceByDocument(ctx context.Context, documentNo string, customerID int) (*models.SalesInvoice, error)
	CreateInvoice(ctx context.Context, inv *models.SalesInvoice) error
	RefreshInvoice(ctx context.Context, invoiceID int) (bool, error)

	ListMovements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error)
	ListInvoices(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error)
	GetInvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error)

	ListDocumentNumbers(ctx context.Context) ([]string, error)
	GetDateRange(ctx context.Context) (*models.DateRange, error)
	LastDocumentNo(ctx context.Context, prefix string) (string, error)

	ListCustomerRefs(ctx context.Context) ([]*models.PartyRef, error)
}

type salesRepository struct {
	db DBTX
}

func NewSalesRepository(db DBTX) SalesRepository {
	return &salesRepository{db: db}
}

func (r *salesRepository) WithTx(tx DBTX) SalesRepository {
	return &salesRepository{db: tx}
}

func (r *salesRepository) InsertLine(ctx context.Context, line *models.SaleLine) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sale_lines
		(invoice_id, customer_id, product_id, quantity, unit_price, document_no, line_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`, line.InvoiceID, line.CustomerID, line.ProductID, line.Quantity,
		line.UnitPrice, line.DocumentNo, line.LineDate,
	).Scan(&line.ID, &line.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert sale line: %w", err)
	}
	return nil
}

func (r *salesRepository) GetLineByID(ctx context.Context, id int) (*models.SaleLine, error) {
	var line models.SaleLine
	err := r.db.QueryRowContext(ctx, `
		SELECT id, invoice_id, customer_id, product_id, quantity, unit_price,
		       COALESCE(document_no, ''), line_date::text, created_at
		FROM sale_lines
		WHERE id = $1
	`, id).Scan(
		&line.ID, &line.InvoiceID, &line.CustomerID, &line.ProductID, &line.Quantity,
		&line.UnitPrice, &line.DocumentNo, &line.LineDate, &line.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sale line: %w", err)
	}
	return &line, nil
}

func (r *salesRepository) UpdateLine(ctx context.Context, line *models.SaleLine) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE sale_lines
		SET invoice_id = $1, customer_id = $2, product_id = $3, quantity = $4,
		    unit_price = $5, document_no = $6, line_date = $7
		WHERE id = $8
	`, line.InvoiceID, line.CustomerID, line.ProductID, line.Quantity,
		line.UnitPrice, line.DocumentNo, line.LineDate, line.ID)
	if err != nil {
		return fmt.Errorf("failed to update sale line: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no sale line found with id %d", line.ID)
	}
	return nil
}

func (r *salesRepository) DeleteLine(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sale_lines WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sale line: %w", err)
	}
	return nil
}

func (r *salesRepository) GetInvoiceByDocument(ctx context.Context, documentNo string, customerID int) (*models.SalesInvoice, error) {
	var inv models.SalesInvoice
	err := r.db.QueryRowContext(ctx, `
		SELECT id, document_no, customer_id, invoice_date::text, total_quantity, total_amount, created_at
		FROM sales_invoices
		WHERE document_no = $1 AND customer_id = $2
	`, documentNo, customerID).Scan(
		&inv.ID, &inv.DocumentNo, &inv.CustomerID, &inv.InvoiceDate,
		&inv.TotalQuantity, &inv.TotalAmount, &inv.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sales invoice: %w", err)
	}
	return &inv, nil
}

func (r *salesRepository) CreateInvoice(ctx context.Context, inv *models.SalesInvoice) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO sales_invoices (document_no, customer_id, invoice_date, total_quantity, total_amount)
		VALUES ($1, $2, $3, 0, 0)
		RETURNING id, created_at
	`, inv.DocumentNo, inv.CustomerID, inv.InvoiceDate).Scan(&inv.ID, &inv.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create sales invoice: %w", err)
	}
	return nil
}

func (r *salesRepository) RefreshInvoice(ctx context.Context, invoiceID int) (bool, error) {
	var lineCount int
	err := r.db.QueryRowContext(ctx, `
		UPDATE sales_invoices inv
		SET total_quantity = agg.qty, total_amount = agg.amount
		FROM (
			SELECT COALESCE(SUM(quantity), 0) AS qty,
			       COALESCE(SUM(quantity * unit_price), 0) AS amount,
			       COUNT(*) AS line_count
			FROM sale_lines
			WHERE invoice_id = $1
		) agg
		WHERE inv.id = $1
		RETURNING agg.line_count
	`, invoiceID).Scan(&lineCount)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to refresh sales invoice: %w", err)
	}

	if lineCount == 0 {
		if _, err := r.db.ExecContext(ctx, `DELETE FROM sales_invoices WHERE id = $1`, invoiceID); err != nil {
			return false, fmt.Errorf("failed to delete empty sales invoice: %w", err)
		}
		return false, nil
	}
	return true, nil
}

func (r *salesRepository) ListMovements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementRow, *models.MovementSummary, error) {
	w := &whereBuilder{}
	if filter != nil {
		if filter.FromDate != "" {
			w.add("sl.line_date >= ?", filter.FromDate)
		}
		if filter.ToDate != "" {
			w.add("sl.line_date <= ?", filter.ToDate)
		}
		w.addIDList("sl.customer_id", filter.PartyIDs)
		w.addIDList("sl.product_id", filter.ItemIDs)
		if filter.DocumentNo != "" {
			w.add("sl.document_no ILIKE ?", "%"+filter.DocumentNo+"%")
		}
	}

	query := `
		SELECT sl.id, sl.line_date::text, c.name, p.name, sl.quantity, 'pcs',
		       sl.unit_price, sl.quantity * sl.unit_price, COALESCE(sl.document_no, ''), sl.invoice_id
		FROM sale_lines sl
		JOIN customers c ON c.id = sl.customer_id
		JOIN products p ON p.id = sl.product_id` + w.clause() + `
		ORDER BY sl.line_date DESC, sl.id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sales: %w", err)
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
			return nil, nil, fmt.Errorf("failed to scan sale: %w", err)
		}
		summary.TotalQuantity = summary.TotalQuantity.Add(row.Quantity)
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
		list = append(list, &row)
	}
	return list, summary, rows.Err()
}

func (r *salesRepository) ListInvoices(ctx context.Context, filter *models.MovementFilter) ([]*models.InvoiceRow, *models.InvoiceListSummary, error) {
	w := &whereBuilder{}
	if filter != nil {
		if filter.FromDate != "" {
			w.add("inv.invoice_date >= ?", filter.FromDate)
		}
		if filter.ToDate != "" {
			w.add("inv.invoice_date <= ?", filter.ToDate)
		}
		w.addIDList("inv.customer_id", filter.PartyIDs)
		if filter.DocumentNo != "" {
			w.add("inv.document_no ILIKE ?", "%"+filter.DocumentNo+"%")
		}
	}

	query := `
		SELECT inv.id, inv.document_no, inv.invoice_date::text, c.name,
		       inv.total_quantity, inv.total_amount,
		       COUNT(sl.id),
		       COALESCE(STRING_AGG(DISTINCT p.name, ', ' ORDER BY p.name), '')
		FROM sales_invoices inv
		JOIN customers c ON c.id = inv.customer_id
		LEFT JOIN sale_lines sl ON sl.invoice_id = inv.id
		LEFT JOIN products p ON p.id = sl.product_id` + w.clause() + `
		GROUP BY inv.id, c.name
		ORDER BY inv.invoice_date DESC, inv.id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list sales invoices: %w", err)
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
			return nil, nil, fmt.Errorf("failed to scan sales invoice: %w", err)
		}
		summary.InvoiceCount++
		summary.TotalAmount = summary.TotalAmount.Add(row.TotalAmount)
		list = append(list, &row)
	}
	return list, summary, rows.Err()
}

func (r *salesRepository) GetInvoiceDetail(ctx context.Context, invoiceID int) (*models.InvoiceDetail, error) {
	var detail models.InvoiceDetail
	err := r.db.QueryRowContext(ctx, `
		SELECT inv.id, inv.document_no, inv.invoice_date::text, c.name, c.phone, c.address,
		       inv.total_quantity, inv.total_amount
		FROM sales_invoices inv
		JOIN customers c ON c.id = inv.customer_id
		WHERE inv.id = $1
	`, invoiceID).Scan(
		&detail.InvoiceID, &detail.DocumentNo, &detail.Date, &detail.PartyName,
		&detail.PartyPhone, &detail.PartyAddress, &detail.TotalQuantity, &detail.TotalAmount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sales invoice detail: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT sl.id, p.name, sl.quantity, 'pcs', sl.unit_price, sl.quantity * sl.unit_price
		FROM sale_lines sl
		JOIN products p ON p.id = sl.product_id
		WHERE sl.invoice_id = $1
		ORDER BY sl.id
	`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sales invoice lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.InvoiceLineDetail
		err := rows.Scan(&line.ID, &line.ItemName, &line.Quantity, &line.Unit, &line.UnitPrice, &line.Total)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sales invoice line: %w", err)
		}
		detail.Lines = append(detail.Lines, line)
	}
	return &detail, rows.Err()
}

func (r *salesRepository) ListDocumentNumbers(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT document_no
		FROM sale_lines
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

func (r *salesRepository) GetDateRange(ctx context.Context) (*models.DateRange, error) {
	var dr models.DateRange
	var earliest, latest sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MIN(line_date)::text, MAX(line_date)::text FROM sale_lines
	`).Scan(&earliest, &latest)
	if err != nil {
		return nil, fmt.Errorf("failed to get date range: %w", err)
	}
	dr.Earliest = earliest.String
	dr.Latest = latest.String
	return &dr, nil
}

func (r *salesRepository) LastDocumentNo(ctx context.Context, prefix string) (string, error) {
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(document_no)
		FROM sale_lines
		WHERE document_no LIKE $1 || '%'
	`, prefix).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to get last document number: %w", err)
	}
	return last.String, nil
}

func (r *salesRepository) ListCustomerRefs(ctx context.Context) ([]*models.PartyRef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM customers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer rows.Close()

	var refs []*models.PartyRef
	for rows.Next() {
		var ref models.PartyRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		refs = append(refs, &ref)
	}
	return refs, rows.Err()
}
