package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"radiator-erp/internal/models"
)

// recordType describes one editable reference table. Columns outside the
// whitelist are dropped before any SQL is built; table and column names never
// come from the request path or body.
type recordType struct {
	table      string
	columns    []string
	stockCols  map[string]bool
	selectCols string
}

var recordTypes = map[string]recordType{
	"customers": {
		table:      "customers",
		columns:    []string{"name", "customer_type", "tax_number", "phone", "address"},
		selectCols: "id, name, customer_type, tax_number, phone, address, created_at",
	},
	"suppliers": {
		table:      "suppliers",
		columns:    []string{"name", "contact_person", "phone", "address"},
		selectCols: "id, name, contact_person, phone, address, created_at",
	},
	"materials": {
		table:      "materials",
		columns:    []string{"name", "unit", "list_price", "warehouse_qty", "factory_qty", "min_stock", "source_type"},
		stockCols:  map[string]bool{"warehouse_qty": true, "factory_qty": true},
		selectCols: "id, name, unit, list_price, warehouse_qty, factory_qty, min_stock, source_type, stock_updated_at, created_at",
	},
	"products": {
		table:      "products",
		columns:    []string{"name", "size", "section_count", "category", "unit_price", "stock_qty", "min_stock"},
		stockCols:  map[string]bool{"stock_qty": true},
		selectCols: "id, name, size, section_count, category, unit_price, stock_qty, min_stock, stock_updated_at, created_at",
	},
}

// RecordTypeExists reports whether t names an editable reference table.
func RecordTypeExists(t string) bool {
	_, ok := recordTypes[t]
	return ok
}

// RecordsRepository serves the unified reference-record screens: dashboard,
// per-type table data, whitelisted writes and the detail drawer.
type RecordsRepository interface {
	ListAll(ctx context.Context, limitPerType int) ([]*models.RecordListItem, error)
	Dashboard(ctx context.Context) (*models.Dashboard, error)

	ListByType(ctx context.Context, recordType string) ([]map[string]any, error)
	Create(ctx context.Context, recordType string, fields map[string]any) (int, error)
	Update(ctx context.Context, recordType string, id int, fields map[string]any) error
	Delete(ctx context.Context, recordType string, id int) error
	Detail(ctx context.Context, recordType string, id int, historyLimit int) (*models.RecordDetail, error)
}

type recordsRepository struct {
	db DBTX
}

func NewRecordsRepository(db DBTX) RecordsRepository {
	return &recordsRepository{db: db}
}

func (r *recordsRepository) ListAll(ctx context.Context, limitPerType int) ([]*models.RecordListItem, error) {
	// One query per type keeps the shapes simple; the list is capped anyway.
	queries := []struct {
		recordType string
		query      string
	}{
		{"customers", `
			SELECT id, name, COALESCE(phone, ''), COALESCE(customer_type, '')
			FROM customers ORDER BY name LIMIT $1`},
		{"suppliers", `
			SELECT id, name, COALESCE(phone, ''), COALESCE(contact_person, '')
			FROM suppliers ORDER BY name LIMIT $1`},
		{"materials", `
			SELECT id, name, unit, warehouse_qty::text
			FROM materials ORDER BY name LIMIT $1`},
		{"products", `
			SELECT id, name, COALESCE(category, ''), stock_qty::text
			FROM products ORDER BY name LIMIT $1`},
	}

	var items []*models.RecordListItem
	for _, q := range queries {
		rows, err := r.db.QueryContext(ctx, q.query, limitPerType)
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", q.recordType, err)
		}
		for rows.Next() {
			item := &models.RecordListItem{Type: q.recordType}
			var meta string
			if err := rows.Scan(&item.ID, &item.Name, &item.Subtitle, &meta); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan %s: %w", q.recordType, err)
			}
			item.Meta = meta
			item.Tags = []string{q.recordType}
			items = append(items, item)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

func (r *recordsRepository) Dashboard(ctx context.Context) (*models.Dashboard, error) {
	var d models.Dashboard
	err := r.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM customers),
		       (SELECT COUNT(*) FROM suppliers),
		       (SELECT COUNT(*) FROM materials),
		       (SELECT COUNT(*) FROM products)
	`).Scan(&d.Counts.Customers, &d.Counts.Suppliers, &d.Counts.Materials, &d.Counts.Products)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	products, err := r.lowStock(ctx, `
		SELECT id, name, stock_qty, min_stock
		FROM products
		ORDER BY stock_qty ASC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	d.LowStockProducts = products

	materials, err := r.lowStock(ctx, `
		SELECT id, name, warehouse_qty, min_stock
		FROM materials
		ORDER BY warehouse_qty ASC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	d.LowStockMaterials = materials
	return &d, nil
}

func (r *recordsRepository) lowStock(ctx context.Context, query string) ([]models.LowStockItem, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	defer rows.Close()

	var items []models.LowStockItem
	for rows.Next() {
		var item models.LowStockItem
		if err := rows.Scan(&item.ID, &item.Name, &item.StockQty, &item.MinStock); err != nil {
			return nil, fmt.Errorf("failed to scan low stock row: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *recordsRepository) ListByType(ctx context.Context, typeName string) ([]map[string]any, error) {
	rt, ok := recordTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown record type %q", typeName)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY name", rt.selectCols, rt.table)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", typeName, err)
	}
	defer rows.Close()

	return scanGeneric(rows)
}

// scanGeneric maps every row to column-name keyed values, with []byte values
// (NUMERIC, text) normalised to strings.
func scanGeneric(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		record := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (r *recordsRepository) Create(ctx context.Context, typeName string, fields map[string]any) (int, error) {
	rt, ok := recordTypes[typeName]
	if !ok {
		return 0, fmt.Errorf("unknown record type %q", typeName)
	}

	var cols []string
	var args []any
	for _, col := range rt.columns {
		if v, ok := fields[col]; ok {
			cols = append(cols, col)
			args = append(args, v)
		}
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("no writable fields for %s", typeName)
	}

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		rt.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	var id int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create %s record: %w", typeName, err)
	}
	return id, nil
}

func (r *recordsRepository) Update(ctx context.Context, typeName string, id int, fields map[string]any) error {
	rt, ok := recordTypes[typeName]
	if !ok {
		return fmt.Errorf("unknown record type %q", typeName)
	}

	var sets []string
	var args []any
	stockTouched := false
	for _, col := range rt.columns {
		if v, ok := fields[col]; ok {
			args = append(args, v)
			sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
			if rt.stockCols[col] {
				stockTouched = true
			}
		}
	}
	if len(sets) == 0 {
		return fmt.Errorf("no writable fields for %s", typeName)
	}
	if stockTouched {
		sets = append(sets, "stock_updated_at = NOW()")
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d",
		rt.table, strings.Join(sets, ", "), len(args))

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s record: %w", typeName, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *recordsRepository) Delete(ctx context.Context, typeName string, id int) error {
	rt, ok := recordTypes[typeName]
	if !ok {
		return fmt.Errorf("unknown record type %q", typeName)
	}

	result, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", rt.table), id)
	if err != nil {
		return fmt.Errorf("failed to delete %s record: %w", typeName, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *recordsRepository) Detail(ctx context.Context, typeName string, id int, historyLimit int) (*models.RecordDetail, error) {
	rt, ok := recordTypes[typeName]
	if !ok {
		return nil, fmt.Errorf("unknown record type %q", typeName)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", rt.selectCols, rt.table)
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s record: %w", typeName, err)
	}
	headers, err := scanGeneric(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, nil
	}

	detail := &models.RecordDetail{Header: headers[0]}

	historyQuery, totalsQuery := recordHistoryQueries(typeName)
	if historyQuery == "" {
		return detail, nil
	}

	hrows, err := r.db.QueryContext(ctx, historyQuery, id, historyLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list record history: %w", err)
	}
	defer hrows.Close()
	for hrows.Next() {
		var h models.HistoryRow
		if err := hrows.Scan(&h.Date, &h.Direction, &h.Quantity, &h.UnitPrice, &h.SourceKind); err != nil {
			return nil, fmt.Errorf("failed to scan record history: %w", err)
		}
		detail.History = append(detail.History, h)
	}
	if err := hrows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx, totalsQuery, id).Scan(&detail.Totals.TotalIn, &detail.Totals.TotalOut)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate record history: %w", err)
	}
	return detail, nil
}

// recordHistoryQueries returns the ledger queries backing a detail drawer.
// Parties have no ledger rows, so both strings are empty for them.
func recordHistoryQueries(typeName string) (history, totals string) {
	switch typeName {
	case "materials":
		return `
			SELECT occurred_at::date::text, direction, quantity, unit_price, source_kind
			FROM stock_movements
			WHERE item_kind = 'material' AND material_id = $1
			ORDER BY occurred_at DESC, id DESC
			LIMIT $2`, `
			SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
			       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
			FROM stock_movements
			WHERE item_kind = 'material' AND material_id = $1`
	case "products":
		return `
			SELECT occurred_at::date::text, direction, quantity, unit_price, source_kind
			FROM stock_movements
			WHERE item_kind = 'product' AND product_id = $1
			ORDER BY occurred_at DESC, id DESC
			LIMIT $2`, `
			SELECT COALESCE(SUM(quantity) FILTER (WHERE direction = 'IN'), 0),
			       COALESCE(SUM(quantity) FILTER (WHERE direction = 'OUT'), 0)
			FROM stock_movements
			WHERE item_kind = 'product' AND product_id = $1`
	default:
		return "", ""
	}
}
