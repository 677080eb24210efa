package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"radiator-erp/internal/models"
)

// OutboundBalance is one open outbound dispatch for a material, with how much
// of the sent quantity production has already consumed.
type OutboundBalance struct {
	DispatchID int
	Sent       decimal.Decimal
	Consumed   decimal.Decimal
}

// DispatchRepository persists production dispatch notes, their lines and the
// material reconciliation rows derived from inbound production.
type DispatchRepository interface {
	WithTx(tx DBTX) DispatchRepository

	InsertNote(ctx context.Context, note *models.DispatchNote) error
	InsertLine(ctx context.Context, line *models.DispatchLine) error
	GetNoteByID(ctx context.Context, id int) (*models.DispatchNote, error)
	GetLines(ctx context.Context, dispatchID int) ([]*models.DispatchLine, error)
	DeleteNote(ctx context.Context, id int) error
	ExistsByDocumentNo(ctx context.Context, documentNo string) (bool, error)
	// LastDocumentNoForYear returns the highest dispatch number carrying the
	// given prefix, e.g. "IR-2026-", or "" when none exists.
	LastDocumentNoForYear(ctx context.Context, prefix string) (string, error)

	List(ctx context.Context, direction string) ([]*models.DispatchRow, error)
	GetDetail(ctx context.Context, id int) (*models.DispatchDetail, error)

	// LatestOpenOutbound finds the most recent outbound dispatch of a material
	// whose sent quantity is not fully consumed yet.
	LatestOpenOutbound(ctx context.Context, materialID int) (*OutboundBalance, error)
	UpsertReconciliation(ctx context.Context, rec *models.MaterialReconciliation) error

	RemainingMaterials(ctx context.Context) ([]*models.RemainingMaterial, error)
	CostSummaries(ctx context.Context) ([]*models.ProductCostSummary, error)
}

type dispatchRepository struct {
	db DBTX
}

func NewDispatchRepository(db DBTX) DispatchRepository {
	return &dispatchRepository{db: db}
}

func (r *dispatchRepository) WithTx(tx DBTX) DispatchRepository {
	return &dispatchRepository{db: tx}
}

func (r *dispatchRepository) InsertNote(ctx context.Context, note *models.DispatchNote) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO dispatch_notes (document_no, note_date, direction, description)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, note.DocumentNo, note.NoteDate, note.Direction, note.Description).Scan(&note.ID, &note.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch note: %w", err)
	}
	return nil
}

func (r *dispatchRepository) InsertLine(ctx context.Context, line *models.DispatchLine) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO dispatch_lines (dispatch_id, item_kind, material_id, product_id, quantity, unit_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, line.DispatchID, line.ItemKind, line.MaterialID, line.ProductID, line.Quantity, line.UnitPrice).Scan(&line.ID)
	if err != nil {
		return fmt.Errorf("failed to insert dispatch line: %w", err)
	}
	return nil
}

func (r *dispatchRepository) GetNoteByID(ctx context.Context, id int) (*models.DispatchNote, error) {
	var note models.DispatchNote
	err := r.db.QueryRowContext(ctx, `
		SELECT id, document_no, note_date::text, direction, description, created_at
		FROM dispatch_notes
		WHERE id = $1
	`, id).Scan(&note.ID, &note.DocumentNo, &note.NoteDate, &note.Direction, &note.Description, &note.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get dispatch note: %w", err)
	}
	return &note, nil
}

func (r *dispatchRepository) GetLines(ctx context.Context, dispatchID int) ([]*models.DispatchLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, dispatch_id, item_kind, material_id, product_id, quantity, unit_price
		FROM dispatch_lines
		WHERE dispatch_id = $1
		ORDER BY id
	`, dispatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.DispatchLine
	for rows.Next() {
		var line models.DispatchLine
		err := rows.Scan(&line.ID, &line.DispatchID, &line.ItemKind, &line.MaterialID,
			&line.ProductID, &line.Quantity, &line.UnitPrice)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch line: %w", err)
		}
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

// DeleteNote removes the note; lines and reconciliation rows follow via
// ON DELETE CASCADE.
func (r *dispatchRepository) DeleteNote(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM dispatch_notes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete dispatch note: %w", err)
	}
	return nil
}

func (r *dispatchRepository) ExistsByDocumentNo(ctx context.Context, documentNo string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM dispatch_notes WHERE document_no = $1)
	`, documentNo).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check dispatch number: %w", err)
	}
	return exists, nil
}

func (r *dispatchRepository) LastDocumentNoForYear(ctx context.Context, prefix string) (string, error) {
	var last sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT MAX(document_no)
		FROM dispatch_notes
		WHERE document_no LIKE $1 || '%'
	`, prefix).Scan(&last)
	if err != nil {
		return "", fmt.Errorf("failed to get last dispatch number: %w", err)
	}
	return last.String, nil
}

func (r *dispatchRepository) List(ctx context.Context, direction string) ([]*models.DispatchRow, error) {
	w := &whereBuilder{}
	if direction != "" {
		w.add("dn.direction = ?", direction)
	}

	query := `
		SELECT dn.id, dn.document_no, dn.note_date::text, dn.direction, dn.description, COUNT(dl.id)
		FROM dispatch_notes dn
		LEFT JOIN dispatch_lines dl ON dl.dispatch_id = dn.id` + w.clause() + `
		GROUP BY dn.id
		ORDER BY dn.note_date DESC, dn.id DESC`

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch notes: %w", err)
	}
	defer rows.Close()

	var list []*models.DispatchRow
	for rows.Next() {
		var row models.DispatchRow
		err := rows.Scan(&row.ID, &row.DocumentNo, &row.NoteDate, &row.Direction, &row.Description, &row.LineCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch note: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

func (r *dispatchRepository) GetDetail(ctx context.Context, id int) (*models.DispatchDetail, error) {
	note, err := r.GetNoteByID(ctx, id)
	if err != nil || note == nil {
		return nil, err
	}

	detail := &models.DispatchDetail{DispatchNote: *note}
	rows, err := r.db.QueryContext(ctx, `
		SELECT dl.id, dl.dispatch_id, dl.item_kind, dl.material_id, dl.product_id,
		       dl.quantity, dl.unit_price,
		       COALESCE(m.name, p.name, ''),
		       COALESCE(m.unit, 'pcs'),
		       dl.quantity * dl.unit_price,
		       dl.quantity * COALESCE(m.list_price, p.unit_price, 0)
		FROM dispatch_lines dl
		LEFT JOIN materials m ON m.id = dl.material_id
		LEFT JOIN products p ON p.id = dl.product_id
		WHERE dl.dispatch_id = $1
		ORDER BY dl.id
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatch lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.DispatchLineDetail
		err := rows.Scan(
			&line.ID, &line.DispatchID, &line.ItemKind, &line.MaterialID, &line.ProductID,
			&line.Quantity, &line.UnitPrice, &line.ItemName, &line.Unit, &line.Total, &line.TotalCost,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dispatch line: %w", err)
		}
		detail.Lines = append(detail.Lines, line)
	}
	return detail, rows.Err()
}

func (r *dispatchRepository) LatestOpenOutbound(ctx context.Context, materialID int) (*OutboundBalance, error) {
	var b OutboundBalance
	err := r.db.QueryRowContext(ctx, `
		SELECT dn.id, dl.quantity, COALESCE(mr.consumed_quantity, 0)
		FROM dispatch_notes dn
		JOIN dispatch_lines dl
		  ON dl.dispatch_id = dn.id AND dl.item_kind = 'material' AND dl.material_id = $1
		LEFT JOIN material_reconciliations mr
		  ON mr.outbound_dispatch_id = dn.id AND mr.material_id = $1
		WHERE dn.direction = 'OUT' AND COALESCE(mr.consumed_quantity, 0) < dl.quantity
		ORDER BY dn.note_date DESC, dn.id DESC
		LIMIT 1
	`, materialID).Scan(&b.DispatchID, &b.Sent, &b.Consumed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find open outbound dispatch: %w", err)
	}
	return &b, nil
}

// UpsertReconciliation writes the cumulative consumption row for one
// (outbound dispatch, material) pair. The caller supplies the already
// accumulated consumed quantity and the derived yield loss.
func (r *dispatchRepository) UpsertReconciliation(ctx context.Context, rec *models.MaterialReconciliation) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO material_reconciliations
		(outbound_dispatch_id, inbound_dispatch_id, material_id, sent_quantity, consumed_quantity, yield_loss)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (outbound_dispatch_id, material_id) DO UPDATE
		SET inbound_dispatch_id = EXCLUDED.inbound_dispatch_id,
		    consumed_quantity = EXCLUDED.consumed_quantity,
		    yield_loss = EXCLUDED.yield_loss
		RETURNING id
	`, rec.OutboundDispatchID, rec.InboundDispatchID, rec.MaterialID,
		rec.SentQuantity, rec.ConsumedQuantity, rec.YieldLoss).Scan(&rec.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert reconciliation: %w", err)
	}
	return nil
}

func (r *dispatchRepository) RemainingMaterials(ctx context.Context) ([]*models.RemainingMaterial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.name, m.unit, sent.qty, COALESCE(cons.qty, 0),
		       sent.qty - COALESCE(cons.qty, 0)
		FROM materials m
		JOIN (
			SELECT dl.material_id, SUM(dl.quantity) AS qty
			FROM dispatch_lines dl
			JOIN dispatch_notes dn ON dn.id = dl.dispatch_id
			WHERE dn.direction = 'OUT' AND dl.item_kind = 'material'
			GROUP BY dl.material_id
		) sent ON sent.material_id = m.id
		LEFT JOIN (
			SELECT material_id, SUM(consumed_quantity) AS qty
			FROM material_reconciliations
			GROUP BY material_id
		) cons ON cons.material_id = m.id
		ORDER BY m.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list remaining materials: %w", err)
	}
	defer rows.Close()

	var list []*models.RemainingMaterial
	for rows.Next() {
		var row models.RemainingMaterial
		err := rows.Scan(&row.MaterialID, &row.MaterialName, &row.Unit, &row.Sent, &row.Consumed, &row.Remaining)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remaining material: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}

func (r *dispatchRepository) CostSummaries(ctx context.Context) ([]*models.ProductCostSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.stock_qty, COUNT(cfl.id), COALESCE(SUM(cfl.cost), 0)
		FROM products p
		LEFT JOIN cost_file_lines cfl ON cfl.product_id = p.id
		GROUP BY p.id
		ORDER BY p.name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list cost summaries: %w", err)
	}
	defer rows.Close()

	var list []*models.ProductCostSummary
	for rows.Next() {
		var row models.ProductCostSummary
		err := rows.Scan(&row.ProductID, &row.ProductName, &row.StockQty, &row.MaterialCount, &row.TotalCost)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cost summary: %w", err)
		}
		list = append(list, &row)
	}
	return list, rows.Err()
}
