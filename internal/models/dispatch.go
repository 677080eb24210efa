package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DispatchNote records goods moving between warehouse and factory.
// OUT sends raw materials to the factory; IN receives finished radiators back.
type DispatchNote struct {
	ID          int               `json:"id" db:"id"`
	DocumentNo  string            `json:"document_no" db:"document_no"`
	NoteDate    string            `json:"note_date" db:"note_date"`
	Direction   MovementDirection `json:"direction" db:"direction"`
	Description *string           `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time         `json:"created_at" db:"created_at"`
}

// DispatchLine is one item on a dispatch note.
type DispatchLine struct {
	ID         int             `json:"id" db:"id"`
	DispatchID int             `json:"dispatch_id" db:"dispatch_id"`
	ItemKind   ItemKind        `json:"item_kind" db:"item_kind"`
	MaterialID *int            `json:"material_id,omitempty" db:"material_id"`
	ProductID  *int            `json:"product_id,omitempty" db:"product_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
}

// DispatchRow is the list shape with a line count.
type DispatchRow struct {
	ID          int               `json:"id"`
	DocumentNo  string            `json:"document_no"`
	NoteDate    string            `json:"note_date"`
	Direction   MovementDirection `json:"direction"`
	Description *string           `json:"description,omitempty"`
	LineCount   int               `json:"line_count"`
}

// DispatchLineDetail carries resolved names and derived amounts for the drawer.
type DispatchLineDetail struct {
	DispatchLine
	ItemName  string          `json:"item_name"`
	Unit      string          `json:"unit"`
	Total     decimal.Decimal `json:"total"`
	TotalCost decimal.Decimal `json:"total_cost"`
}

// DispatchDetail is the full dispatch-note drawer payload.
type DispatchDetail struct {
	DispatchNote
	Lines []DispatchLineDetail `json:"lines"`
}

// MaterialReconciliation links an outbound material dispatch to the inbound
// production dispatches that consumed it. yield_loss = sent - consumed.
type MaterialReconciliation struct {
	ID                 int             `json:"id" db:"id"`
	OutboundDispatchID int             `json:"outbound_dispatch_id" db:"outbound_dispatch_id"`
	InboundDispatchID  int             `json:"inbound_dispatch_id" db:"inbound_dispatch_id"`
	MaterialID         int             `json:"material_id" db:"material_id"`
	SentQuantity       decimal.Decimal `json:"sent_quantity" db:"sent_quantity"`
	ConsumedQuantity   decimal.Decimal `json:"consumed_quantity" db:"consumed_quantity"`
	YieldLoss          decimal.Decimal `json:"yield_loss" db:"yield_loss"`
}

// RemainingMaterial is the sent/consumed/remaining report row per material.
type RemainingMaterial struct {
	MaterialID   int             `json:"material_id"`
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	Sent         decimal.Decimal `json:"sent"`
	Consumed     decimal.Decimal `json:"consumed"`
	Remaining    decimal.Decimal `json:"remaining"`
}

// ProductCostSummary aggregates a product's BOM cost.
type ProductCostSummary struct {
	ProductID     int             `json:"product_id"`
	ProductName   string          `json:"product_name"`
	StockQty      decimal.Decimal `json:"stock_qty"`
	MaterialCount int             `json:"material_count"`
	TotalCost     decimal.Decimal `json:"total_cost"`
}
