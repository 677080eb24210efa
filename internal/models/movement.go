package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementDirection is the sign of a stock change.
type MovementDirection string

const (
	DirectionIn  MovementDirection = "IN"
	DirectionOut MovementDirection = "OUT"
)

// MovementSource is a closed enumeration of the tables that can originate a
// stock movement. The ledger row keeps (source_kind, source_id) pointing at the
// originating line so the pair can be updated or removed in lockstep.
type MovementSource string

const (
	SourcePurchase      MovementSource = "purchase"
	SourceSale          MovementSource = "sale"
	SourceProductionOut MovementSource = "production_out"
	SourceProductionIn  MovementSource = "production_in"
)

// ItemKind distinguishes raw materials from finished products.
type ItemKind string

const (
	ItemMaterial ItemKind = "material"
	ItemProduct  ItemKind = "product"
)

// StockMovement represents one row of the stock_movements audit ledger.
type StockMovement struct {
	ID         int               `json:"id" db:"id"`
	OccurredAt time.Time         `json:"occurred_at" db:"occurred_at"`
	ItemKind   ItemKind          `json:"item_kind" db:"item_kind"`
	MaterialID *int              `json:"material_id,omitempty" db:"material_id"`
	ProductID  *int              `json:"product_id,omitempty" db:"product_id"`
	Direction  MovementDirection `json:"direction" db:"direction"`
	Quantity   decimal.Decimal   `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal   `json:"unit_price" db:"unit_price"`
	SourceKind MovementSource    `json:"source_kind" db:"source_kind"`
	SourceID   int               `json:"source_id" db:"source_id"`
}

// StockTotals aggregates ledger rows for one entity.
type StockTotals struct {
	TotalIn  decimal.Decimal `json:"total_in"`
	TotalOut decimal.Decimal `json:"total_out"`
}
