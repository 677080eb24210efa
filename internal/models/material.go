package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Material is a raw material. Warehouse and factory quantities are tracked
// separately; their values must equal the signed sum of the material's ledger
// rows (maintained procedurally, not by a constraint).
type Material struct {
	ID             int             `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Unit           string          `json:"unit" db:"unit"`
	ListPrice      decimal.Decimal `json:"list_price" db:"list_price"`
	WarehouseQty   decimal.Decimal `json:"warehouse_qty" db:"warehouse_qty"`
	FactoryQty     decimal.Decimal `json:"factory_qty" db:"factory_qty"`
	MinStock       decimal.Decimal `json:"min_stock" db:"min_stock"`
	SourceType     string          `json:"source_type" db:"source_type"`
	StockUpdatedAt *time.Time      `json:"stock_updated_at,omitempty" db:"stock_updated_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// MaterialRef is the slim shape used by dropdowns and dispatch forms.
type MaterialRef struct {
	ID           int             `json:"id"`
	Name         string          `json:"name"`
	Unit         string          `json:"unit"`
	ListPrice    decimal.Decimal `json:"list_price"`
	WarehouseQty decimal.Decimal `json:"warehouse_qty"`
}
