package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CostFileLine maps one raw material to the quantity consumed per finished
// unit of a product. Cost is always rederived from the material's current
// list price, never stored independently of it.
type CostFileLine struct {
	ID              int             `json:"id" db:"id"`
	ProductID       int             `json:"product_id" db:"product_id"`
	MaterialID      int             `json:"material_id" db:"material_id"`
	LineNo          int             `json:"line_no" db:"line_no"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit" db:"quantity_per_unit"`
	Cost            decimal.Decimal `json:"cost" db:"cost"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

// CostFileLineDetail carries the resolved material name, unit and list price.
type CostFileLineDetail struct {
	CostFileLine
	MaterialName string          `json:"material_name"`
	Unit         string          `json:"unit"`
	ListPrice    decimal.Decimal `json:"list_price"`
}

// CostFile is a product's whole bill of materials plus the per-unit total.
type CostFile struct {
	ProductID   int                  `json:"product_id"`
	ProductName string               `json:"product_name"`
	Lines       []CostFileLineDetail `json:"lines"`
	TotalCost   decimal.Decimal      `json:"total_cost"`
}
