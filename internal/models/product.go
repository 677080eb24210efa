package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a finished radiator model.
type Product struct {
	ID             int             `json:"id" db:"id"`
	Name           string          `json:"name" db:"name"`
	Size           *string         `json:"size,omitempty" db:"size"`
	SectionCount   *int            `json:"section_count,omitempty" db:"section_count"`
	Category       *string         `json:"category,omitempty" db:"category"`
	UnitPrice      decimal.Decimal `json:"unit_price" db:"unit_price"`
	StockQty       decimal.Decimal `json:"stock_qty" db:"stock_qty"`
	MinStock       decimal.Decimal `json:"min_stock" db:"min_stock"`
	StockUpdatedAt *time.Time      `json:"stock_updated_at,omitempty" db:"stock_updated_at"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// ProductRef is the slim shape used by dropdowns and dispatch forms.
type ProductRef struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	StockQty  decimal.Decimal `json:"stock_qty"`
}
