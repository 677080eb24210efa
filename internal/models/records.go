package models

import "github.com/shopspring/decimal"

// RecordListItem is one entry of the unified reference-record list.
type RecordListItem struct {
	ID       int      `json:"id"`
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	Subtitle string   `json:"subtitle"`
	Meta     string   `json:"meta"`
	Tags     []string `json:"tags"`
}

// DashboardCounts holds the entity totals shown on the dashboard header.
type DashboardCounts struct {
	Customers int `json:"customers"`
	Suppliers int `json:"suppliers"`
	Materials int `json:"materials"`
	Products  int `json:"products"`
}

// LowStockItem flags an entity running at or under its minimum stock.
type LowStockItem struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	StockQty decimal.Decimal `json:"stock_qty"`
	MinStock decimal.Decimal `json:"min_stock"`
}

// Dashboard is the /records/dashboard payload.
type Dashboard struct {
	Counts            DashboardCounts `json:"counts"`
	LowStockProducts  []LowStockItem  `json:"low_stock_products"`
	LowStockMaterials []LowStockItem  `json:"low_stock_materials"`
}

// HistoryRow is one recent ledger entry inside a record's detail drawer.
type HistoryRow struct {
	Date       string          `json:"date"`
	Direction  string          `json:"direction"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	SourceKind string          `json:"source_kind"`
}

// RecordDetail is the detail-drawer payload for one reference record.
type RecordDetail struct {
	Header  map[string]any `json:"header"`
	History []HistoryRow   `json:"history"`
	Totals  StockTotals    `json:"totals"`
}
