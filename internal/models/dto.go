package models

import "github.com/shopspring/decimal"

// ===== REQUEST DTOs =====

// PurchaseRequest creates or updates one raw-material purchase line.
type PurchaseRequest struct {
	SupplierID int             `json:"supplier_id" validate:"required,gt=0"`
	MaterialID int             `json:"material_id" validate:"required,gt=0"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	DocumentNo string          `json:"document_no" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// SaleRequest creates or updates one radiator sale line.
type SaleRequest struct {
	CustomerID int             `json:"customer_id" validate:"required,gt=0"`
	ProductID  int             `json:"product_id" validate:"required,gt=0"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	DocumentNo string          `json:"document_no" validate:"required"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
}

// BatchPurchaseItem is one row of a multi-line purchase. Rows with
// non-positive quantity or price are silently skipped before any write.
type BatchPurchaseItem struct {
	MaterialID int             `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// BatchPurchaseRequest creates several purchase lines under one new invoice.
type BatchPurchaseRequest struct {
	SupplierID int                 `json:"supplier_id" validate:"required,gt=0"`
	Date       string              `json:"date" validate:"required,datetime=2006-01-02"`
	DocumentNo string              `json:"document_no"`
	Items      []BatchPurchaseItem `json:"items" validate:"required,min=1"`
}

// BatchSaleItem is one row of a multi-line sale.
type BatchSaleItem struct {
	ProductID int             `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// BatchSaleRequest creates several sale lines under one new invoice.
type BatchSaleRequest struct {
	CustomerID int             `json:"customer_id" validate:"required,gt=0"`
	Date       string          `json:"date" validate:"required,datetime=2006-01-02"`
	DocumentNo string          `json:"document_no"`
	Items      []BatchSaleItem `json:"items" validate:"required,min=1"`
}

// MovementFilter carries the list-screen filters. The ID fields accept
// comma-separated multi-select values.
type MovementFilter struct {
	FromDate   string
	ToDate     string
	PartyIDs   string
	ItemIDs    string
	DocumentNo string
}

// DispatchLineRequest is one item on a new dispatch note.
type DispatchLineRequest struct {
	ItemKind   ItemKind        `json:"item_kind" validate:"required,oneof=material product"`
	MaterialID int             `json:"material_id"`
	ProductID  int             `json:"product_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
}

// DispatchRequest creates a dispatch note with its lines.
type DispatchRequest struct {
	DocumentNo  string                `json:"document_no" validate:"required"`
	Date        string                `json:"date" validate:"required,datetime=2006-01-02"`
	Direction   MovementDirection     `json:"direction" validate:"required,oneof=OUT IN"`
	Description string                `json:"description"`
	Lines       []DispatchLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// CostFileLineRequest is one row of a wholesale cost-file save. Blank rows
// (zero material or quantity) are skipped.
type CostFileLineRequest struct {
	MaterialID      int             `json:"material_id"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// SaveCostFileRequest wholesale-replaces a product's bill of materials.
type SaveCostFileRequest struct {
	Lines []CostFileLineRequest `json:"lines" validate:"required"`
}

// AddCostFileLineRequest appends one material to a product's cost file.
type AddCostFileLineRequest struct {
	MaterialID      int             `json:"material_id" validate:"required,gt=0"`
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// UpdateCostFileLineRequest edits one line's quantity; cost is rederived
// from the material's current list price.
type UpdateCostFileLineRequest struct {
	QuantityPerUnit decimal.Decimal `json:"quantity_per_unit"`
}

// RegisterRequest creates a login.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest authenticates a login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ===== RESPONSE DTOs =====

// MovementSummary is the totals block returned next to movement lists.
type MovementSummary struct {
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// InvoiceListSummary is the totals block for grouped (per-invoice) lists.
type InvoiceListSummary struct {
	InvoiceCount int             `json:"invoice_count"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// BatchLineResult reports one persisted line of a batch.
type BatchLineResult struct {
	LineID    int             `json:"line_id"`
	ItemID    int             `json:"item_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// BatchResult reports the outcome of a multi-line create.
type BatchResult struct {
	InvoiceID     int               `json:"invoice_id"`
	DocumentNo    string            `json:"document_no"`
	TotalQuantity decimal.Decimal   `json:"total_quantity"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Lines         []BatchLineResult `json:"lines"`
}

// AuthResult is the login/register payload.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// DateRange bounds the date filters of a list screen.
type DateRange struct {
	Earliest string `json:"earliest"`
	Latest   string `json:"latest"`
}
