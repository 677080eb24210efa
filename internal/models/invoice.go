package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseInvoice is a header whose totals are derived from its child lines.
type PurchaseInvoice struct {
	ID            int             `json:"id" db:"id"`
	DocumentNo    string          `json:"document_no" db:"document_no"`
	SupplierID    int             `json:"supplier_id" db:"supplier_id"`
	InvoiceDate   string          `json:"invoice_date" db:"invoice_date"`
	TotalQuantity decimal.Decimal `json:"total_quantity" db:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// PurchaseLine is one raw-material purchase movement.
type PurchaseLine struct {
	ID         int             `json:"id" db:"id"`
	InvoiceID  *int            `json:"invoice_id,omitempty" db:"invoice_id"`
	SupplierID int             `json:"supplier_id" db:"supplier_id"`
	MaterialID int             `json:"material_id" db:"material_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	Unit       string          `json:"unit" db:"unit"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	DocumentNo string          `json:"document_no" db:"document_no"`
	LineDate   string          `json:"line_date" db:"line_date"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// SalesInvoice mirrors PurchaseInvoice for radiator sales.
type SalesInvoice struct {
	ID            int             `json:"id" db:"id"`
	DocumentNo    string          `json:"document_no" db:"document_no"`
	CustomerID    int             `json:"customer_id" db:"customer_id"`
	InvoiceDate   string          `json:"invoice_date" db:"invoice_date"`
	TotalQuantity decimal.Decimal `json:"total_quantity" db:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
}

// SaleLine is one radiator sale movement.
type SaleLine struct {
	ID         int             `json:"id" db:"id"`
	InvoiceID  *int            `json:"invoice_id,omitempty" db:"invoice_id"`
	CustomerID int             `json:"customer_id" db:"customer_id"`
	ProductID  int             `json:"product_id" db:"product_id"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	DocumentNo string          `json:"document_no" db:"document_no"`
	LineDate   string          `json:"line_date" db:"line_date"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// MovementRow is the flattened list shape for the purchases/sales screens.
type MovementRow struct {
	ID          int             `json:"id"`
	Date        string          `json:"date"`
	PartyName   string          `json:"party_name"`
	ItemName    string          `json:"item_name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	DocumentNo  string          `json:"document_no"`
	InvoiceID   *int            `json:"invoice_id,omitempty"`
}

// InvoiceRow is the grouped list shape (one row per invoice header).
type InvoiceRow struct {
	InvoiceID     int             `json:"invoice_id"`
	DocumentNo    string          `json:"document_no"`
	Date          string          `json:"date"`
	PartyName     string          `json:"party_name"`
	TotalQuantity decimal.Decimal `json:"total_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	LineCount     int             `json:"line_count"`
	ItemsSummary  string          `json:"items_summary"`
}

// InvoiceLineDetail is one line inside the invoice-detail drawer.
type InvoiceLineDetail struct {
	ID        int             `json:"id"`
	ItemName  string          `json:"item_name"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Total     decimal.Decimal `json:"total"`
}

// InvoiceDetail is the full invoice drawer payload.
type InvoiceDetail struct {
	InvoiceID     int                 `json:"invoice_id"`
	DocumentNo    string              `json:"document_no"`
	Date          string              `json:"date"`
	PartyName     string              `json:"party_name"`
	PartyPhone    *string             `json:"party_phone,omitempty"`
	PartyAddress  *string             `json:"party_address,omitempty"`
	TotalQuantity decimal.Decimal     `json:"total_quantity"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	Lines         []InvoiceLineDetail `json:"lines"`
}
