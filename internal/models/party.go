package models

import "time"

// Supplier sells raw materials to the company.
type Supplier struct {
	ID            int       `json:"id" db:"id"`
	Name          string    `json:"name" db:"name"`
	ContactPerson *string   `json:"contact_person,omitempty" db:"contact_person"`
	Phone         *string   `json:"phone,omitempty" db:"phone"`
	Address       *string   `json:"address,omitempty" db:"address"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Customer buys finished radiators.
type Customer struct {
	ID           int       `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CustomerType string    `json:"customer_type" db:"customer_type"`
	TaxNumber    *string   `json:"tax_number,omitempty" db:"tax_number"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Address      *string   `json:"address,omitempty" db:"address"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// PartyRef is the slim id+name shape used by dropdowns.
type PartyRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
