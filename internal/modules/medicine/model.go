package medicine

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Medicine is a catalog item sold by the pharmacy.
type Medicine struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image,omitempty"`
	Category     string          `json:"category"`
	Stock        int             `json:"stock"`
	Manufacturer string          `json:"manufacturer,omitempty"`
	Dosage       string          `json:"dosage,omitempty"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	Featured     bool            `json:"featured"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// ListFilter narrows the catalog listing.
type ListFilter struct {
	Category string
	Search   string
	Featured bool
	Limit    int
}

// UpsertRequest is the payload for creating or updating a medicine.
type UpsertRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Price        decimal.Decimal `json:"price"`
	Image        string          `json:"image"`
	Category     string          `json:"category"`
	Stock        *int            `json:"stock"`
	Manufacturer string          `json:"manufacturer"`
	Dosage       string          `json:"dosage"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
	Featured     *bool           `json:"featured"`
}
