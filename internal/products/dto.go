package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateProductInput captures a new vendor listing.
type CreateProductInput struct {
	VendorID       uuid.UUID
	Name           string
	Description    *string
	Price          decimal.Decimal
	Stock          int
	CommissionRate decimal.Decimal
}

// UpdateProductInput carries partial edits to an existing listing.
type UpdateProductInput struct {
	ProductID   uuid.UUID
	VendorID    uuid.UUID
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
}

// ProductView is the API shape for a single listing.
type ProductView struct {
	ID             uuid.UUID       `json:"id"`
	VendorID       uuid.UUID       `json:"vendor_id"`
	Name           string          `json:"name"`
	Description    *string         `json:"description,omitempty"`
	Price          decimal.Decimal `json:"price"`
	Stock          int             `json:"stock"`
	CommissionRate decimal.Decimal `json:"commission_rate"`
	IsActive       bool            `json:"is_active"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ProductList wraps the paginated listings plus the next page cursor.
type ProductList struct {
	Products   []ProductView `json:"products"`
	NextCursor string        `json:"next_cursor,omitempty"`
}
