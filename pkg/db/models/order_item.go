package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// OrderItem captures the snapshot of each purchased line within an order.
// Price and commission rate are frozen at purchase time so later product
// edits never change what a vendor is owed.
type OrderItem struct {
	ID              uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID             `gorm:"column:product_id;type:uuid;not null"`
	VendorID        uuid.UUID             `gorm:"column:vendor_id;type:uuid;not null;index"`
	Name            string                `gorm:"column:name;not null"`
	Quantity        int                   `gorm:"column:quantity;not null"`
	PriceAtPurchase decimal.Decimal       `gorm:"column:price_at_purchase;type:numeric(12,2);not null"`
	CommissionRate  decimal.Decimal       `gorm:"column:commission_rate;type:numeric(5,4);not null"`
	Status          enums.OrderItemStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RejectionReason *string               `gorm:"column:rejection_reason"`
	DecidedAt       *time.Time            `gorm:"column:decided_at"`
	CreatedAt       time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
