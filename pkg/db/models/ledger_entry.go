package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// LedgerEntry records the payout split for one delivered order item.
// Amounts are immutable once written, only the settlement status advances.
type LedgerEntry struct {
	ID                uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID               `gorm:"column:order_id;type:uuid;not null;index"`
	OrderItemID       uuid.UUID               `gorm:"column:order_item_id;type:uuid;not null;uniqueIndex"`
	VendorID          uuid.UUID               `gorm:"column:vendor_id;type:uuid;not null;index"`
	GrossAmount       decimal.Decimal         `gorm:"column:gross_amount;type:numeric(12,2);not null"`
	Commission        decimal.Decimal         `gorm:"column:commission;type:numeric(12,2);not null"`
	GatewayFee        decimal.Decimal         `gorm:"column:gateway_fee;type:numeric(12,2);not null"`
	DeliveryDeduction decimal.Decimal         `gorm:"column:delivery_deduction;type:numeric(12,2);not null;default:0"`
	NetAmount         decimal.Decimal         `gorm:"column:net_amount;type:numeric(12,2);not null"`
	Status            enums.LedgerEntryStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	SettledAt         *time.Time              `gorm:"column:settled_at"`
	SettledByAdmin    *uuid.UUID              `gorm:"column:settled_by_admin;type:uuid"`
	CreatedAt         time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}
