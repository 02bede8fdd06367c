package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// Order is the customer-facing aggregate spanning all vendor items.
type Order struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID    uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	AgentID       *uuid.UUID        `gorm:"column:agent_id;type:uuid;index"`
	Status        enums.OrderStatus `gorm:"column:status;type:text;not null;default:'placed'"`
	TotalPrice    decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Address       string            `gorm:"column:address;not null"`
	Latitude      float64           `gorm:"column:latitude;not null"`
	Longitude     float64           `gorm:"column:longitude;not null"`
	DeliveryOTP   *string           `gorm:"column:delivery_otp"`
	OTPIssuedAt   *time.Time        `gorm:"column:otp_issued_at"`
	AssignedAt    *time.Time        `gorm:"column:assigned_at"`
	PickedUpAt    *time.Time        `gorm:"column:picked_up_at"`
	DispatchedAt  *time.Time        `gorm:"column:dispatched_at"`
	DeliveredAt   *time.Time        `gorm:"column:delivered_at"`
	CancelledAt   *time.Time        `gorm:"column:cancelled_at"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	LedgerEntries []LedgerEntry     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
