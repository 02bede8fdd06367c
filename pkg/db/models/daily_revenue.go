package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DailyRevenue aggregates platform takings per calendar day (UTC).
// Rows are upserted as orders are delivered so admin reads never scan
// the ledger.
type DailyRevenue struct {
	ID              uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Day             time.Time       `gorm:"column:day;type:date;not null;uniqueIndex"`
	GrossTotal      decimal.Decimal `gorm:"column:gross_total;type:numeric(14,2);not null"`
	CommissionTotal decimal.Decimal `gorm:"column:commission_total;type:numeric(14,2);not null"`
	GatewayFeeTotal decimal.Decimal `gorm:"column:gateway_fee_total;type:numeric(14,2);not null"`
	OrderCount      int             `gorm:"column:order_count;not null;default:0"`
	CreatedAt       time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
