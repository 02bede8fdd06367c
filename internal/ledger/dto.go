package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// EntryView is one ledger row as returned to admins.
type EntryView struct {
	ID                uuid.UUID               `json:"id"`
	OrderID           uuid.UUID               `json:"order_id"`
	OrderItemID       uuid.UUID               `json:"order_item_id"`
	VendorID          uuid.UUID               `json:"vendor_id"`
	GrossAmount       decimal.Decimal         `json:"gross_amount"`
	Commission        decimal.Decimal         `json:"commission"`
	GatewayFee        decimal.Decimal         `json:"gateway_fee"`
	DeliveryDeduction decimal.Decimal         `json:"delivery_deduction"`
	NetAmount         decimal.Decimal         `json:"net_amount"`
	Status            enums.LedgerEntryStatus `json:"status"`
	SettledAt         *time.Time              `json:"settled_at,omitempty"`
	CreatedAt         time.Time               `json:"created_at"`
}

// EntryList wraps a paginated ledger page.
type EntryList struct {
	Entries    []EntryView `json:"entries"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// EntryFilters narrows admin ledger reads.
type EntryFilters struct {
	VendorID *uuid.UUID
	Status   *enums.LedgerEntryStatus
}

// SettleInput marks a vendor's pending entries settled.
type SettleInput struct {
	VendorID     uuid.UUID
	AdminUserID  uuid.UUID
	AdminRoleRaw string
}

// SettleResult reports what a settlement run touched.
type SettleResult struct {
	VendorID     uuid.UUID       `json:"vendor_id"`
	EntryCount   int             `json:"entry_count"`
	SettledTotal decimal.Decimal `json:"settled_total"`
}

// RevenueView is one daily revenue aggregate row.
type RevenueView struct {
	Day             time.Time       `json:"day"`
	GrossTotal      decimal.Decimal `json:"gross_total"`
	CommissionTotal decimal.Decimal `json:"commission_total"`
	GatewayFeeTotal decimal.Decimal `json:"gateway_fee_total"`
	OrderCount      int             `json:"order_count"`
}

// RevenueFilters bounds the revenue listing window.
type RevenueFilters struct {
	From *time.Time
	To   *time.Time
}
