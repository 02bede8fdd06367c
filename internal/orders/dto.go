package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// PlaceOrderItemInput is one requested line at placement time.
type PlaceOrderItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// PlaceOrderInput captures everything needed to create an order.
type PlaceOrderInput struct {
	CustomerID uuid.UUID
	Address    string
	Latitude   float64
	Longitude  float64
	Items      []PlaceOrderItemInput
}

// ItemDecision captures the actions vendors can take on their items.
type ItemDecision string

const (
	ItemDecisionApprove ItemDecision = "approve"
	ItemDecisionReject  ItemDecision = "reject"
)

// ItemsDecisionInput carries a vendor's decision over a set of items.
type ItemsDecisionInput struct {
	OrderID     uuid.UUID
	ItemIDs     []uuid.UUID
	Decision    ItemDecision
	Reason      *string
	ActorUserID uuid.UUID
	ActorRole   string
}

// CancelOrderInput identifies the order a customer wants to cancel.
type CancelOrderInput struct {
	OrderID     uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   string
}

// CustomerOrderFilters describe the inputs supported by the customer list.
type CustomerOrderFilters struct {
	Status   *enums.OrderStatus
	DateFrom *time.Time
	DateTo   *time.Time
}

// ItemSummary is the per-line view returned inside order summaries.
type ItemSummary struct {
	ID              uuid.UUID             `json:"id"`
	ProductID       uuid.UUID             `json:"product_id"`
	VendorID        uuid.UUID             `json:"vendor_id"`
	Name            string                `json:"name"`
	Quantity        int                   `json:"quantity"`
	PriceAtPurchase decimal.Decimal       `json:"price_at_purchase"`
	Status          enums.OrderItemStatus `json:"status"`
	RejectionReason *string               `json:"rejection_reason,omitempty"`
}

// OrderSummary exposes the aggregated fields returned in list endpoints.
type OrderSummary struct {
	ID         uuid.UUID         `json:"id"`
	Status     enums.OrderStatus `json:"status"`
	TotalPrice decimal.Decimal   `json:"total_price"`
	Address    string            `json:"address"`
	ItemCount  int               `json:"item_count"`
	CreatedAt  time.Time         `json:"created_at"`
}

// OrderDetail is the full order view including items.
type OrderDetail struct {
	ID          uuid.UUID         `json:"id"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	AgentID     *uuid.UUID        `json:"agent_id,omitempty"`
	Status      enums.OrderStatus `json:"status"`
	TotalPrice  decimal.Decimal   `json:"total_price"`
	Address     string            `json:"address"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Items       []ItemSummary     `json:"items"`
	CreatedAt   time.Time         `json:"created_at"`
	DeliveredAt *time.Time        `json:"delivered_at,omitempty"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}
