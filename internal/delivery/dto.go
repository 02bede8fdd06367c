package delivery

import (
	"time"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// PickupInput marks an assigned order as collected by the agent.
type PickupInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
}

// DispatchInput starts the final leg and issues the confirmation code.
type DispatchInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
}

// ConfirmInput closes an order with the customer's code.
type ConfirmInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
	Code    string
}

// ResendOTPInput reissues the confirmation code mid-delivery.
type ResendOTPInput struct {
	OrderID uuid.UUID
	AgentID uuid.UUID
}

// LocationInput updates the agent's last reported position.
type LocationInput struct {
	AgentID   uuid.UUID
	Latitude  float64
	Longitude float64
}

// TrackInput identifies the order a customer wants live progress for.
type TrackInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
}

// TrackingView is the customer-facing snapshot of an in-flight
// delivery. Position fields stay nil until the agent reports a
// location.
type TrackingView struct {
	OrderID        uuid.UUID         `json:"order_id"`
	Status         enums.OrderStatus `json:"status"`
	AgentLatitude  *float64          `json:"agent_latitude,omitempty"`
	AgentLongitude *float64          `json:"agent_longitude,omitempty"`
	LocatedAt      *time.Time        `json:"located_at,omitempty"`
	DistanceKm     *float64          `json:"distance_km,omitempty"`
	ETAMinutes     *int              `json:"eta_minutes,omitempty"`
}
