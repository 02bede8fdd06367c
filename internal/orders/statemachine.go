package orders

import "github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"

// transitions is the single source of truth for order status changes.
// Anything not listed is a state conflict.
var transitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPlaced: {
		enums.OrderStatusApproved,
		enums.OrderStatusRejected,
		enums.OrderStatusAssigned,
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusApproved: {
		enums.OrderStatusAssigned,
	},
	enums.OrderStatusRejected: {
		enums.OrderStatusCancelled,
	},
	enums.OrderStatusAssigned: {
		enums.OrderStatusPickedUp,
	},
	enums.OrderStatusPickedUp: {
		enums.OrderStatusOutForDelivery,
	},
	enums.OrderStatusOutForDelivery: {
		enums.OrderStatusDelivered,
	},
}

// CanTransition reports whether current may move to target.
func CanTransition(current, target enums.OrderStatus) bool {
	for _, allowed := range transitions[current] {
		if allowed == target {
			return true
		}
	}
	return false
}
