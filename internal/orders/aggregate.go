package orders

import "github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"

// AggregateOrderStatus derives the order-level status from the item-status
// multiset after a vendor decision. Any rejected item sinks the whole order;
// an order with no pending items left and no rejections is approved; while
// items remain pending the order stays placed. Once rejected, if nothing
// remains pending or approved the order collapses to cancelled.
func AggregateOrderStatus(items []enums.OrderItemStatus) enums.OrderStatus {
	pending := 0
	approved := 0
	rejected := 0
	for _, status := range items {
		switch status {
		case enums.OrderItemStatusPending:
			pending++
		case enums.OrderItemStatusApproved:
			approved++
		case enums.OrderItemStatusRejected:
			rejected++
		}
	}

	if rejected > 0 {
		if pending == 0 && approved == 0 {
			return enums.OrderStatusCancelled
		}
		return enums.OrderStatusRejected
	}
	if pending == 0 && approved > 0 {
		return enums.OrderStatusApproved
	}
	return enums.OrderStatusPlaced
}
