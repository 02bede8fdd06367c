package enums

// OutboxEventType enumerates the domain events recorded via the outbox.
type OutboxEventType string

const (
	EventOrderPlaced       OutboxEventType = "order.placed"
	EventOrderApproved     OutboxEventType = "order.approved"
	EventOrderRejected     OutboxEventType = "order.rejected"
	EventOrderCancelled    OutboxEventType = "order.cancelled"
	EventOrderAssigned     OutboxEventType = "order.assigned"
	EventOrderDispatched   OutboxEventType = "order.dispatched"
	EventOrderDelivered    OutboxEventType = "order.delivered"
	EventItemsRejected     OutboxEventType = "order.items_rejected"
	EventComplaintReceived OutboxEventType = "complaint.received"
	EventPayoutSettled     OutboxEventType = "payout.settled"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPlaced,
	EventOrderApproved,
	EventOrderRejected,
	EventOrderCancelled,
	EventOrderAssigned,
	EventOrderDispatched,
	EventOrderDelivered,
	EventItemsRejected,
	EventComplaintReceived,
	EventPayoutSettled,
}

// IsValid reports whether the value is a known OutboxEventType.
func (o OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == o {
			return true
		}
	}
	return false
}

// OutboxAggregateType names the entity an outbox event refers to.
type OutboxAggregateType string

const (
	AggregateOrder     OutboxAggregateType = "order"
	AggregateComplaint OutboxAggregateType = "complaint"
	AggregateLedger    OutboxAggregateType = "ledger"
)
