package notifications

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
)

// Message is a rendered notification awaiting recipient resolution.
type Message struct {
	RecipientID uuid.UUID
	Subject     string
	Body        string
}

// ErrUnroutableEvent marks events no template can render. These are
// terminal for the notifier, retrying cannot help.
type ErrUnroutableEvent struct {
	EventType enums.OutboxEventType
}

func (e ErrUnroutableEvent) Error() string {
	return fmt.Sprintf("no notification template for event type %q", e.EventType)
}

func shortID(id uuid.UUID) string {
	return strings.Split(id.String(), "-")[0]
}

// Render maps an outbox event to the email its recipient should get.
func Render(event models.OutboxEvent) (*Message, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode payload envelope: %w", err)
	}

	switch event.EventType {
	case enums.EventOrderPlaced:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
			TotalPrice string    `json:"total_price"`
			ItemCount  int       `json:"item_count"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order placed event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Order %s received", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"We received your order %s with %d item(s) totaling %s. Vendors are reviewing it now.",
				shortID(data.OrderID), data.ItemCount, data.TotalPrice),
		}, nil

	case enums.EventOrderApproved:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order approved event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Order %s approved", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"All vendors approved your order %s. We are finding a delivery agent.",
				shortID(data.OrderID)),
		}, nil

	case enums.EventOrderRejected:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order rejected event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Order %s could not be fulfilled", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"Part of your order %s was rejected by a vendor and the order will not proceed. Reserved stock has been released.",
				shortID(data.OrderID)),
		}, nil

	case enums.EventItemsRejected:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
			ItemIDs    []string  `json:"item_ids"`
			Reason     *string   `json:"reason"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode items rejected event: %w", err)
		}
		body := fmt.Sprintf("%d item(s) in your order %s were rejected by the vendor.",
			len(data.ItemIDs), shortID(data.OrderID))
		if data.Reason != nil && strings.TrimSpace(*data.Reason) != "" {
			body += " Reason: " + strings.TrimSpace(*data.Reason)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Items rejected in order %s", shortID(data.OrderID)),
			Body:        body,
		}, nil

	case enums.EventOrderCancelled:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order cancelled event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Order %s cancelled", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"Your order %s has been cancelled and reserved stock released.",
				shortID(data.OrderID)),
		}, nil

	case enums.EventOrderAssigned:
		var data struct {
			OrderID uuid.UUID `json:"order_id"`
			AgentID uuid.UUID `json:"agent_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order assigned event: %w", err)
		}
		// The agent gets the assignment notice, the customer hears
		// again at dispatch.
		return &Message{
			RecipientID: data.AgentID,
			Subject:     fmt.Sprintf("New delivery assignment %s", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"Order %s has been assigned to you. Pick it up from the vendor when ready.",
				shortID(data.OrderID)),
		}, nil

	case enums.EventOrderDispatched:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
			Code       string    `json:"code"`
			Reissued   bool      `json:"reissued"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order dispatched event: %w", err)
		}
		subject := fmt.Sprintf("Order %s is out for delivery", shortID(data.OrderID))
		if data.Reissued {
			subject = fmt.Sprintf("New delivery code for order %s", shortID(data.OrderID))
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     subject,
			Body: fmt.Sprintf(
				"Your order %s is on its way. Share code %s with the delivery agent to confirm handover. The code expires 10 minutes after dispatch.",
				shortID(data.OrderID), data.Code),
		}, nil

	case enums.EventOrderDelivered:
		var data struct {
			OrderID    uuid.UUID `json:"order_id"`
			CustomerID uuid.UUID `json:"customer_id"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode order delivered event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Order %s delivered", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"Your order %s has been delivered. You can rate your delivery experience in the app.",
				shortID(data.OrderID)),
		}, nil

	case enums.EventComplaintReceived:
		var data struct {
			ComplaintID uuid.UUID `json:"complaint_id"`
			OrderID     uuid.UUID `json:"order_id"`
			CustomerID  uuid.UUID `json:"customer_id"`
			Subject     string    `json:"subject"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode complaint received event: %w", err)
		}
		return &Message{
			RecipientID: data.CustomerID,
			Subject:     fmt.Sprintf("Complaint received for order %s", shortID(data.OrderID)),
			Body: fmt.Sprintf(
				"We logged your complaint %q about order %s. The vendor will reply shortly.",
				data.Subject, shortID(data.OrderID)),
		}, nil

	case enums.EventPayoutSettled:
		var data struct {
			VendorID     uuid.UUID `json:"vendor_id"`
			EntryCount   int       `json:"entry_count"`
			SettledTotal string    `json:"settled_total"`
		}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, fmt.Errorf("decode payout settled event: %w", err)
		}
		return &Message{
			RecipientID: data.VendorID,
			Subject:     "Payout settled",
			Body: fmt.Sprintf(
				"%d ledger entries totaling %s have been settled to your account.",
				data.EntryCount, data.SettledTotal),
		}, nil
	}

	return nil, ErrUnroutableEvent{EventType: event.EventType}
}
