package complaints

import (
	"time"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// SubmitInput is a customer's complaint about an order.
type SubmitInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Subject    string
	Body       string
}

// ReplyInput records a vendor or admin response.
type ReplyInput struct {
	ComplaintID uuid.UUID
	Reply       string
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// CloseInput closes a complaint.
type CloseInput struct {
	ComplaintID uuid.UUID
	ActorUserID uuid.UUID
	ActorRole   enums.UserRole
}

// ComplaintView is the complaint as returned over the API.
type ComplaintView struct {
	ID         uuid.UUID             `json:"id"`
	OrderID    uuid.UUID             `json:"order_id"`
	CustomerID uuid.UUID             `json:"customer_id"`
	Subject    string                `json:"subject"`
	Body       string                `json:"body"`
	Status     enums.ComplaintStatus `json:"status"`
	Reply      *string               `json:"reply,omitempty"`
	RepliedAt  *time.Time            `json:"replied_at,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ComplaintList wraps a paginated complaints page.
type ComplaintList struct {
	Complaints []ComplaintView `json:"complaints"`
	NextCursor string          `json:"next_cursor,omitempty"`
}

func toView(complaint *models.Complaint) ComplaintView {
	return ComplaintView{
		ID:         complaint.ID,
		OrderID:    complaint.OrderID,
		CustomerID: complaint.CustomerID,
		Subject:    complaint.Subject,
		Body:       complaint.Body,
		Status:     complaint.Status,
		Reply:      complaint.Reply,
		RepliedAt:  complaint.RepliedAt,
		CreatedAt:  complaint.CreatedAt,
	}
}
