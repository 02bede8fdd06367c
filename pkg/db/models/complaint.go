package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
)

// Complaint records a customer issue against a delivered order.
type Complaint struct {
	ID         uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID             `gorm:"column:order_id;type:uuid;not null;index"`
	CustomerID uuid.UUID             `gorm:"column:customer_id;type:uuid;not null;index"`
	Subject    string                `gorm:"column:subject;not null"`
	Body       string                `gorm:"column:body;not null"`
	Status     enums.ComplaintStatus `gorm:"column:status;type:text;not null;default:'open'"`
	Reply      *string               `gorm:"column:reply"`
	RepliedBy  *uuid.UUID            `gorm:"column:replied_by;type:uuid"`
	RepliedAt  *time.Time            `gorm:"column:replied_at"`
	CreatedAt  time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
