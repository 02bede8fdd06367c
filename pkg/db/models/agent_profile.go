package models

import (
	"time"

	"github.com/google/uuid"
)

// AgentProfile holds the delivery-specific state for users with the
// delivery role. Location and verification live here rather than on the
// users table so the identity entity stays role-agnostic.
type AgentProfile struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	IsVerified bool       `gorm:"column:is_verified;not null;default:false"`
	Latitude   *float64   `gorm:"column:latitude"`
	Longitude  *float64   `gorm:"column:longitude"`
	LocatedAt  *time.Time `gorm:"column:located_at"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
