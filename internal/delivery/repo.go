package delivery

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
)

// Repository persists agent-side delivery state.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindAgentProfile(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error)
	UpdateAgentLocation(ctx context.Context, userID uuid.UUID, lat, lon float64, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a delivery repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindAgentProfile(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) UpdateAgentLocation(ctx context.Context, userID uuid.UUID, lat, lon float64, at time.Time) error {
	res := r.db.WithContext(ctx).
		Model(&models.AgentProfile{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{
			"latitude":   lat,
			"longitude":  lon,
			"located_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
