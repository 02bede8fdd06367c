package complaints

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

// Repository persists customer complaints.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error)
	Find(ctx context.Context, complaintID uuid.UUID) (*models.Complaint, error)
	Update(ctx context.Context, complaintID uuid.UUID, updates map[string]any) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ComplaintList, error)
	List(ctx context.Context, params pagination.Params, status *enums.ComplaintStatus) (*ComplaintList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a complaints repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	if err := r.db.WithContext(ctx).Create(complaint).Error; err != nil {
		return nil, err
	}
	return complaint, nil
}

func (r *repository) Find(ctx context.Context, complaintID uuid.UUID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := r.db.WithContext(ctx).
		Where("id = ?", complaintID).
		First(&complaint).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (r *repository) Update(ctx context.Context, complaintID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("id = ?", complaintID).
		Updates(updates).Error
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ComplaintList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Complaint{}).
		Where("customer_id = ?", customerID)
	return r.list(query, params)
}

func (r *repository) List(ctx context.Context, params pagination.Params, status *enums.ComplaintStatus) (*ComplaintList, error) {
	query := r.db.WithContext(ctx).Model(&models.Complaint{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	return r.list(query, params)
}

func (r *repository) list(query *gorm.DB, params pagination.Params) (*ComplaintList, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Complaint
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &ComplaintList{}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Complaints = append(list.Complaints, toView(&row))
	}
	if hasMore && len(rows) > 0 {
		last := rows[len(rows)-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
