package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

// Repository defines persistence operations for payout ledger rows and
// the daily revenue aggregate.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateEntries(ctx context.Context, entries []models.LedgerEntry) error
	ListEntries(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error)
	FindPendingByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.LedgerEntry, error)
	SettleVendor(ctx context.Context, vendorID, adminID uuid.UUID, settledAt time.Time) (int64, error)
	AccumulateDailyRevenue(ctx context.Context, day time.Time, gross, commission, fee decimal.Decimal, orders int) error
	ListDailyRevenue(ctx context.Context, filters RevenueFilters) ([]RevenueView, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ledger repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateEntries(ctx context.Context, entries []models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) ListEntries(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	query := r.db.WithContext(ctx).Model(&models.LedgerEntry{})
	if filters.VendorID != nil {
		query = query.Where("vendor_id = ?", *filters.VendorID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}

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
	var rows []models.LedgerEntry
	err = query.
		Order("created_at DESC").
		Order("id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	list := &EntryList{}
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	for _, row := range rows {
		list.Entries = append(list.Entries, EntryView{
			ID:                row.ID,
			OrderID:           row.OrderID,
			OrderItemID:       row.OrderItemID,
			VendorID:          row.VendorID,
			GrossAmount:       row.GrossAmount,
			Commission:        row.Commission,
			GatewayFee:        row.GatewayFee,
			DeliveryDeduction: row.DeliveryDeduction,
			NetAmount:         row.NetAmount,
			Status:            row.Status,
			SettledAt:         row.SettledAt,
			CreatedAt:         row.CreatedAt,
		})
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

func (r *repository) FindPendingByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("vendor_id = ? AND status = ?", vendorID, enums.LedgerEntryStatusPending).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SettleVendor(ctx context.Context, vendorID, adminID uuid.UUID, settledAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.LedgerEntry{}).
		Where("vendor_id = ? AND status = ?", vendorID, enums.LedgerEntryStatusPending).
		Updates(map[string]any{
			"status":           enums.LedgerEntryStatusSettled,
			"settled_at":       settledAt,
			"settled_by_admin": adminID,
		})
	return res.RowsAffected, res.Error
}

// AccumulateDailyRevenue upserts the aggregate row for the given UTC day.
func (r *repository) AccumulateDailyRevenue(ctx context.Context, day time.Time, gross, commission, fee decimal.Decimal, orders int) error {
	row := models.DailyRevenue{
		ID:              uuid.New(),
		Day:             day,
		GrossTotal:      gross,
		CommissionTotal: commission,
		GatewayFeeTotal: fee,
		OrderCount:      orders,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "day"}},
			DoUpdates: clause.Assignments(map[string]any{
				"gross_total":       gorm.Expr("daily_revenues.gross_total + ?", gross),
				"commission_total":  gorm.Expr("daily_revenues.commission_total + ?", commission),
				"gateway_fee_total": gorm.Expr("daily_revenues.gateway_fee_total + ?", fee),
				"order_count":       gorm.Expr("daily_revenues.order_count + ?", orders),
			}),
		}).
		Create(&row).Error
}

func (r *repository) ListDailyRevenue(ctx context.Context, filters RevenueFilters) ([]RevenueView, error) {
	query := r.db.WithContext(ctx).Model(&models.DailyRevenue{})
	if filters.From != nil {
		query = query.Where("day >= ?", *filters.From)
	}
	if filters.To != nil {
		query = query.Where("day <= ?", *filters.To)
	}

	var rows []models.DailyRevenue
	if err := query.Order("day DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	views := make([]RevenueView, 0, len(rows))
	for _, row := range rows {
		views = append(views, RevenueView{
			Day:             row.Day,
			GrossTotal:      row.GrossTotal,
			CommissionTotal: row.CommissionTotal,
			GatewayFeeTotal: row.GatewayFeeTotal,
			OrderCount:      row.OrderCount,
		})
	}
	return views, nil
}
