package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/payout"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service defines payout ledger operations.
type Service interface {
	// PostForOrder writes one pending entry per approved item and folds
	// the totals into the daily revenue row. It must run inside the
	// delivery confirmation transaction.
	PostForOrder(ctx context.Context, tx *gorm.DB, order *models.Order, items []models.OrderItem) error
	ListLedger(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error)
	Settle(ctx context.Context, input SettleInput) (*SettleResult, error)
	ListRevenue(ctx context.Context, filters RevenueFilters) ([]RevenueView, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// PayoutSettledEvent is emitted when an admin settles a vendor's entries.
type PayoutSettledEvent struct {
	VendorID     uuid.UUID       `json:"vendor_id"`
	EntryCount   int             `json:"entry_count"`
	SettledTotal decimal.Decimal `json:"settled_total"`
}

// NewService builds a ledger service with the required dependencies.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) PostForOrder(ctx context.Context, tx *gorm.DB, order *models.Order, items []models.OrderItem) error {
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for ledger posting")
	}
	if order == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	repo := s.repo.WithTx(tx)
	entries := make([]models.LedgerEntry, 0, len(items))
	total := payout.Split{
		Gross:      decimal.Zero,
		Commission: decimal.Zero,
		GatewayFee: decimal.Zero,
		Net:        decimal.Zero,
	}
	for _, item := range items {
		if item.Status != enums.OrderItemStatusApproved {
			continue
		}
		line := payout.Line{
			Price:          item.PriceAtPurchase,
			Quantity:       item.Quantity,
			CommissionRate: item.CommissionRate,
		}
		split := payout.Compute(line)
		total = payout.Accumulate(total, line)
		entries = append(entries, models.LedgerEntry{
			OrderID:           order.ID,
			OrderItemID:       item.ID,
			VendorID:          item.VendorID,
			GrossAmount:       split.Gross,
			Commission:        split.Commission,
			GatewayFee:        split.GatewayFee,
			DeliveryDeduction: decimal.Zero,
			NetAmount:         split.Net,
			Status:            enums.LedgerEntryStatusPending,
		})
	}
	if len(entries) == 0 {
		return nil
	}

	if err := repo.CreateEntries(ctx, entries); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post ledger entries")
	}

	day := time.Now().UTC().Truncate(24 * time.Hour)
	err := repo.AccumulateDailyRevenue(ctx, day, total.Gross, total.Commission, total.GatewayFee, 1)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "accumulate daily revenue")
	}
	return nil
}

func (s *service) ListLedger(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	list, err := s.repo.ListEntries(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list ledger entries")
	}
	return list, nil
}

func (s *service) Settle(ctx context.Context, input SettleInput) (*SettleResult, error) {
	if input.VendorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vendor id required")
	}
	if input.AdminUserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin identity missing")
	}

	var result *SettleResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		pending, err := repo.FindPendingByVendor(ctx, input.VendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending entries")
		}
		if len(pending) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no pending entries for vendor")
		}

		total := decimal.Zero
		for _, entry := range pending {
			total = total.Add(entry.NetAmount)
		}

		now := time.Now()
		count, err := repo.SettleVendor(ctx, input.VendorID, input.AdminUserID, now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "settle vendor entries")
		}

		result = &SettleResult{
			VendorID:     input.VendorID,
			EntryCount:   int(count),
			SettledTotal: total,
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventPayoutSettled,
			AggregateType: enums.AggregateLedger,
			AggregateID:   input.VendorID,
			Version:       1,
			Actor: &outbox.ActorRef{
				UserID: input.AdminUserID,
				Role:   enums.UserRoleAdmin.String(),
			},
			Data: PayoutSettledEvent{
				VendorID:     input.VendorID,
				EntryCount:   result.EntryCount,
				SettledTotal: total,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) ListRevenue(ctx context.Context, filters RevenueFilters) ([]RevenueView, error) {
	views, err := s.repo.ListDailyRevenue(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list daily revenue")
	}
	return views, nil
}
