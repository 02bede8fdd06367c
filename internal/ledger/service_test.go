package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	pkgerrors "github.com/Swapnil-code-maker/swiftstore-backend/pkg/errors"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/outbox"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
)

type revenueCall struct {
	gross      decimal.Decimal
	commission decimal.Decimal
	fee        decimal.Decimal
	orders     int
}

type stubLedgerRepo struct {
	entries      []models.LedgerEntry
	revenue      *revenueCall
	pending      []models.LedgerEntry
	settledCount int64
}

func (s *stubLedgerRepo) WithTx(tx *gorm.DB) Repository {
	return s
}

func (s *stubLedgerRepo) CreateEntries(ctx context.Context, entries []models.LedgerEntry) error {
	s.entries = append(s.entries, entries...)
	return nil
}

func (s *stubLedgerRepo) ListEntries(ctx context.Context, params pagination.Params, filters EntryFilters) (*EntryList, error) {
	panic("not implemented")
}

func (s *stubLedgerRepo) FindPendingByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.LedgerEntry, error) {
	return s.pending, nil
}

func (s *stubLedgerRepo) SettleVendor(ctx context.Context, vendorID, adminID uuid.UUID, settledAt time.Time) (int64, error) {
	s.settledCount = int64(len(s.pending))
	return s.settledCount, nil
}

func (s *stubLedgerRepo) AccumulateDailyRevenue(ctx context.Context, day time.Time, gross, commission, fee decimal.Decimal, orders int) error {
	s.revenue = &revenueCall{gross: gross, commission: commission, fee: fee, orders: orders}
	return nil
}

func (s *stubLedgerRepo) ListDailyRevenue(ctx context.Context, filters RevenueFilters) ([]RevenueView, error) {
	panic("not implemented")
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func fakeTx() *gorm.DB {
	return &gorm.DB{}
}

func TestPostForOrderWritesOneEntryPerApprovedItem(t *testing.T) {
	repo := &stubLedgerRepo{}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	vendorID := uuid.New()
	order := &models.Order{ID: uuid.New()}
	items := []models.OrderItem{
		{
			ID:              uuid.New(),
			VendorID:        vendorID,
			Quantity:        2,
			PriceAtPurchase: dec("100.00"),
			CommissionRate:  dec("0.10"),
			Status:          enums.OrderItemStatusApproved,
		},
		{
			ID:              uuid.New(),
			VendorID:        vendorID,
			Quantity:        1,
			PriceAtPurchase: dec("40.00"),
			CommissionRate:  dec("0.10"),
			Status:          enums.OrderItemStatusRejected,
		},
	}

	if err := svc.PostForOrder(context.Background(), fakeTx(), order, items); err != nil {
		t.Fatalf("post for order: %v", err)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(repo.entries))
	}

	entry := repo.entries[0]
	if !entry.GrossAmount.Equal(dec("200.00")) {
		t.Fatalf("gross = %s, want 200.00", entry.GrossAmount)
	}
	if !entry.Commission.Equal(dec("20.00")) {
		t.Fatalf("commission = %s, want 20.00", entry.Commission)
	}
	if !entry.GatewayFee.Equal(dec("4.00")) {
		t.Fatalf("gateway fee = %s, want 4.00", entry.GatewayFee)
	}
	if !entry.NetAmount.Equal(dec("176.00")) {
		t.Fatalf("net = %s, want 176.00", entry.NetAmount)
	}
	if !entry.DeliveryDeduction.IsZero() {
		t.Fatalf("delivery deduction should be zero, got %s", entry.DeliveryDeduction)
	}
	if entry.Status != enums.LedgerEntryStatusPending {
		t.Fatalf("status = %s, want pending", entry.Status)
	}

	if repo.revenue == nil {
		t.Fatal("expected daily revenue accumulation")
	}
	if !repo.revenue.gross.Equal(dec("200.00")) || repo.revenue.orders != 1 {
		t.Fatalf("revenue call = %+v", repo.revenue)
	}
}

func TestPostForOrderNothingApproved(t *testing.T) {
	repo := &stubLedgerRepo{}
	svc, err := NewService(repo, stubTxRunner{}, &stubOutboxPublisher{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	items := []models.OrderItem{
		{ID: uuid.New(), Status: enums.OrderItemStatusRejected, PriceAtPurchase: dec("10.00"), Quantity: 1},
	}
	if err := svc.PostForOrder(context.Background(), fakeTx(), &models.Order{ID: uuid.New()}, items); err != nil {
		t.Fatalf("post for order: %v", err)
	}
	if len(repo.entries) != 0 || repo.revenue != nil {
		t.Fatal("expected no writes when nothing is approved")
	}
}

func TestSettleMarksPendingAndEmits(t *testing.T) {
	vendorID := uuid.New()
	repo := &stubLedgerRepo{
		pending: []models.LedgerEntry{
			{VendorID: vendorID, NetAmount: dec("176.00"), Status: enums.LedgerEntryStatusPending},
			{VendorID: vendorID, NetAmount: dec("24.00"), Status: enums.LedgerEntryStatusPending},
		},
	}
	pub := &stubOutboxPublisher{}
	svc, err := NewService(repo, stubTxRunner{}, pub)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	result, err := svc.Settle(context.Background(), SettleInput{
		VendorID:    vendorID,
		AdminUserID: uuid.New(),
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}
	if result.EntryCount != 2 {
		t.Fatalf("entry count = %d, want 2", result.EntryCount)
	}
	if !result.SettledTotal.Equal(dec("200.00")) {
		t.Fatalf("settled total = %s, want 200.00", result.SettledTotal)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventPayoutSettled {
		t.Fatalf("expected payout settled event, got %+v", pub.events)
	}
}

func TestSettleNothingPending(t *testing.T) {
	svc, err := NewService(&stubLedgerRepo{}, stubTxRunner{}, &stubOutboxPublisher{})
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}

	_, err = svc.Settle(context.Background(), SettleInput{
		VendorID:    uuid.New(),
		AdminUserID: uuid.New(),
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
