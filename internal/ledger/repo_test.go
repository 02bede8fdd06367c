package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/db/models"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/enums"
	"github.com/Swapnil-code-maker/swiftstore-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	entries := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  order_item_id TEXT NOT NULL UNIQUE,
  vendor_id TEXT NOT NULL,
  gross_amount NUMERIC NOT NULL,
  commission NUMERIC NOT NULL,
  gateway_fee NUMERIC NOT NULL,
  delivery_deduction NUMERIC NOT NULL DEFAULT 0,
  net_amount NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  settled_at DATETIME,
  settled_by_admin TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	revenue := `
CREATE TABLE IF NOT EXISTS daily_revenues (
  id TEXT PRIMARY KEY,
  day DATETIME NOT NULL UNIQUE,
  gross_total NUMERIC NOT NULL,
  commission_total NUMERIC NOT NULL,
  gateway_fee_total NUMERIC NOT NULL,
  order_count INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(entries).Error)
	require.NoError(t, db.Exec(revenue).Error)
	return db
}

func seedEntry(t *testing.T, db *gorm.DB, vendorID uuid.UUID, net string, status enums.LedgerEntryStatus, created time.Time) *models.LedgerEntry {
	t.Helper()

	entry := &models.LedgerEntry{
		ID:                uuid.New(),
		OrderID:           uuid.New(),
		OrderItemID:       uuid.New(),
		VendorID:          vendorID,
		GrossAmount:       dec("100.00"),
		Commission:        dec("10.00"),
		GatewayFee:        dec("2.00"),
		DeliveryDeduction: decimal.Zero,
		NetAmount:         dec(net),
		Status:            status,
		CreatedAt:         created,
		UpdatedAt:         created,
	}
	require.NoError(t, db.Create(entry).Error)
	return entry
}

func TestRepositorySettleVendorOnlyTouchesPending(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	vendorID := uuid.New()
	now := time.Now().UTC()
	seedEntry(t, db, vendorID, "88.00", enums.LedgerEntryStatusPending, now)
	seedEntry(t, db, vendorID, "50.00", enums.LedgerEntryStatusSettled, now)
	seedEntry(t, db, uuid.New(), "30.00", enums.LedgerEntryStatusPending, now)

	adminID := uuid.New()
	count, err := repo.SettleVendor(context.Background(), vendorID, adminID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	var remaining int64
	require.NoError(t, db.Model(&models.LedgerEntry{}).
		Where("vendor_id = ? AND status = ?", vendorID, enums.LedgerEntryStatusPending).
		Count(&remaining).Error)
	assert.Zero(t, remaining)

	var settled models.LedgerEntry
	require.NoError(t, db.
		Where("vendor_id = ? AND net_amount = ?", vendorID, dec("88.00")).
		First(&settled).Error)
	require.NotNil(t, settled.SettledByAdmin)
	assert.Equal(t, adminID, *settled.SettledByAdmin)
	assert.NotNil(t, settled.SettledAt)
}

func TestRepositoryListEntriesFilters(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	vendorID := uuid.New()
	now := time.Now().UTC()
	seedEntry(t, db, vendorID, "88.00", enums.LedgerEntryStatusPending, now)
	seedEntry(t, db, vendorID, "44.00", enums.LedgerEntryStatusSettled, now.Add(-time.Minute))
	seedEntry(t, db, uuid.New(), "10.00", enums.LedgerEntryStatusPending, now)

	status := enums.LedgerEntryStatusPending
	list, err := repo.ListEntries(context.Background(), pagination.Params{Limit: 10}, EntryFilters{
		VendorID: &vendorID,
		Status:   &status,
	})
	require.NoError(t, err)
	require.Len(t, list.Entries, 1)
	assert.Equal(t, vendorID, list.Entries[0].VendorID)
	assert.True(t, list.Entries[0].NetAmount.Equal(dec("88.00")))
}

func TestRepositoryAccumulateDailyRevenueUpserts(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	day := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	require.NoError(t, repo.AccumulateDailyRevenue(ctx, day, dec("200.00"), dec("20.00"), dec("4.00"), 1))
	require.NoError(t, repo.AccumulateDailyRevenue(ctx, day, dec("100.00"), dec("10.00"), dec("2.00"), 1))

	views, err := repo.ListDailyRevenue(ctx, RevenueFilters{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].GrossTotal.Equal(dec("300.00")), "gross = %s", views[0].GrossTotal)
	assert.True(t, views[0].CommissionTotal.Equal(dec("30.00")))
	assert.True(t, views[0].GatewayFeeTotal.Equal(dec("6.00")))
	assert.Equal(t, 2, views[0].OrderCount)
}

func TestRepositoryListDailyRevenueWindow(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)

	ctx := context.Background()
	dayOld := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	dayNew := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.AccumulateDailyRevenue(ctx, dayOld, dec("50.00"), dec("5.00"), dec("1.00"), 1))
	require.NoError(t, repo.AccumulateDailyRevenue(ctx, dayNew, dec("70.00"), dec("7.00"), dec("1.40"), 1))

	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	views, err := repo.ListDailyRevenue(ctx, RevenueFilters{From: &from})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].GrossTotal.Equal(dec("70.00")))
}
