package ledger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
)

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS ledger_entries (
  id TEXT PRIMARY KEY DEFAULT (lower(hex(randomblob(4))) || '-' || lower(hex(randomblob(2))) || '-4' || substr(lower(hex(randomblob(2))),2) || '-a' || substr(lower(hex(randomblob(2))),2) || '-' || lower(hex(randomblob(6)))),
  seller_id TEXT NOT NULL,
  order_id TEXT,
  entry_type TEXT NOT NULL,
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  description TEXT NOT NULL DEFAULT '',
  created_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS ux_ledger_entries_order_entry_type
  ON ledger_entries (order_id, entry_type)
  WHERE order_id IS NOT NULL;`
	require.NoError(t, db.Exec(ddl).Error)

	return db
}

func TestRepositoryCreateEnforcesOrderEntryUniqueness(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	orderID := uuid.New()

	first := &models.LedgerEntry{
		SellerID:    sellerID,
		OrderID:     &orderID,
		EntryType:   enums.LedgerEntryTypeAvailableCredit,
		AmountCents: 9350,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, repo.Create(ctx, first))

	duplicate := &models.LedgerEntry{
		SellerID:    sellerID,
		OrderID:     &orderID,
		EntryType:   enums.LedgerEntryTypeAvailableCredit,
		AmountCents: 9350,
		Currency:    enums.CurrencyUSD,
	}
	err := repo.Create(ctx, duplicate)
	require.Error(t, err)

	// A different entry type for the same order is a distinct fact.
	fee := &models.LedgerEntry{
		SellerID:    sellerID,
		OrderID:     &orderID,
		EntryType:   enums.LedgerEntryTypeFee,
		AmountCents: 650,
		Currency:    enums.CurrencyUSD,
	}
	require.NoError(t, repo.Create(ctx, fee))

	// Entries without an order id never collide.
	for i := 0; i < 2; i++ {
		unscoped := &models.LedgerEntry{
			SellerID:    sellerID,
			EntryType:   enums.LedgerEntryTypePayout,
			AmountCents: 100,
			Currency:    enums.CurrencyUSD,
		}
		require.NoError(t, repo.Create(ctx, unscoped))
	}
}

func TestRepositoryListBySellerPaginates(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		entry := &models.LedgerEntry{
			ID:          uuid.New(),
			SellerID:    sellerID,
			EntryType:   enums.LedgerEntryTypeAvailableCredit,
			AmountCents: int64(100 * (i + 1)),
			Currency:    enums.CurrencyUSD,
			Description: fmt.Sprintf("entry %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(entry).Error)
	}

	first, err := repo.ListBySeller(ctx, sellerID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Entries, 2)
	require.NotEmpty(t, first.NextCursor)
	assert.Equal(t, int64(300), first.Entries[0].AmountCents)

	second, err := repo.ListBySeller(ctx, sellerID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Entries, 1)
	assert.Empty(t, second.NextCursor)
	assert.Equal(t, int64(100), second.Entries[0].AmountCents)
}

func TestRepositoryExistingOrderKeys(t *testing.T) {
	db := setupLedgerTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	sellerID := uuid.New()
	coveredOrder := uuid.New()
	for _, seed := range []struct {
		entryType enums.LedgerEntryType
		amount    int64
	}{
		{enums.LedgerEntryTypeAvailableCredit, 9350},
		{enums.LedgerEntryTypeFee, 650},
	} {
		orderID := coveredOrder
		require.NoError(t, repo.Create(ctx, &models.LedgerEntry{
			SellerID:    sellerID,
			OrderID:     &orderID,
			EntryType:   seed.entryType,
			AmountCents: seed.amount,
			Currency:    enums.CurrencyUSD,
		}))
	}
	require.NoError(t, repo.Create(ctx, &models.LedgerEntry{
		SellerID:    sellerID,
		EntryType:   enums.LedgerEntryTypePayout,
		AmountCents: 9350,
		Currency:    enums.CurrencyUSD,
	}))

	keys, err := repo.ExistingOrderKeys(ctx, []enums.LedgerEntryType{
		enums.LedgerEntryTypeAvailableCredit,
		enums.LedgerEntryTypeFee,
	})
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.True(t, keys[OrderEntryKey{OrderID: coveredOrder, EntryType: enums.LedgerEntryTypeAvailableCredit}])
	assert.True(t, keys[OrderEntryKey{OrderID: coveredOrder, EntryType: enums.LedgerEntryTypeFee}])
}
