package ledger

import (
	"context"

	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for ledger entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.LedgerEntry) error
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*EntryList, error)
	ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error)
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error)
	ExistingOrderKeys(ctx context.Context, entryTypes []enums.LedgerEntryType) (map[OrderEntryKey]bool, error)
}

// OrderEntryKey is the natural idempotency key for order-scoped entries.
type OrderEntryKey struct {
	OrderID   uuid.UUID
	EntryType enums.LedgerEntryType
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*EntryList, error) {
	limit := pagination.NormalizeLimit(params.Limit)

	query := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit + 1)

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.LedgerEntry
	if err := query.Find(&entries).Error; err != nil {
		return nil, err
	}

	list := &EntryList{Entries: entries}
	if len(entries) > limit {
		list.Entries = entries[:limit]
		last := list.Entries[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	var entries []models.LedgerEntry
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ExistingOrderKeys(ctx context.Context, entryTypes []enums.LedgerEntryType) (map[OrderEntryKey]bool, error) {
	var rows []models.LedgerEntry
	query := r.db.WithContext(ctx).
		Select("order_id", "entry_type").
		Where("order_id IS NOT NULL")
	if len(entryTypes) > 0 {
		query = query.Where("entry_type IN ?", entryTypes)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	keys := make(map[OrderEntryKey]bool, len(rows))
	for _, row := range rows {
		if row.OrderID == nil {
			continue
		}
		keys[OrderEntryKey{OrderID: *row.OrderID, EntryType: row.EntryType}] = true
	}
	return keys, nil
}
