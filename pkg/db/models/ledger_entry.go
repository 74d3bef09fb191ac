package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/pkg/enums"
)

// LedgerEntry records one immutable balance-affecting fact for a seller.
// Rows are append-only: corrections happen by inserting offsetting entries,
// never by editing history. The (order_id, entry_type) pair is unique whenever
// order_id is present; that index is the idempotency key for replays.
type LedgerEntry struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID    uuid.UUID             `gorm:"column:seller_id;type:uuid;not null"`
	OrderID     *uuid.UUID            `gorm:"column:order_id;type:uuid"`
	EntryType   enums.LedgerEntryType `gorm:"column:entry_type;type:ledger_entry_type_enum;not null"`
	AmountCents int64                 `gorm:"column:amount_cents;not null"`
	Currency    enums.Currency        `gorm:"column:currency;type:text;not null;default:'USD'"`
	Description string                `gorm:"column:description"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
}
