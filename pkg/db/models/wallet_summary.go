package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletSummary is the derived balance view for one seller. It is a projection
// of that seller's ledger entries and can always be rebuilt from them; it is
// never edited independently.
type WalletSummary struct {
	SellerID       uuid.UUID `gorm:"column:seller_id;type:uuid;primaryKey"`
	PendingCents   int64     `gorm:"column:pending_cents;not null;default:0"`
	AvailableCents int64     `gorm:"column:available_cents;not null;default:0"`
	OnHoldCents    int64     `gorm:"column:on_hold_cents;not null;default:0"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
