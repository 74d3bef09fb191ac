package payloads

import (
	"time"

	"github.com/google/uuid"
)

// PayoutReleasedEvent is emitted when an order's held funds move to the
// seller's available balance.
type PayoutReleasedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	ReleasedAt  time.Time `json:"released_at"`
}

// OrderPaidEvent signals that payment capture completed for an order.
type OrderPaidEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	SellerID    uuid.UUID `json:"seller_id"`
	BuyerID     uuid.UUID `json:"buyer_id"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	PaidAt      time.Time `json:"paid_at"`
}

// WalletRecomputedEvent reports a fresh wallet summary projection.
type WalletRecomputedEvent struct {
	SellerID       uuid.UUID `json:"seller_id"`
	PendingCents   int64     `json:"pending_cents"`
	AvailableCents int64     `json:"available_cents"`
	OnHoldCents    int64     `json:"on_hold_cents"`
	RecomputedAt   time.Time `json:"recomputed_at"`
}
