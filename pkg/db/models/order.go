package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/comicvault/comicvault-backend/pkg/enums"
)

// Order is the order system of record's row, consumed mostly read-only here.
// The settlement engine owns only payout_status and payout_hold_until; the
// order/checkout flow owns everything else, including the hold-duration policy
// that produced payout_hold_until.
type Order struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID        uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	BuyerID         uuid.UUID            `gorm:"column:buyer_id;type:uuid;not null"`
	AmountCents     int64                `gorm:"column:amount_cents;not null"`
	Currency        enums.Currency       `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status          enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'created'"`
	PaymentStatus   enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	ShippingStatus  enums.ShippingStatus `gorm:"column:shipping_status;type:shipping_status;not null;default:'pending'"`
	PayoutStatus    enums.PayoutStatus   `gorm:"column:payout_status;type:payout_status;not null;default:'held'"`
	PayoutHoldUntil *time.Time           `gorm:"column:payout_hold_until"`
	PaidAt          *time.Time           `gorm:"column:paid_at"`
	DeliveredAt     *time.Time           `gorm:"column:delivered_at"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
