package orders

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
)

// Repository reads the order system of record and writes the two fields the
// settlement engine owns: payout_status and payout_hold_until. Audit timeline
// rows are appended here too.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListSettleable(ctx context.Context, sellerID *uuid.UUID) ([]models.Order, error)
	ListWithoutEvents(ctx context.Context) ([]models.Order, error)
	UpdatePayoutStatus(ctx context.Context, orderID uuid.UUID, status enums.PayoutStatus) error
	UpdatePayoutHoldUntil(ctx context.Context, orderID uuid.UUID, holdUntil time.Time) error
	UpdatePaymentCaptured(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error
	CreateStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
	ListEventsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// ListSettleable returns orders that qualify for ledger coverage: payment
// captured or lifecycle completed. Pass a seller id to scope the scan.
func (r *repository) ListSettleable(ctx context.Context, sellerID *uuid.UUID) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Where("payment_status = ? OR status = ?", enums.PaymentStatusPaid, enums.OrderStatusCompleted)
	if sellerID != nil {
		query = query.Where("seller_id = ?", *sellerID)
	}

	var orders []models.Order
	if err := query.Order("created_at ASC").Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListWithoutEvents(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("NOT EXISTS (SELECT 1 FROM order_status_events e WHERE e.order_id = orders.id)").
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) UpdatePayoutStatus(ctx context.Context, orderID uuid.UUID, status enums.PayoutStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payout_status": status,
			"updated_at":    time.Now(),
		}).Error
}

// UpdatePayoutHoldUntil extends the hold deadline. The guard makes the write
// monotonic at the store, so concurrent delays can never shorten a hold no
// matter what each caller read.
func (r *repository) UpdatePayoutHoldUntil(ctx context.Context, orderID uuid.UUID, holdUntil time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND (payout_hold_until IS NULL OR payout_hold_until < ?)", orderID, holdUntil).
		Updates(map[string]any{
			"payout_hold_until": holdUntil,
			"updated_at":        time.Now(),
		}).Error
}

func (r *repository) UpdatePaymentCaptured(ctx context.Context, orderID uuid.UUID, paidAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]any{
			"payment_status": enums.PaymentStatusPaid,
			"paid_at":        paidAt,
			"updated_at":     time.Now(),
		}).Error
}

func (r *repository) CreateStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListEventsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error) {
	var events []models.OrderStatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
