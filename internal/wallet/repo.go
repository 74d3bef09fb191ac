package wallet

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/comicvault/comicvault-backend/pkg/db/models"
)

// Repository manages persistence for wallet summaries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Upsert(ctx context.Context, summary *models.WalletSummary) error
	FindBySeller(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a wallet repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Upsert(ctx context.Context, summary *models.WalletSummary) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"pending_cents", "available_cents", "on_hold_cents", "updated_at"}),
		}).
		Create(summary).Error
}

// FindBySeller returns nil when the seller has no summary row yet.
func (r *repository) FindBySeller(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error) {
	var summary models.WalletSummary
	err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &summary, nil
}
