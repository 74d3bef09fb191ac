package wallet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/internal/ledger"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
)

// Service exposes the wallet projection operations.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Recalculate(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error)
	GetSummary(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error)
}

type service struct {
	repo       Repository
	ledgerRepo ledger.Repository
}

// NewService wires the wallet aggregator with its repositories.
func NewService(repo Repository, ledgerRepo ledger.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo, ledgerRepo: ledgerRepo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{
		repo:       s.repo.WithTx(tx),
		ledgerRepo: s.ledgerRepo.WithTx(tx),
	}
}

// Recalculate rebuilds the seller's summary from the full ledger snapshot and
// upserts it. Running it twice on an unchanged ledger yields the same row.
func (s *service) Recalculate(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}

	entries, err := s.ledgerRepo.ListAllBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}

	totals := foldEntries(entries)
	summary := &models.WalletSummary{
		SellerID:       sellerID,
		PendingCents:   totals.PendingCents,
		AvailableCents: totals.AvailableCents,
		OnHoldCents:    totals.OnHoldCents,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := s.repo.Upsert(ctx, summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// GetSummary returns the stored projection, or an all-zero summary for a
// seller with no ledger history yet.
func (s *service) GetSummary(ctx context.Context, sellerID uuid.UUID) (*models.WalletSummary, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}

	summary, err := s.repo.FindBySeller(ctx, sellerID)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return &models.WalletSummary{SellerID: sellerID}, nil
	}
	return summary, nil
}
