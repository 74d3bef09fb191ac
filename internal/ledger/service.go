package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/comicvault/comicvault-backend/pkg/db"
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
)

// Service defines operations that record and query ledger entries.
type Service interface {
	WithTx(tx *gorm.DB) Service
	Append(ctx context.Context, input AppendEntryInput) (*models.LedgerEntry, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*EntryList, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error)
	HasEntry(ctx context.Context, orderID uuid.UUID, entryType enums.LedgerEntryType) (bool, error)
}

// AppendEntryInput captures the immutable data a ledger entry requires.
type AppendEntryInput struct {
	SellerID    uuid.UUID             `json:"seller_id"`
	OrderID     *uuid.UUID            `json:"order_id,omitempty"`
	EntryType   enums.LedgerEntryType `json:"entry_type"`
	AmountCents int64                 `json:"amount_cents"`
	Currency    enums.Currency        `json:"currency"`
	Description string                `json:"description"`
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{repo: s.repo.WithTx(tx)}
}

// Append records one immutable ledger fact. A second append for the same
// (order, entry type) pair surfaces as CodeConflict; callers treat that as
// already recorded.
func (s *service) Append(ctx context.Context, input AppendEntryInput) (*models.LedgerEntry, error) {
	if input.SellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if input.OrderID != nil && *input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id must not be the zero uuid")
	}
	if !input.EntryType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", input.EntryType))
	}
	if input.AmountCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a non-negative magnitude")
	}
	currency := input.Currency
	if currency == "" {
		currency = enums.CurrencyUSD
	}
	if !currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid currency %q", currency))
	}

	entry := &models.LedgerEntry{
		SellerID:    input.SellerID,
		OrderID:     input.OrderID,
		EntryType:   input.EntryType,
		AmountCents: input.AmountCents,
		Currency:    currency,
		Description: input.Description,
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if dbpkg.IsUniqueViolation(err, "ux_ledger_entries_order_entry_type") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "ledger entry already recorded")
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*EntryList, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	return s.repo.ListBySeller(ctx, sellerID, params)
}

func (s *service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.ListByOrderID(ctx, orderID)
}

func (s *service) HasEntry(ctx context.Context, orderID uuid.UUID, entryType enums.LedgerEntryType) (bool, error) {
	if orderID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	if !entryType.IsValid() {
		return false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger entry type %q", entryType))
	}

	entries, err := s.repo.ListByOrderID(ctx, orderID)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.EntryType == entryType {
			return true, nil
		}
	}
	return false, nil
}
