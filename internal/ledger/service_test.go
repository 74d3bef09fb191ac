package ledger

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
	pkgerrors "github.com/comicvault/comicvault-backend/pkg/errors"
	"github.com/comicvault/comicvault-backend/pkg/pagination"
)

type fakeRepository struct {
	createFn func(ctx context.Context, entry *models.LedgerEntry) error
	byOrder  []models.LedgerEntry
}

func (f *fakeRepository) WithTx(tx *gorm.DB) Repository {
	return f
}

func (f *fakeRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	if f.createFn != nil {
		return f.createFn(ctx, entry)
	}
	return nil
}

func (f *fakeRepository) ListBySeller(ctx context.Context, sellerID uuid.UUID, params pagination.Params) (*EntryList, error) {
	return &EntryList{}, nil
}

func (f *fakeRepository) ListAllBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.LedgerEntry, error) {
	return nil, nil
}

func (f *fakeRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]models.LedgerEntry, error) {
	return f.byOrder, nil
}

func (f *fakeRepository) ExistingOrderKeys(ctx context.Context, entryTypes []enums.LedgerEntryType) (map[OrderEntryKey]bool, error) {
	return nil, nil
}

func TestService_Append(t *testing.T) {
	repo := &fakeRepository{}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	input := AppendEntryInput{
		SellerID:    uuid.New(),
		OrderID:     &orderID,
		EntryType:   enums.LedgerEntryTypeAvailableCredit,
		AmountCents: 9350,
		Description: "net credit for order",
	}

	var created *models.LedgerEntry
	repo.createFn = func(ctx context.Context, entry *models.LedgerEntry) error {
		created = entry
		return nil
	}

	got, err := svc.Append(context.Background(), input)
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if created == nil || got != created {
		t.Fatalf("expected entry handed to repository to be returned")
	}
	if got.Currency != enums.CurrencyUSD {
		t.Fatalf("expected USD default, got %s", got.Currency)
	}
	if got.AmountCents != 9350 {
		t.Fatalf("unexpected amount %d", got.AmountCents)
	}
}

func TestService_AppendValidation(t *testing.T) {
	svc, err := NewService(&fakeRepository{})
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	cases := []struct {
		name  string
		input AppendEntryInput
	}{
		{
			name:  "missing seller",
			input: AppendEntryInput{EntryType: enums.LedgerEntryTypeFee, AmountCents: 1},
		},
		{
			name: "unknown entry type",
			input: AppendEntryInput{
				SellerID:    uuid.New(),
				EntryType:   enums.LedgerEntryType("refund"),
				AmountCents: 1,
			},
		},
		{
			name: "negative amount",
			input: AppendEntryInput{
				SellerID:    uuid.New(),
				EntryType:   enums.LedgerEntryTypeFee,
				AmountCents: -5,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Append(context.Background(), tc.input)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestService_AppendDuplicateMapsToConflict(t *testing.T) {
	repo := &fakeRepository{
		createFn: func(ctx context.Context, entry *models.LedgerEntry) error {
			return errors.New(`duplicate key value violates unique constraint "ux_ledger_entries_order_entry_type"`)
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	orderID := uuid.New()
	_, err = svc.Append(context.Background(), AppendEntryInput{
		SellerID:    uuid.New(),
		OrderID:     &orderID,
		EntryType:   enums.LedgerEntryTypeAvailableCredit,
		AmountCents: 9350,
	})
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestService_HasEntry(t *testing.T) {
	orderID := uuid.New()
	repo := &fakeRepository{
		byOrder: []models.LedgerEntry{
			{OrderID: &orderID, EntryType: enums.LedgerEntryTypeAvailableCredit},
			{OrderID: &orderID, EntryType: enums.LedgerEntryTypeFee},
		},
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("unexpected service error: %v", err)
	}

	found, err := svc.HasEntry(context.Background(), orderID, enums.LedgerEntryTypeFee)
	if err != nil {
		t.Fatalf("HasEntry error: %v", err)
	}
	if !found {
		t.Fatalf("expected fee entry to be found")
	}

	missing, err := svc.HasEntry(context.Background(), orderID, enums.LedgerEntryTypePayout)
	if err != nil {
		t.Fatalf("HasEntry error: %v", err)
	}
	if missing {
		t.Fatalf("expected no payout entry")
	}
}
