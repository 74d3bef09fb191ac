package wallet

import (
	"github.com/comicvault/comicvault-backend/pkg/db/models"
	"github.com/comicvault/comicvault-backend/pkg/enums"
)

// Totals carries the three balance buckets produced by folding a ledger.
type Totals struct {
	PendingCents   int64
	AvailableCents int64
	OnHoldCents    int64
}

// foldEntries reduces a seller's ledger entries into bucket totals. The fold
// is pure: the same snapshot always yields the same totals. Each bucket is
// clamped at zero afterwards so a summary never shows a negative amount, even
// when offsetting entries arrive out of order.
func foldEntries(entries []models.LedgerEntry) Totals {
	var totals Totals
	for _, entry := range entries {
		amount := entry.AmountCents
		switch entry.EntryType {
		case enums.LedgerEntryTypePendingCredit:
			totals.PendingCents += amount
		case enums.LedgerEntryTypeAvailableCredit:
			totals.AvailableCents += amount
		case enums.LedgerEntryTypeHold:
			totals.OnHoldCents += amount
		case enums.LedgerEntryTypeReleaseHold:
			totals.OnHoldCents -= amount
		case enums.LedgerEntryTypePayout:
			totals.AvailableCents -= amount
		case enums.LedgerEntryTypeFee:
			// Fees are informational; credits are issued net of fees.
		}
	}

	totals.PendingCents = clampNonNegative(totals.PendingCents)
	totals.AvailableCents = clampNonNegative(totals.AvailableCents)
	totals.OnHoldCents = clampNonNegative(totals.OnHoldCents)
	return totals
}

func clampNonNegative(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
