package enums

import "fmt"

// LedgerEntryType maps to the ledger_entry_type_enum enum in Postgres.
type LedgerEntryType string

const (
	LedgerEntryTypePendingCredit   LedgerEntryType = "pending_credit"
	LedgerEntryTypeAvailableCredit LedgerEntryType = "available_credit"
	LedgerEntryTypeHold            LedgerEntryType = "hold"
	LedgerEntryTypeReleaseHold     LedgerEntryType = "release_hold"
	LedgerEntryTypePayout          LedgerEntryType = "payout"
	LedgerEntryTypeFee             LedgerEntryType = "fee"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypePendingCredit,
	LedgerEntryTypeAvailableCredit,
	LedgerEntryTypeHold,
	LedgerEntryTypeReleaseHold,
	LedgerEntryTypePayout,
	LedgerEntryTypeFee,
}

// IsValid reports whether the value matches the canonical ledger entry enum.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
