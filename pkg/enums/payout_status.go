package enums

import "fmt"

// PayoutStatus maps to the payout_status enum in Postgres. The "ready" state is
// never stored: an order is ready when it is held and its hold has matured.
type PayoutStatus string

const (
	PayoutStatusHeld     PayoutStatus = "held"
	PayoutStatusReady    PayoutStatus = "ready"
	PayoutStatusReleased PayoutStatus = "released"
)

var validPayoutStatuses = []PayoutStatus{
	PayoutStatusHeld,
	PayoutStatusReady,
	PayoutStatusReleased,
}

// IsValid reports whether the value matches the canonical payout status enum.
func (s PayoutStatus) IsValid() bool {
	for _, candidate := range validPayoutStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePayoutStatus converts raw input into PayoutStatus.
func ParsePayoutStatus(value string) (PayoutStatus, error) {
	for _, candidate := range validPayoutStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payout status %q", value)
}
