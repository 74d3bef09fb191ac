package enums

import "fmt"

// ShippingStatus maps to the shipping_status enum in Postgres.
type ShippingStatus string

const (
	ShippingStatusPending   ShippingStatus = "pending"
	ShippingStatusShipped   ShippingStatus = "shipped"
	ShippingStatusDelivered ShippingStatus = "delivered"
)

var validShippingStatuses = []ShippingStatus{
	ShippingStatusPending,
	ShippingStatusShipped,
	ShippingStatusDelivered,
}

// IsValid reports whether the value matches the canonical shipping status enum.
func (s ShippingStatus) IsValid() bool {
	for _, candidate := range validShippingStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseShippingStatus converts raw input into ShippingStatus.
func ParseShippingStatus(value string) (ShippingStatus, error) {
	for _, candidate := range validShippingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid shipping status %q", value)
}
