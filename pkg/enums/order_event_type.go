package enums

import "fmt"

// OrderEventType maps to the order_event_type enum in Postgres.
type OrderEventType string

const (
	OrderEventTypePaid      OrderEventType = "paid"
	OrderEventTypeShipped   OrderEventType = "shipped"
	OrderEventTypeDelivered OrderEventType = "delivered"
	OrderEventTypeCompleted OrderEventType = "completed"
)

var validOrderEventTypes = []OrderEventType{
	OrderEventTypePaid,
	OrderEventTypeShipped,
	OrderEventTypeDelivered,
	OrderEventTypeCompleted,
}

// IsValid reports whether the value matches the canonical order event enum.
func (t OrderEventType) IsValid() bool {
	for _, candidate := range validOrderEventTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseOrderEventType converts raw input into OrderEventType.
func ParseOrderEventType(value string) (OrderEventType, error) {
	for _, candidate := range validOrderEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order event type %q", value)
}
