package payouts

import "time"

// ReleaseResult reports the definite outcome of a release command.
type ReleaseResult struct {
	AlreadyReleased bool  `json:"already_released"`
	AmountCents     int64 `json:"amount_cents"`
}

// DelayResult reports the hold timestamp after a delay command.
type DelayResult struct {
	AlreadyReleased bool      `json:"already_released"`
	NewHoldUntil    time.Time `json:"new_hold_until"`
}
