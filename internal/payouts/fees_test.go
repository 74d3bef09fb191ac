package payouts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitAmount(t *testing.T) {
	cases := []struct {
		name    string
		amount  int64
		bps     int
		wantFee int64
		wantNet int64
	}{
		{name: "standard rate", amount: 10000, bps: 650, wantFee: 650, wantNet: 9350},
		{name: "rounds half up", amount: 99, bps: 650, wantFee: 6, wantNet: 93},
		{name: "small amount", amount: 1, bps: 650, wantFee: 0, wantNet: 1},
		{name: "zero rate", amount: 10000, bps: 0, wantFee: 0, wantNet: 10000},
		{name: "zero amount", amount: 0, bps: 650, wantFee: 0, wantNet: 0},
		{name: "large amount", amount: 1_000_000, bps: 650, wantFee: 65000, wantNet: 935000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			split := SplitAmount(tc.amount, tc.bps)
			assert.Equal(t, tc.wantFee, split.FeeCents)
			assert.Equal(t, tc.wantNet, split.NetCents)
			assert.Equal(t, tc.amount, split.FeeCents+split.NetCents)
		})
	}
}
