package payouts

import "github.com/shopspring/decimal"

// SettlementSplit is the fee/net breakdown of an order amount.
type SettlementSplit struct {
	FeeCents int64
	NetCents int64
}

// SplitAmount computes the marketplace fee from the configured basis points
// and the remaining net credit owed to the seller. Rounding is half away from
// zero on the fee so the two parts always sum to the original amount.
func SplitAmount(amountCents int64, feeRateBps int) SettlementSplit {
	if amountCents <= 0 || feeRateBps <= 0 {
		return SettlementSplit{NetCents: maxInt64(amountCents, 0)}
	}

	fee := decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromInt(int64(feeRateBps))).
		Div(decimal.NewFromInt(10000)).
		Round(0).
		IntPart()

	if fee > amountCents {
		fee = amountCents
	}
	return SettlementSplit{
		FeeCents: fee,
		NetCents: amountCents - fee,
	}
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
